package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Team is a row of the teams table.
type Team struct {
	TeamID        string  `json:"teamID"`
	Name          string  `json:"name"`
	AssociationID *string `json:"associationID"`
	IsActive      bool    `json:"isActive"`
	AuditFields
}

// TeamMember is a row of the team_members table.
type TeamMember struct {
	TeamID   string    `json:"teamID"`
	UserID   string    `json:"userID"`
	Role     string    `json:"role"`
	Email    string    `json:"email"`
	JoinedAt time.Time `json:"joinedAt"`
}

// AssociationMember is a row of the association_members table.
type AssociationMember struct {
	AssociationID string `json:"associationID"`
	UserID        string `json:"userID"`
	Role          string `json:"role"`
}

// TeamSettings is a row of the team_settings table.
type TeamSettings struct {
	TeamID                    string          `json:"teamID"`
	ReceiptThreshold          decimal.Decimal `json:"receiptThreshold"`
	LargeTransactionThreshold decimal.Decimal `json:"largeTransactionThreshold"`
	ApprovalThreshold         decimal.Decimal `json:"approvalThreshold"`
}

// AssociationGovernance is a row of the association_governance table.
type AssociationGovernance struct {
	AssociationID                     string          `json:"associationID"`
	RequiresAssociationBudgetApproval bool            `json:"requiresAssociationBudgetApproval"`
	DefaultThresholdMode              string          `json:"defaultThresholdMode"`
	DefaultPercentThreshold           decimal.Decimal `json:"defaultPercentThreshold"`
	Rules                             []string        `json:"rules"` // text[]
}
