package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Team is a club team that keeps its own books.
type Team struct {
	TeamID        string  `json:"teamID"`
	Name          string  `json:"name"`
	AssociationID *string `json:"associationID,omitempty"` // nil when the team is independent
	IsActive      bool    `json:"isActive"`
	AuditFields
}

// TeamMember is a user's role on a team.
type TeamMember struct {
	UserID   string    `json:"userID"`
	TeamID   string    `json:"teamID"`
	Role     Role      `json:"role"`
	Email    string    `json:"email"`
	JoinedAt time.Time `json:"joinedAt"`
}

// AssociationMember is a user's role in an association.
type AssociationMember struct {
	UserID        string `json:"userID"`
	AssociationID string `json:"associationID"`
	Role          Role   `json:"role"`
}

// TeamSettings are the per-team knobs used by validation and routing.
type TeamSettings struct {
	TeamID                    string          `json:"teamID"`
	ReceiptThreshold          decimal.Decimal `json:"receiptThreshold"`
	LargeTransactionThreshold decimal.Decimal `json:"largeTransactionThreshold"`
	ApprovalThreshold         decimal.Decimal `json:"approvalThreshold"`
}

// AssociationGovernance are association-wide budget rules.
type AssociationGovernance struct {
	AssociationID                     string          `json:"associationID"`
	RequiresAssociationBudgetApproval bool            `json:"requiresAssociationBudgetApproval"`
	DefaultThresholdMode              ThresholdMode   `json:"defaultThresholdMode"`
	DefaultPercentThreshold           decimal.Decimal `json:"defaultPercentThreshold"`
	Rules                             []string        `json:"rules"`
}

// DefaultGovernance is used when an association has not configured any rules.
func DefaultGovernance(associationID string) AssociationGovernance {
	return AssociationGovernance{
		AssociationID:                     associationID,
		RequiresAssociationBudgetApproval: false,
		DefaultThresholdMode:              ThresholdPercent,
		DefaultPercentThreshold:           decimal.NewFromInt(80),
	}
}

// DefaultThresholdConfig builds a threshold config from governance defaults.
func (g AssociationGovernance) DefaultThresholdConfig(budgetID string, eligible int) BudgetThresholdConfig {
	cfg := BudgetThresholdConfig{BudgetID: budgetID, Mode: g.DefaultThresholdMode, EligibleFamilyCount: eligible}
	if g.DefaultThresholdMode == ThresholdCount {
		n := eligible
		if n < 1 {
			n = 1
		}
		cfg.CountThreshold = &n
		return cfg
	}
	p := g.DefaultPercentThreshold
	cfg.PercentThreshold = &p
	return cfg
}

// SeasonWindow is the date range of a season.
type SeasonWindow struct {
	Start time.Time
	End   time.Time
}
