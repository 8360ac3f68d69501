package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is a row of the budgets table.
type Budget struct {
	BudgetID           string  `json:"budgetID"`
	TeamID             string  `json:"teamID"`
	SeasonLabel        string  `json:"seasonLabel"`
	Status             string  `json:"status"`
	CurrentVersionID   *string `json:"currentVersionID"`
	PresentedVersionID *string `json:"presentedVersionID"`
	AuditFields
}

// BudgetVersion is a row of the budget_versions table. Allocations live in budget_allocations.
type BudgetVersion struct {
	VersionID             string             `json:"versionID"`
	BudgetID              string             `json:"budgetID"`
	VersionNumber         int                `json:"versionNumber"`
	TotalBudget           decimal.Decimal    `json:"totalBudget"`
	ChangeSummary         *string            `json:"changeSummary"`
	CoachApprovedAt       *time.Time         `json:"coachApprovedAt"`
	CoachApprovedBy       *string            `json:"coachApprovedBy"`
	AssociationApprovedAt *time.Time         `json:"associationApprovedAt"`
	AssociationApprovedBy *string            `json:"associationApprovedBy"`
	AssociationNotes      *string            `json:"associationNotes"`
	CreatedAt             time.Time          `json:"createdAt"`
	CreatedBy             string             `json:"createdBy"`
	Allocations           []BudgetAllocation `json:"allocations"`
}

// BudgetAllocation is a row of the budget_allocations table.
type BudgetAllocation struct {
	VersionID  string          `json:"versionID"`
	CategoryID string          `json:"categoryID"`
	Allocated  decimal.Decimal `json:"allocated"`
}

// BudgetVersionApproval is a row of the budget_version_approvals table.
type BudgetVersionApproval struct {
	ApprovalID string    `json:"approvalID"`
	VersionID  string    `json:"versionID"`
	FamilyID   string    `json:"familyID"`
	ApprovedBy string    `json:"approvedBy"`
	ApprovedAt time.Time `json:"approvedAt"`
}

// BudgetThresholdConfig is a row of the budget_threshold_configs table.
type BudgetThresholdConfig struct {
	BudgetID            string              `json:"budgetID"`
	Mode                string              `json:"mode"`
	CountThreshold      *int                `json:"countThreshold"`
	PercentThreshold    decimal.NullDecimal `json:"percentThreshold"`
	EligibleFamilyCount int                 `json:"eligibleFamilyCount"`
	AuditFields
}
