package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BudgetStatus is the budget-level view of the team-season lifecycle.
type BudgetStatus string

const (
	BudgetDraft             BudgetStatus = "DRAFT"
	BudgetReview            BudgetStatus = "REVIEW"
	BudgetTeamApproved      BudgetStatus = "TEAM_APPROVED"
	BudgetAssociationReview BudgetStatus = "ASSOCIATION_REVIEW"
	BudgetPresented         BudgetStatus = "PRESENTED"
	BudgetLocked            BudgetStatus = "LOCKED"
)

// Budget is the single budget of a team for one season.
type Budget struct {
	BudgetID           string       `json:"budgetID"`
	TeamID             string       `json:"teamID"`
	SeasonLabel        string       `json:"seasonLabel"`
	Status             BudgetStatus `json:"status"`
	CurrentVersionID   *string      `json:"currentVersionID,omitempty"`
	PresentedVersionID *string      `json:"presentedVersionID,omitempty"`
	AuditFields
}

// Allocation is the amount assigned to one category in a version.
type Allocation struct {
	CategoryID string          `json:"categoryID"`
	Allocated  decimal.Decimal `json:"allocated"`
}

// BudgetVersion is an allocation snapshot. Once coach-approved it is never
// edited again; changes produce a new version.
type BudgetVersion struct {
	VersionID             string          `json:"versionID"`
	BudgetID              string          `json:"budgetID"`
	VersionNumber         int             `json:"versionNumber"`
	TotalBudget           decimal.Decimal `json:"totalBudget"`
	Allocations           []Allocation    `json:"allocations"`
	ChangeSummary         *string         `json:"changeSummary,omitempty"`
	CoachApprovedAt       *time.Time      `json:"coachApprovedAt,omitempty"`
	CoachApprovedBy       *string         `json:"coachApprovedBy,omitempty"`
	AssociationApprovedAt *time.Time      `json:"associationApprovedAt,omitempty"`
	AssociationApprovedBy *string         `json:"associationApprovedBy,omitempty"`
	AssociationNotes      *string         `json:"associationNotes,omitempty"`
	CreatedAt             time.Time       `json:"createdAt"`
	CreatedBy             string          `json:"createdBy"`
}

// IsCoachApproved reports whether the version carries a coach approval stamp.
func (v BudgetVersion) IsCoachApproved() bool {
	return v.CoachApprovedAt != nil
}

// AllocationFor returns the allocation row for a category.
func (v BudgetVersion) AllocationFor(categoryID string) (Allocation, bool) {
	for _, a := range v.Allocations {
		if a.CategoryID == categoryID {
			return a, true
		}
	}
	return Allocation{}, false
}

// AllocatedTotal sums all category allocations.
func (v BudgetVersion) AllocatedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, a := range v.Allocations {
		total = total.Add(a.Allocated)
	}
	return total
}

// ValidateAllocations rejects duplicate categories, negative amounts and
// allocations summing above the version total.
func (v BudgetVersion) ValidateAllocations() error {
	seen := make(map[string]struct{}, len(v.Allocations))
	for _, a := range v.Allocations {
		if a.CategoryID == "" {
			return fmt.Errorf("allocation category is required")
		}
		if _, dup := seen[a.CategoryID]; dup {
			return fmt.Errorf("category %s allocated more than once", a.CategoryID)
		}
		seen[a.CategoryID] = struct{}{}
		if a.Allocated.IsNegative() {
			return fmt.Errorf("allocation for category %s must not be negative", a.CategoryID)
		}
	}
	if v.TotalBudget.IsPositive() && v.AllocatedTotal().GreaterThan(v.TotalBudget) {
		return fmt.Errorf("allocations %s exceed total budget %s", v.AllocatedTotal().StringFixed(2), v.TotalBudget.StringFixed(2))
	}
	return nil
}

// BudgetVersionApproval is one family's acknowledgement of a presented version.
type BudgetVersionApproval struct {
	ApprovalID string    `json:"approvalID"`
	VersionID  string    `json:"versionID"`
	FamilyID   string    `json:"familyID"`
	ApprovedBy string    `json:"approvedBy"`
	ApprovedAt time.Time `json:"approvedAt"`
}

// CategorySpend is the running spend on one category, used for budget checks.
type CategorySpend struct {
	CategoryID string          `json:"categoryID"`
	Allocated  decimal.Decimal `json:"allocated"`
	Spent      decimal.Decimal `json:"spent"`
}

// Remaining is allocated minus spent.
func (c CategorySpend) Remaining() decimal.Decimal {
	return c.Allocated.Sub(c.Spent)
}
