package dto

import (
	"time"

	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// --- Budget DTOs ---

// CreateBudgetRequest opens a budget and its team season.
type CreateBudgetRequest struct {
	SeasonLabel string    `json:"seasonLabel" binding:"required"`
	SeasonStart time.Time `json:"seasonStart" binding:"required"`
	SeasonEnd   time.Time `json:"seasonEnd" binding:"required,gtfield=SeasonStart"`
}

// AllocationRequest is one category line of a version.
type AllocationRequest struct {
	CategoryID string          `json:"categoryID" binding:"required"`
	Allocated  decimal.Decimal `json:"allocated" binding:"money2dp"`
}

// CreateBudgetVersionRequest defines data for a new budget version.
type CreateBudgetVersionRequest struct {
	TotalBudget   decimal.Decimal     `json:"totalBudget" binding:"money2dp"`
	Allocations   []AllocationRequest `json:"allocations" binding:"required,min=1,dive"`
	ChangeSummary *string             `json:"changeSummary,omitempty"`
}

// UpsertThresholdRequest sets the lock quorum of a budget.
type UpsertThresholdRequest struct {
	Mode                string           `json:"mode" binding:"required,oneof=COUNT PERCENT"`
	CountThreshold      *int             `json:"countThreshold,omitempty" binding:"omitempty,min=1"`
	PercentThreshold    *decimal.Decimal `json:"percentThreshold,omitempty"`
	EligibleFamilyCount *int             `json:"eligibleFamilyCount,omitempty" binding:"omitempty,min=0"`
}

// RecordApprovalRequest is the caller's family acknowledgement. The family is
// the caller's own parent membership; FamilyID, when sent, must match it.
type RecordApprovalRequest struct {
	FamilyID string `json:"familyID,omitempty"`
}

// AllocationResponse is one category line of a version.
type AllocationResponse struct {
	CategoryID string          `json:"categoryID"`
	Allocated  decimal.Decimal `json:"allocated"`
}

// BudgetVersionResponse defines data returned for a budget version.
type BudgetVersionResponse struct {
	VersionID             string               `json:"versionID"`
	BudgetID              string               `json:"budgetID"`
	VersionNumber         int                  `json:"versionNumber"`
	TotalBudget           decimal.Decimal      `json:"totalBudget"`
	Allocations           []AllocationResponse `json:"allocations"`
	ChangeSummary         *string              `json:"changeSummary,omitempty"`
	CoachApprovedAt       *time.Time           `json:"coachApprovedAt,omitempty"`
	CoachApprovedBy       *string              `json:"coachApprovedBy,omitempty"`
	AssociationApprovedAt *time.Time           `json:"associationApprovedAt,omitempty"`
	AssociationApprovedBy *string              `json:"associationApprovedBy,omitempty"`
	AssociationNotes      *string              `json:"associationNotes,omitempty"`
	CreatedAt             time.Time            `json:"createdAt"`
	CreatedBy             string               `json:"createdBy"`
}

// ToBudgetVersionResponse converts domain.BudgetVersion to DTO.
func ToBudgetVersionResponse(v *domain.BudgetVersion) BudgetVersionResponse {
	allocations := make([]AllocationResponse, len(v.Allocations))
	for i, a := range v.Allocations {
		allocations[i] = AllocationResponse{CategoryID: a.CategoryID, Allocated: a.Allocated}
	}
	return BudgetVersionResponse{
		VersionID:             v.VersionID,
		BudgetID:              v.BudgetID,
		VersionNumber:         v.VersionNumber,
		TotalBudget:           v.TotalBudget,
		Allocations:           allocations,
		ChangeSummary:         v.ChangeSummary,
		CoachApprovedAt:       v.CoachApprovedAt,
		CoachApprovedBy:       v.CoachApprovedBy,
		AssociationApprovedAt: v.AssociationApprovedAt,
		AssociationApprovedBy: v.AssociationApprovedBy,
		AssociationNotes:      v.AssociationNotes,
		CreatedAt:             v.CreatedAt,
		CreatedBy:             v.CreatedBy,
	}
}

// BudgetResponse defines data returned for a budget.
type BudgetResponse struct {
	BudgetID           string                 `json:"budgetID"`
	TeamID             string                 `json:"teamID"`
	SeasonLabel        string                 `json:"seasonLabel"`
	Status             domain.BudgetStatus    `json:"status"`
	CurrentVersionID   *string                `json:"currentVersionID,omitempty"`
	PresentedVersionID *string                `json:"presentedVersionID,omitempty"`
	CurrentVersion     *BudgetVersionResponse `json:"currentVersion,omitempty"`
	CreatedAt          time.Time              `json:"createdAt"`
	CreatedBy          string                 `json:"createdBy"`
	LastUpdatedAt      time.Time              `json:"lastUpdatedAt"`
	LastUpdatedBy      string                 `json:"lastUpdatedBy"`
}

// ToBudgetResponse converts domain.Budget to DTO.
func ToBudgetResponse(b *domain.Budget) BudgetResponse {
	return BudgetResponse{
		BudgetID:           b.BudgetID,
		TeamID:             b.TeamID,
		SeasonLabel:        b.SeasonLabel,
		Status:             b.Status,
		CurrentVersionID:   b.CurrentVersionID,
		PresentedVersionID: b.PresentedVersionID,
		CreatedAt:          b.CreatedAt,
		CreatedBy:          b.CreatedBy,
		LastUpdatedAt:      b.LastUpdatedAt,
		LastUpdatedBy:      b.LastUpdatedBy,
	}
}

// ThresholdConfigResponse defines data returned for a threshold config.
type ThresholdConfigResponse struct {
	BudgetID            string           `json:"budgetID"`
	Mode                string           `json:"mode"`
	CountThreshold      *int             `json:"countThreshold,omitempty"`
	PercentThreshold    *decimal.Decimal `json:"percentThreshold,omitempty"`
	EligibleFamilyCount int              `json:"eligibleFamilyCount"`
}

// ToThresholdConfigResponse converts domain.BudgetThresholdConfig to DTO.
func ToThresholdConfigResponse(c *domain.BudgetThresholdConfig) ThresholdConfigResponse {
	return ThresholdConfigResponse{
		BudgetID:            c.BudgetID,
		Mode:                string(c.Mode),
		CountThreshold:      c.CountThreshold,
		PercentThreshold:    c.PercentThreshold,
		EligibleFamilyCount: c.EligibleFamilyCount,
	}
}

// ApprovalProgressResponse reports how close a presented budget is to locking.
type ApprovalProgressResponse struct {
	BudgetID           string          `json:"budgetID"`
	PresentedVersionID *string         `json:"presentedVersionID,omitempty"`
	Mode               string          `json:"mode"`
	ApprovedCount      int             `json:"approvedCount"`
	EligibleCount      int             `json:"eligibleCount"`
	Percent            decimal.Decimal `json:"percent"`
	ThresholdMet       bool            `json:"thresholdMet"`
}

// RecordApprovalResponse reports an acknowledgement and any lock it triggered.
type RecordApprovalResponse struct {
	ApprovalID    string `json:"approvalID"`
	ApprovedCount int    `json:"approvedCount"`
	EligibleCount int    `json:"eligibleCount"`
	ThresholdMet  bool   `json:"thresholdMet"`
	Locked        bool   `json:"locked"`
}

// --- Association DTOs ---

// AssociationDecisionRequest defines data for an association approve or request-changes call.
type AssociationDecisionRequest struct {
	VersionID string  `json:"versionID" binding:"required"`
	Notes     *string `json:"notes,omitempty"`
}
