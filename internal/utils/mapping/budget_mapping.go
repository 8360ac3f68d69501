package mapping

import (
	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	"github.com/SscSPs/team_finance_engine/internal/models"
	"github.com/shopspring/decimal"
)

// ToModelBudget converts a domain Budget to a model Budget
func ToModelBudget(d domain.Budget) models.Budget {
	return models.Budget{
		BudgetID:           d.BudgetID,
		TeamID:             d.TeamID,
		SeasonLabel:        d.SeasonLabel,
		Status:             string(d.Status),
		CurrentVersionID:   d.CurrentVersionID,
		PresentedVersionID: d.PresentedVersionID,
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainBudget converts a model Budget to a domain Budget
func ToDomainBudget(m models.Budget) domain.Budget {
	return domain.Budget{
		BudgetID:           m.BudgetID,
		TeamID:             m.TeamID,
		SeasonLabel:        m.SeasonLabel,
		Status:             domain.BudgetStatus(m.Status),
		CurrentVersionID:   m.CurrentVersionID,
		PresentedVersionID: m.PresentedVersionID,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelBudgetVersion converts a domain BudgetVersion to a model BudgetVersion
func ToModelBudgetVersion(d domain.BudgetVersion) models.BudgetVersion {
	allocations := make([]models.BudgetAllocation, 0, len(d.Allocations))
	for _, a := range d.Allocations {
		allocations = append(allocations, models.BudgetAllocation{
			VersionID:  d.VersionID,
			CategoryID: a.CategoryID,
			Allocated:  a.Allocated,
		})
	}
	return models.BudgetVersion{
		VersionID:             d.VersionID,
		BudgetID:              d.BudgetID,
		VersionNumber:         d.VersionNumber,
		TotalBudget:           d.TotalBudget,
		ChangeSummary:         d.ChangeSummary,
		CoachApprovedAt:       d.CoachApprovedAt,
		CoachApprovedBy:       d.CoachApprovedBy,
		AssociationApprovedAt: d.AssociationApprovedAt,
		AssociationApprovedBy: d.AssociationApprovedBy,
		AssociationNotes:      d.AssociationNotes,
		CreatedAt:             d.CreatedAt,
		CreatedBy:             d.CreatedBy,
		Allocations:           allocations,
	}
}

// ToDomainBudgetVersion converts a model BudgetVersion to a domain BudgetVersion
func ToDomainBudgetVersion(m models.BudgetVersion) domain.BudgetVersion {
	allocations := make([]domain.Allocation, 0, len(m.Allocations))
	for _, a := range m.Allocations {
		allocations = append(allocations, domain.Allocation{CategoryID: a.CategoryID, Allocated: a.Allocated})
	}
	return domain.BudgetVersion{
		VersionID:             m.VersionID,
		BudgetID:              m.BudgetID,
		VersionNumber:         m.VersionNumber,
		TotalBudget:           m.TotalBudget,
		Allocations:           allocations,
		ChangeSummary:         m.ChangeSummary,
		CoachApprovedAt:       m.CoachApprovedAt,
		CoachApprovedBy:       m.CoachApprovedBy,
		AssociationApprovedAt: m.AssociationApprovedAt,
		AssociationApprovedBy: m.AssociationApprovedBy,
		AssociationNotes:      m.AssociationNotes,
		CreatedAt:             m.CreatedAt,
		CreatedBy:             m.CreatedBy,
	}
}

// ToModelBudgetVersionApproval converts a domain approval to a model approval
func ToModelBudgetVersionApproval(d domain.BudgetVersionApproval) models.BudgetVersionApproval {
	return models.BudgetVersionApproval{
		ApprovalID: d.ApprovalID,
		VersionID:  d.VersionID,
		FamilyID:   d.FamilyID,
		ApprovedBy: d.ApprovedBy,
		ApprovedAt: d.ApprovedAt,
	}
}

// ToModelThresholdConfig converts a domain BudgetThresholdConfig to a model BudgetThresholdConfig
func ToModelThresholdConfig(d domain.BudgetThresholdConfig) models.BudgetThresholdConfig {
	m := models.BudgetThresholdConfig{
		BudgetID:            d.BudgetID,
		Mode:                string(d.Mode),
		CountThreshold:      d.CountThreshold,
		EligibleFamilyCount: d.EligibleFamilyCount,
		AuditFields:         ToModelAuditFields(d.AuditFields),
	}
	if d.PercentThreshold != nil {
		m.PercentThreshold = decimal.NewNullDecimal(*d.PercentThreshold)
	}
	return m
}

// ToDomainThresholdConfig converts a model BudgetThresholdConfig to a domain BudgetThresholdConfig
func ToDomainThresholdConfig(m models.BudgetThresholdConfig) domain.BudgetThresholdConfig {
	d := domain.BudgetThresholdConfig{
		BudgetID:            m.BudgetID,
		Mode:                domain.ThresholdMode(m.Mode),
		CountThreshold:      m.CountThreshold,
		EligibleFamilyCount: m.EligibleFamilyCount,
		AuditFields:         ToDomainAuditFields(m.AuditFields),
	}
	if m.PercentThreshold.Valid {
		pct := m.PercentThreshold.Decimal
		d.PercentThreshold = &pct
	}
	return d
}
