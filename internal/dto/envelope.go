package dto

import (
	"time"

	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// --- Envelope DTOs ---

// CreateEnvelopeRequest defines data for a new pre-authorized envelope.
type CreateEnvelopeRequest struct {
	CategoryID           string           `json:"categoryID" binding:"required"`
	Name                 string           `json:"name" binding:"required"`
	CapAmount            decimal.Decimal  `json:"capAmount" binding:"money2dp"`
	PeriodType           string           `json:"periodType" binding:"required,oneof=MONTHLY SEASONAL"`
	VendorMatchType      string           `json:"vendorMatchType" binding:"required,oneof=ANY EXACT CONTAINS"`
	VendorMatch          *string          `json:"vendorMatch,omitempty"`
	StartDate            *time.Time       `json:"startDate,omitempty"`
	EndDate              *time.Time       `json:"endDate,omitempty"`
	MaxSingleTransaction *decimal.Decimal `json:"maxSingleTransaction,omitempty"`
}

// EnvelopeResponse defines data returned for an envelope.
type EnvelopeResponse struct {
	EnvelopeID           string           `json:"envelopeID"`
	BudgetID             string           `json:"budgetID"`
	CategoryID           string           `json:"categoryID"`
	Name                 string           `json:"name"`
	CapAmount            decimal.Decimal  `json:"capAmount"`
	PeriodType           string           `json:"periodType"`
	VendorMatchType      string           `json:"vendorMatchType"`
	VendorMatch          *string          `json:"vendorMatch,omitempty"`
	StartDate            *time.Time       `json:"startDate,omitempty"`
	EndDate              *time.Time       `json:"endDate,omitempty"`
	MaxSingleTransaction *decimal.Decimal `json:"maxSingleTransaction,omitempty"`
	IsActive             bool             `json:"isActive"`
	CreatedAt            time.Time        `json:"createdAt"`
	CreatedBy            string           `json:"createdBy"`
}

// ToEnvelopeResponse converts domain.Envelope to DTO.
func ToEnvelopeResponse(e *domain.Envelope) EnvelopeResponse {
	return EnvelopeResponse{
		EnvelopeID:           e.EnvelopeID,
		BudgetID:             e.BudgetID,
		CategoryID:           e.CategoryID,
		Name:                 e.Name,
		CapAmount:            e.CapAmount,
		PeriodType:           string(e.PeriodType),
		VendorMatchType:      string(e.VendorMatchType),
		VendorMatch:          e.VendorMatch,
		StartDate:            e.StartDate,
		EndDate:              e.EndDate,
		MaxSingleTransaction: e.MaxSingleTransaction,
		IsActive:             e.IsActive,
		CreatedAt:            e.CreatedAt,
		CreatedBy:            e.CreatedBy,
	}
}

// ListEnvelopesResponse wraps a list of envelopes.
type ListEnvelopesResponse struct {
	Envelopes []EnvelopeResponse `json:"envelopes"`
}

// ToListEnvelopesResponse converts a slice of domain.Envelope to DTO.
func ToListEnvelopesResponse(es []domain.Envelope) ListEnvelopesResponse {
	list := make([]EnvelopeResponse, len(es))
	for i, e := range es {
		list[i] = ToEnvelopeResponse(&e)
	}
	return ListEnvelopesResponse{Envelopes: list}
}
