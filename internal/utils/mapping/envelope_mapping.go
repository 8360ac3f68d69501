package mapping

import (
	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	"github.com/SscSPs/team_finance_engine/internal/models"
	"github.com/shopspring/decimal"
)

// ToModelEnvelope converts a domain Envelope to a model Envelope
func ToModelEnvelope(d domain.Envelope) models.Envelope {
	m := models.Envelope{
		EnvelopeID:      d.EnvelopeID,
		BudgetID:        d.BudgetID,
		CategoryID:      d.CategoryID,
		Name:            d.Name,
		CapAmount:       d.CapAmount,
		PeriodType:      string(d.PeriodType),
		VendorMatchType: string(d.VendorMatchType),
		VendorMatch:     d.VendorMatch,
		StartDate:       d.StartDate,
		EndDate:         d.EndDate,
		IsActive:        d.IsActive,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
	if d.MaxSingleTransaction != nil {
		m.MaxSingleTransaction = decimal.NewNullDecimal(*d.MaxSingleTransaction)
	}
	return m
}

// ToDomainEnvelope converts a model Envelope to a domain Envelope
func ToDomainEnvelope(m models.Envelope) domain.Envelope {
	d := domain.Envelope{
		EnvelopeID:      m.EnvelopeID,
		BudgetID:        m.BudgetID,
		CategoryID:      m.CategoryID,
		Name:            m.Name,
		CapAmount:       m.CapAmount,
		PeriodType:      domain.PeriodType(m.PeriodType),
		VendorMatchType: domain.VendorMatchType(m.VendorMatchType),
		VendorMatch:     m.VendorMatch,
		StartDate:       m.StartDate,
		EndDate:         m.EndDate,
		IsActive:        m.IsActive,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
	if m.MaxSingleTransaction.Valid {
		limit := m.MaxSingleTransaction.Decimal
		d.MaxSingleTransaction = &limit
	}
	return d
}

// ToDomainEnvelopeSlice converts a slice of model Envelopes to domain Envelopes
func ToDomainEnvelopeSlice(ms []models.Envelope) []domain.Envelope {
	ds := make([]domain.Envelope, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainEnvelope(m)
	}
	return ds
}
