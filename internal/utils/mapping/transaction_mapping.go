package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	"github.com/SscSPs/team_finance_engine/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) (models.Transaction, error) {
	m := models.Transaction{
		TransactionID:    d.TransactionID,
		TeamID:           d.TeamID,
		SeasonLabel:      d.SeasonLabel,
		TransactionType:  string(d.Type),
		Status:           string(d.Status),
		Amount:           d.Amount,
		CategoryID:       d.CategoryID,
		SystemCategoryID: d.SystemCategoryID,
		Vendor:           d.Vendor,
		Description:      d.Description,
		TransactionDate:  d.TransactionDate,
		ReceiptURL:       d.ReceiptURL,
		ExternalID:       d.ExternalID,
		Pending:          d.Pending,
		ExceptionReason:  d.ExceptionReason,
		EnvelopeID:       d.EnvelopeID,
		ApprovalReason:   d.ApprovalReason,
		ResolvedAt:       d.ResolvedAt,
		ResolvedBy:       d.ResolvedBy,
		DeletedAt:        d.DeletedAt,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
	if d.ExceptionSeverity != nil {
		sev := string(*d.ExceptionSeverity)
		m.ExceptionSeverity = &sev
	}
	if d.Validation != nil {
		raw, err := json.Marshal(d.Validation)
		if err != nil {
			return models.Transaction{}, fmt.Errorf("failed to encode validation of transaction %s: %w", d.TransactionID, err)
		}
		m.Validation = raw
	}
	return m, nil
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) (domain.Transaction, error) {
	d := domain.Transaction{
		TransactionID:    m.TransactionID,
		TeamID:           m.TeamID,
		SeasonLabel:      m.SeasonLabel,
		Type:             domain.TransactionType(m.TransactionType),
		Status:           domain.TransactionStatus(m.Status),
		Amount:           m.Amount,
		CategoryID:       m.CategoryID,
		SystemCategoryID: m.SystemCategoryID,
		Vendor:           m.Vendor,
		Description:      m.Description,
		TransactionDate:  m.TransactionDate,
		ReceiptURL:       m.ReceiptURL,
		ExternalID:       m.ExternalID,
		Pending:          m.Pending,
		ExceptionReason:  m.ExceptionReason,
		EnvelopeID:       m.EnvelopeID,
		ApprovalReason:   m.ApprovalReason,
		ResolvedAt:       m.ResolvedAt,
		ResolvedBy:       m.ResolvedBy,
		DeletedAt:        m.DeletedAt,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
	if m.ExceptionSeverity != nil {
		sev := domain.ExceptionSeverity(*m.ExceptionSeverity)
		d.ExceptionSeverity = &sev
	}
	if len(m.Validation) > 0 {
		var v domain.ValidationResult
		if err := json.Unmarshal(m.Validation, &v); err != nil {
			return domain.Transaction{}, fmt.Errorf("failed to decode validation of transaction %s: %w", m.TransactionID, err)
		}
		d.Validation = &v
	}
	return d, nil
}

// ToDomainTransactionSlice converts a slice of model Transactions to domain Transactions
func ToDomainTransactionSlice(ms []models.Transaction) ([]domain.Transaction, error) {
	ds := make([]domain.Transaction, 0, len(ms))
	for _, m := range ms {
		d, err := ToDomainTransaction(m)
		if err != nil {
			return nil, err
		}
		ds = append(ds, d)
	}
	return ds, nil
}
