package dto

import (
	"time"

	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// --- Transaction DTOs ---

// CategorySuggestion is an advisory category from the categorization service.
type CategorySuggestion struct {
	CategoryID string  `json:"categoryID" binding:"required"`
	Confidence float64 `json:"confidence" binding:"gte=0,lte=1"`
}

// CreateTransactionRequest defines data for recording a transaction by hand.
type CreateTransactionRequest struct {
	SeasonLabel      string              `json:"seasonLabel" binding:"required"`
	Type             string              `json:"type" binding:"required,oneof=INCOME EXPENSE"`
	Amount           decimal.Decimal     `json:"amount" binding:"money2dp"`
	CategoryID       *string             `json:"categoryID,omitempty"`
	SystemCategoryID *string             `json:"systemCategoryID,omitempty"`
	Vendor           string              `json:"vendor" binding:"required"`
	Description      string              `json:"description"`
	TransactionDate  time.Time           `json:"transactionDate" binding:"required"`
	ReceiptURL       *string             `json:"receiptURL,omitempty" binding:"omitempty,url"`
	ExternalID       *string             `json:"externalID,omitempty"`
	Suggestion       *CategorySuggestion `json:"suggestion,omitempty"`
}

// FeedTransaction is one candidate supplied by a bank feed.
type FeedTransaction struct {
	Type            string              `json:"type" binding:"omitempty,oneof=INCOME EXPENSE"`
	Amount          decimal.Decimal     `json:"amount" binding:"money2dp"`
	Vendor          string              `json:"vendor" binding:"required"`
	Description     string              `json:"description"`
	TransactionDate time.Time           `json:"transactionDate" binding:"required"`
	Pending         bool                `json:"pending"`
	ExternalID      *string             `json:"externalID,omitempty"`
	Suggestion      *CategorySuggestion `json:"suggestion,omitempty"`
}

// ImportTransactionsRequest carries a batch of feed candidates for one season.
type ImportTransactionsRequest struct {
	SeasonLabel  string            `json:"seasonLabel" binding:"required"`
	Transactions []FeedTransaction `json:"transactions" binding:"required,min=1,dive"`
}

// ImportTransactionsResponse summarises a feed import.
type ImportTransactionsResponse struct {
	Imported     int                   `json:"imported"`
	Skipped      int                   `json:"skipped"`
	Transactions []TransactionResponse `json:"transactions"`
}

// ListTransactionsParams holds query parameters for listing transactions.
type ListTransactionsParams struct {
	Limit       int     `form:"limit"`
	NextToken   *string `form:"nextToken"`
	Status      string  `form:"status"`
	SeasonLabel string  `form:"seasonLabel"`
}

// ListTransactionsResponse is a page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// RouteResponse describes how a new transaction was routed.
type RouteResponse struct {
	Decision   string  `json:"decision"`
	Reason     string  `json:"reason"`
	EnvelopeID *string `json:"envelopeID,omitempty"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID     string                   `json:"transactionID"`
	TeamID            string                   `json:"teamID"`
	SeasonLabel       string                   `json:"seasonLabel"`
	Type              domain.TransactionType   `json:"type"`
	Status            domain.TransactionStatus `json:"status"`
	Amount            decimal.Decimal          `json:"amount"`
	CategoryID        *string                  `json:"categoryID,omitempty"`
	SystemCategoryID  *string                  `json:"systemCategoryID,omitempty"`
	Vendor            string                   `json:"vendor"`
	Description       string                   `json:"description"`
	TransactionDate   time.Time                `json:"transactionDate"`
	ReceiptURL        *string                  `json:"receiptURL,omitempty"`
	ExternalID        *string                  `json:"externalID,omitempty"`
	Pending           bool                     `json:"pending"`
	Validation        *domain.ValidationResult `json:"validation,omitempty"`
	ExceptionSeverity *string                  `json:"exceptionSeverity,omitempty"`
	ExceptionReason   *string                  `json:"exceptionReason,omitempty"`
	EnvelopeID        *string                  `json:"envelopeID,omitempty"`
	ApprovalReason    *string                  `json:"approvalReason,omitempty"`
	ResolvedAt        *time.Time               `json:"resolvedAt,omitempty"`
	ResolvedBy        *string                  `json:"resolvedBy,omitempty"`
	CreatedAt         time.Time                `json:"createdAt"`
	CreatedBy         string                   `json:"createdBy"`
	Route             *RouteResponse           `json:"route,omitempty"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	var severity *string
	if t.ExceptionSeverity != nil {
		s := string(*t.ExceptionSeverity)
		severity = &s
	}
	return TransactionResponse{
		TransactionID:     t.TransactionID,
		TeamID:            t.TeamID,
		SeasonLabel:       t.SeasonLabel,
		Type:              t.Type,
		Status:            t.Status,
		Amount:            t.Amount,
		CategoryID:        t.CategoryID,
		SystemCategoryID:  t.SystemCategoryID,
		Vendor:            t.Vendor,
		Description:       t.Description,
		TransactionDate:   t.TransactionDate,
		ReceiptURL:        t.ReceiptURL,
		ExternalID:        t.ExternalID,
		Pending:           t.Pending,
		Validation:        t.Validation,
		ExceptionSeverity: severity,
		ExceptionReason:   t.ExceptionReason,
		EnvelopeID:        t.EnvelopeID,
		ApprovalReason:    t.ApprovalReason,
		ResolvedAt:        t.ResolvedAt,
		ResolvedBy:        t.ResolvedBy,
		CreatedAt:         t.CreatedAt,
		CreatedBy:         t.CreatedBy,
	}
}

// ToTransactionResponses converts a slice of domain.Transaction to []TransactionResponse.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i, txn := range txns {
		responses[i] = ToTransactionResponse(&txn)
	}
	return responses
}

// --- Exception DTOs ---

// TransactionCorrection lists the fields a CORRECT resolution may change.
type TransactionCorrection struct {
	Amount           *decimal.Decimal `json:"amount,omitempty"`
	CategoryID       *string          `json:"categoryID,omitempty"`
	SystemCategoryID *string          `json:"systemCategoryID,omitempty"`
	Vendor           *string          `json:"vendor,omitempty"`
	Description      *string          `json:"description,omitempty"`
	TransactionDate  *time.Time       `json:"transactionDate,omitempty"`
	ReceiptURL       *string          `json:"receiptURL,omitempty" binding:"omitempty,url"`
}

// ResolveExceptionRequest defines data for resolving an exception.
type ResolveExceptionRequest struct {
	Resolution    string                 `json:"resolution" binding:"required,oneof=OVERRIDE CORRECT REVALIDATE"`
	Justification string                 `json:"justification" binding:"required"`
	Corrections   *TransactionCorrection `json:"corrections,omitempty"`
}

// ResolveExceptionResponse reports the outcome of a resolution.
type ResolveExceptionResponse struct {
	Transaction      TransactionResponse `json:"transaction"`
	OverriddenCodes  []string            `json:"overriddenCodes,omitempty"`
	StillInException bool                `json:"stillInException"`
}
