package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType indicates whether money came in or went out.
type TransactionType string

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

// Transaction is a single income or expense record for a team.
// Identity is immutable; status and validation output change over its life.
type Transaction struct {
	TransactionID     string             `json:"transactionID"`
	TeamID            string             `json:"teamID"`
	SeasonLabel       string             `json:"seasonLabel"`
	Type              TransactionType    `json:"type"`
	Status            TransactionStatus  `json:"status"`
	Amount            decimal.Decimal    `json:"amount"`
	CategoryID        *string            `json:"categoryID,omitempty"`
	SystemCategoryID  *string            `json:"systemCategoryID,omitempty"`
	Vendor            string             `json:"vendor"`
	Description       string             `json:"description"`
	TransactionDate   time.Time          `json:"transactionDate"`
	ReceiptURL        *string            `json:"receiptURL,omitempty"`
	ExternalID        *string            `json:"externalID,omitempty"`
	Pending           bool               `json:"pending"`
	Validation        *ValidationResult  `json:"validation,omitempty"`
	ExceptionSeverity *ExceptionSeverity `json:"exceptionSeverity,omitempty"`
	ExceptionReason   *string            `json:"exceptionReason,omitempty"`
	EnvelopeID        *string            `json:"envelopeID,omitempty"` // back-reference only
	ApprovalReason    *string            `json:"approvalReason,omitempty"`
	ResolvedAt        *time.Time         `json:"resolvedAt,omitempty"`
	ResolvedBy        *string            `json:"resolvedBy,omitempty"`
	DeletedAt         *time.Time         `json:"deletedAt,omitempty"`
	AuditFields
}

var (
	ErrAmountNotPositive = errors.New("amount must be positive")
	ErrAmountPrecision   = errors.New("amount must have at most 2 decimal places")
	ErrAmountCeiling     = errors.New("amount exceeds the configured maximum")
)

// BudgetCategoryID returns the category used for budget and envelope lookups.
// The system category wins over the display category.
func (t Transaction) BudgetCategoryID() string {
	if t.SystemCategoryID != nil && *t.SystemCategoryID != "" {
		return *t.SystemCategoryID
	}
	if t.CategoryID != nil {
		return *t.CategoryID
	}
	return ""
}

// IsDeleted reports whether the transaction was soft-deleted.
func (t Transaction) IsDeleted() bool {
	return t.DeletedAt != nil
}

// NormalizedVendor lowercases and trims the vendor for comparisons.
func (t Transaction) NormalizedVendor() string {
	return strings.ToLower(strings.TrimSpace(t.Vendor))
}

// ValidateAmount checks the amount is positive, has at most two decimals and
// does not exceed ceiling. A zero ceiling disables the upper bound.
func ValidateAmount(amount, ceiling decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrAmountNotPositive
	}
	if amount.Exponent() < -2 && !amount.Equal(amount.Round(2)) {
		return ErrAmountPrecision
	}
	if ceiling.IsPositive() && amount.GreaterThan(ceiling) {
		return fmt.Errorf("%w (%s)", ErrAmountCeiling, ceiling.StringFixed(2))
	}
	return nil
}
