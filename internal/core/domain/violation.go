package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Severity of a single validation finding.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityError    Severity = "ERROR"
	SeverityCritical Severity = "CRITICAL"
)

// Weight is the score penalty for one violation of this severity.
func (s Severity) Weight() int {
	switch s {
	case SeverityWarning:
		return 5
	case SeverityError:
		return 20
	case SeverityCritical:
		return 40
	}
	return 0
}

// IsBlocking reports whether the severity makes a transaction non-compliant.
func (s Severity) IsBlocking() bool {
	return s == SeverityError || s == SeverityCritical
}

// ViolationCode is the closed set of rule findings.
type ViolationCode string

const (
	CodeUncategorized        ViolationCode = "UNCATEGORIZED"
	CodeMissingReceipt       ViolationCode = "MISSING_RECEIPT"
	CodeCategoryNotAllocated ViolationCode = "CATEGORY_NOT_ALLOCATED"
	CodeCategoryOverLimit    ViolationCode = "CATEGORY_OVER_LIMIT"
	CodeEnvelopeCapExceeded  ViolationCode = "ENVELOPE_CAP_EXCEEDED"
	CodeLargeTransaction     ViolationCode = "LARGE_TRANSACTION"
	CodeThresholdBreach      ViolationCode = "THRESHOLD_BREACH"
	CodeTransactionTooFuture ViolationCode = "TRANSACTION_TOO_FUTURE"
	CodeOutsideSeasonDates   ViolationCode = "OUTSIDE_SEASON_DATES"
	CodeCashLikeTransaction  ViolationCode = "CASH_LIKE_TRANSACTION"
	CodePotentialDuplicate   ViolationCode = "POTENTIAL_DUPLICATE"
)

// ViolationMetadata is the fixed metadata shape shared by all codes.
// Each code fills only the fields that describe it.
type ViolationMetadata struct {
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	Threshold       *decimal.Decimal `json:"threshold,omitempty"`
	CategoryID      *string          `json:"categoryId,omitempty"`
	Allocated       *decimal.Decimal `json:"allocated,omitempty"`
	Spent           *decimal.Decimal `json:"spent,omitempty"`
	Remaining       *decimal.Decimal `json:"remaining,omitempty"`
	EnvelopeID      *string          `json:"envelopeId,omitempty"`
	Cap             *decimal.Decimal `json:"cap,omitempty"`
	Limit           *decimal.Decimal `json:"limit,omitempty"`
	TransactionDate *time.Time       `json:"transactionDate,omitempty"`
	SeasonStart     *time.Time       `json:"seasonStart,omitempty"`
	SeasonEnd       *time.Time       `json:"seasonEnd,omitempty"`
	Vendor          *string          `json:"vendor,omitempty"`
	DuplicateOfID   *string          `json:"duplicateOfId,omitempty"`
}

// Violation is one rule finding produced by the validation engine.
type Violation struct {
	Code     ViolationCode     `json:"code"`
	Severity Severity          `json:"severity"`
	Message  string            `json:"message"`
	Metadata ViolationMetadata `json:"metadata"`
}

// ChecksRun records which checks were evaluated for a result.
type ChecksRun struct {
	Category         bool `json:"category"`
	Receipt          bool `json:"receipt"`
	Budget           bool `json:"budget"`
	Envelope         bool `json:"envelope"`
	Threshold        bool `json:"threshold"`
	Dates            bool `json:"dates"`
	Vendor           bool `json:"vendor"`
	AssociationRules bool `json:"associationRules"`
	Duplicates       bool `json:"duplicates"`
}

// ValidationResult is the output of the validation engine.
type ValidationResult struct {
	Compliant   bool        `json:"compliant"`
	Violations  []Violation `json:"violations"`
	Score       int         `json:"score"`
	ChecksRun   ChecksRun   `json:"checksRun"`
	ValidatedAt time.Time   `json:"validatedAt"`
}

// Codes lists the violation codes in result order.
func (r ValidationResult) Codes() []ViolationCode {
	codes := make([]ViolationCode, 0, len(r.Violations))
	for _, v := range r.Violations {
		codes = append(codes, v.Code)
	}
	return codes
}

// HasCode reports whether any violation carries code.
func (r ValidationResult) HasCode(code ViolationCode) bool {
	for _, v := range r.Violations {
		if v.Code == code {
			return true
		}
	}
	return false
}
