package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PeriodType is the window over which an envelope's spend is measured.
type PeriodType string

const (
	PeriodMonthly  PeriodType = "MONTHLY"
	PeriodSeasonal PeriodType = "SEASONAL"
)

// VendorMatchType is how an envelope constrains the vendor.
type VendorMatchType string

const (
	VendorAny      VendorMatchType = "ANY"
	VendorExact    VendorMatchType = "EXACT"
	VendorContains VendorMatchType = "CONTAINS"
)

// Envelope pre-authorizes spending on one category of a budget.
type Envelope struct {
	EnvelopeID           string           `json:"envelopeID"`
	BudgetID             string           `json:"budgetID"`
	CategoryID           string           `json:"categoryID"`
	Name                 string           `json:"name"`
	CapAmount            decimal.Decimal  `json:"capAmount"`
	PeriodType           PeriodType       `json:"periodType"`
	VendorMatchType      VendorMatchType  `json:"vendorMatchType"`
	VendorMatch          *string          `json:"vendorMatch,omitempty"`
	StartDate            *time.Time       `json:"startDate,omitempty"`
	EndDate              *time.Time       `json:"endDate,omitempty"`
	MaxSingleTransaction *decimal.Decimal `json:"maxSingleTransaction,omitempty"`
	IsActive             bool             `json:"isActive"`
	AuditFields
}

// Validate checks the envelope definition is internally consistent.
func (e Envelope) Validate() error {
	if e.CategoryID == "" {
		return errors.New("categoryID is required")
	}
	if !e.CapAmount.IsPositive() {
		return errors.New("capAmount must be positive")
	}
	if e.PeriodType != PeriodMonthly && e.PeriodType != PeriodSeasonal {
		return errors.New("periodType must be MONTHLY or SEASONAL")
	}
	switch e.VendorMatchType {
	case VendorAny:
	case VendorExact, VendorContains:
		if e.VendorMatch == nil || strings.TrimSpace(*e.VendorMatch) == "" {
			return errors.New("vendorMatch is required for EXACT and CONTAINS")
		}
	default:
		return errors.New("vendorMatchType must be ANY, EXACT or CONTAINS")
	}
	if e.StartDate != nil && e.EndDate != nil && e.EndDate.Before(*e.StartDate) {
		return errors.New("endDate must not be before startDate")
	}
	if e.MaxSingleTransaction != nil && !e.MaxSingleTransaction.IsPositive() {
		return errors.New("maxSingleTransaction must be positive")
	}
	return nil
}

// MatchesVendor applies the vendor constraint. An empty pattern matches anything.
func (e Envelope) MatchesVendor(vendor string) bool {
	if e.VendorMatchType == VendorAny || e.VendorMatch == nil {
		return true
	}
	pattern := strings.ToLower(strings.TrimSpace(*e.VendorMatch))
	if pattern == "" {
		return true
	}
	v := strings.ToLower(strings.TrimSpace(vendor))
	switch e.VendorMatchType {
	case VendorExact:
		return v == pattern
	case VendorContains:
		return strings.Contains(v, pattern)
	}
	return false
}

// InDateRange checks the transaction date against [StartDate, EndDate] at day precision.
func (e Envelope) InDateRange(txDate time.Time) bool {
	d := DayOf(txDate)
	if e.StartDate != nil && d.Before(DayOf(*e.StartDate)) {
		return false
	}
	if e.EndDate != nil && d.After(DayOf(*e.EndDate)) {
		return false
	}
	return true
}

// ExceedsSingleLimit reports whether amount is above the per-transaction cap.
func (e Envelope) ExceedsSingleLimit(amount decimal.Decimal) bool {
	return e.MaxSingleTransaction != nil && amount.GreaterThan(*e.MaxSingleTransaction)
}

// PeriodWindow returns the [from, to) window used to measure spend for a
// transaction dated txDate. Seasonal envelopes have no window (nil bounds).
func (e Envelope) PeriodWindow(txDate time.Time) (*time.Time, *time.Time) {
	if e.PeriodType != PeriodMonthly {
		return nil, nil
	}
	u := txDate.UTC()
	from := time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	return &from, &to
}

// PeriodLabel is used in human-readable reasons.
func (e Envelope) PeriodLabel() string {
	if e.PeriodType == PeriodMonthly {
		return "this month"
	}
	return "for the season"
}

// EnvelopeSpendingSummary reports usage of an envelope for one period.
type EnvelopeSpendingSummary struct {
	EnvelopeID       string          `json:"envelopeID"`
	CategoryID       string          `json:"categoryID"`
	Name             string          `json:"name"`
	PeriodType       PeriodType      `json:"periodType"`
	Cap              decimal.Decimal `json:"cap"`
	Spent            decimal.Decimal `json:"spent"`
	Remaining        decimal.Decimal `json:"remaining"`
	PercentUsed      decimal.Decimal `json:"percentUsed"`
	TransactionCount int             `json:"transactionCount"`
}

// NewEnvelopeSpendingSummary derives remaining and percent used.
func NewEnvelopeSpendingSummary(e Envelope, spent decimal.Decimal, count int) EnvelopeSpendingSummary {
	percent := decimal.Zero
	if e.CapAmount.IsPositive() {
		percent = spent.Mul(hundred).Div(e.CapAmount).Round(2)
	}
	return EnvelopeSpendingSummary{
		EnvelopeID:       e.EnvelopeID,
		CategoryID:       e.CategoryID,
		Name:             e.Name,
		PeriodType:       e.PeriodType,
		Cap:              e.CapAmount,
		Spent:            spent,
		Remaining:        e.CapAmount.Sub(spent),
		PercentUsed:      percent,
		TransactionCount: count,
	}
}
