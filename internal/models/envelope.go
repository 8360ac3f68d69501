package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Envelope is a row of the envelopes table.
type Envelope struct {
	EnvelopeID           string              `json:"envelopeID"`
	BudgetID             string              `json:"budgetID"`
	CategoryID           string              `json:"categoryID"`
	Name                 string              `json:"name"`
	CapAmount            decimal.Decimal     `json:"capAmount"`
	PeriodType           string              `json:"periodType"`
	VendorMatchType      string              `json:"vendorMatchType"`
	VendorMatch          *string             `json:"vendorMatch"`
	StartDate            *time.Time          `json:"startDate"`
	EndDate              *time.Time          `json:"endDate"`
	MaxSingleTransaction decimal.NullDecimal `json:"maxSingleTransaction"`
	IsActive             bool                `json:"isActive"`
	AuditFields
}
