package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ThresholdMode decides how parent acknowledgements are counted.
type ThresholdMode string

const (
	ThresholdCount   ThresholdMode = "COUNT"
	ThresholdPercent ThresholdMode = "PERCENT"
)

var hundred = decimal.NewFromInt(100)

// BudgetThresholdConfig is the lock quorum of a budget.
// Only the threshold field matching Mode is meaningful.
type BudgetThresholdConfig struct {
	BudgetID            string           `json:"budgetID"`
	Mode                ThresholdMode    `json:"mode"`
	CountThreshold      *int             `json:"countThreshold,omitempty"`
	PercentThreshold    *decimal.Decimal `json:"percentThreshold,omitempty"`
	EligibleFamilyCount int              `json:"eligibleFamilyCount"`
	AuditFields
}

// Validate enforces that exactly the field for the mode is set and in range.
func (c BudgetThresholdConfig) Validate() error {
	switch c.Mode {
	case ThresholdCount:
		if c.CountThreshold == nil {
			return errors.New("countThreshold is required in COUNT mode")
		}
		if c.PercentThreshold != nil {
			return errors.New("percentThreshold must be empty in COUNT mode")
		}
		if *c.CountThreshold < 1 {
			return errors.New("countThreshold must be at least 1")
		}
	case ThresholdPercent:
		if c.PercentThreshold == nil {
			return errors.New("percentThreshold is required in PERCENT mode")
		}
		if c.CountThreshold != nil {
			return errors.New("countThreshold must be empty in PERCENT mode")
		}
		if !c.PercentThreshold.IsPositive() || c.PercentThreshold.GreaterThan(hundred) {
			return errors.New("percentThreshold must be in (0, 100]")
		}
	default:
		return errors.New("mode must be COUNT or PERCENT")
	}
	if c.EligibleFamilyCount < 0 {
		return errors.New("eligibleFamilyCount must not be negative")
	}
	return nil
}

// ApprovalPercent is approved/eligible*100, zero when nobody is eligible.
func ApprovalPercent(approved, eligible int) decimal.Decimal {
	if eligible <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(approved)).Mul(hundred).Div(decimal.NewFromInt(int64(eligible)))
}

// IsMet reports whether the quorum is reached for the given counts.
func (c BudgetThresholdConfig) IsMet(approved, eligible int) bool {
	switch c.Mode {
	case ThresholdCount:
		if c.CountThreshold == nil {
			return false
		}
		return approved >= *c.CountThreshold
	case ThresholdPercent:
		if c.PercentThreshold == nil || eligible <= 0 {
			return false
		}
		return ApprovalPercent(approved, eligible).GreaterThanOrEqual(*c.PercentThreshold)
	}
	return false
}

// EligibleCount prefers the live rollup and falls back to the config snapshot.
func (c BudgetThresholdConfig) EligibleCount(rollup int) int {
	if rollup > 0 {
		return rollup
	}
	return c.EligibleFamilyCount
}
