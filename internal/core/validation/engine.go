// Package validation evaluates a candidate transaction against team rules.
// Everything here is a pure function of its inputs; callers load the context
// and persist the result.
package validation

import (
	"time"

	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BudgetSnapshot is the spend position of a locked budget, per category.
type BudgetSnapshot struct {
	BudgetID    string
	VersionID   string
	Allocations []domain.CategorySpend
}

// EnvelopeSnapshot pairs an envelope with its current period spend.
type EnvelopeSnapshot struct {
	Envelope domain.Envelope
	Spent    decimal.Decimal
}

// Remaining is cap minus spent.
func (s EnvelopeSnapshot) Remaining() decimal.Decimal {
	return s.Envelope.CapAmount.Sub(s.Spent)
}

// Context holds every input of a validation run. Optional inputs left nil
// skip their check.
type Context struct {
	Transaction         domain.Transaction
	Budget              *BudgetSnapshot
	Envelopes           []EnvelopeSnapshot
	Settings            domain.TeamSettings
	Season              *domain.SeasonWindow
	AssociationRules    []string
	DuplicateCandidates []domain.Transaction
	DuplicateWindowDays int
	Now                 time.Time
}

type check func(c Context, res *domain.ValidationResult)

// order matters: violations are reported in check order.
var checks = []check{
	checkCategory,
	checkReceipt,
	checkBudget,
	checkEnvelope,
	checkThreshold,
	checkDates,
	checkVendor,
	checkAssociationRules,
	checkDuplicates,
}

// ComputeValidation runs all checks and scores the result.
func ComputeValidation(c Context) domain.ValidationResult {
	if c.Now.IsZero() {
		c.Now = time.Now().UTC()
	}
	res := domain.ValidationResult{Violations: []domain.Violation{}}
	for _, fn := range checks {
		fn(c, &res)
	}
	res.Compliant = IsCompliant(res.Violations)
	res.Score = Score(res.Violations)
	res.ValidatedAt = c.Now
	return res
}

// IsCompliant is true when no violation is ERROR or CRITICAL.
func IsCompliant(violations []domain.Violation) bool {
	for _, v := range violations {
		if v.Severity.IsBlocking() {
			return false
		}
	}
	return true
}

// Score is 100 minus the severity weights, floored at zero. Advisory only.
func Score(violations []domain.Violation) int {
	penalty := 0
	for _, v := range violations {
		penalty += v.Severity.Weight()
	}
	if penalty >= 100 {
		return 0
	}
	return 100 - penalty
}

// DeriveStatus maps a result onto the transaction status it implies.
func DeriveStatus(res domain.ValidationResult) domain.TransactionStatus {
	if res.Compliant {
		return domain.StatusValidated
	}
	return domain.StatusException
}
