package validation

import (
	"fmt"
	"strings"

	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	"github.com/SscSPs/team_finance_engine/internal/utils"
	"github.com/shopspring/decimal"
)

// Peer-to-peer payment rails that behave like cash.
var cashLikeVendors = []string{
	"venmo",
	"cash app",
	"cashapp",
	"paypal",
	"zelle",
	"apple pay",
	"google pay",
}

func dec(d decimal.Decimal) *decimal.Decimal { return &d }

func str(s string) *string { return &s }

func isExpense(c Context) bool {
	return c.Transaction.Type == domain.Expense
}

func checkCategory(c Context, res *domain.ValidationResult) {
	res.ChecksRun.Category = true
	if c.Transaction.BudgetCategoryID() != "" {
		return
	}
	res.Violations = append(res.Violations, domain.Violation{
		Code:     domain.CodeUncategorized,
		Severity: domain.SeverityError,
		Message:  "Transaction must be assigned to a category",
	})
}

func checkReceipt(c Context, res *domain.ValidationResult) {
	if !isExpense(c) {
		return
	}
	res.ChecksRun.Receipt = true
	tx := c.Transaction
	hasReceipt := tx.ReceiptURL != nil && strings.TrimSpace(*tx.ReceiptURL) != ""
	if hasReceipt || tx.Amount.LessThan(c.Settings.ReceiptThreshold) {
		return
	}
	res.Violations = append(res.Violations, domain.Violation{
		Code:     domain.CodeMissingReceipt,
		Severity: domain.SeverityError,
		Message:  fmt.Sprintf("Receipt required for expenses %s or more", utils.FormatMoney(c.Settings.ReceiptThreshold)),
		Metadata: domain.ViolationMetadata{
			Amount:    dec(tx.Amount),
			Threshold: dec(c.Settings.ReceiptThreshold),
		},
	})
}

func checkBudget(c Context, res *domain.ValidationResult) {
	if c.Budget == nil || !isExpense(c) {
		return
	}
	res.ChecksRun.Budget = true
	categoryID := c.Transaction.BudgetCategoryID()
	if categoryID == "" {
		return
	}
	var alloc *domain.CategorySpend
	for i := range c.Budget.Allocations {
		if c.Budget.Allocations[i].CategoryID == categoryID {
			alloc = &c.Budget.Allocations[i]
			break
		}
	}
	if alloc == nil {
		res.Violations = append(res.Violations, domain.Violation{
			Code:     domain.CodeCategoryNotAllocated,
			Severity: domain.SeverityError,
			Message:  "Category not allocated in current budget",
			Metadata: domain.ViolationMetadata{CategoryID: str(categoryID)},
		})
		return
	}
	remaining := alloc.Remaining()
	if c.Transaction.Amount.LessThanOrEqual(remaining) {
		return
	}
	res.Violations = append(res.Violations, domain.Violation{
		Code:     domain.CodeCategoryOverLimit,
		Severity: domain.SeverityError,
		Message:  fmt.Sprintf("Transaction amount %s exceeds remaining budget %s", utils.FormatMoney(c.Transaction.Amount), utils.FormatMoney(remaining)),
		Metadata: domain.ViolationMetadata{
			Amount:     dec(c.Transaction.Amount),
			CategoryID: str(categoryID),
			Allocated:  dec(alloc.Allocated),
			Spent:      dec(alloc.Spent),
			Remaining:  dec(remaining),
		},
	})
}

// findEnvelope returns the first active envelope, in the given order, whose
// category, vendor and date constraints accept the transaction.
func findEnvelope(c Context) *EnvelopeSnapshot {
	categoryID := c.Transaction.BudgetCategoryID()
	if categoryID == "" {
		return nil
	}
	for i := range c.Envelopes {
		e := c.Envelopes[i].Envelope
		if !e.IsActive || e.CategoryID != categoryID {
			continue
		}
		if !e.MatchesVendor(c.Transaction.Vendor) || !e.InDateRange(c.Transaction.TransactionDate) {
			continue
		}
		return &c.Envelopes[i]
	}
	return nil
}

func checkEnvelope(c Context, res *domain.ValidationResult) {
	if c.Envelopes == nil || !isExpense(c) {
		return
	}
	res.ChecksRun.Envelope = true
	snap := findEnvelope(c)
	if snap == nil {
		return
	}
	amount := c.Transaction.Amount
	remaining := snap.Remaining()
	if amount.GreaterThan(remaining) {
		res.Violations = append(res.Violations, domain.Violation{
			Code:     domain.CodeEnvelopeCapExceeded,
			Severity: domain.SeverityError,
			Message:  "Transaction exceeds pre-authorized envelope cap",
			Metadata: domain.ViolationMetadata{
				EnvelopeID: str(snap.Envelope.EnvelopeID),
				Cap:        dec(snap.Envelope.CapAmount),
				Spent:      dec(snap.Spent),
				Remaining:  dec(remaining),
			},
		})
	}
	if snap.Envelope.ExceedsSingleLimit(amount) {
		res.Violations = append(res.Violations, domain.Violation{
			Code:     domain.CodeLargeTransaction,
			Severity: domain.SeverityWarning,
			Message:  "Transaction exceeds single transaction limit for envelope",
			Metadata: domain.ViolationMetadata{
				Amount:     dec(amount),
				EnvelopeID: str(snap.Envelope.EnvelopeID),
				Limit:      dec(*snap.Envelope.MaxSingleTransaction),
			},
		})
	}
}

func checkThreshold(c Context, res *domain.ValidationResult) {
	res.ChecksRun.Threshold = true
	limit := c.Settings.LargeTransactionThreshold
	if !isExpense(c) || !limit.IsPositive() || c.Transaction.Amount.LessThan(limit) {
		return
	}
	res.Violations = append(res.Violations, domain.Violation{
		Code:     domain.CodeThresholdBreach,
		Severity: domain.SeverityWarning,
		Message:  fmt.Sprintf("Large transaction exceeds %s threshold", utils.FormatMoney(limit)),
		Metadata: domain.ViolationMetadata{
			Amount:    dec(c.Transaction.Amount),
			Threshold: dec(limit),
		},
	})
}

func checkDates(c Context, res *domain.ValidationResult) {
	res.ChecksRun.Dates = true
	txDate := c.Transaction.TransactionDate
	if txDate.After(c.Now) {
		res.Violations = append(res.Violations, domain.Violation{
			Code:     domain.CodeTransactionTooFuture,
			Severity: domain.SeverityError,
			Message:  "Transaction date cannot be in the future",
			Metadata: domain.ViolationMetadata{TransactionDate: &txDate},
		})
	}
	if c.Season == nil {
		return
	}
	d := domain.DayOf(txDate)
	if d.Before(domain.DayOf(c.Season.Start)) || d.After(domain.DayOf(c.Season.End)) {
		start, end := c.Season.Start, c.Season.End
		res.Violations = append(res.Violations, domain.Violation{
			Code:     domain.CodeOutsideSeasonDates,
			Severity: domain.SeverityWarning,
			Message:  "Transaction date is outside season dates",
			Metadata: domain.ViolationMetadata{
				TransactionDate: &txDate,
				SeasonStart:     &start,
				SeasonEnd:       &end,
			},
		})
	}
}

// IsCashLikeVendor reports whether vendor text names a peer-to-peer payment rail.
func IsCashLikeVendor(vendor string) bool {
	v := strings.ToLower(vendor)
	for _, p := range cashLikeVendors {
		if strings.Contains(v, p) {
			return true
		}
	}
	return false
}

func checkVendor(c Context, res *domain.ValidationResult) {
	res.ChecksRun.Vendor = true
	if !IsCashLikeVendor(c.Transaction.Vendor) {
		return
	}
	res.Violations = append(res.Violations, domain.Violation{
		Code:     domain.CodeCashLikeTransaction,
		Severity: domain.SeverityWarning,
		Message:  "Cash-like payment method detected - ensure proper documentation",
		Metadata: domain.ViolationMetadata{Vendor: str(c.Transaction.Vendor)},
	})
}

// Association rules are carried through but not evaluated yet.
func checkAssociationRules(c Context, res *domain.ValidationResult) {
	if len(c.AssociationRules) > 0 {
		res.ChecksRun.AssociationRules = true
	}
}
