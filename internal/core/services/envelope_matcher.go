package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/team_finance_engine/internal/apperrors"
	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/team_finance_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/team_finance_engine/internal/core/ports/services"
	"github.com/SscSPs/team_finance_engine/internal/utils"
	"github.com/shopspring/decimal"
)

// envelopeMatcher implements first-fit envelope matching for expenses.
type envelopeMatcher struct {
	BaseService
	budgetRepo   portsrepo.BudgetReader
	envelopeRepo portsrepo.EnvelopeReader
	spendRepo    portsrepo.SpendReader
}

// NewEnvelopeMatcher creates the envelope matcher.
func NewEnvelopeMatcher(budgetRepo portsrepo.BudgetReader, envelopeRepo portsrepo.EnvelopeReader, spendRepo portsrepo.SpendReader, opts ...Option) portssvc.EnvelopeMatcherSvc {
	m := &envelopeMatcher{budgetRepo: budgetRepo, envelopeRepo: envelopeRepo, spendRepo: spendRepo}
	m.apply(opts)
	return m
}

var _ portssvc.EnvelopeMatcherSvc = (*envelopeMatcher)(nil)

// Match walks the active envelopes of the transaction's category, oldest first.
// Vendor and date mismatches move on to the next envelope; a single-transaction
// breach or a cap overrun ends the walk.
func (m *envelopeMatcher) Match(ctx context.Context, tx domain.Transaction) (domain.MatchResult, error) {
	if tx.Type != domain.Expense {
		return domain.MatchResult{Outcome: domain.MatchNotExpense, Reason: "Only expenses are matched against envelopes"}, nil
	}

	budget, err := m.budgetRepo.FindLockedBudgetByTeam(ctx, tx.TeamID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return domain.MatchResult{
			Outcome: domain.MatchNoLockedBudget,
			Reason:  "No locked budget found - requires manual approval",
		}, nil
	}
	if err != nil {
		m.LogError(ctx, err, "Failed to load locked budget", slog.String("team_id", tx.TeamID))
		return domain.MatchResult{}, err
	}

	categoryID := tx.BudgetCategoryID()
	var envelopes []domain.Envelope
	if categoryID != "" {
		envelopes, err = m.envelopeRepo.ListActiveEnvelopesForCategory(ctx, budget.BudgetID, categoryID)
		if err != nil {
			m.LogError(ctx, err, "Failed to list envelopes",
				slog.String("budget_id", budget.BudgetID),
				slog.String("category_id", categoryID))
			return domain.MatchResult{}, err
		}
	}
	if len(envelopes) == 0 {
		return domain.MatchResult{
			Outcome: domain.MatchNoEnvelope,
			Reason:  "No pre-authorized envelope for this category",
		}, nil
	}

	for _, env := range envelopes {
		if !env.MatchesVendor(tx.Vendor) || !env.InDateRange(tx.TransactionDate) {
			continue
		}

		envelopeID := env.EnvelopeID
		if env.ExceedsSingleLimit(tx.Amount) {
			return domain.MatchResult{
				Outcome:    domain.MatchSingleTransactionLimit,
				EnvelopeID: &envelopeID,
				Reason: fmt.Sprintf("Transaction amount %s exceeds envelope single transaction limit of %s",
					utils.FormatMoney(tx.Amount), utils.FormatMoney(*env.MaxSingleTransaction)),
			}, nil
		}

		from, to := env.PeriodWindow(tx.TransactionDate)
		spent, _, err := m.spendRepo.SumEnvelopeSpend(ctx, env.EnvelopeID, from, to, tx.TransactionID)
		if err != nil {
			m.LogError(ctx, err, "Failed to sum envelope spend", slog.String("envelope_id", env.EnvelopeID))
			return domain.MatchResult{}, err
		}
		remaining := env.CapAmount.Sub(spent)

		if tx.Amount.LessThanOrEqual(remaining) {
			newSpent := spent.Add(tx.Amount)
			newRemaining := remaining.Sub(tx.Amount)
			m.LogDebug(ctx, "Transaction matched envelope",
				slog.String("envelope_id", env.EnvelopeID),
				slog.String("remaining", newRemaining.StringFixed(2)))
			return domain.MatchResult{
				Outcome:    domain.MatchMatched,
				EnvelopeID: &envelopeID,
				Spent:      &newSpent,
				Remaining:  &newRemaining,
				Reason: fmt.Sprintf("Auto-approved within pre-authorized envelope. Spent: %s, Remaining: %s %s",
					utils.FormatMoney(newSpent), utils.FormatMoney(newRemaining), env.PeriodLabel()),
			}, nil
		}

		return domain.MatchResult{
			Outcome:    domain.MatchCapExceeded,
			EnvelopeID: &envelopeID,
			Spent:      &spent,
			Remaining:  &remaining,
			Reason: fmt.Sprintf("Transaction would exceed envelope cap. Amount: %s, Remaining: %s %s",
				utils.FormatMoney(tx.Amount), utils.FormatMoney(remaining), env.PeriodLabel()),
		}, nil
	}

	return domain.MatchResult{
		Outcome: domain.MatchNoMatchingEnvelope,
		Reason:  "Transaction doesn't match any active envelope constraints (vendor or date)",
	}, nil
}

// transactionRouter implements the TransactionRouterSvc interface
type transactionRouter struct {
	BaseService
	matcher portssvc.EnvelopeMatcherSvc
}

// NewTransactionRouter creates a router on top of an envelope matcher.
func NewTransactionRouter(matcher portssvc.EnvelopeMatcherSvc, opts ...Option) portssvc.TransactionRouterSvc {
	r := &transactionRouter{matcher: matcher}
	r.apply(opts)
	return r
}

var _ portssvc.TransactionRouterSvc = (*transactionRouter)(nil)

func (r *transactionRouter) Route(ctx context.Context, tx domain.Transaction, approvalThreshold decimal.Decimal) (domain.RouteResult, error) {
	if tx.Type == domain.Income {
		return domain.RouteResult{
			Decision: domain.RouteApprovedAutomatic,
			Reason:   "Income is recorded without approval",
		}, nil
	}

	match, err := r.matcher.Match(ctx, tx)
	if err != nil {
		return domain.RouteResult{}, err
	}

	if match.AutoApproved() {
		return domain.RouteResult{
			Decision:   domain.RouteApprovedAutomatic,
			Reason:     match.Reason,
			EnvelopeID: match.EnvelopeID,
			Match:      &match,
		}, nil
	}

	if tx.Amount.GreaterThanOrEqual(approvalThreshold) {
		reason := match.Reason
		if reason == "" {
			reason = fmt.Sprintf("Transaction amount %s meets or exceeds approval threshold of %s",
				utils.FormatMoney(tx.Amount), utils.FormatMoney(approvalThreshold))
		}
		return domain.RouteResult{Decision: domain.RoutePending, Reason: reason, Match: &match}, nil
	}

	return domain.RouteResult{
		Decision: domain.RouteApprovedAutomatic,
		Reason: fmt.Sprintf("Auto-approved - amount %s is below approval threshold of %s",
			utils.FormatMoney(tx.Amount), utils.FormatMoney(approvalThreshold)),
		Match: &match,
	}, nil
}
