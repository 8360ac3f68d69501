package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/SscSPs/team_finance_engine/internal/apperrors"
	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/team_finance_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/team_finance_engine/internal/core/ports/services"
	"github.com/SscSPs/team_finance_engine/internal/core/validation"
	"github.com/SscSPs/team_finance_engine/internal/dto"
	"github.com/shopspring/decimal"
)

// TransactionRules are the configured limits applied to every transaction.
type TransactionRules struct {
	MaxAmount               decimal.Decimal
	DuplicateWindowDays     int
	SuggestionMinConfidence float64
	MinJustificationLength  int
}

// TransactionDeps groups the collaborators of the transaction and exception services.
type TransactionDeps struct {
	TransactionRepo portsrepo.TransactionRepositoryFacade
	BudgetRepo      portsrepo.BudgetRepositoryFacade
	EnvelopeRepo    portsrepo.EnvelopeReader
	TeamSeasonRepo  portsrepo.TeamSeasonReader
	AuditRepo       portsrepo.AuditRepository
	Team            portssvc.TeamSvcFacade
	Router          portssvc.TransactionRouterSvc
	Dispatcher      portssvc.AutoTransitionDispatcher
}

// transactionEvaluator loads the validation context of a transaction, runs
// the engine and the router, and applies the outcome to the transaction.
type transactionEvaluator struct {
	BaseService
	deps  TransactionDeps
	rules TransactionRules
}

func (e *transactionEvaluator) evaluate(ctx context.Context, tx *domain.Transaction) (*domain.RouteResult, error) {
	settings, err := e.deps.Team.Settings(ctx, tx.TeamID)
	if err != nil {
		return nil, err
	}

	vctx, err := e.buildContext(ctx, *tx, settings)
	if err != nil {
		return nil, err
	}
	result := validation.ComputeValidation(vctx)

	route, err := e.deps.Router.Route(ctx, *tx, settings.ApprovalThreshold)
	if err != nil {
		e.LogError(ctx, err, "Failed to route transaction", slog.String("transaction_id", tx.TransactionID))
		return nil, err
	}

	applyOutcome(tx, result, route)
	return &route, nil
}

// applyOutcome sets status, severity and reasons from a validation result and
// a routing decision. A non-compliant result always wins over routing.
func applyOutcome(tx *domain.Transaction, result domain.ValidationResult, route domain.RouteResult) {
	tx.Validation = &result
	tx.EnvelopeID = route.EnvelopeID
	reason := route.Reason
	tx.ApprovalReason = &reason
	tx.ExceptionSeverity = nil
	tx.ExceptionReason = nil

	switch {
	case !result.Compliant:
		sev := domain.ExceptionSeverityFor(result, tx.Amount)
		msg := firstBlockingMessage(result)
		tx.Status = domain.StatusException
		tx.ExceptionSeverity = &sev
		tx.ExceptionReason = &msg
	case route.Decision == domain.RoutePending:
		sev := domain.ExceptionLow
		tx.Status = domain.StatusException
		tx.ExceptionSeverity = &sev
		tx.ExceptionReason = &reason
	default:
		tx.Status = domain.StatusValidated
	}
}

func firstBlockingMessage(result domain.ValidationResult) string {
	for _, v := range result.Violations {
		if v.Severity.IsBlocking() {
			return v.Message
		}
	}
	return "Validation failed"
}

func (e *transactionEvaluator) buildContext(ctx context.Context, tx domain.Transaction, settings domain.TeamSettings) (validation.Context, error) {
	vctx := validation.Context{
		Transaction:         tx,
		Settings:            settings,
		DuplicateWindowDays: e.rules.DuplicateWindowDays,
		Now:                 e.Now(),
	}

	ts, err := e.deps.TeamSeasonRepo.FindTeamSeasonByTeamAndLabel(ctx, tx.TeamID, tx.SeasonLabel)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		e.LogError(ctx, err, "Failed to load team season", slog.String("team_id", tx.TeamID))
		return vctx, err
	}
	if ts != nil {
		vctx.Season = &domain.SeasonWindow{Start: ts.SeasonStart, End: ts.SeasonEnd}
		gov, err := e.deps.Team.Governance(ctx, ts.AssociationID)
		if err != nil {
			return vctx, err
		}
		vctx.AssociationRules = gov.Rules
	}

	budget, err := e.deps.BudgetRepo.FindLockedBudgetByTeam(ctx, tx.TeamID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		e.LogError(ctx, err, "Failed to load locked budget", slog.String("team_id", tx.TeamID))
		return vctx, err
	}
	if budget != nil {
		snapshot, err := e.budgetSnapshot(ctx, budget, ts, tx.TransactionID)
		if err != nil {
			return vctx, err
		}
		vctx.Budget = snapshot

		if categoryID := tx.BudgetCategoryID(); categoryID != "" {
			envelopes, err := e.envelopeSnapshots(ctx, budget.BudgetID, categoryID, tx)
			if err != nil {
				return vctx, err
			}
			vctx.Envelopes = envelopes
		}
	}

	window := e.rules.DuplicateWindowDays
	if window <= 0 {
		window = validation.DefaultDuplicateWindowDays
	}
	day := domain.DayOf(tx.TransactionDate)
	candidates, err := e.deps.TransactionRepo.ListTransactionsInWindow(ctx, tx.TeamID, day.AddDate(0, 0, -window), day.AddDate(0, 0, window+1))
	if err != nil {
		e.LogError(ctx, err, "Failed to load duplicate candidates", slog.String("team_id", tx.TeamID))
		return vctx, err
	}
	if candidates == nil {
		candidates = []domain.Transaction{}
	}
	vctx.DuplicateCandidates = candidates

	return vctx, nil
}

// budgetSnapshot reports category spend as it stands without the transaction
// being evaluated, so a revalidation sees the same numbers as the first pass.
func (e *transactionEvaluator) budgetSnapshot(ctx context.Context, budget *domain.Budget, ts *domain.TeamSeason, excludeID string) (*validation.BudgetSnapshot, error) {
	versionID := budget.CurrentVersionID
	if ts != nil && ts.LockedVersionID != nil {
		versionID = ts.LockedVersionID
	}
	if versionID == nil {
		return nil, nil
	}

	version, err := e.deps.BudgetRepo.FindVersionByID(ctx, *versionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	spent, err := e.deps.TransactionRepo.SumCategorySpend(ctx, budget.TeamID, budget.SeasonLabel, excludeID)
	if err != nil {
		e.LogError(ctx, err, "Failed to sum category spend", slog.String("budget_id", budget.BudgetID))
		return nil, err
	}

	allocations := make([]domain.CategorySpend, len(version.Allocations))
	for i, a := range version.Allocations {
		allocations[i] = domain.CategorySpend{
			CategoryID: a.CategoryID,
			Allocated:  a.Allocated,
			Spent:      spent[a.CategoryID],
		}
	}
	return &validation.BudgetSnapshot{BudgetID: budget.BudgetID, VersionID: version.VersionID, Allocations: allocations}, nil
}

func (e *transactionEvaluator) envelopeSnapshots(ctx context.Context, budgetID, categoryID string, tx domain.Transaction) ([]validation.EnvelopeSnapshot, error) {
	envelopes, err := e.deps.EnvelopeRepo.ListActiveEnvelopesForCategory(ctx, budgetID, categoryID)
	if err != nil {
		e.LogError(ctx, err, "Failed to list envelopes", slog.String("budget_id", budgetID))
		return nil, err
	}
	snapshots := make([]validation.EnvelopeSnapshot, 0, len(envelopes))
	for _, env := range envelopes {
		from, to := env.PeriodWindow(tx.TransactionDate)
		spent, _, err := e.deps.TransactionRepo.SumEnvelopeSpend(ctx, env.EnvelopeID, from, to, tx.TransactionID)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, validation.EnvelopeSnapshot{Envelope: env, Spent: spent})
	}
	return snapshots, nil
}

// applySuggestion accepts an advisory category only when the transaction has
// none and the confidence is high enough.
func applySuggestion(tx *domain.Transaction, s *dto.CategorySuggestion, minConfidence float64) {
	if s == nil || s.CategoryID == "" || tx.BudgetCategoryID() != "" {
		return
	}
	if s.Confidence < minConfidence {
		return
	}
	id := s.CategoryID
	tx.CategoryID = &id
}
