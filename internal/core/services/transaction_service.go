package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/team_finance_engine/internal/apperrors"
	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/team_finance_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/team_finance_engine/internal/core/ports/services"
	"github.com/SscSPs/team_finance_engine/internal/dto"
	"github.com/google/uuid"
)

const (
	defaultTransactionPageSize = 20
	maxTransactionPageSize     = 100
	feedUserID                 = "system"
)

// transactionService implements the TransactionSvcFacade interface
type transactionService struct {
	transactionEvaluator
	audit *auditLogger
}

// NewTransactionService creates the transaction service.
func NewTransactionService(deps TransactionDeps, rules TransactionRules, opts ...Option) portssvc.TransactionSvcFacade {
	svc := &transactionService{
		transactionEvaluator: transactionEvaluator{deps: deps, rules: rules},
		audit:                newAuditLogger(deps.AuditRepo),
	}
	svc.TeamAuthorizer = deps.Team
	svc.apply(opts)
	svc.audit.Clock = svc.Clock
	return svc
}

// Ensure transactionService implements the TransactionSvcFacade interface
var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

func (s *transactionService) CreateTransaction(ctx context.Context, teamID string, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, *domain.RouteResult, error) {
	if _, err := s.AuthorizeTeam(ctx, userID, teamID, domain.RoleTreasurer, domain.RoleAssistantTreasurer); err != nil {
		return nil, nil, err
	}

	if err := domain.ValidateAmount(req.Amount, s.rules.MaxAmount); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	now := s.Now()
	tx := domain.Transaction{
		TransactionID:    uuid.NewString(),
		TeamID:           teamID,
		SeasonLabel:      req.SeasonLabel,
		Type:             domain.TransactionType(req.Type),
		Status:           domain.StatusImported,
		Amount:           req.Amount,
		CategoryID:       req.CategoryID,
		SystemCategoryID: req.SystemCategoryID,
		Vendor:           strings.TrimSpace(req.Vendor),
		Description:      req.Description,
		TransactionDate:  req.TransactionDate.UTC(),
		ReceiptURL:       req.ReceiptURL,
		ExternalID:       req.ExternalID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	applySuggestion(&tx, req.Suggestion, s.rules.SuggestionMinConfidence)

	route, err := s.evaluate(ctx, &tx)
	if err != nil {
		return nil, nil, err
	}

	if err := s.deps.TransactionRepo.SaveTransaction(ctx, tx); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save transaction", slog.String("team_id", teamID))
		}
		return nil, nil, err
	}

	s.afterCreate(ctx, tx, route, domain.UserActor(userID, ""))
	return &tx, route, nil
}

func (s *transactionService) ImportTransactions(ctx context.Context, teamID string, req dto.ImportTransactionsRequest) (*dto.ImportTransactionsResponse, error) {
	resp := &dto.ImportTransactionsResponse{Transactions: []dto.TransactionResponse{}}

	for _, item := range req.Transactions {
		tx, route, err := s.importOne(ctx, teamID, req.SeasonLabel, item)
		if err != nil {
			if errors.Is(err, apperrors.ErrDuplicate) || errors.Is(err, apperrors.ErrValidation) {
				resp.Skipped++
				s.LogDebug(ctx, "Feed transaction skipped",
					slog.String("team_id", teamID),
					slog.String("reason", err.Error()))
				continue
			}
			return nil, err
		}
		out := dto.ToTransactionResponse(tx)
		if route != nil {
			out.Route = &dto.RouteResponse{Decision: string(route.Decision), Reason: route.Reason, EnvelopeID: route.EnvelopeID}
		}
		resp.Transactions = append(resp.Transactions, out)
		resp.Imported++
	}

	s.LogInfo(ctx, "Feed import finished",
		slog.String("team_id", teamID),
		slog.Int("imported", resp.Imported),
		slog.Int("skipped", resp.Skipped))
	return resp, nil
}

// importOne stores one feed candidate. A known external id is skipped unless
// the stored copy is still pending and the feed now reports it settled.
func (s *transactionService) importOne(ctx context.Context, teamID, seasonLabel string, item dto.FeedTransaction) (*domain.Transaction, *domain.RouteResult, error) {
	if err := domain.ValidateAmount(item.Amount, s.rules.MaxAmount); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	now := s.Now()
	if item.ExternalID != nil && *item.ExternalID != "" {
		existing, err := s.deps.TransactionRepo.FindTransactionByExternalID(ctx, teamID, *item.ExternalID)
		switch {
		case err == nil:
			if !existing.Pending || item.Pending {
				return nil, nil, fmt.Errorf("%w: external id %s already imported", apperrors.ErrDuplicate, *item.ExternalID)
			}
			return s.settle(ctx, existing, item)
		case !errors.Is(err, apperrors.ErrNotFound):
			s.LogError(ctx, err, "Failed to look up external id", slog.String("team_id", teamID))
			return nil, nil, err
		}
	}

	txType := domain.Expense
	if item.Type != "" {
		txType = domain.TransactionType(item.Type)
	}
	tx := domain.Transaction{
		TransactionID:   uuid.NewString(),
		TeamID:          teamID,
		SeasonLabel:     seasonLabel,
		Type:            txType,
		Status:          domain.StatusImported,
		Amount:          item.Amount,
		Vendor:          strings.TrimSpace(item.Vendor),
		Description:     item.Description,
		TransactionDate: item.TransactionDate.UTC(),
		ExternalID:      item.ExternalID,
		Pending:         item.Pending,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     feedUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: feedUserID,
		},
	}
	applySuggestion(&tx, item.Suggestion, s.rules.SuggestionMinConfidence)

	var route *domain.RouteResult
	if !tx.Pending {
		r, err := s.evaluate(ctx, &tx)
		if err != nil {
			return nil, nil, err
		}
		route = r
	}

	if err := s.deps.TransactionRepo.SaveTransaction(ctx, tx); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save feed transaction", slog.String("team_id", teamID))
		}
		return nil, nil, err
	}

	if route != nil {
		s.afterCreate(ctx, tx, route, domain.SystemActor())
	}
	return &tx, route, nil
}

// settle validates a previously pending feed transaction that has now posted.
func (s *transactionService) settle(ctx context.Context, existing *domain.Transaction, item dto.FeedTransaction) (*domain.Transaction, *domain.RouteResult, error) {
	tx := *existing
	tx.Pending = false
	tx.Amount = item.Amount
	tx.TransactionDate = item.TransactionDate.UTC()
	tx.LastUpdatedAt = s.Now()
	tx.LastUpdatedBy = feedUserID

	route, err := s.evaluate(ctx, &tx)
	if err != nil {
		return nil, nil, err
	}
	if err := s.deps.TransactionRepo.UpdateTransaction(ctx, tx); err != nil {
		s.LogError(ctx, err, "Failed to settle pending transaction", slog.String("transaction_id", tx.TransactionID))
		return nil, nil, err
	}
	s.afterCreate(ctx, tx, route, domain.SystemActor())
	return &tx, route, nil
}

// afterCreate runs the non-fatal follow-ups of a stored transaction.
func (s *transactionService) afterCreate(ctx context.Context, tx domain.Transaction, route *domain.RouteResult, actor domain.Actor) {
	s.audit.record(ctx, domain.AuditEntry{
		TeamID:     tx.TeamID,
		Actor:      actor,
		Action:     domain.AuditTransactionCreated,
		EntityType: "Transaction",
		EntityID:   tx.TransactionID,
		NewValues: map[string]any{
			"status": string(tx.Status),
			"amount": tx.Amount.StringFixed(2),
			"type":   string(tx.Type),
		},
		Metadata: map[string]any{"decision": string(route.Decision), "reason": route.Reason},
	})

	s.Track(ctx, actor.UserID, "transaction_routed", map[string]any{
		"team_id":       tx.TeamID,
		"decision":      string(route.Decision),
		"status":        string(tx.Status),
		"envelope_used": tx.EnvelopeID != nil,
	})

	if s.Notifier != nil && tx.ExceptionSeverity != nil && tx.ExceptionSeverity.IsHigh() {
		s.Notifier.ExceptionRaised(ctx, tx)
	}

	if s.deps.Dispatcher != nil {
		if err := s.deps.Dispatcher.Dispatch(ctx, domain.TransactionCreated(tx.TeamID, tx.SeasonLabel)); err != nil {
			s.LogError(ctx, err, "Auto activation failed after transaction",
				slog.String("transaction_id", tx.TransactionID))
		}
	}
}

func (s *transactionService) findTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	tx, err := s.deps.TransactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("transaction " + transactionID)
		}
		s.LogError(ctx, err, "Failed to find transaction", slog.String("transaction_id", transactionID))
		return nil, err
	}
	if tx.IsDeleted() {
		return nil, apperrors.NewNotFoundError("transaction " + transactionID)
	}
	return tx, nil
}

func (s *transactionService) GetTransaction(ctx context.Context, transactionID, userID string) (*domain.Transaction, error) {
	tx, err := s.findTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.AuthorizeTeam(ctx, userID, tx.TeamID); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *transactionService) ListTransactions(ctx context.Context, teamID, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	if _, err := s.AuthorizeTeam(ctx, userID, teamID); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultTransactionPageSize
	}
	if limit > maxTransactionPageSize {
		limit = maxTransactionPageSize
	}

	var filter portsrepo.TransactionFilter
	if params.Status != "" {
		status := domain.NormalizeStatus(domain.TransactionStatus(params.Status))
		if !status.IsCanonical() {
			return nil, fmt.Errorf("%w: unknown status %s", apperrors.ErrValidation, params.Status)
		}
		filter.Status = &status
	}
	if params.SeasonLabel != "" {
		label := params.SeasonLabel
		filter.SeasonLabel = &label
	}

	txns, nextToken, err := s.deps.TransactionRepo.ListTransactionsByTeam(ctx, teamID, filter, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions", slog.String("team_id", teamID))
		return nil, err
	}

	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(txns),
		NextToken:    nextToken,
	}, nil
}

func (s *transactionService) RevalidateTransaction(ctx context.Context, transactionID, userID string) (*domain.Transaction, error) {
	tx, err := s.findTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.AuthorizeTeam(ctx, userID, tx.TeamID, domain.RoleTreasurer, domain.RoleAssistantTreasurer); err != nil {
		return nil, err
	}
	if tx.Pending {
		return nil, fmt.Errorf("%w: pending transactions are validated once they post", apperrors.ErrPreconditionFailed)
	}

	from := domain.NormalizeStatus(tx.Status)
	switch from {
	case domain.StatusImported, domain.StatusValidated, domain.StatusException:
	default:
		return nil, fmt.Errorf("%w: cannot revalidate a %s transaction", apperrors.ErrInvalidState, from)
	}

	if _, err := s.evaluate(ctx, tx); err != nil {
		return nil, err
	}
	if tx.Status != from && !domain.CanTransitionStatus(from, tx.Status) {
		return nil, fmt.Errorf("%w: cannot move from %s to %s", apperrors.ErrInvalidState, from, tx.Status)
	}
	tx.LastUpdatedAt = s.Now()
	tx.LastUpdatedBy = userID

	if err := s.deps.TransactionRepo.UpdateTransaction(ctx, *tx); err != nil {
		s.LogError(ctx, err, "Failed to update revalidated transaction", slog.String("transaction_id", transactionID))
		return nil, err
	}
	s.LogInfo(ctx, "Transaction revalidated",
		slog.String("transaction_id", transactionID),
		slog.String("status", string(tx.Status)))
	return tx, nil
}
