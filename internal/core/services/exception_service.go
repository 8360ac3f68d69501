package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/team_finance_engine/internal/apperrors"
	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	portssvc "github.com/SscSPs/team_finance_engine/internal/core/ports/services"
	"github.com/SscSPs/team_finance_engine/internal/dto"
)

const defaultMinJustificationLength = 10

// exceptionService resolves transactions held in EXCEPTION.
type exceptionService struct {
	transactionEvaluator
	audit *auditLogger
}

// NewExceptionService creates the exception resolution service.
func NewExceptionService(deps TransactionDeps, rules TransactionRules, opts ...Option) portssvc.ExceptionSvc {
	if rules.MinJustificationLength <= 0 {
		rules.MinJustificationLength = defaultMinJustificationLength
	}
	svc := &exceptionService{
		transactionEvaluator: transactionEvaluator{deps: deps, rules: rules},
		audit:                newAuditLogger(deps.AuditRepo),
	}
	svc.TeamAuthorizer = deps.Team
	svc.apply(opts)
	svc.audit.Clock = svc.Clock
	return svc
}

var _ portssvc.ExceptionSvc = (*exceptionService)(nil)

func (s *exceptionService) Resolve(ctx context.Context, transactionID string, req dto.ResolveExceptionRequest, userID string) (*domain.ResolutionResult, error) {
	justification := strings.TrimSpace(req.Justification)
	if len(justification) < s.rules.MinJustificationLength {
		return nil, fmt.Errorf("%w: Justification must be at least %d characters", apperrors.ErrValidation, s.rules.MinJustificationLength)
	}
	resolution := domain.ResolutionType(req.Resolution)

	tx, err := s.deps.TransactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("transaction " + transactionID)
		}
		s.LogError(ctx, err, "Failed to load transaction", slog.String("transaction_id", transactionID))
		return nil, err
	}
	if tx.IsDeleted() {
		return nil, apperrors.NewNotFoundError("transaction " + transactionID)
	}
	if domain.NormalizeStatus(tx.Status) != domain.StatusException {
		return nil, fmt.Errorf("%w: Transaction is not in exception status (current: %s)", apperrors.ErrInvalidState, tx.Status)
	}

	role, err := s.resolverRole(ctx, userID, tx.TeamID)
	if err != nil {
		return nil, err
	}

	severity := domain.ExceptionLow
	if tx.ExceptionSeverity != nil {
		severity = *tx.ExceptionSeverity
	}
	perm := domain.CanResolveException(role, severity)
	if !perm.CanResolve {
		err := fmt.Errorf("%w: %s", apperrors.ErrForbidden, perm.Reason)
		s.LogWarn(ctx, err, "Exception resolution denied", slog.String("transaction_id", transactionID))
		return nil, err
	}
	if resolution == domain.ResolutionOverride && !perm.CanOverride {
		reason := perm.Reason
		if reason == "" {
			reason = "You cannot override exceptions"
		}
		err := fmt.Errorf("%w: %s", apperrors.ErrForbidden, reason)
		s.LogWarn(ctx, err, "Exception override denied", slog.String("transaction_id", transactionID))
		return nil, err
	}

	before := map[string]any{
		"status":            string(tx.Status),
		"exceptionSeverity": string(severity),
		"amount":            tx.Amount.StringFixed(2),
	}
	now := s.Now()
	result := &domain.ResolutionResult{ResolvedAt: now}

	switch resolution {
	case domain.ResolutionCorrect:
		if err := s.applyCorrections(tx, req.Corrections); err != nil {
			return nil, err
		}
		tx.Status = domain.StatusResolved
	case domain.ResolutionRevalidate:
		if _, err := s.evaluate(ctx, tx); err != nil {
			return nil, err
		}
		result.StillInException = tx.Status == domain.StatusException
	case domain.ResolutionOverride:
		if tx.Validation != nil {
			result.OverriddenCodes = tx.Validation.Codes()
		}
		tx.Status = domain.StatusResolved
	default:
		return nil, fmt.Errorf("%w: unknown resolution %s", apperrors.ErrValidation, req.Resolution)
	}

	if !result.StillInException {
		by := userID
		tx.ResolvedAt = &now
		tx.ResolvedBy = &by
	}
	tx.LastUpdatedAt = now
	tx.LastUpdatedBy = userID

	if err := s.deps.TransactionRepo.UpdateTransaction(ctx, *tx); err != nil {
		s.LogError(ctx, err, "Failed to store exception resolution", slog.String("transaction_id", transactionID))
		return nil, err
	}

	actor := domain.UserActor(userID, role)
	s.audit.record(ctx, domain.AuditEntry{
		TeamID:     tx.TeamID,
		Actor:      actor,
		Action:     domain.AuditExceptionResolved,
		EntityType: "Transaction",
		EntityID:   tx.TransactionID,
		OldValues:  before,
		NewValues:  map[string]any{"status": string(tx.Status)},
		Metadata: map[string]any{
			"resolution":    string(resolution),
			"justification": justification,
		},
	})
	if resolution == domain.ResolutionOverride {
		s.audit.record(ctx, domain.AuditEntry{
			TeamID:     tx.TeamID,
			Actor:      actor,
			Action:     domain.AuditOverrideApplied,
			EntityType: "Transaction",
			EntityID:   tx.TransactionID,
			Metadata: map[string]any{
				"overriddenCodes": result.OverriddenCodes,
				"severity":        string(severity),
				"justification":   justification,
			},
		})
	}

	s.LogInfo(ctx, "Exception resolved",
		slog.String("transaction_id", transactionID),
		slog.String("resolution", string(resolution)),
		slog.String("status", string(tx.Status)))

	result.Transaction = *tx
	return result, nil
}

// resolverRole returns the caller's team role, or their association role when
// they are not on the team but its association is.
func (s *exceptionService) resolverRole(ctx context.Context, userID, teamID string) (domain.Role, error) {
	member, err := s.deps.Team.AuthorizeTeamAction(ctx, userID, teamID)
	if err == nil {
		return member.Role, nil
	}
	if !errors.Is(err, apperrors.ErrForbidden) {
		return "", err
	}

	team, terr := s.deps.Team.FindTeamByID(ctx, teamID)
	if terr != nil || team.AssociationID == nil {
		s.LogWarn(ctx, err, "Exception resolver is not a team member", slog.String("team_id", teamID))
		return "", err
	}
	actor, aerr := s.deps.Team.ResolveActor(ctx, userID, domain.TeamSeason{TeamID: teamID, AssociationID: team.AssociationID}, domain.ActionAssociationApproveBudget)
	if aerr != nil {
		return "", aerr
	}
	return actor.Role, nil
}

func (s *exceptionService) applyCorrections(tx *domain.Transaction, c *dto.TransactionCorrection) error {
	if c == nil {
		return fmt.Errorf("%w: corrections are required for a CORRECT resolution", apperrors.ErrValidation)
	}
	if c.Amount != nil {
		if err := domain.ValidateAmount(*c.Amount, s.rules.MaxAmount); err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		tx.Amount = *c.Amount
	}
	if c.CategoryID != nil {
		tx.CategoryID = c.CategoryID
	}
	if c.SystemCategoryID != nil {
		tx.SystemCategoryID = c.SystemCategoryID
	}
	if c.Vendor != nil {
		tx.Vendor = strings.TrimSpace(*c.Vendor)
	}
	if c.Description != nil {
		tx.Description = *c.Description
	}
	if c.TransactionDate != nil {
		tx.TransactionDate = c.TransactionDate.UTC()
	}
	if c.ReceiptURL != nil {
		tx.ReceiptURL = c.ReceiptURL
	}
	return nil
}
