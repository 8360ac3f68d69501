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
)

// associationApprovalService is the association sign-off overlay on budgets.
type associationApprovalService struct {
	BaseService
	budgetRepo     portsrepo.BudgetRepositoryFacade
	teamSeasonRepo portsrepo.TeamSeasonReader
	team           portssvc.TeamSvcFacade
	lifecycle      portssvc.TeamSeasonTransitionSvc
}

// NewAssociationApprovalService creates the association overlay.
func NewAssociationApprovalService(
	budgetRepo portsrepo.BudgetRepositoryFacade,
	teamSeasonRepo portsrepo.TeamSeasonReader,
	team portssvc.TeamSvcFacade,
	lifecycle portssvc.TeamSeasonTransitionSvc,
	opts ...Option,
) portssvc.AssociationApprovalSvc {
	svc := &associationApprovalService{
		budgetRepo:     budgetRepo,
		teamSeasonRepo: teamSeasonRepo,
		team:           team,
		lifecycle:      lifecycle,
	}
	svc.apply(opts)
	return svc
}

var _ portssvc.AssociationApprovalSvc = (*associationApprovalService)(nil)

type associationReview struct {
	budget     *domain.Budget
	version    *domain.BudgetVersion
	teamSeason *domain.TeamSeason
	actor      domain.Actor
}

// prepare runs the shared guards in order: budget, version, association link,
// governance, caller role, budget status.
func (s *associationApprovalService) prepare(ctx context.Context, budgetID, versionID, userID string, action domain.TeamSeasonAction) (*associationReview, error) {
	budget, err := s.budgetRepo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: Budget not found", apperrors.ErrNotFound)
		}
		s.LogError(ctx, err, "Failed to load budget", slog.String("budget_id", budgetID))
		return nil, err
	}

	version, err := s.budgetRepo.FindVersionByID(ctx, versionID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to load budget version", slog.String("version_id", versionID))
		return nil, err
	}
	if version == nil || version.BudgetID != budget.BudgetID {
		return nil, fmt.Errorf("%w: Budget version not found", apperrors.ErrNotFound)
	}

	team, err := s.team.FindTeamByID(ctx, budget.TeamID)
	if err != nil {
		return nil, err
	}
	if team.AssociationID == nil || *team.AssociationID == "" {
		return nil, fmt.Errorf("%w: Team is not linked to an association", apperrors.ErrPreconditionFailed)
	}

	gov, err := s.team.Governance(ctx, team.AssociationID)
	if err != nil {
		return nil, err
	}
	if !gov.RequiresAssociationBudgetApproval {
		return nil, fmt.Errorf("%w: Association approval is not required for this association", apperrors.ErrNotRequired)
	}

	ts, err := s.teamSeasonRepo.FindTeamSeasonByTeamAndLabel(ctx, budget.TeamID, budget.SeasonLabel)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("team season for budget " + budgetID)
		}
		return nil, err
	}
	if ts.AssociationID == nil {
		ts.AssociationID = team.AssociationID
	}

	actor, err := s.team.ResolveActor(ctx, userID, *ts, action)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsAssociationFinanceRole() {
		return nil, fmt.Errorf("%w: only association finance roles may review budgets", apperrors.ErrForbidden)
	}

	if budget.Status != domain.BudgetAssociationReview {
		return nil, fmt.Errorf("%w: Budget must be in ASSOCIATION_REVIEW status (current: %s)", apperrors.ErrInvalidState, budget.Status)
	}

	return &associationReview{budget: budget, version: version, teamSeason: ts, actor: actor}, nil
}

func (s *associationApprovalService) ApproveBudget(ctx context.Context, budgetID, versionID, userID string, notes *string) (*domain.TransitionResult, error) {
	review, err := s.prepare(ctx, budgetID, versionID, userID, domain.ActionAssociationApproveBudget)
	if err != nil {
		s.LogWarn(ctx, err, "Association approval rejected", slog.String("budget_id", budgetID))
		return nil, err
	}
	if !review.version.IsCoachApproved() {
		err := fmt.Errorf("%w: Budget version must be coach-approved first", apperrors.ErrPreconditionFailed)
		s.LogWarn(ctx, err, "Association approval rejected", slog.String("budget_id", budgetID))
		return nil, err
	}

	vid := review.version.VersionID
	return s.lifecycle.Transition(ctx, review.teamSeason.TeamSeasonID, domain.ActionAssociationApproveBudget, review.actor, domain.TransitionInput{
		VersionID: &vid,
		Notes:     notes,
		Metadata:  map[string]any{"budgetId": review.budget.BudgetID},
	})
}

func (s *associationApprovalService) RequestChanges(ctx context.Context, budgetID, versionID, userID string, notes *string) (*domain.TransitionResult, error) {
	if notes == nil || strings.TrimSpace(*notes) == "" {
		return nil, fmt.Errorf("%w: Notes are required when requesting changes", apperrors.ErrValidation)
	}

	review, err := s.prepare(ctx, budgetID, versionID, userID, domain.ActionAssociationRequestChanges)
	if err != nil {
		s.LogWarn(ctx, err, "Association change request rejected", slog.String("budget_id", budgetID))
		return nil, err
	}

	vid := review.version.VersionID
	return s.lifecycle.Transition(ctx, review.teamSeason.TeamSeasonID, domain.ActionAssociationRequestChanges, review.actor, domain.TransitionInput{
		VersionID: &vid,
		Notes:     notes,
		Metadata:  map[string]any{"budgetId": review.budget.BudgetID},
	})
}
