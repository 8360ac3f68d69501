package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/team_finance_engine/internal/apperrors"
	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/team_finance_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/team_finance_engine/internal/core/ports/services"
	"github.com/google/uuid"
)

// teamSeasonService runs the team-season lifecycle state machine.
type teamSeasonService struct {
	BaseService
	teamSeasonRepo portsrepo.TeamSeasonRepositoryFacade
	budgetRepo     portsrepo.BudgetRepositoryFacade
	team           portssvc.TeamSvcFacade
	audit          *auditLogger
}

// NewTeamSeasonService creates the lifecycle service.
func NewTeamSeasonService(
	teamSeasonRepo portsrepo.TeamSeasonRepositoryFacade,
	budgetRepo portsrepo.BudgetRepositoryFacade,
	auditRepo portsrepo.AuditRepository,
	team portssvc.TeamSvcFacade,
	opts ...Option,
) portssvc.TeamSeasonSvcFacade {
	svc := &teamSeasonService{
		teamSeasonRepo: teamSeasonRepo,
		budgetRepo:     budgetRepo,
		team:           team,
		audit:          newAuditLogger(auditRepo),
	}
	svc.TeamAuthorizer = team
	svc.apply(opts)
	svc.audit.Clock = svc.Clock
	return svc
}

var _ portssvc.TeamSeasonSvcFacade = (*teamSeasonService)(nil)

var auditActionByTransition = map[domain.TeamSeasonAction]string{
	domain.ActionLockBudget:                domain.AuditBudgetLocked,
	domain.ActionAssociationApproveBudget:  domain.AuditAssociationApproved,
	domain.ActionAssociationRequestChanges: domain.AuditAssociationChanges,
}

func (s *teamSeasonService) findTeamSeason(ctx context.Context, teamSeasonID string) (*domain.TeamSeason, error) {
	ts, err := s.teamSeasonRepo.FindTeamSeasonByID(ctx, teamSeasonID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("team season " + teamSeasonID)
		}
		s.LogError(ctx, err, "Failed to find team season", slog.String("team_season_id", teamSeasonID))
		return nil, err
	}
	return ts, nil
}

func (s *teamSeasonService) GetTeamSeason(ctx context.Context, teamSeasonID, userID string) (*domain.TeamSeason, error) {
	ts, err := s.findTeamSeason(ctx, teamSeasonID)
	if err != nil {
		return nil, err
	}
	if _, err := s.AuthorizeTeam(ctx, userID, ts.TeamID); err != nil {
		return nil, err
	}
	return ts, nil
}

func (s *teamSeasonService) ListStateChanges(ctx context.Context, teamSeasonID, userID string) ([]domain.StateChange, error) {
	ts, err := s.GetTeamSeason(ctx, teamSeasonID, userID)
	if err != nil {
		return nil, err
	}
	changes, err := s.teamSeasonRepo.ListStateChanges(ctx, ts.TeamSeasonID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list state changes", slog.String("team_season_id", teamSeasonID))
		return nil, err
	}
	if changes == nil {
		return []domain.StateChange{}, nil
	}
	return changes, nil
}

func (s *teamSeasonService) AvailableActions(ctx context.Context, teamSeasonID, userID string) (*domain.TeamSeason, domain.Role, []domain.TeamSeasonAction, error) {
	ts, err := s.findTeamSeason(ctx, teamSeasonID)
	if err != nil {
		return nil, "", nil, err
	}

	// team role first, association role for association staff
	actor, err := s.team.ResolveActor(ctx, userID, *ts, domain.ActionStartBudget)
	if errors.Is(err, apperrors.ErrForbidden) && ts.AssociationID != nil {
		actor, err = s.team.ResolveActor(ctx, userID, *ts, domain.ActionAssociationApproveBudget)
	}
	if err != nil {
		return nil, "", nil, err
	}

	actions := domain.AvailableActions(ts.State, actor.Role)
	if actions == nil {
		actions = []domain.TeamSeasonAction{}
	}
	return ts, actor.Role, actions, nil
}

// TransitionAsUser applies a lifecycle action on behalf of a team member.
// Association decisions go through the association approval endpoints instead.
func (s *teamSeasonService) TransitionAsUser(ctx context.Context, teamSeasonID string, action domain.TeamSeasonAction, userID string, in domain.TransitionInput) (*domain.TransitionResult, error) {
	if domain.IsAssociationAction(action) {
		return nil, fmt.Errorf("%w: %s must be submitted through /budgets/{budgetID}/association", apperrors.ErrValidation, action)
	}

	ts, err := s.findTeamSeason(ctx, teamSeasonID)
	if err != nil {
		return nil, err
	}

	actor, err := s.team.ResolveActor(ctx, userID, *ts, action)
	if err != nil {
		if !errors.Is(err, apperrors.ErrForbidden) {
			return nil, err
		}
		// Non-members still get the state guard first; the permission guard rejects them.
		actor = domain.UserActor(userID, "")
	}
	return s.Transition(ctx, teamSeasonID, action, actor, in)
}

// Transition validates and applies a lifecycle action as one unit of work.
func (s *teamSeasonService) Transition(ctx context.Context, teamSeasonID string, action domain.TeamSeasonAction, actor domain.Actor, in domain.TransitionInput) (*domain.TransitionResult, error) {
	logAttrs := []any{
		slog.String("team_season_id", teamSeasonID),
		slog.String("action", string(action)),
		slog.String("actor_type", string(actor.Type)),
	}

	ts, err := s.findTeamSeason(ctx, teamSeasonID)
	if err != nil {
		return nil, err
	}

	gov, err := s.team.Governance(ctx, ts.AssociationID)
	if err != nil {
		return nil, err
	}
	associationRequired := ts.AssociationID != nil && gov.RequiresAssociationBudgetApproval

	to, ok := domain.NextState(ts.State, action, associationRequired)
	if !ok {
		err := fmt.Errorf("%w: cannot %s from state %s", apperrors.ErrInvalidState, action, ts.State)
		s.LogWarn(ctx, err, "Transition rejected", logAttrs...)
		return nil, err
	}

	if reason := domain.CheckPermission(action, actor); reason != "" {
		err := fmt.Errorf("%w: %s", apperrors.ErrForbidden, reason)
		s.LogWarn(ctx, err, "Transition rejected", logAttrs...)
		return nil, err
	}

	now := s.Now()
	rec, err := s.buildRecord(ctx, ts, action, to, actor, in, now)
	if err != nil {
		s.LogWarn(ctx, err, "Transition rejected", logAttrs...)
		return nil, err
	}

	if err := s.teamSeasonRepo.ApplyTransition(ctx, *rec); err != nil {
		if errors.Is(err, apperrors.ErrInvalidState) {
			s.LogWarn(ctx, err, "Transition lost a concurrent update", logAttrs...)
			return nil, err
		}
		s.LogError(ctx, err, "Failed to apply transition", logAttrs...)
		return nil, err
	}

	updated := applyRecord(*ts, *rec)
	s.LogInfo(ctx, "Team season transitioned",
		slog.String("team_season_id", ts.TeamSeasonID),
		slog.String("from_state", string(rec.FromState)),
		slog.String("to_state", string(rec.ToState)),
		slog.String("action", string(action)))

	s.afterTransition(ctx, updated, *rec, actor)

	return &domain.TransitionResult{TeamSeason: updated, StateChange: rec.Change}, nil
}

// buildRecord runs the data guards of action and assembles everything it writes.
func (s *teamSeasonService) buildRecord(ctx context.Context, ts *domain.TeamSeason, action domain.TeamSeasonAction, to domain.TeamSeasonState, actor domain.Actor, in domain.TransitionInput, now time.Time) (*portsrepo.TransitionRecord, error) {
	metadata := make(map[string]any, len(in.Metadata)+2)
	for k, v := range in.Metadata {
		metadata[k] = v
	}

	rec := &portsrepo.TransitionRecord{
		TeamSeasonID: ts.TeamSeasonID,
		FromState:    ts.State,
		ToState:      to,
		At:           now,
		BudgetStatus: domain.BudgetStatusFor(to),
	}

	budget, err := s.budgetRepo.FindBudgetByTeamSeason(ctx, ts.TeamID, ts.SeasonLabel)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to load budget for transition", slog.String("team_season_id", ts.TeamSeasonID))
		return nil, err
	}
	if budget != nil {
		rec.BudgetID = &budget.BudgetID
	}

	switch action {
	case domain.ActionSubmitBudgetForReview:
		if budget == nil || budget.CurrentVersionID == nil {
			return nil, fmt.Errorf("%w: budget has no version to review", apperrors.ErrPreconditionFailed)
		}
		metadata["versionId"] = *budget.CurrentVersionID

	case domain.ActionApproveBudget:
		if budget == nil || budget.CurrentVersionID == nil {
			return nil, fmt.Errorf("%w: budget has no version to approve", apperrors.ErrPreconditionFailed)
		}
		userID := actor.UserID
		rec.VersionStamp = &portsrepo.VersionStamp{
			VersionID:       *budget.CurrentVersionID,
			CoachApprovedAt: &now,
			CoachApprovedBy: &userID,
		}
		metadata["versionId"] = *budget.CurrentVersionID

	case domain.ActionPresentBudget:
		versionID := in.VersionID
		if versionID == nil && budget != nil {
			versionID = budget.CurrentVersionID
		}
		if versionID == nil {
			return nil, fmt.Errorf("%w: a version is required to present the budget", apperrors.ErrPreconditionFailed)
		}
		version, err := s.budgetRepo.FindVersionByID(ctx, *versionID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NewNotFoundError("budget version " + *versionID)
			}
			return nil, err
		}
		if !version.IsCoachApproved() {
			return nil, fmt.Errorf("%w: budget version must be coach-approved before it is presented", apperrors.ErrPreconditionFailed)
		}
		vid := version.VersionID
		rec.PresentedVersionID = &vid
		rec.ResetApprovals = true
		if rec.BudgetID == nil {
			rec.BudgetID = &version.BudgetID
		}
		metadata["versionId"] = vid

	case domain.ActionLockBudget:
		if ts.PresentedVersionID == nil {
			return nil, fmt.Errorf("%w: no presented version to lock", apperrors.ErrPreconditionFailed)
		}
		if in.VersionID != nil && *in.VersionID != *ts.PresentedVersionID {
			return nil, fmt.Errorf("%w: version %s is not the presented version", apperrors.ErrPreconditionFailed, *in.VersionID)
		}
		locked := *ts.PresentedVersionID
		rec.LockedVersionID = &locked

	case domain.ActionStartSeason:
		rec.ActiveAt = &now

	case domain.ActionProposeBudgetUpdate:
		if in.ChangeSummary == nil || strings.TrimSpace(*in.ChangeSummary) == "" {
			return nil, fmt.Errorf("%w: changeSummary is required to propose a budget update", apperrors.ErrValidation)
		}
		metadata["changeSummary"] = strings.TrimSpace(*in.ChangeSummary)

	case domain.ActionInitiateCloseout:
		rec.ClosedAt = &now

	case domain.ActionFinalizeArchive:
		rec.ArchivedAt = &now

	case domain.ActionAssociationApproveBudget:
		version, err := s.associationVersion(ctx, budget, in.VersionID)
		if err != nil {
			return nil, err
		}
		if !version.IsCoachApproved() {
			return nil, fmt.Errorf("%w: Budget version must be coach-approved first", apperrors.ErrPreconditionFailed)
		}
		userID := actor.UserID
		rec.VersionStamp = &portsrepo.VersionStamp{
			VersionID:             version.VersionID,
			AssociationApprovedAt: &now,
			AssociationApprovedBy: &userID,
			AssociationNotes:      in.Notes,
		}
		metadata["versionId"] = version.VersionID

	case domain.ActionAssociationRequestChanges:
		if in.Notes == nil || strings.TrimSpace(*in.Notes) == "" {
			return nil, fmt.Errorf("%w: Notes are required when requesting changes", apperrors.ErrValidation)
		}
		version, err := s.associationVersion(ctx, budget, in.VersionID)
		if err != nil {
			return nil, err
		}
		notes := strings.TrimSpace(*in.Notes)
		rec.VersionStamp = &portsrepo.VersionStamp{
			VersionID:                version.VersionID,
			AssociationNotes:         &notes,
			ClearAssociationApproval: true,
		}
		metadata["versionId"] = version.VersionID
		metadata["notes"] = notes
	}

	if in.Notes != nil && metadata["notes"] == nil && strings.TrimSpace(*in.Notes) != "" {
		metadata["notes"] = strings.TrimSpace(*in.Notes)
	}

	rec.Change = domain.StateChange{
		StateChangeID: uuid.NewString(),
		TeamSeasonID:  ts.TeamSeasonID,
		FromState:     ts.State,
		ToState:       to,
		Action:        action,
		ActorUserID:   actor.UserIDPtr(),
		ActorType:     actor.Type,
		Metadata:      metadata,
		CreatedAt:     now,
	}
	return rec, nil
}

func (s *teamSeasonService) associationVersion(ctx context.Context, budget *domain.Budget, versionID *string) (*domain.BudgetVersion, error) {
	if versionID == nil && budget != nil {
		versionID = budget.CurrentVersionID
	}
	if versionID == nil {
		return nil, fmt.Errorf("%w: Budget version not found", apperrors.ErrNotFound)
	}
	version, err := s.budgetRepo.FindVersionByID(ctx, *versionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: Budget version not found", apperrors.ErrNotFound)
		}
		return nil, err
	}
	return version, nil
}

// applyRecord mirrors a committed record onto the in-memory team season.
func applyRecord(ts domain.TeamSeason, rec portsrepo.TransitionRecord) domain.TeamSeason {
	ts.State = rec.ToState
	ts.StateUpdatedAt = rec.At
	at := rec.At
	ts.LastActivityAt = &at
	ts.LastUpdatedAt = rec.At
	if rec.Change.ActorUserID != nil {
		ts.LastUpdatedBy = *rec.Change.ActorUserID
	}
	if rec.PresentedVersionID != nil {
		ts.PresentedVersionID = rec.PresentedVersionID
	}
	if rec.LockedVersionID != nil {
		ts.LockedVersionID = rec.LockedVersionID
	}
	if rec.ActiveAt != nil {
		ts.ActiveAt = rec.ActiveAt
	}
	if rec.ClosedAt != nil {
		ts.ClosedAt = rec.ClosedAt
	}
	if rec.ArchivedAt != nil {
		ts.ArchivedAt = rec.ArchivedAt
	}
	if rec.ResetApprovals {
		ts.ApprovalsCountForPresentedVersion = 0
	}
	return ts
}

// afterTransition runs the side effects that must never fail a committed transition.
func (s *teamSeasonService) afterTransition(ctx context.Context, ts domain.TeamSeason, rec portsrepo.TransitionRecord, actor domain.Actor) {
	action := rec.Change.Action
	auditAction, ok := auditActionByTransition[action]
	if !ok {
		auditAction = domain.AuditTeamSeasonTransition
	}
	s.audit.record(ctx, domain.AuditEntry{
		TeamID:     ts.TeamID,
		Actor:      actor,
		Action:     auditAction,
		EntityType: "TeamSeason",
		EntityID:   ts.TeamSeasonID,
		OldValues:  map[string]any{"state": string(rec.FromState)},
		NewValues:  map[string]any{"state": string(rec.ToState), "budgetStatus": string(rec.BudgetStatus)},
		Metadata:   rec.Change.Metadata,
		Timestamp:  rec.At,
	})

	props := map[string]any{
		"team_id":        ts.TeamID,
		"team_season_id": ts.TeamSeasonID,
		"season_label":   ts.SeasonLabel,
		"actor_type":     string(actor.Type),
	}
	switch action {
	case domain.ActionLockBudget:
		s.Track(ctx, actor.UserID, "budget_locked", props)
		if s.Notifier != nil && ts.LockedVersionID != nil {
			s.Notifier.BudgetLocked(ctx, ts, *ts.LockedVersionID)
		}
	case domain.ActionStartSeason:
		s.Track(ctx, actor.UserID, "season_activated", props)
	case domain.ActionAssociationRequestChanges:
		if s.Notifier != nil {
			notes, _ := rec.Change.Metadata["notes"].(string)
			s.Notifier.AssociationChangesRequested(ctx, ts, notes)
		}
	}
}
