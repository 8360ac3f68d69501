package services

import (
	"context"

	"github.com/SscSPs/team_finance_engine/internal/core/domain"
)

// TeamSeasonReaderSvc defines read operations for team season data
type TeamSeasonReaderSvc interface {
	GetTeamSeason(ctx context.Context, teamSeasonID, userID string) (*domain.TeamSeason, error)
	ListStateChanges(ctx context.Context, teamSeasonID, userID string) ([]domain.StateChange, error)

	// AvailableActions lists the actions the user may fire now, with the role used.
	AvailableActions(ctx context.Context, teamSeasonID, userID string) (*domain.TeamSeason, domain.Role, []domain.TeamSeasonAction, error)
}

// TeamSeasonTransitionSvc fires lifecycle transitions.
type TeamSeasonTransitionSvc interface {
	// Transition applies action for actor. Guards run in order: existence,
	// source state, permission, required data.
	Transition(ctx context.Context, teamSeasonID string, action domain.TeamSeasonAction, actor domain.Actor, in domain.TransitionInput) (*domain.TransitionResult, error)

	// TransitionAsUser resolves the user's role then calls Transition.
	TransitionAsUser(ctx context.Context, teamSeasonID string, action domain.TeamSeasonAction, userID string, in domain.TransitionInput) (*domain.TransitionResult, error)
}

// TeamSeasonSvcFacade combines all team-season-related service interfaces
type TeamSeasonSvcFacade interface {
	TeamSeasonReaderSvc
	TeamSeasonTransitionSvc
}

// AssociationApprovalSvc is the association sign-off overlay on budgets.
type AssociationApprovalSvc interface {
	ApproveBudget(ctx context.Context, budgetID, versionID, userID string, notes *string) (*domain.TransitionResult, error)
	RequestChanges(ctx context.Context, budgetID, versionID, userID string, notes *string) (*domain.TransitionResult, error)
}

// Notifier sends fire-and-forget notifications. Implementations never block the caller.
type Notifier interface {
	BudgetLocked(ctx context.Context, ts domain.TeamSeason, versionID string)
	AssociationChangesRequested(ctx context.Context, ts domain.TeamSeason, notes string)
	ExceptionRaised(ctx context.Context, tx domain.Transaction)
}

// AnalyticsSink records product analytics events.
type AnalyticsSink interface {
	Track(ctx context.Context, distinctID, event string, properties map[string]any)
}
