package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/team_finance_engine/internal/core/domain"
)

// VersionStamp updates approval stamps on a budget version as part of a transition.
type VersionStamp struct {
	VersionID                string
	CoachApprovedAt          *time.Time
	CoachApprovedBy          *string
	AssociationApprovedAt    *time.Time
	AssociationApprovedBy    *string
	AssociationNotes         *string
	ClearAssociationApproval bool
}

// TransitionRecord is everything one lifecycle transition writes. It is applied
// in a single database transaction guarded on FromState.
type TransitionRecord struct {
	TeamSeasonID string
	FromState    domain.TeamSeasonState
	ToState      domain.TeamSeasonState
	At           time.Time

	// Nil fields leave the stored value untouched.
	PresentedVersionID *string
	LockedVersionID    *string
	ActiveAt           *time.Time
	ClosedAt           *time.Time
	ArchivedAt         *time.Time
	ResetApprovals     bool

	// BudgetID, when set, receives the projected BudgetStatus.
	BudgetID     *string
	BudgetStatus domain.BudgetStatus

	VersionStamp *VersionStamp
	Change       domain.StateChange
}

// TeamSeasonReader defines read operations for team season data
type TeamSeasonReader interface {
	FindTeamSeasonByID(ctx context.Context, teamSeasonID string) (*domain.TeamSeason, error)
	FindTeamSeasonByTeamAndLabel(ctx context.Context, teamID, seasonLabel string) (*domain.TeamSeason, error)

	// ListStateChanges returns the transition history, oldest first.
	ListStateChanges(ctx context.Context, teamSeasonID string) ([]domain.StateChange, error)

	// LatestStateChangeAt returns the time of the newest transition, nil when none.
	LatestStateChangeAt(ctx context.Context, teamSeasonID string) (*time.Time, error)
}

// TeamSeasonWriter defines write operations for team season data
type TeamSeasonWriter interface {
	SaveTeamSeason(ctx context.Context, ts domain.TeamSeason) error

	// ApplyTransition writes a transition atomically. It returns ErrInvalidState
	// when the stored state no longer equals rec.FromState.
	ApplyTransition(ctx context.Context, rec TransitionRecord) error

	// UpdateRollup refreshes the denormalized counters of a team season.
	UpdateRollup(ctx context.Context, teamSeasonID string, eligibleFamilies, approvals int, lastActivityAt *time.Time) error
}

// TeamSeasonRepositoryFacade combines all team-season-related repository interfaces
type TeamSeasonRepositoryFacade interface {
	TeamSeasonReader
	TeamSeasonWriter
}
