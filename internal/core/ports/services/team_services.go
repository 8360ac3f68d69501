package services

import (
	"context"

	"github.com/SscSPs/team_finance_engine/internal/core/domain"
)

// TeamReaderSvc defines read operations for team data
type TeamReaderSvc interface {
	// FindTeamByID retrieves a specific team by its ID.
	FindTeamByID(ctx context.Context, teamID string) (*domain.Team, error)

	// Settings returns the team's thresholds, falling back to configured defaults.
	Settings(ctx context.Context, teamID string) (domain.TeamSettings, error)

	// Governance returns the association rules for a team, defaults when the team is independent.
	Governance(ctx context.Context, associationID *string) (domain.AssociationGovernance, error)

	// ContactEmails lists notification addresses of the given roles.
	ContactEmails(ctx context.Context, teamID string, roles ...domain.Role) ([]string, error)
}

// TeamAuthorizerSvc defines operations for team authorization
type TeamAuthorizerSvc interface {
	// AuthorizeTeamAction checks the user is a team member holding one of roles.
	// An empty roles list admits any member.
	AuthorizeTeamAction(ctx context.Context, userID, teamID string, roles ...domain.Role) (*domain.TeamMember, error)

	// ResolveActor builds the actor for a lifecycle action. Association actions
	// resolve the user's association role, everything else the team role.
	ResolveActor(ctx context.Context, userID string, ts domain.TeamSeason, action domain.TeamSeasonAction) (domain.Actor, error)
}

// TeamSvcFacade combines all team-related service interfaces
type TeamSvcFacade interface {
	TeamReaderSvc
	TeamAuthorizerSvc
}
