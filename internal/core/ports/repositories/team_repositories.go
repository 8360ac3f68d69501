package repositories

import (
	"context"

	"github.com/SscSPs/team_finance_engine/internal/core/domain"
)

// TeamReader defines read operations for team data
type TeamReader interface {
	// FindTeamByID retrieves a specific team by its ID.
	FindTeamByID(ctx context.Context, teamID string) (*domain.Team, error)

	// FindTeamSettings returns the team's thresholds. ErrNotFound means defaults apply.
	FindTeamSettings(ctx context.Context, teamID string) (*domain.TeamSettings, error)

	// CountEligibleFamilies counts parent members who may acknowledge a budget.
	CountEligibleFamilies(ctx context.Context, teamID string) (int, error)

	// ListContactEmails returns notification addresses of members holding any of roles.
	ListContactEmails(ctx context.Context, teamID string, roles []domain.Role) ([]string, error)
}

// TeamMembershipReader defines lookups of a user's roles
type TeamMembershipReader interface {
	// FindTeamMember retrieves the role of a user in a team.
	FindTeamMember(ctx context.Context, teamID, userID string) (*domain.TeamMember, error)

	// FindAssociationMember retrieves the role of a user in an association.
	FindAssociationMember(ctx context.Context, associationID, userID string) (*domain.AssociationMember, error)
}

// GovernanceReader reads association-level rules.
type GovernanceReader interface {
	// FindGovernance returns the association's rules. ErrNotFound means defaults apply.
	FindGovernance(ctx context.Context, associationID string) (*domain.AssociationGovernance, error)
}

// TeamRepositoryFacade combines all team-related repository interfaces
type TeamRepositoryFacade interface {
	TeamReader
	TeamMembershipReader
	GovernanceReader
}
