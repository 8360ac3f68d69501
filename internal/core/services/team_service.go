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

// teamService implements the TeamSvcFacade interface
type teamService struct {
	BaseService
	teamRepo portsrepo.TeamRepositoryFacade
	defaults domain.TeamSettings
}

// NewTeamService creates a team service. defaults apply to teams without stored settings.
func NewTeamService(teamRepo portsrepo.TeamRepositoryFacade, defaults domain.TeamSettings, opts ...Option) portssvc.TeamSvcFacade {
	svc := &teamService{teamRepo: teamRepo, defaults: defaults}
	svc.apply(opts)
	return svc
}

// Ensure teamService implements the TeamSvcFacade interface
var _ portssvc.TeamSvcFacade = (*teamService)(nil)

func (s *teamService) FindTeamByID(ctx context.Context, teamID string) (*domain.Team, error) {
	team, err := s.teamRepo.FindTeamByID(ctx, teamID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find team by ID", slog.String("team_id", teamID))
		}
		return nil, err
	}
	return team, nil
}

func (s *teamService) Settings(ctx context.Context, teamID string) (domain.TeamSettings, error) {
	settings, err := s.teamRepo.FindTeamSettings(ctx, teamID)
	if errors.Is(err, apperrors.ErrNotFound) {
		d := s.defaults
		d.TeamID = teamID
		return d, nil
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to load team settings", slog.String("team_id", teamID))
		return domain.TeamSettings{}, err
	}
	return *settings, nil
}

func (s *teamService) Governance(ctx context.Context, associationID *string) (domain.AssociationGovernance, error) {
	if associationID == nil || *associationID == "" {
		return domain.DefaultGovernance(""), nil
	}
	gov, err := s.teamRepo.FindGovernance(ctx, *associationID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return domain.DefaultGovernance(*associationID), nil
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to load association governance", slog.String("association_id", *associationID))
		return domain.AssociationGovernance{}, err
	}
	return *gov, nil
}

func (s *teamService) ContactEmails(ctx context.Context, teamID string, roles ...domain.Role) ([]string, error) {
	emails, err := s.teamRepo.ListContactEmails(ctx, teamID, roles)
	if err != nil {
		s.LogError(ctx, err, "Failed to list team contacts", slog.String("team_id", teamID))
		return nil, err
	}
	return emails, nil
}

// AuthorizeTeamAction checks if a user has one of the required roles in a team.
func (s *teamService) AuthorizeTeamAction(ctx context.Context, userID, teamID string, roles ...domain.Role) (*domain.TeamMember, error) {
	member, err := s.teamRepo.FindTeamMember(ctx, teamID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogDebug(ctx, "Authorization failed: user not in team",
				slog.String("user_id", userID),
				slog.String("team_id", teamID))
			return nil, fmt.Errorf("%w: user is not a member of this team", apperrors.ErrForbidden)
		}
		s.LogError(ctx, err, "Failed to check team membership",
			slog.String("user_id", userID),
			slog.String("team_id", teamID))
		return nil, err
	}

	if len(roles) == 0 {
		return member, nil
	}
	for _, r := range roles {
		if member.Role == r {
			return member, nil
		}
	}

	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	s.LogDebug(ctx, "Authorization failed: insufficient role",
		slog.String("user_id", userID),
		slog.String("team_id", teamID),
		slog.String("user_role", string(member.Role)))
	return nil, fmt.Errorf("%w: requires one of roles %s", apperrors.ErrForbidden, strings.Join(names, ", "))
}

func (s *teamService) ResolveActor(ctx context.Context, userID string, ts domain.TeamSeason, action domain.TeamSeasonAction) (domain.Actor, error) {
	if action == domain.ActionAssociationApproveBudget || action == domain.ActionAssociationRequestChanges {
		if ts.AssociationID == nil {
			return domain.Actor{}, fmt.Errorf("%w: team is not linked to an association", apperrors.ErrPreconditionFailed)
		}
		member, err := s.teamRepo.FindAssociationMember(ctx, *ts.AssociationID, userID)
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.Actor{}, fmt.Errorf("%w: user is not a member of this association", apperrors.ErrForbidden)
		}
		if err != nil {
			s.LogError(ctx, err, "Failed to check association membership",
				slog.String("user_id", userID),
				slog.String("association_id", *ts.AssociationID))
			return domain.Actor{}, err
		}
		return domain.UserActor(userID, member.Role), nil
	}

	member, err := s.AuthorizeTeamAction(ctx, userID, ts.TeamID)
	if err != nil {
		return domain.Actor{}, err
	}
	return domain.UserActor(userID, member.Role), nil
}
