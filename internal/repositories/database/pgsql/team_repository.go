package pgsql

import (
	"context"
	"errors"

	"github.com/SscSPs/team_finance_engine/internal/apperrors"
	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/team_finance_engine/internal/core/ports/repositories"
	"github.com/SscSPs/team_finance_engine/internal/models"
	"github.com/SscSPs/team_finance_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxTeamRepository reads teams, memberships and association rules.
// Team administration happens outside this service, so it is read-only.
type PgxTeamRepository struct {
	BaseRepository
}

func newPgxTeamRepository(pool *pgxpool.Pool) portsrepo.TeamRepositoryFacade {
	return &PgxTeamRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TeamRepositoryFacade = (*PgxTeamRepository)(nil)

func (r *PgxTeamRepository) FindTeamByID(ctx context.Context, teamID string) (*domain.Team, error) {
	query := `SELECT team_id, name, association_id, is_active FROM teams WHERE team_id = $1;`
	var m models.Team
	err := r.Pool.QueryRow(ctx, query, teamID).Scan(&m.TeamID, &m.Name, &m.AssociationID, &m.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find team by ID "+teamID, err)
	}
	team := mapping.ToDomainTeam(m)
	return &team, nil
}

func (r *PgxTeamRepository) FindTeamSettings(ctx context.Context, teamID string) (*domain.TeamSettings, error) {
	query := `
		SELECT team_id, receipt_threshold, large_transaction_threshold, approval_threshold
		FROM team_settings
		WHERE team_id = $1;
	`
	var m models.TeamSettings
	err := r.Pool.QueryRow(ctx, query, teamID).Scan(
		&m.TeamID,
		&m.ReceiptThreshold,
		&m.LargeTransactionThreshold,
		&m.ApprovalThreshold,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find settings of team "+teamID, err)
	}
	settings := mapping.ToDomainTeamSettings(m)
	return &settings, nil
}

func (r *PgxTeamRepository) CountEligibleFamilies(ctx context.Context, teamID string) (int, error) {
	var count int
	err := r.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM team_members WHERE team_id = $1 AND role = $2;`,
		teamID, string(domain.RoleParent),
	).Scan(&count)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to count eligible families of team "+teamID, err)
	}
	return count, nil
}

func (r *PgxTeamRepository) ListContactEmails(ctx context.Context, teamID string, roles []domain.Role) ([]string, error) {
	roleNames := make([]string, len(roles))
	for i, role := range roles {
		roleNames[i] = string(role)
	}
	rows, err := r.Pool.Query(ctx,
		`SELECT DISTINCT email FROM team_members WHERE team_id = $1 AND role = ANY($2) AND email <> '' ORDER BY email;`,
		teamID, roleNames,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query contact emails of team "+teamID, err)
	}
	defer rows.Close()

	emails := []string{}
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan contact email row", err)
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating contact email rows", err)
	}
	return emails, nil
}

func (r *PgxTeamRepository) FindTeamMember(ctx context.Context, teamID, userID string) (*domain.TeamMember, error) {
	query := `SELECT team_id, user_id, role, email, joined_at FROM team_members WHERE team_id = $1 AND user_id = $2;`
	var m models.TeamMember
	err := r.Pool.QueryRow(ctx, query, teamID, userID).Scan(&m.TeamID, &m.UserID, &m.Role, &m.Email, &m.JoinedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find member "+userID+" of team "+teamID, err)
	}
	member := mapping.ToDomainTeamMember(m)
	return &member, nil
}

func (r *PgxTeamRepository) FindAssociationMember(ctx context.Context, associationID, userID string) (*domain.AssociationMember, error) {
	query := `SELECT association_id, user_id, role FROM association_members WHERE association_id = $1 AND user_id = $2;`
	var m models.AssociationMember
	err := r.Pool.QueryRow(ctx, query, associationID, userID).Scan(&m.AssociationID, &m.UserID, &m.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find member "+userID+" of association "+associationID, err)
	}
	member := mapping.ToDomainAssociationMember(m)
	return &member, nil
}

func (r *PgxTeamRepository) FindGovernance(ctx context.Context, associationID string) (*domain.AssociationGovernance, error) {
	query := `
		SELECT association_id, requires_association_budget_approval,
		       default_threshold_mode, default_percent_threshold, rules
		FROM association_governance
		WHERE association_id = $1;
	`
	var m models.AssociationGovernance
	err := r.Pool.QueryRow(ctx, query, associationID).Scan(
		&m.AssociationID,
		&m.RequiresAssociationBudgetApproval,
		&m.DefaultThresholdMode,
		&m.DefaultPercentThreshold,
		&m.Rules,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find governance of association "+associationID, err)
	}
	governance := mapping.ToDomainGovernance(m)
	return &governance, nil
}
