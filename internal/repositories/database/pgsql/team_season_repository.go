package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/team_finance_engine/internal/apperrors"
	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/team_finance_engine/internal/core/ports/repositories"
	"github.com/SscSPs/team_finance_engine/internal/models"
	"github.com/SscSPs/team_finance_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const teamSeasonColumns = `
	team_season_id, team_id, association_id, season_label, season_start, season_end,
	state, state_updated_at, presented_version_id, locked_version_id,
	active_at, closed_at, archived_at, eligible_families_count,
	approvals_count_for_presented_version, last_activity_at,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxTeamSeasonRepository struct {
	BaseRepository
}

func newPgxTeamSeasonRepository(pool *pgxpool.Pool) portsrepo.TeamSeasonRepositoryFacade {
	return &PgxTeamSeasonRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TeamSeasonRepositoryFacade = (*PgxTeamSeasonRepository)(nil)

func scanTeamSeason(row pgx.Row) (models.TeamSeason, error) {
	var m models.TeamSeason
	err := row.Scan(
		&m.TeamSeasonID,
		&m.TeamID,
		&m.AssociationID,
		&m.SeasonLabel,
		&m.SeasonStart,
		&m.SeasonEnd,
		&m.State,
		&m.StateUpdatedAt,
		&m.PresentedVersionID,
		&m.LockedVersionID,
		&m.ActiveAt,
		&m.ClosedAt,
		&m.ArchivedAt,
		&m.EligibleFamiliesCount,
		&m.ApprovalsCountForPresentedVersion,
		&m.LastActivityAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxTeamSeasonRepository) findOne(ctx context.Context, where string, args ...any) (*domain.TeamSeason, error) {
	query := `SELECT ` + teamSeasonColumns + ` FROM team_seasons ` + where + `;`
	m, err := scanTeamSeason(r.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find team season", err)
	}
	ts := mapping.ToDomainTeamSeason(m)
	return &ts, nil
}

func (r *PgxTeamSeasonRepository) FindTeamSeasonByID(ctx context.Context, teamSeasonID string) (*domain.TeamSeason, error) {
	return r.findOne(ctx, `WHERE team_season_id = $1`, teamSeasonID)
}

func (r *PgxTeamSeasonRepository) FindTeamSeasonByTeamAndLabel(ctx context.Context, teamID, seasonLabel string) (*domain.TeamSeason, error) {
	return r.findOne(ctx, `WHERE team_id = $1 AND season_label = $2`, teamID, seasonLabel)
}

func (r *PgxTeamSeasonRepository) SaveTeamSeason(ctx context.Context, ts domain.TeamSeason) error {
	m := mapping.ToModelTeamSeason(ts)
	query := `INSERT INTO team_seasons (` + teamSeasonColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);`
	_, err := r.Pool.Exec(ctx, query,
		m.TeamSeasonID,
		m.TeamID,
		m.AssociationID,
		m.SeasonLabel,
		m.SeasonStart,
		m.SeasonEnd,
		m.State,
		m.StateUpdatedAt,
		m.PresentedVersionID,
		m.LockedVersionID,
		m.ActiveAt,
		m.ClosedAt,
		m.ArchivedAt,
		m.EligibleFamiliesCount,
		m.ApprovalsCountForPresentedVersion,
		m.LastActivityAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return fmt.Errorf("%w: team season %s already exists for team %s", apperrors.ErrDuplicate, m.SeasonLabel, m.TeamID)
		}
		return apperrors.NewAppError(500, "failed to save team season "+m.TeamSeasonID, err)
	}
	return nil
}

// ApplyTransition writes the state move, budget projection, version stamp and
// history row in one transaction. The state update is guarded on FromState so a
// concurrent transition makes this one fail instead of overwriting it.
func (r *PgxTeamSeasonRepository) ApplyTransition(ctx context.Context, rec portsrepo.TransitionRecord) error {
	change, err := mapping.ToModelStateChange(rec.Change)
	if err != nil {
		return err
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	updateQuery := `
		UPDATE team_seasons SET
			state = $3,
			state_updated_at = $4,
			last_activity_at = $4,
			last_updated_at = $4,
			last_updated_by = COALESCE($5, last_updated_by),
			presented_version_id = COALESCE($6, presented_version_id),
			locked_version_id = COALESCE($7, locked_version_id),
			active_at = COALESCE($8, active_at),
			closed_at = COALESCE($9, closed_at),
			archived_at = COALESCE($10, archived_at),
			approvals_count_for_presented_version = CASE WHEN $11::boolean THEN 0 ELSE approvals_count_for_presented_version END
		WHERE team_season_id = $1 AND state = $2;
	`
	tag, err := tx.Exec(ctx, updateQuery,
		rec.TeamSeasonID,
		string(rec.FromState),
		string(rec.ToState),
		rec.At,
		change.ActorUserID,
		rec.PresentedVersionID,
		rec.LockedVersionID,
		rec.ActiveAt,
		rec.ClosedAt,
		rec.ArchivedAt,
		rec.ResetApprovals,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update team season "+rec.TeamSeasonID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: team season %s is no longer in %s", apperrors.ErrInvalidState, rec.TeamSeasonID, rec.FromState)
	}

	batch := &pgx.Batch{}
	if rec.BudgetID != nil {
		batch.Queue(`
			UPDATE budgets SET
				status = $2,
				presented_version_id = COALESCE($3, presented_version_id),
				last_updated_at = $4,
				last_updated_by = COALESCE($5, last_updated_by)
			WHERE budget_id = $1;`,
			*rec.BudgetID,
			string(rec.BudgetStatus),
			rec.PresentedVersionID,
			rec.At,
			change.ActorUserID,
		)
	}
	if stamp := rec.VersionStamp; stamp != nil {
		batch.Queue(`
			UPDATE budget_versions SET
				coach_approved_at = COALESCE($2, coach_approved_at),
				coach_approved_by = COALESCE($3, coach_approved_by),
				association_approved_at = CASE WHEN $7::boolean THEN NULL ELSE COALESCE($4, association_approved_at) END,
				association_approved_by = CASE WHEN $7::boolean THEN NULL ELSE COALESCE($5, association_approved_by) END,
				association_notes = COALESCE($6, association_notes)
			WHERE version_id = $1;`,
			stamp.VersionID,
			stamp.CoachApprovedAt,
			stamp.CoachApprovedBy,
			stamp.AssociationApprovedAt,
			stamp.AssociationApprovedBy,
			stamp.AssociationNotes,
			stamp.ClearAssociationApproval,
		)
	}
	batch.Queue(`
		INSERT INTO team_season_state_changes (
			state_change_id, team_season_id, from_state, to_state, action,
			actor_user_id, actor_type, metadata, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`,
		change.StateChangeID,
		change.TeamSeasonID,
		change.FromState,
		change.ToState,
		change.Action,
		change.ActorUserID,
		change.ActorType,
		change.Metadata,
		change.CreatedAt,
	)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to record transition of team season "+rec.TeamSeasonID, err)
	}
	return r.Commit(ctx, tx)
}

func (r *PgxTeamSeasonRepository) UpdateRollup(ctx context.Context, teamSeasonID string, eligibleFamilies, approvals int, lastActivityAt *time.Time) error {
	query := `
		UPDATE team_seasons SET
			eligible_families_count = $2,
			approvals_count_for_presented_version = $3,
			last_activity_at = COALESCE($4, last_activity_at)
		WHERE team_season_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, teamSeasonID, eligibleFamilies, approvals, lastActivityAt)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update rollup of team season "+teamSeasonID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxTeamSeasonRepository) ListStateChanges(ctx context.Context, teamSeasonID string) ([]domain.StateChange, error) {
	query := `
		SELECT state_change_id, team_season_id, from_state, to_state, action,
		       actor_user_id, actor_type, metadata, created_at
		FROM team_season_state_changes
		WHERE team_season_id = $1
		ORDER BY created_at ASC;
	`
	rows, err := r.Pool.Query(ctx, query, teamSeasonID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query state changes of team season "+teamSeasonID, err)
	}
	defer rows.Close()

	changes := []domain.StateChange{}
	for rows.Next() {
		var m models.StateChange
		if err := rows.Scan(
			&m.StateChangeID,
			&m.TeamSeasonID,
			&m.FromState,
			&m.ToState,
			&m.Action,
			&m.ActorUserID,
			&m.ActorType,
			&m.Metadata,
			&m.CreatedAt,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan state change row", err)
		}
		change, err := mapping.ToDomainStateChange(m)
		if err != nil {
			return nil, err
		}
		changes = append(changes, change)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating state change rows", err)
	}
	return changes, nil
}

func (r *PgxTeamSeasonRepository) LatestStateChangeAt(ctx context.Context, teamSeasonID string) (*time.Time, error) {
	var latest *time.Time
	err := r.Pool.QueryRow(ctx,
		`SELECT MAX(created_at) FROM team_season_state_changes WHERE team_season_id = $1;`,
		teamSeasonID,
	).Scan(&latest)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to find latest state change of team season "+teamSeasonID, err)
	}
	return latest, nil
}
