package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/team_finance_engine/internal/apperrors"
	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/team_finance_engine/internal/core/ports/repositories"
	"github.com/SscSPs/team_finance_engine/internal/models"
	"github.com/SscSPs/team_finance_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const budgetColumns = `
	budget_id, team_id, season_label, status, current_version_id, presented_version_id,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxBudgetRepository struct {
	BaseRepository
}

func newPgxBudgetRepository(pool *pgxpool.Pool) portsrepo.BudgetRepositoryFacade {
	return &PgxBudgetRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BudgetRepositoryFacade = (*PgxBudgetRepository)(nil)

func (r *PgxBudgetRepository) findBudget(ctx context.Context, where string, args ...any) (*domain.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets ` + where + `;`
	var m models.Budget
	err := r.Pool.QueryRow(ctx, query, args...).Scan(
		&m.BudgetID,
		&m.TeamID,
		&m.SeasonLabel,
		&m.Status,
		&m.CurrentVersionID,
		&m.PresentedVersionID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find budget", err)
	}
	budget := mapping.ToDomainBudget(m)
	return &budget, nil
}

func (r *PgxBudgetRepository) FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	return r.findBudget(ctx, `WHERE budget_id = $1`, budgetID)
}

func (r *PgxBudgetRepository) FindBudgetByTeamSeason(ctx context.Context, teamID, seasonLabel string) (*domain.Budget, error) {
	return r.findBudget(ctx, `WHERE team_id = $1 AND season_label = $2`, teamID, seasonLabel)
}

// FindLockedBudgetByTeam returns the most recently locked budget when a team has several.
func (r *PgxBudgetRepository) FindLockedBudgetByTeam(ctx context.Context, teamID string) (*domain.Budget, error) {
	return r.findBudget(ctx,
		`WHERE team_id = $1 AND status = $2 ORDER BY last_updated_at DESC LIMIT 1`,
		teamID, string(domain.BudgetLocked),
	)
}

func (r *PgxBudgetRepository) SaveBudget(ctx context.Context, budget domain.Budget) error {
	m := mapping.ToModelBudget(budget)
	query := `INSERT INTO budgets (` + budgetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`
	_, err := r.Pool.Exec(ctx, query,
		m.BudgetID,
		m.TeamID,
		m.SeasonLabel,
		m.Status,
		m.CurrentVersionID,
		m.PresentedVersionID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return fmt.Errorf("%w: team %s already has a budget for %s", apperrors.ErrDuplicate, m.TeamID, m.SeasonLabel)
		}
		return apperrors.NewAppError(500, "failed to save budget "+m.BudgetID, err)
	}
	return nil
}

func (r *PgxBudgetRepository) FindVersionByID(ctx context.Context, versionID string) (*domain.BudgetVersion, error) {
	query := `
		SELECT version_id, budget_id, version_number, total_budget, change_summary,
		       coach_approved_at, coach_approved_by,
		       association_approved_at, association_approved_by, association_notes,
		       created_at, created_by
		FROM budget_versions
		WHERE version_id = $1;
	`
	var m models.BudgetVersion
	err := r.Pool.QueryRow(ctx, query, versionID).Scan(
		&m.VersionID,
		&m.BudgetID,
		&m.VersionNumber,
		&m.TotalBudget,
		&m.ChangeSummary,
		&m.CoachApprovedAt,
		&m.CoachApprovedBy,
		&m.AssociationApprovedAt,
		&m.AssociationApprovedBy,
		&m.AssociationNotes,
		&m.CreatedAt,
		&m.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find budget version "+versionID, err)
	}

	rows, err := r.Pool.Query(ctx,
		`SELECT version_id, category_id, allocated FROM budget_allocations WHERE version_id = $1 ORDER BY category_id;`,
		versionID,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query allocations of version "+versionID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var a models.BudgetAllocation
		if err := rows.Scan(&a.VersionID, &a.CategoryID, &a.Allocated); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan allocation row of version "+versionID, err)
		}
		m.Allocations = append(m.Allocations, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating allocation rows of version "+versionID, err)
	}

	version := mapping.ToDomainBudgetVersion(m)
	return &version, nil
}

func (r *PgxBudgetRepository) LatestVersionNumber(ctx context.Context, budgetID string) (int, error) {
	var latest int
	err := r.Pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(version_number), 0) FROM budget_versions WHERE budget_id = $1;`,
		budgetID,
	).Scan(&latest)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to find latest version number of budget "+budgetID, err)
	}
	return latest, nil
}

// SaveVersion inserts the version and its allocations and points the budget at it.
func (r *PgxBudgetRepository) SaveVersion(ctx context.Context, version domain.BudgetVersion) error {
	m := mapping.ToModelBudgetVersion(version)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	versionQuery := `
		INSERT INTO budget_versions (
			version_id, budget_id, version_number, total_budget, change_summary,
			coach_approved_at, coach_approved_by,
			association_approved_at, association_approved_by, association_notes,
			created_at, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err = tx.Exec(ctx, versionQuery,
		m.VersionID,
		m.BudgetID,
		m.VersionNumber,
		m.TotalBudget,
		m.ChangeSummary,
		m.CoachApprovedAt,
		m.CoachApprovedBy,
		m.AssociationApprovedAt,
		m.AssociationApprovedBy,
		m.AssociationNotes,
		m.CreatedAt,
		m.CreatedBy,
	)
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return fmt.Errorf("%w: version %d of budget %s already exists", apperrors.ErrDuplicate, m.VersionNumber, m.BudgetID)
		}
		return apperrors.NewAppError(500, "failed to insert budget version "+m.VersionID, err)
	}

	batch := &pgx.Batch{}
	for _, a := range m.Allocations {
		batch.Queue(
			`INSERT INTO budget_allocations (version_id, category_id, allocated) VALUES ($1, $2, $3);`,
			a.VersionID, a.CategoryID, a.Allocated,
		)
	}
	batch.Queue(
		`UPDATE budgets SET current_version_id = $2, last_updated_at = $3, last_updated_by = $4 WHERE budget_id = $1;`,
		m.BudgetID, m.VersionID, m.CreatedAt, m.CreatedBy,
	)
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to save allocations of budget version "+m.VersionID, err)
	}

	return r.Commit(ctx, tx)
}

func (r *PgxBudgetRepository) SaveApproval(ctx context.Context, approval domain.BudgetVersionApproval) error {
	m := mapping.ToModelBudgetVersionApproval(approval)
	query := `
		INSERT INTO budget_version_approvals (approval_id, version_id, family_id, approved_by, approved_at)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err := r.Pool.Exec(ctx, query, m.ApprovalID, m.VersionID, m.FamilyID, m.ApprovedBy, m.ApprovedAt)
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return fmt.Errorf("%w: family %s already approved version %s", apperrors.ErrDuplicate, m.FamilyID, m.VersionID)
		}
		return apperrors.NewAppError(500, "failed to save approval of version "+m.VersionID, err)
	}
	return nil
}

func (r *PgxBudgetRepository) CountApprovals(ctx context.Context, versionID string) (int, error) {
	var count int
	err := r.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM budget_version_approvals WHERE version_id = $1;`,
		versionID,
	).Scan(&count)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to count approvals of version "+versionID, err)
	}
	return count, nil
}

func (r *PgxBudgetRepository) FindThresholdConfig(ctx context.Context, budgetID string) (*domain.BudgetThresholdConfig, error) {
	query := `
		SELECT budget_id, mode, count_threshold, percent_threshold, eligible_family_count,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM budget_threshold_configs
		WHERE budget_id = $1;
	`
	var m models.BudgetThresholdConfig
	err := r.Pool.QueryRow(ctx, query, budgetID).Scan(
		&m.BudgetID,
		&m.Mode,
		&m.CountThreshold,
		&m.PercentThreshold,
		&m.EligibleFamilyCount,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find threshold config of budget "+budgetID, err)
	}
	cfg := mapping.ToDomainThresholdConfig(m)
	return &cfg, nil
}

func (r *PgxBudgetRepository) UpsertThresholdConfig(ctx context.Context, cfg domain.BudgetThresholdConfig) error {
	m := mapping.ToModelThresholdConfig(cfg)
	query := `
		INSERT INTO budget_threshold_configs (
			budget_id, mode, count_threshold, percent_threshold, eligible_family_count,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (budget_id) DO UPDATE SET
			mode = EXCLUDED.mode,
			count_threshold = EXCLUDED.count_threshold,
			percent_threshold = EXCLUDED.percent_threshold,
			eligible_family_count = EXCLUDED.eligible_family_count,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := r.Pool.Exec(ctx, query,
		m.BudgetID,
		m.Mode,
		m.CountThreshold,
		m.PercentThreshold,
		m.EligibleFamilyCount,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return apperrors.NewNotFoundError("budget " + m.BudgetID)
		}
		return apperrors.NewAppError(500, "failed to upsert threshold config of budget "+m.BudgetID, err)
	}
	return nil
}
