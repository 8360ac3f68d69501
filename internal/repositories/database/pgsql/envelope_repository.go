package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/SscSPs/team_finance_engine/internal/apperrors"
	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/team_finance_engine/internal/core/ports/repositories"
	"github.com/SscSPs/team_finance_engine/internal/models"
	"github.com/SscSPs/team_finance_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const envelopeColumns = `
	envelope_id, budget_id, category_id, name, cap_amount, period_type,
	vendor_match_type, vendor_match, start_date, end_date, max_single_transaction, is_active,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxEnvelopeRepository struct {
	BaseRepository
}

func newPgxEnvelopeRepository(pool *pgxpool.Pool) portsrepo.EnvelopeRepositoryFacade {
	return &PgxEnvelopeRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.EnvelopeRepositoryFacade = (*PgxEnvelopeRepository)(nil)

func scanEnvelope(row pgx.Row) (models.Envelope, error) {
	var m models.Envelope
	err := row.Scan(
		&m.EnvelopeID,
		&m.BudgetID,
		&m.CategoryID,
		&m.Name,
		&m.CapAmount,
		&m.PeriodType,
		&m.VendorMatchType,
		&m.VendorMatch,
		&m.StartDate,
		&m.EndDate,
		&m.MaxSingleTransaction,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxEnvelopeRepository) FindEnvelopeByID(ctx context.Context, envelopeID string) (*domain.Envelope, error) {
	query := `SELECT ` + envelopeColumns + ` FROM envelopes WHERE envelope_id = $1;`
	m, err := scanEnvelope(r.Pool.QueryRow(ctx, query, envelopeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find envelope by ID "+envelopeID, err)
	}
	env := mapping.ToDomainEnvelope(m)
	return &env, nil
}

func (r *PgxEnvelopeRepository) listEnvelopes(ctx context.Context, where string, args ...any) ([]domain.Envelope, error) {
	// Matching walks envelopes in creation order, so the tie-breaker must be stable.
	query := `SELECT ` + envelopeColumns + ` FROM envelopes ` + where + ` ORDER BY created_at ASC, envelope_id ASC;`
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query envelopes", err)
	}
	defer rows.Close()

	envelopes := []models.Envelope{}
	for rows.Next() {
		m, err := scanEnvelope(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan envelope row", err)
		}
		envelopes = append(envelopes, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating envelope rows", err)
	}
	return mapping.ToDomainEnvelopeSlice(envelopes), nil
}

func (r *PgxEnvelopeRepository) ListEnvelopesByBudget(ctx context.Context, budgetID string, activeOnly bool) ([]domain.Envelope, error) {
	if activeOnly {
		return r.listEnvelopes(ctx, `WHERE budget_id = $1 AND is_active`, budgetID)
	}
	return r.listEnvelopes(ctx, `WHERE budget_id = $1`, budgetID)
}

func (r *PgxEnvelopeRepository) ListActiveEnvelopesForCategory(ctx context.Context, budgetID, categoryID string) ([]domain.Envelope, error) {
	return r.listEnvelopes(ctx, `WHERE budget_id = $1 AND category_id = $2 AND is_active`, budgetID, categoryID)
}

func (r *PgxEnvelopeRepository) SaveEnvelope(ctx context.Context, envelope domain.Envelope) error {
	m := mapping.ToModelEnvelope(envelope)
	query := `INSERT INTO envelopes (` + envelopeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);`
	_, err := r.Pool.Exec(ctx, query,
		m.EnvelopeID,
		m.BudgetID,
		m.CategoryID,
		m.Name,
		m.CapAmount,
		m.PeriodType,
		m.VendorMatchType,
		m.VendorMatch,
		m.StartDate,
		m.EndDate,
		m.MaxSingleTransaction,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return apperrors.NewNotFoundError("budget " + m.BudgetID)
		}
		return apperrors.NewAppError(500, "failed to save envelope "+m.EnvelopeID, err)
	}
	return nil
}

func (r *PgxEnvelopeRepository) DeactivateEnvelope(ctx context.Context, envelopeID, userID string, at time.Time) error {
	query := `
		UPDATE envelopes SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE envelope_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, envelopeID, at, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to deactivate envelope "+envelopeID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
