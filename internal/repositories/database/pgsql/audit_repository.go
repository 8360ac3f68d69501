package pgsql

import (
	"context"

	"github.com/SscSPs/team_finance_engine/internal/apperrors"
	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/team_finance_engine/internal/core/ports/repositories"
	"github.com/SscSPs/team_finance_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAuditRepository struct {
	BaseRepository
}

func newPgxAuditRepository(pool *pgxpool.Pool) portsrepo.AuditRepository {
	return &PgxAuditRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AuditRepository = (*PgxAuditRepository)(nil)

// SaveAuditEntry appends an entry. The audit_log table has no update path.
func (r *PgxAuditRepository) SaveAuditEntry(ctx context.Context, entry domain.AuditEntry) error {
	m, err := mapping.ToModelAuditEntry(entry)
	if err != nil {
		return apperrors.NewAppError(500, "failed to map audit entry "+entry.AuditID, err)
	}
	query := `
		INSERT INTO audit_log (
			audit_id, team_id, actor_user_id, actor_type, actor_role, action,
			entity_type, entity_id, old_values, new_values, metadata, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err = r.Pool.Exec(ctx, query,
		m.AuditID,
		m.TeamID,
		m.ActorUserID,
		m.ActorType,
		m.ActorRole,
		m.Action,
		m.EntityType,
		m.EntityID,
		m.OldValues,
		m.NewValues,
		m.Metadata,
		m.CreatedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save audit entry "+m.AuditID, err)
	}
	return nil
}
