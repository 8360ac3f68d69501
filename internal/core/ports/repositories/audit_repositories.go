package repositories

import (
	"context"

	"github.com/SscSPs/team_finance_engine/internal/core/domain"
)

// AuditRepository is the append-only audit sink.
type AuditRepository interface {
	SaveAuditEntry(ctx context.Context, entry domain.AuditEntry) error
}
