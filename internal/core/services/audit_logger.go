package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/team_finance_engine/internal/core/ports/repositories"
	"github.com/google/uuid"
)

// auditLogger writes to the audit sink after the primary change has committed.
// A failed write is logged and never undoes the change.
type auditLogger struct {
	BaseService
	repo portsrepo.AuditRepository
}

func newAuditLogger(repo portsrepo.AuditRepository) *auditLogger {
	return &auditLogger{repo: repo}
}

func (a *auditLogger) record(ctx context.Context, entry domain.AuditEntry) {
	if a == nil || a.repo == nil {
		return
	}
	if entry.AuditID == "" {
		entry.AuditID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = a.Now()
	}
	if err := a.repo.SaveAuditEntry(ctx, entry); err != nil {
		a.LogError(ctx, err, "Failed to write audit entry",
			slog.String("action", entry.Action),
			slog.String("entity_type", entry.EntityType),
			slog.String("entity_id", entry.EntityID))
	}
}
