package mapping

import (
	"fmt"

	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	"github.com/SscSPs/team_finance_engine/internal/models"
)

// ToModelAuditEntry converts a domain AuditEntry to a model AuditEntry
func ToModelAuditEntry(d domain.AuditEntry) (models.AuditEntry, error) {
	m := models.AuditEntry{
		AuditID:    d.AuditID,
		ActorType:  string(d.Actor.Type),
		Action:     d.Action,
		EntityType: d.EntityType,
		EntityID:   d.EntityID,
		CreatedAt:  d.Timestamp,
	}
	if d.TeamID != "" {
		m.TeamID = &d.TeamID
	}
	if d.Actor.UserID != "" {
		userID := d.Actor.UserID
		m.ActorUserID = &userID
	}
	if d.Actor.Role != "" {
		role := string(d.Actor.Role)
		m.ActorRole = &role
	}

	var err error
	if m.OldValues, err = marshalMap(d.OldValues); err != nil {
		return models.AuditEntry{}, fmt.Errorf("failed to encode old values of audit %s: %w", d.AuditID, err)
	}
	if m.NewValues, err = marshalMap(d.NewValues); err != nil {
		return models.AuditEntry{}, fmt.Errorf("failed to encode new values of audit %s: %w", d.AuditID, err)
	}
	if m.Metadata, err = marshalMap(d.Metadata); err != nil {
		return models.AuditEntry{}, fmt.Errorf("failed to encode metadata of audit %s: %w", d.AuditID, err)
	}
	return m, nil
}
