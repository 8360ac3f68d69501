package models

import "time"

// AuditEntry is a row of the audit_log table.
type AuditEntry struct {
	AuditID     string    `json:"auditID"`
	TeamID      *string   `json:"teamID"`
	ActorUserID *string   `json:"actorUserID"`
	ActorType   string    `json:"actorType"`
	ActorRole   *string   `json:"actorRole"`
	Action      string    `json:"action"`
	EntityType  string    `json:"entityType"`
	EntityID    string    `json:"entityID"`
	OldValues   []byte    `json:"oldValues"` // jsonb
	NewValues   []byte    `json:"newValues"` // jsonb
	Metadata    []byte    `json:"metadata"`  // jsonb
	CreatedAt   time.Time `json:"createdAt"`
}
