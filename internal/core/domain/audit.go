package domain

import "time"

// Audit actions written to the audit sink.
const (
	AuditTransactionCreated   = "TRANSACTION_CREATED"
	AuditTeamSeasonTransition = "TEAM_SEASON_TRANSITION"
	AuditBudgetLocked         = "BUDGET_LOCKED"
	AuditAssociationApproved  = "ASSOCIATION_BUDGET_APPROVED"
	AuditAssociationChanges   = "ASSOCIATION_CHANGES_REQUESTED"
	AuditExceptionResolved    = "EXCEPTION_RESOLVED"
	AuditOverrideApplied      = "OVERRIDE_APPLIED"
	AuditParentApproval       = "PARENT_APPROVAL_RECORDED"
)

// AuditEntry is one append-only record for the audit sink.
type AuditEntry struct {
	AuditID    string         `json:"auditID"`
	TeamID     string         `json:"teamID,omitempty"`
	Actor      Actor          `json:"actor"`
	Action     string         `json:"action"`
	EntityType string         `json:"entityType"`
	EntityID   string         `json:"entityID"`
	OldValues  map[string]any `json:"oldValues,omitempty"`
	NewValues  map[string]any `json:"newValues,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}
