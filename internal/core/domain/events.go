package domain

// EventKind identifies an external event that may trigger an automatic transition.
type EventKind string

const (
	EventParentApprovalRecorded EventKind = "PARENT_APPROVAL_RECORDED"
	EventTransactionCreated     EventKind = "TRANSACTION_CREATED"
)

// Event is the input of the auto-transition dispatcher.
type Event struct {
	Kind         EventKind
	TeamSeasonID string
	VersionID    string
	TeamID       string
	SeasonLabel  string
}

// ParentApprovalRecorded is raised after a family acknowledges a version.
func ParentApprovalRecorded(teamSeasonID, versionID string) Event {
	return Event{Kind: EventParentApprovalRecorded, TeamSeasonID: teamSeasonID, VersionID: versionID}
}

// TransactionCreated is raised right after a transaction is persisted.
func TransactionCreated(teamID, seasonLabel string) Event {
	return Event{Kind: EventTransactionCreated, TeamID: teamID, SeasonLabel: seasonLabel}
}

// CandidateTransition names the transition an event kind may fire.
func CandidateTransition(kind EventKind) (TeamSeasonAction, bool) {
	switch kind {
	case EventParentApprovalRecorded:
		return ActionLockBudget, true
	case EventTransactionCreated:
		return ActionStartSeason, true
	}
	return "", false
}
