package models

import "time"

// TeamSeason is a row of the team_seasons table.
type TeamSeason struct {
	TeamSeasonID                      string     `json:"teamSeasonID"`
	TeamID                            string     `json:"teamID"`
	AssociationID                     *string    `json:"associationID"`
	SeasonLabel                       string     `json:"seasonLabel"`
	SeasonStart                       time.Time  `json:"seasonStart"`
	SeasonEnd                         time.Time  `json:"seasonEnd"`
	State                             string     `json:"state"`
	StateUpdatedAt                    time.Time  `json:"stateUpdatedAt"`
	PresentedVersionID                *string    `json:"presentedVersionID"`
	LockedVersionID                   *string    `json:"lockedVersionID"`
	ActiveAt                          *time.Time `json:"activeAt"`
	ClosedAt                          *time.Time `json:"closedAt"`
	ArchivedAt                        *time.Time `json:"archivedAt"`
	EligibleFamiliesCount             int        `json:"eligibleFamiliesCount"`
	ApprovalsCountForPresentedVersion int        `json:"approvalsCountForPresentedVersion"`
	LastActivityAt                    *time.Time `json:"lastActivityAt"`
	AuditFields
}

// StateChange is a row of the team_season_state_changes table.
type StateChange struct {
	StateChangeID string    `json:"stateChangeID"`
	TeamSeasonID  string    `json:"teamSeasonID"`
	FromState     string    `json:"fromState"`
	ToState       string    `json:"toState"`
	Action        string    `json:"action"`
	ActorUserID   *string   `json:"actorUserID"`
	ActorType     string    `json:"actorType"`
	Metadata      []byte    `json:"metadata"` // jsonb
	CreatedAt     time.Time `json:"createdAt"`
}
