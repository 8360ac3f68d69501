package dto

import (
	"time"

	"github.com/SscSPs/team_finance_engine/internal/core/domain"
)

// --- Team season DTOs ---

// TransitionRequest fires a named lifecycle action.
type TransitionRequest struct {
	Action        string         `json:"action" binding:"required"`
	VersionID     *string        `json:"versionID,omitempty"`
	ChangeSummary *string        `json:"changeSummary,omitempty"`
	Notes         *string        `json:"notes,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// TeamSeasonResponse defines data returned for a team season.
type TeamSeasonResponse struct {
	TeamSeasonID                      string     `json:"teamSeasonID"`
	TeamID                            string     `json:"teamID"`
	AssociationID                     *string    `json:"associationID,omitempty"`
	SeasonLabel                       string     `json:"seasonLabel"`
	SeasonStart                       time.Time  `json:"seasonStart"`
	SeasonEnd                         time.Time  `json:"seasonEnd"`
	State                             string     `json:"state"`
	BudgetStatus                      string     `json:"budgetStatus"`
	StateUpdatedAt                    time.Time  `json:"stateUpdatedAt"`
	PresentedVersionID                *string    `json:"presentedVersionID,omitempty"`
	LockedVersionID                   *string    `json:"lockedVersionID,omitempty"`
	ActiveAt                          *time.Time `json:"activeAt,omitempty"`
	ClosedAt                          *time.Time `json:"closedAt,omitempty"`
	ArchivedAt                        *time.Time `json:"archivedAt,omitempty"`
	EligibleFamiliesCount             int        `json:"eligibleFamiliesCount"`
	ApprovalsCountForPresentedVersion int        `json:"approvalsCountForPresentedVersion"`
	LastActivityAt                    *time.Time `json:"lastActivityAt,omitempty"`
	TransactionsAllowed               bool       `json:"transactionsAllowed"`
}

// ToTeamSeasonResponse converts domain.TeamSeason to DTO.
func ToTeamSeasonResponse(ts *domain.TeamSeason) TeamSeasonResponse {
	return TeamSeasonResponse{
		TeamSeasonID:                      ts.TeamSeasonID,
		TeamID:                            ts.TeamID,
		AssociationID:                     ts.AssociationID,
		SeasonLabel:                       ts.SeasonLabel,
		SeasonStart:                       ts.SeasonStart,
		SeasonEnd:                         ts.SeasonEnd,
		State:                             string(ts.State),
		BudgetStatus:                      string(domain.BudgetStatusFor(ts.State)),
		StateUpdatedAt:                    ts.StateUpdatedAt,
		PresentedVersionID:                ts.PresentedVersionID,
		LockedVersionID:                   ts.LockedVersionID,
		ActiveAt:                          ts.ActiveAt,
		ClosedAt:                          ts.ClosedAt,
		ArchivedAt:                        ts.ArchivedAt,
		EligibleFamiliesCount:             ts.EligibleFamiliesCount,
		ApprovalsCountForPresentedVersion: ts.ApprovalsCountForPresentedVersion,
		LastActivityAt:                    ts.LastActivityAt,
		TransactionsAllowed:               domain.AreTransactionsAllowed(ts.State),
	}
}

// TransitionResponse reports an applied transition.
type TransitionResponse struct {
	FromState  string             `json:"fromState"`
	ToState    string             `json:"toState"`
	Action     string             `json:"action"`
	TeamSeason TeamSeasonResponse `json:"teamSeason"`
}

// StateChangeResponse is one row of the lifecycle history.
type StateChangeResponse struct {
	StateChangeID string         `json:"stateChangeID"`
	FromState     string         `json:"fromState"`
	ToState       string         `json:"toState"`
	Action        string         `json:"action"`
	ActorUserID   *string        `json:"actorUserID,omitempty"`
	ActorType     string         `json:"actorType"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// ToStateChangeResponses converts lifecycle history to DTOs.
func ToStateChangeResponses(changes []domain.StateChange) []StateChangeResponse {
	out := make([]StateChangeResponse, len(changes))
	for i, c := range changes {
		out[i] = StateChangeResponse{
			StateChangeID: c.StateChangeID,
			FromState:     string(c.FromState),
			ToState:       string(c.ToState),
			Action:        string(c.Action),
			ActorUserID:   c.ActorUserID,
			ActorType:     string(c.ActorType),
			Metadata:      c.Metadata,
			CreatedAt:     c.CreatedAt,
		}
	}
	return out
}

// AvailableActionsResponse lists what the caller may do next.
type AvailableActionsResponse struct {
	State   string   `json:"state"`
	Role    string   `json:"role"`
	Actions []string `json:"actions"`
}
