package domain

import (
	"fmt"
	"time"
)

// TeamSeasonState is the canonical lifecycle state of a team's season.
// Budget status is derived from it, see BudgetStatusFor.
type TeamSeasonState string

const (
	StateSetup             TeamSeasonState = "SETUP"
	StateBudgetDraft       TeamSeasonState = "BUDGET_DRAFT"
	StateBudgetReview      TeamSeasonState = "BUDGET_REVIEW"
	StateTeamApproved      TeamSeasonState = "TEAM_APPROVED"
	StateAssociationReview TeamSeasonState = "ASSOCIATION_REVIEW"
	StatePresented         TeamSeasonState = "PRESENTED"
	StateLocked            TeamSeasonState = "LOCKED"
	StateActive            TeamSeasonState = "ACTIVE"
	StateCloseout          TeamSeasonState = "CLOSEOUT"
	StateArchived          TeamSeasonState = "ARCHIVED"
)

// TeamSeasonAction names a lifecycle transition.
type TeamSeasonAction string

const (
	ActionStartBudget               TeamSeasonAction = "START_BUDGET"
	ActionSubmitBudgetForReview     TeamSeasonAction = "SUBMIT_BUDGET_FOR_REVIEW"
	ActionApproveBudget             TeamSeasonAction = "APPROVE_BUDGET"
	ActionRequestBudgetChanges      TeamSeasonAction = "REQUEST_BUDGET_CHANGES"
	ActionAssociationApproveBudget  TeamSeasonAction = "ASSOCIATION_APPROVE_BUDGET"
	ActionAssociationRequestChanges TeamSeasonAction = "ASSOCIATION_REQUEST_CHANGES"
	ActionPresentBudget             TeamSeasonAction = "PRESENT_BUDGET"
	ActionLockBudget                TeamSeasonAction = "LOCK_BUDGET"
	ActionStartSeason               TeamSeasonAction = "START_SEASON"
	ActionProposeBudgetUpdate       TeamSeasonAction = "PROPOSE_BUDGET_UPDATE"
	ActionInitiateCloseout          TeamSeasonAction = "INITIATE_CLOSEOUT"
	ActionFinalizeArchive           TeamSeasonAction = "FINALIZE_ARCHIVE"
)

var allowedTransitions = map[TeamSeasonState]map[TeamSeasonAction]TeamSeasonState{
	StateSetup: {
		ActionStartBudget: StateBudgetDraft,
	},
	StateBudgetDraft: {
		ActionSubmitBudgetForReview: StateBudgetReview,
	},
	StateBudgetReview: {
		ActionApproveBudget:        StateTeamApproved,
		ActionRequestBudgetChanges: StateBudgetDraft,
	},
	StateAssociationReview: {
		ActionAssociationApproveBudget:  StateTeamApproved,
		ActionAssociationRequestChanges: StateBudgetDraft,
	},
	StateTeamApproved: {
		ActionPresentBudget: StatePresented,
	},
	StatePresented: {
		ActionLockBudget:          StateLocked,
		ActionProposeBudgetUpdate: StateBudgetReview,
	},
	StateLocked: {
		ActionStartSeason:         StateActive,
		ActionProposeBudgetUpdate: StateBudgetReview,
	},
	StateActive: {
		ActionProposeBudgetUpdate: StateBudgetReview,
		ActionInitiateCloseout:    StateCloseout,
	},
	StateCloseout: {
		ActionFinalizeArchive: StateArchived,
	},
	StateArchived: {},
}

// NextState returns the target of action from state. When the association
// requires sign-off, team approval lands in ASSOCIATION_REVIEW instead.
func NextState(from TeamSeasonState, action TeamSeasonAction, associationRequired bool) (TeamSeasonState, bool) {
	to, ok := allowedTransitions[from][action]
	if !ok {
		return from, false
	}
	if action == ActionApproveBudget && associationRequired {
		return StateAssociationReview, true
	}
	return to, true
}

// Role is a team or association role held by a user.
type Role string

const (
	RoleTreasurer              Role = "TREASURER"
	RoleAssistantTreasurer     Role = "ASSISTANT_TREASURER"
	RolePresident              Role = "PRESIDENT"
	RoleBoardMember            Role = "BOARD_MEMBER"
	RoleParent                 Role = "PARENT"
	RoleAssociationAdmin       Role = "ASSOCIATION_ADMIN"
	RoleAssociationBoardMember Role = "ASSOCIATION_BOARD_MEMBER"
)

// IsAssociationFinanceRole reports whether the role may act for an association on budgets.
func (r Role) IsAssociationFinanceRole() bool {
	return r == RoleAssociationAdmin || r == RoleAssociationBoardMember
}

var (
	treasurers     = []Role{RoleTreasurer, RoleAssistantTreasurer}
	leadership     = []Role{RolePresident, RoleBoardMember}
	teamOfficers   = []Role{RoleTreasurer, RoleAssistantTreasurer, RolePresident, RoleBoardMember}
	associationFin = []Role{RoleAssociationAdmin, RoleAssociationBoardMember}
)

var actionPermissions = map[TeamSeasonAction][]Role{
	ActionStartBudget:               treasurers,
	ActionSubmitBudgetForReview:     treasurers,
	ActionProposeBudgetUpdate:       treasurers,
	ActionInitiateCloseout:          treasurers,
	ActionApproveBudget:             leadership,
	ActionRequestBudgetChanges:      leadership,
	ActionPresentBudget:             leadership,
	ActionAssociationApproveBudget:  associationFin,
	ActionAssociationRequestChanges: associationFin,
	ActionLockBudget:                nil, // system only
	ActionStartSeason:               teamOfficers,
	ActionFinalizeArchive:           teamOfficers,
}

// IsAssociationAction reports whether action belongs to the association overlay,
// which has its own entry points and guards.
func IsAssociationAction(action TeamSeasonAction) bool {
	return action == ActionAssociationApproveBudget || action == ActionAssociationRequestChanges
}

var systemActions = map[TeamSeasonAction]bool{
	ActionLockBudget:  true,
	ActionStartSeason: true,
}

// ActorType distinguishes human and automatic transitions.
type ActorType string

const (
	ActorUser   ActorType = "USER"
	ActorSystem ActorType = "SYSTEM"
)

// Actor is whoever fires a transition.
type Actor struct {
	UserID string    `json:"userID,omitempty"`
	Type   ActorType `json:"type"`
	Role   Role      `json:"role,omitempty"`
}

// SystemActor is the actor used by automatic transitions.
func SystemActor() Actor {
	return Actor{Type: ActorSystem}
}

// UserActor builds a user actor with a resolved role.
func UserActor(userID string, role Role) Actor {
	return Actor{UserID: userID, Type: ActorUser, Role: role}
}

// UserIDPtr returns nil for system actors.
func (a Actor) UserIDPtr() *string {
	if a.Type == ActorSystem || a.UserID == "" {
		return nil
	}
	id := a.UserID
	return &id
}

// CheckPermission returns an empty string when actor may fire action,
// otherwise the reason it may not.
func CheckPermission(action TeamSeasonAction, actor Actor) string {
	if actor.Type == ActorSystem {
		if systemActions[action] {
			return ""
		}
		return fmt.Sprintf("action %s requires a user actor", action)
	}
	roles, known := actionPermissions[action]
	if !known {
		return fmt.Sprintf("unknown action: %s", action)
	}
	if roles == nil {
		return fmt.Sprintf("action %s can only be performed by the system", action)
	}
	for _, r := range roles {
		if r == actor.Role {
			return ""
		}
	}
	return fmt.Sprintf("role %s is not permitted to perform %s", actor.Role, action)
}

// AvailableActions lists the actions role may fire from state, in a stable order.
func AvailableActions(state TeamSeasonState, role Role) []TeamSeasonAction {
	ordered := []TeamSeasonAction{
		ActionStartBudget, ActionSubmitBudgetForReview, ActionApproveBudget, ActionRequestBudgetChanges,
		ActionAssociationApproveBudget, ActionAssociationRequestChanges, ActionPresentBudget,
		ActionLockBudget, ActionStartSeason, ActionProposeBudgetUpdate, ActionInitiateCloseout, ActionFinalizeArchive,
	}
	actor := UserActor("", role)
	var out []TeamSeasonAction
	for _, a := range ordered {
		if _, ok := allowedTransitions[state][a]; !ok {
			continue
		}
		if CheckPermission(a, actor) == "" {
			out = append(out, a)
		}
	}
	return out
}

// BudgetStatusFor projects a team-season state onto the budget status.
func BudgetStatusFor(state TeamSeasonState) BudgetStatus {
	switch state {
	case StateBudgetReview:
		return BudgetReview
	case StateTeamApproved:
		return BudgetTeamApproved
	case StateAssociationReview:
		return BudgetAssociationReview
	case StatePresented:
		return BudgetPresented
	case StateLocked, StateActive, StateCloseout, StateArchived:
		return BudgetLocked
	}
	return BudgetDraft
}

// AreTransactionsAllowed reports whether spending is recorded in this state.
func AreTransactionsAllowed(state TeamSeasonState) bool {
	switch state {
	case StateLocked, StateActive, StateCloseout:
		return true
	}
	return false
}

// IsModifiable is false only for archived seasons.
func IsModifiable(state TeamSeasonState) bool {
	return state != StateArchived
}

// TeamSeason tracks one team's lifecycle for one season label.
type TeamSeason struct {
	TeamSeasonID                      string          `json:"teamSeasonID"`
	TeamID                            string          `json:"teamID"`
	AssociationID                     *string         `json:"associationID,omitempty"`
	SeasonLabel                       string          `json:"seasonLabel"`
	SeasonStart                       time.Time       `json:"seasonStart"`
	SeasonEnd                         time.Time       `json:"seasonEnd"`
	State                             TeamSeasonState `json:"state"`
	StateUpdatedAt                    time.Time       `json:"stateUpdatedAt"`
	PresentedVersionID                *string         `json:"presentedVersionID,omitempty"`
	LockedVersionID                   *string         `json:"lockedVersionID,omitempty"`
	ActiveAt                          *time.Time      `json:"activeAt,omitempty"`
	ClosedAt                          *time.Time      `json:"closedAt,omitempty"`
	ArchivedAt                        *time.Time      `json:"archivedAt,omitempty"`
	EligibleFamiliesCount             int             `json:"eligibleFamiliesCount"`
	ApprovalsCountForPresentedVersion int             `json:"approvalsCountForPresentedVersion"`
	LastActivityAt                    *time.Time      `json:"lastActivityAt,omitempty"`
	AuditFields
}

// InSeason reports whether t falls within the season window at day precision.
func (s TeamSeason) InSeason(t time.Time) bool {
	d := DayOf(t)
	return !d.Before(DayOf(s.SeasonStart)) && !d.After(DayOf(s.SeasonEnd))
}

// StateChange is one append-only audit row of the lifecycle.
type StateChange struct {
	StateChangeID string           `json:"stateChangeID"`
	TeamSeasonID  string           `json:"teamSeasonID"`
	FromState     TeamSeasonState  `json:"fromState"`
	ToState       TeamSeasonState  `json:"toState"`
	Action        TeamSeasonAction `json:"action"`
	ActorUserID   *string          `json:"actorUserID,omitempty"`
	ActorType     ActorType        `json:"actorType"`
	Metadata      map[string]any   `json:"metadata"`
	CreatedAt     time.Time        `json:"createdAt"`
}
