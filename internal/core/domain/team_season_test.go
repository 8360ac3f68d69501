package domain_test

import (
	"testing"

	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestNextState(t *testing.T) {
	tests := []struct {
		name        string
		from        domain.TeamSeasonState
		action      domain.TeamSeasonAction
		association bool
		wantState   domain.TeamSeasonState
		wantAllowed bool
	}{
		{"start budget from setup", domain.StateSetup, domain.ActionStartBudget, false, domain.StateBudgetDraft, true},
		{"approve without association", domain.StateBudgetReview, domain.ActionApproveBudget, false, domain.StateTeamApproved, true},
		{"approve with association", domain.StateBudgetReview, domain.ActionApproveBudget, true, domain.StateAssociationReview, true},
		{"association approves", domain.StateAssociationReview, domain.ActionAssociationApproveBudget, true, domain.StateTeamApproved, true},
		{"association requests changes", domain.StateAssociationReview, domain.ActionAssociationRequestChanges, true, domain.StateBudgetDraft, true},
		{"lock from presented", domain.StatePresented, domain.ActionLockBudget, false, domain.StateLocked, true},
		{"lock twice", domain.StateLocked, domain.ActionLockBudget, false, domain.StateLocked, false},
		{"propose update when active", domain.StateActive, domain.ActionProposeBudgetUpdate, false, domain.StateBudgetReview, true},
		{"archived is terminal", domain.StateArchived, domain.ActionStartBudget, false, domain.StateArchived, false},
		{"present requires team approval", domain.StateBudgetReview, domain.ActionPresentBudget, false, domain.StateBudgetReview, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := domain.NextState(tt.from, tt.action, tt.association)
			assert.Equal(t, tt.wantAllowed, ok)
			assert.Equal(t, tt.wantState, got)
		})
	}
}

func TestCheckPermission(t *testing.T) {
	tests := []struct {
		name    string
		action  domain.TeamSeasonAction
		actor   domain.Actor
		allowed bool
	}{
		{"treasurer starts budget", domain.ActionStartBudget, domain.UserActor("u1", domain.RoleTreasurer), true},
		{"president cannot start budget", domain.ActionStartBudget, domain.UserActor("u1", domain.RolePresident), false},
		{"board member approves", domain.ActionApproveBudget, domain.UserActor("u1", domain.RoleBoardMember), true},
		{"treasurer cannot approve", domain.ActionApproveBudget, domain.UserActor("u1", domain.RoleTreasurer), false},
		{"user cannot lock", domain.ActionLockBudget, domain.UserActor("u1", domain.RolePresident), false},
		{"system locks", domain.ActionLockBudget, domain.SystemActor(), true},
		{"system starts season", domain.ActionStartSeason, domain.SystemActor(), true},
		{"system cannot present", domain.ActionPresentBudget, domain.SystemActor(), false},
		{"parent cannot archive", domain.ActionFinalizeArchive, domain.UserActor("u1", domain.RoleParent), false},
		{"association admin approves", domain.ActionAssociationApproveBudget, domain.UserActor("u1", domain.RoleAssociationAdmin), true},
		{"team president cannot act for association", domain.ActionAssociationApproveBudget, domain.UserActor("u1", domain.RolePresident), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason := domain.CheckPermission(tt.action, tt.actor)
			if tt.allowed {
				assert.Empty(t, reason)
			} else {
				assert.NotEmpty(t, reason)
			}
		})
	}
}

func TestAvailableActions(t *testing.T) {
	assert.Equal(t,
		[]domain.TeamSeasonAction{domain.ActionStartSeason, domain.ActionProposeBudgetUpdate},
		domain.AvailableActions(domain.StateLocked, domain.RoleTreasurer))
	assert.Equal(t,
		[]domain.TeamSeasonAction{domain.ActionStartSeason},
		domain.AvailableActions(domain.StateLocked, domain.RolePresident))
	assert.Empty(t, domain.AvailableActions(domain.StatePresented, domain.RoleParent))
}

func TestBudgetStatusFor(t *testing.T) {
	assert.Equal(t, domain.BudgetDraft, domain.BudgetStatusFor(domain.StateSetup))
	assert.Equal(t, domain.BudgetDraft, domain.BudgetStatusFor(domain.StateBudgetDraft))
	assert.Equal(t, domain.BudgetReview, domain.BudgetStatusFor(domain.StateBudgetReview))
	assert.Equal(t, domain.BudgetAssociationReview, domain.BudgetStatusFor(domain.StateAssociationReview))
	assert.Equal(t, domain.BudgetPresented, domain.BudgetStatusFor(domain.StatePresented))
	assert.Equal(t, domain.BudgetLocked, domain.BudgetStatusFor(domain.StateActive))
	assert.Equal(t, domain.BudgetLocked, domain.BudgetStatusFor(domain.StateArchived))
}

func TestCandidateTransition(t *testing.T) {
	action, ok := domain.CandidateTransition(domain.EventParentApprovalRecorded)
	assert.True(t, ok)
	assert.Equal(t, domain.ActionLockBudget, action)

	action, ok = domain.CandidateTransition(domain.EventTransactionCreated)
	assert.True(t, ok)
	assert.Equal(t, domain.ActionStartSeason, action)

	_, ok = domain.CandidateTransition("UNKNOWN")
	assert.False(t, ok)
}
