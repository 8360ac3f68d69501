package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/team_finance_engine/internal/apperrors"
	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/team_finance_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/team_finance_engine/internal/core/ports/services"
	"github.com/SscSPs/team_finance_engine/internal/core/services"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type TeamSeasonServiceTestSuite struct {
	suite.Suite
	tsRepo     *MockTeamSeasonRepository
	budgetRepo *MockBudgetRepository
	auditRepo  *MockAuditRepository
	team       *MockTeamSvc
	notifier   *MockNotifier
	analytics  *MockAnalytics
	service    portssvc.TeamSeasonSvcFacade
	ctx        context.Context
}

func (s *TeamSeasonServiceTestSuite) SetupTest() {
	s.tsRepo = new(MockTeamSeasonRepository)
	s.budgetRepo = new(MockBudgetRepository)
	s.auditRepo = new(MockAuditRepository)
	s.team = new(MockTeamSvc)
	s.notifier = new(MockNotifier)
	s.analytics = new(MockAnalytics)
	s.service = services.NewTeamSeasonService(s.tsRepo, s.budgetRepo, s.auditRepo, s.team,
		services.WithClock(fixedClock),
		services.WithNotifier(s.notifier),
		services.WithAnalytics(s.analytics),
	)
	s.ctx = context.Background()
}

func (s *TeamSeasonServiceTestSuite) season(state domain.TeamSeasonState) *domain.TeamSeason {
	ts := &domain.TeamSeason{
		TeamSeasonID: "ts-1",
		TeamID:       "team-1",
		SeasonLabel:  "2025",
		State:        state,
	}
	s.tsRepo.On("FindTeamSeasonByID", s.ctx, "ts-1").Return(ts, nil)
	return ts
}

func (s *TeamSeasonServiceTestSuite) independentTeam() {
	s.team.On("Governance", s.ctx, mock.Anything).Return(domain.DefaultGovernance(""), nil)
}

func (s *TeamSeasonServiceTestSuite) budget(currentVersion string) {
	b := &domain.Budget{BudgetID: "budget-1", TeamID: "team-1", SeasonLabel: "2025"}
	if currentVersion != "" {
		b.CurrentVersionID = strPtr(currentVersion)
	}
	s.budgetRepo.On("FindBudgetByTeamSeason", s.ctx, "team-1", "2025").Return(b, nil)
}

func auditAction(action string) interface{} {
	return mock.MatchedBy(func(e domain.AuditEntry) bool { return e.Action == action })
}

func (s *TeamSeasonServiceTestSuite) TestLockFromLockedIsInvalidState() {
	s.season(domain.StateLocked)
	s.independentTeam()

	res, err := s.service.Transition(s.ctx, "ts-1", domain.ActionLockBudget, domain.SystemActor(), domain.TransitionInput{})

	s.Nil(res)
	s.ErrorIs(err, apperrors.ErrInvalidState)
	s.tsRepo.AssertNotCalled(s.T(), "ApplyTransition", mock.Anything, mock.Anything)
	s.auditRepo.AssertNotCalled(s.T(), "SaveAuditEntry", mock.Anything, mock.Anything)
}

func (s *TeamSeasonServiceTestSuite) TestParentCannotPresent() {
	s.season(domain.StateTeamApproved)
	s.independentTeam()

	_, err := s.service.Transition(s.ctx, "ts-1", domain.ActionPresentBudget, domain.UserActor("user-1", domain.RoleParent), domain.TransitionInput{})

	s.ErrorIs(err, apperrors.ErrForbidden)
	s.budgetRepo.AssertNotCalled(s.T(), "FindBudgetByTeamSeason", mock.Anything, mock.Anything, mock.Anything)
	s.tsRepo.AssertNotCalled(s.T(), "ApplyTransition", mock.Anything, mock.Anything)
}

func (s *TeamSeasonServiceTestSuite) TestSystemCannotApprove() {
	s.season(domain.StateBudgetReview)
	s.independentTeam()

	_, err := s.service.Transition(s.ctx, "ts-1", domain.ActionApproveBudget, domain.SystemActor(), domain.TransitionInput{})

	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *TeamSeasonServiceTestSuite) TestPresentCoachApprovedVersion() {
	s.season(domain.StateTeamApproved)
	s.independentTeam()
	s.budget("v2")
	s.budgetRepo.On("FindVersionByID", s.ctx, "v2").Return(&domain.BudgetVersion{
		VersionID:       "v2",
		BudgetID:        "budget-1",
		CoachApprovedAt: &fixedNow,
	}, nil).Once()
	s.tsRepo.On("ApplyTransition", s.ctx, mock.MatchedBy(func(rec portsrepo.TransitionRecord) bool {
		return rec.FromState == domain.StateTeamApproved &&
			rec.ToState == domain.StatePresented &&
			rec.PresentedVersionID != nil && *rec.PresentedVersionID == "v2" &&
			rec.ResetApprovals &&
			rec.BudgetID != nil && *rec.BudgetID == "budget-1" &&
			rec.BudgetStatus == domain.BudgetPresented &&
			rec.Change.Metadata["versionId"] == "v2"
	})).Return(nil).Once()
	s.auditRepo.On("SaveAuditEntry", s.ctx, auditAction(domain.AuditTeamSeasonTransition)).Return(nil).Once()

	res, err := s.service.Transition(s.ctx, "ts-1", domain.ActionPresentBudget, domain.UserActor("user-1", domain.RolePresident), domain.TransitionInput{})

	s.Require().NoError(err)
	s.Equal(domain.StatePresented, res.TeamSeason.State)
	s.Equal("v2", *res.TeamSeason.PresentedVersionID)
	s.Equal(0, res.TeamSeason.ApprovalsCountForPresentedVersion)
	s.Equal(domain.ActorUser, res.StateChange.ActorType)
	s.Equal("user-1", *res.StateChange.ActorUserID)
	s.Equal(fixedNow, res.StateChange.CreatedAt)
	s.tsRepo.AssertExpectations(s.T())
	s.auditRepo.AssertExpectations(s.T())
}

func (s *TeamSeasonServiceTestSuite) TestPresentRequiresCoachApproval() {
	s.season(domain.StateTeamApproved)
	s.independentTeam()
	s.budget("v2")
	s.budgetRepo.On("FindVersionByID", s.ctx, "v2").Return(&domain.BudgetVersion{VersionID: "v2", BudgetID: "budget-1"}, nil).Once()

	_, err := s.service.Transition(s.ctx, "ts-1", domain.ActionPresentBudget, domain.UserActor("user-1", domain.RolePresident), domain.TransitionInput{})

	s.ErrorIs(err, apperrors.ErrPreconditionFailed)
	s.tsRepo.AssertNotCalled(s.T(), "ApplyTransition", mock.Anything, mock.Anything)
}

func (s *TeamSeasonServiceTestSuite) TestApproveGoesToAssociationReviewWhenRequired() {
	ts := s.season(domain.StateBudgetReview)
	ts.AssociationID = strPtr("assoc-1")
	gov := domain.DefaultGovernance("assoc-1")
	gov.RequiresAssociationBudgetApproval = true
	s.team.On("Governance", s.ctx, ts.AssociationID).Return(gov, nil).Once()
	s.budget("v1")
	s.tsRepo.On("ApplyTransition", s.ctx, mock.MatchedBy(func(rec portsrepo.TransitionRecord) bool {
		return rec.ToState == domain.StateAssociationReview &&
			rec.BudgetStatus == domain.BudgetAssociationReview &&
			rec.VersionStamp != nil && rec.VersionStamp.VersionID == "v1" &&
			rec.VersionStamp.CoachApprovedBy != nil && *rec.VersionStamp.CoachApprovedBy == "user-1"
	})).Return(nil).Once()
	s.auditRepo.On("SaveAuditEntry", s.ctx, mock.Anything).Return(nil).Once()

	res, err := s.service.Transition(s.ctx, "ts-1", domain.ActionApproveBudget, domain.UserActor("user-1", domain.RolePresident), domain.TransitionInput{})

	s.Require().NoError(err)
	s.Equal(domain.StateAssociationReview, res.TeamSeason.State)
}

func (s *TeamSeasonServiceTestSuite) TestConcurrentTransitionLoses() {
	ts := s.season(domain.StatePresented)
	ts.PresentedVersionID = strPtr("v1")
	s.independentTeam()
	s.budget("v1")
	s.tsRepo.On("ApplyTransition", s.ctx, mock.Anything).Return(apperrors.ErrInvalidState).Once()

	res, err := s.service.Transition(s.ctx, "ts-1", domain.ActionLockBudget, domain.SystemActor(), domain.TransitionInput{VersionID: strPtr("v1")})

	s.Nil(res)
	s.ErrorIs(err, apperrors.ErrInvalidState)
	s.auditRepo.AssertNotCalled(s.T(), "SaveAuditEntry", mock.Anything, mock.Anything)
	s.notifier.AssertNotCalled(s.T(), "BudgetLocked", mock.Anything, mock.Anything, mock.Anything)
}

func (s *TeamSeasonServiceTestSuite) TestSystemLockNotifiesAndAudits() {
	ts := s.season(domain.StatePresented)
	ts.PresentedVersionID = strPtr("v1")
	s.independentTeam()
	s.budget("v1")
	s.tsRepo.On("ApplyTransition", s.ctx, mock.MatchedBy(func(rec portsrepo.TransitionRecord) bool {
		return rec.LockedVersionID != nil && *rec.LockedVersionID == "v1" &&
			rec.BudgetStatus == domain.BudgetLocked &&
			rec.Change.ActorType == domain.ActorSystem &&
			rec.Change.ActorUserID == nil &&
			rec.Change.Metadata["autoLocked"] == true
	})).Return(nil).Once()
	s.auditRepo.On("SaveAuditEntry", s.ctx, auditAction(domain.AuditBudgetLocked)).Return(nil).Once()
	s.analytics.On("Track", s.ctx, "", "budget_locked", mock.Anything).Once()
	s.notifier.On("BudgetLocked", s.ctx, mock.MatchedBy(func(locked domain.TeamSeason) bool {
		return locked.State == domain.StateLocked
	}), "v1").Once()

	res, err := s.service.Transition(s.ctx, "ts-1", domain.ActionLockBudget, domain.SystemActor(), domain.TransitionInput{
		VersionID: strPtr("v1"),
		Metadata:  map[string]any{"autoLocked": true},
	})

	s.Require().NoError(err)
	s.Equal(domain.StateLocked, res.TeamSeason.State)
	s.Equal("v1", *res.TeamSeason.LockedVersionID)
	s.auditRepo.AssertExpectations(s.T())
	s.analytics.AssertExpectations(s.T())
	s.notifier.AssertExpectations(s.T())
}

func (s *TeamSeasonServiceTestSuite) TestAuditFailureDoesNotFailTransition() {
	s.season(domain.StateSetup)
	s.independentTeam()
	s.budget("")
	s.tsRepo.On("ApplyTransition", s.ctx, mock.Anything).Return(nil).Once()
	s.auditRepo.On("SaveAuditEntry", s.ctx, mock.Anything).Return(assertErr).Once()

	res, err := s.service.Transition(s.ctx, "ts-1", domain.ActionStartBudget, domain.UserActor("user-1", domain.RoleTreasurer), domain.TransitionInput{})

	s.Require().NoError(err)
	s.Equal(domain.StateBudgetDraft, res.TeamSeason.State)
}

func (s *TeamSeasonServiceTestSuite) TestProposeUpdateNeedsChangeSummary() {
	s.season(domain.StateActive)
	s.independentTeam()
	s.budget("v1")

	_, err := s.service.Transition(s.ctx, "ts-1", domain.ActionProposeBudgetUpdate, domain.UserActor("user-1", domain.RoleTreasurer), domain.TransitionInput{})

	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *TeamSeasonServiceTestSuite) TestTransitionAsUserRejectsNonMember() {
	s.season(domain.StateBudgetDraft)
	s.independentTeam()
	s.team.On("ResolveActor", s.ctx, "stranger", mock.Anything, domain.ActionSubmitBudgetForReview).
		Return(domain.Actor{}, apperrors.ErrForbidden).Once()

	_, err := s.service.TransitionAsUser(s.ctx, "ts-1", domain.ActionSubmitBudgetForReview, "stranger", domain.TransitionInput{})

	s.ErrorIs(err, apperrors.ErrForbidden)
	s.tsRepo.AssertNotCalled(s.T(), "ApplyTransition", mock.Anything, mock.Anything)
}

func (s *TeamSeasonServiceTestSuite) TestTransitionAsUserRejectsAssociationActions() {
	for _, action := range []domain.TeamSeasonAction{domain.ActionAssociationApproveBudget, domain.ActionAssociationRequestChanges} {
		_, err := s.service.TransitionAsUser(s.ctx, "ts-1", action, "admin-1", domain.TransitionInput{Notes: strPtr("fine")})

		s.ErrorIs(err, apperrors.ErrValidation, string(action))
	}
	s.tsRepo.AssertNotCalled(s.T(), "FindTeamSeasonByID", mock.Anything, mock.Anything)
	s.tsRepo.AssertNotCalled(s.T(), "ApplyTransition", mock.Anything, mock.Anything)
}

func (s *TeamSeasonServiceTestSuite) TestAvailableActionsForTreasurer() {
	s.season(domain.StateActive)
	s.team.On("ResolveActor", s.ctx, "user-1", mock.Anything, domain.ActionStartBudget).
		Return(domain.UserActor("user-1", domain.RoleTreasurer), nil).Once()

	_, role, actions, err := s.service.AvailableActions(s.ctx, "ts-1", "user-1")

	s.Require().NoError(err)
	s.Equal(domain.RoleTreasurer, role)
	s.Equal([]domain.TeamSeasonAction{domain.ActionProposeBudgetUpdate, domain.ActionInitiateCloseout}, actions)
}

func (s *TeamSeasonServiceTestSuite) TestGetTeamSeasonNotFound() {
	s.tsRepo.On("FindTeamSeasonByID", s.ctx, "missing").Return(nil, apperrors.ErrNotFound).Once()

	_, err := s.service.GetTeamSeason(s.ctx, "missing", "user-1")

	s.ErrorIs(err, apperrors.ErrNotFound)
}

func TestTeamSeasonServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TeamSeasonServiceTestSuite))
}
