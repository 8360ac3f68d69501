package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/team_finance_engine/internal/apperrors"
	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	portssvc "github.com/SscSPs/team_finance_engine/internal/core/ports/services"
	"github.com/SscSPs/team_finance_engine/internal/core/services"
	"github.com/SscSPs/team_finance_engine/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type BudgetServiceTestSuite struct {
	suite.Suite
	budgetRepo *MockBudgetRepository
	tsRepo     *MockTeamSeasonRepository
	teamRepo   *MockTeamRepository
	auditRepo  *MockAuditRepository
	team       *MockTeamSvc
	lifecycle  *MockLifecycle
	threshold  *MockThresholdSvc
	dispatcher *MockDispatcher
	service    portssvc.BudgetSvcFacade
	ctx        context.Context
}

func (s *BudgetServiceTestSuite) SetupTest() {
	s.budgetRepo = new(MockBudgetRepository)
	s.tsRepo = new(MockTeamSeasonRepository)
	s.teamRepo = new(MockTeamRepository)
	s.auditRepo = new(MockAuditRepository)
	s.team = new(MockTeamSvc)
	s.lifecycle = new(MockLifecycle)
	s.threshold = new(MockThresholdSvc)
	s.dispatcher = new(MockDispatcher)
	s.service = services.NewBudgetService(services.BudgetDeps{
		BudgetRepo:     s.budgetRepo,
		TeamSeasonRepo: s.tsRepo,
		TeamRepo:       s.teamRepo,
		AuditRepo:      s.auditRepo,
		Team:           s.team,
		Lifecycle:      s.lifecycle,
		Threshold:      s.threshold,
		Dispatcher:     s.dispatcher,
	}, services.WithClock(fixedClock))
	s.ctx = context.Background()
}

func (s *BudgetServiceTestSuite) member(userID string, role domain.Role) {
	s.team.On("AuthorizeTeamAction", s.ctx, userID, "team-1", mock.Anything).
		Return(&domain.TeamMember{UserID: userID, TeamID: "team-1", Role: role}, nil)
}

func (s *BudgetServiceTestSuite) budget(status domain.BudgetStatus) {
	s.budgetRepo.On("FindBudgetByID", s.ctx, "budget-1").Return(&domain.Budget{
		BudgetID:    "budget-1",
		TeamID:      "team-1",
		SeasonLabel: "2025",
		Status:      status,
	}, nil)
}

func (s *BudgetServiceTestSuite) presentedSeason(state domain.TeamSeasonState) {
	s.tsRepo.On("FindTeamSeasonByTeamAndLabel", s.ctx, "team-1", "2025").Return(&domain.TeamSeason{
		TeamSeasonID:          "ts-1",
		TeamID:                "team-1",
		SeasonLabel:           "2025",
		State:                 state,
		PresentedVersionID:    strPtr("v1"),
		EligibleFamiliesCount: 8,
	}, nil)
}

func (s *BudgetServiceTestSuite) TestCreateBudgetOpensSeasonAndStartsDraft() {
	s.member("treasurer-1", domain.RoleTreasurer)
	s.budgetRepo.On("FindBudgetByTeamSeason", s.ctx, "team-1", "2025").Return(nil, apperrors.ErrNotFound).Once()
	s.tsRepo.On("FindTeamSeasonByTeamAndLabel", s.ctx, "team-1", "2025").Return(nil, apperrors.ErrNotFound).Once()
	s.team.On("FindTeamByID", s.ctx, "team-1").Return(&domain.Team{TeamID: "team-1"}, nil).Once()
	s.teamRepo.On("CountEligibleFamilies", s.ctx, "team-1").Return(14, nil).Once()
	s.tsRepo.On("SaveTeamSeason", s.ctx, mock.MatchedBy(func(ts domain.TeamSeason) bool {
		return ts.State == domain.StateSetup && ts.EligibleFamiliesCount == 14 &&
			ts.SeasonStart.Equal(time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC))
	})).Return(nil).Once()
	s.budgetRepo.On("SaveBudget", s.ctx, mock.MatchedBy(func(b domain.Budget) bool {
		return b.Status == domain.BudgetDraft && b.SeasonLabel == "2025"
	})).Return(nil).Once()
	s.lifecycle.On("Transition", s.ctx, mock.Anything, domain.ActionStartBudget, domain.UserActor("treasurer-1", domain.RoleTreasurer), mock.Anything).
		Return(&domain.TransitionResult{TeamSeason: domain.TeamSeason{State: domain.StateBudgetDraft}}, nil).Once()

	budget, err := s.service.CreateBudget(s.ctx, "team-1", dto.CreateBudgetRequest{
		SeasonLabel: " 2025 ",
		SeasonStart: time.Date(2024, time.September, 1, 15, 30, 0, 0, time.UTC),
		SeasonEnd:   time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC),
	}, "treasurer-1")

	s.Require().NoError(err)
	s.Equal(domain.BudgetDraft, budget.Status)
	s.Equal("team-1", budget.TeamID)
	s.lifecycle.AssertExpectations(s.T())
	s.tsRepo.AssertExpectations(s.T())
}

func (s *BudgetServiceTestSuite) TestCreateBudgetDuplicate() {
	s.member("treasurer-1", domain.RoleTreasurer)
	s.budgetRepo.On("FindBudgetByTeamSeason", s.ctx, "team-1", "2025").Return(&domain.Budget{BudgetID: "budget-1"}, nil).Once()

	_, err := s.service.CreateBudget(s.ctx, "team-1", dto.CreateBudgetRequest{SeasonLabel: "2025"}, "treasurer-1")

	s.ErrorIs(err, apperrors.ErrDuplicate)
	s.budgetRepo.AssertNotCalled(s.T(), "SaveBudget", mock.Anything, mock.Anything)
}

func (s *BudgetServiceTestSuite) TestCreateVersionNumbersSequentially() {
	s.budget(domain.BudgetReview)
	s.member("treasurer-1", domain.RoleTreasurer)
	s.budgetRepo.On("LatestVersionNumber", s.ctx, "budget-1").Return(2, nil).Once()
	s.budgetRepo.On("SaveVersion", s.ctx, mock.MatchedBy(func(v domain.BudgetVersion) bool {
		return v.VersionNumber == 3 && len(v.Allocations) == 2
	})).Return(nil).Once()

	version, err := s.service.CreateVersion(s.ctx, "budget-1", dto.CreateBudgetVersionRequest{
		TotalBudget: dec("5000"),
		Allocations: []dto.AllocationRequest{
			{CategoryID: "equipment", Allocated: dec("3000")},
			{CategoryID: "travel", Allocated: dec("2000")},
		},
	}, "treasurer-1")

	s.Require().NoError(err)
	s.Equal(3, version.VersionNumber)
}

func (s *BudgetServiceTestSuite) TestCreateVersionRejectsOverAllocation() {
	s.budget(domain.BudgetDraft)
	s.member("treasurer-1", domain.RoleTreasurer)
	s.budgetRepo.On("LatestVersionNumber", s.ctx, "budget-1").Return(0, nil).Once()

	_, err := s.service.CreateVersion(s.ctx, "budget-1", dto.CreateBudgetVersionRequest{
		TotalBudget: dec("1000"),
		Allocations: []dto.AllocationRequest{{CategoryID: "equipment", Allocated: dec("1500")}},
	}, "treasurer-1")

	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *BudgetServiceTestSuite) TestCreateVersionOnLockedBudget() {
	s.budget(domain.BudgetLocked)
	s.member("treasurer-1", domain.RoleTreasurer)

	_, err := s.service.CreateVersion(s.ctx, "budget-1", dto.CreateBudgetVersionRequest{}, "treasurer-1")

	s.ErrorIs(err, apperrors.ErrInvalidState)
}

func (s *BudgetServiceTestSuite) TestUpsertThresholdRejectsMixedFields() {
	s.budget(domain.BudgetDraft)
	s.member("treasurer-1", domain.RoleTreasurer)
	count := 5

	_, err := s.service.UpsertThresholdConfig(s.ctx, "budget-1", dto.UpsertThresholdRequest{
		Mode:                string(domain.ThresholdPercent),
		CountThreshold:      &count,
		PercentThreshold:    decPtr("75"),
		EligibleFamilyCount: &count,
	}, "treasurer-1")

	s.ErrorIs(err, apperrors.ErrValidation)
	s.budgetRepo.AssertNotCalled(s.T(), "UpsertThresholdConfig", mock.Anything, mock.Anything)
}

func (s *BudgetServiceTestSuite) TestUpsertThresholdCountsFamilies() {
	s.budget(domain.BudgetDraft)
	s.member("treasurer-1", domain.RoleTreasurer)
	s.teamRepo.On("CountEligibleFamilies", s.ctx, "team-1").Return(9, nil).Once()
	s.budgetRepo.On("UpsertThresholdConfig", s.ctx, mock.MatchedBy(func(c domain.BudgetThresholdConfig) bool {
		return c.EligibleFamilyCount == 9 && c.Mode == domain.ThresholdPercent
	})).Return(nil).Once()

	cfg, err := s.service.UpsertThresholdConfig(s.ctx, "budget-1", dto.UpsertThresholdRequest{
		Mode:             string(domain.ThresholdPercent),
		PercentThreshold: decPtr("80"),
	}, "treasurer-1")

	s.Require().NoError(err)
	s.Equal(9, cfg.EligibleFamilyCount)
}

func (s *BudgetServiceTestSuite) TestApprovalProgressUsesGovernanceDefault() {
	s.budget(domain.BudgetPresented)
	s.member("parent-1", domain.RoleParent)
	s.presentedSeason(domain.StatePresented)
	s.budgetRepo.On("FindThresholdConfig", s.ctx, "budget-1").Return(nil, apperrors.ErrNotFound).Once()
	s.team.On("Governance", s.ctx, mock.Anything).Return(domain.DefaultGovernance(""), nil).Once()
	s.budgetRepo.On("CountApprovals", s.ctx, "v1").Return(6, nil).Once()

	progress, err := s.service.ApprovalProgress(s.ctx, "budget-1", "parent-1")

	s.Require().NoError(err)
	s.Equal("PERCENT", progress.Mode)
	s.Equal(6, progress.ApprovedCount)
	s.Equal(8, progress.EligibleCount)
	s.True(progress.Percent.Equal(decimal.NewFromInt(75)))
	s.False(progress.ThresholdMet)
}

// afterApproval stubs the rollup refresh and the season reload that follow a
// stored acknowledgement.
func (s *BudgetServiceTestSuite) afterApproval(state domain.TeamSeasonState, approved int) {
	s.threshold.On("RefreshRollup", s.ctx, "ts-1").Return(&domain.TeamSeason{}, nil).Once()
	s.tsRepo.On("FindTeamSeasonByID", s.ctx, "ts-1").Return(&domain.TeamSeason{
		TeamSeasonID:          "ts-1",
		TeamID:                "team-1",
		State:                 state,
		PresentedVersionID:    strPtr("v1"),
		EligibleFamiliesCount: 8,
	}, nil).Once()
	count := 6
	s.budgetRepo.On("FindThresholdConfig", s.ctx, "budget-1").Return(&domain.BudgetThresholdConfig{
		BudgetID:       "budget-1",
		Mode:           domain.ThresholdCount,
		CountThreshold: &count,
	}, nil).Once()
	s.budgetRepo.On("CountApprovals", s.ctx, "v1").Return(approved, nil).Once()
}

func (s *BudgetServiceTestSuite) TestRecordApprovalLocksBudget() {
	s.budget(domain.BudgetPresented)
	s.member("parent-1", domain.RoleParent)
	s.presentedSeason(domain.StatePresented)
	s.budgetRepo.On("SaveApproval", s.ctx, mock.MatchedBy(func(a domain.BudgetVersionApproval) bool {
		return a.FamilyID == "parent-1" && a.ApprovedBy == "parent-1" && a.VersionID == "v1" && a.ApprovedAt.Equal(fixedNow)
	})).Return(nil).Once()
	s.auditRepo.On("SaveAuditEntry", s.ctx, auditAction(domain.AuditParentApproval)).Return(nil).Once()
	s.dispatcher.On("Dispatch", s.ctx, domain.ParentApprovalRecorded("ts-1", "v1")).Return(nil).Once()
	s.afterApproval(domain.StateLocked, 6)

	resp, err := s.service.RecordParentApproval(s.ctx, "budget-1", "v1", dto.RecordApprovalRequest{}, "parent-1")

	s.Require().NoError(err)
	s.NotEmpty(resp.ApprovalID)
	s.True(resp.Locked)
	s.True(resp.ThresholdMet)
	s.Equal(6, resp.ApprovedCount)
	s.Equal(8, resp.EligibleCount)
	s.dispatcher.AssertExpectations(s.T())
	s.threshold.AssertNotCalled(s.T(), "CheckAndLockBudget", mock.Anything, mock.Anything, mock.Anything)
}

func (s *BudgetServiceTestSuite) TestRecordApprovalAcceptsOwnFamilyID() {
	s.budget(domain.BudgetPresented)
	s.member("parent-1", domain.RoleParent)
	s.presentedSeason(domain.StatePresented)
	s.budgetRepo.On("SaveApproval", s.ctx, mock.MatchedBy(func(a domain.BudgetVersionApproval) bool {
		return a.FamilyID == "parent-1"
	})).Return(nil).Once()
	s.auditRepo.On("SaveAuditEntry", s.ctx, mock.Anything).Return(nil).Once()
	s.dispatcher.On("Dispatch", s.ctx, mock.Anything).Return(nil).Once()
	s.afterApproval(domain.StatePresented, 3)

	resp, err := s.service.RecordParentApproval(s.ctx, "budget-1", "v1", dto.RecordApprovalRequest{FamilyID: "parent-1"}, "parent-1")

	s.Require().NoError(err)
	s.False(resp.Locked)
	s.False(resp.ThresholdMet)
	s.Equal(3, resp.ApprovedCount)
}

func (s *BudgetServiceTestSuite) TestRecordApprovalSurvivesLockFailure() {
	s.budget(domain.BudgetPresented)
	s.member("parent-1", domain.RoleParent)
	s.presentedSeason(domain.StatePresented)
	s.budgetRepo.On("SaveApproval", s.ctx, mock.Anything).Return(nil).Once()
	s.auditRepo.On("SaveAuditEntry", s.ctx, mock.Anything).Return(nil).Once()
	s.threshold.On("RefreshRollup", s.ctx, "ts-1").Return(nil, assertErr).Once()
	s.dispatcher.On("Dispatch", s.ctx, domain.ParentApprovalRecorded("ts-1", "v1")).Return(assertErr).Once()
	s.tsRepo.On("FindTeamSeasonByID", s.ctx, "ts-1").Return(nil, assertErr).Once()

	resp, err := s.service.RecordParentApproval(s.ctx, "budget-1", "v1", dto.RecordApprovalRequest{}, "parent-1")

	s.Require().NoError(err)
	s.NotEmpty(resp.ApprovalID)
	s.False(resp.Locked)
}

func (s *BudgetServiceTestSuite) TestRecordApprovalRejectsNonParent() {
	s.budget(domain.BudgetPresented)
	s.member("treasurer-1", domain.RoleTreasurer)

	for _, family := range []string{"", "made-up-0", "made-up-1"} {
		_, err := s.service.RecordParentApproval(s.ctx, "budget-1", "v1", dto.RecordApprovalRequest{FamilyID: family}, "treasurer-1")
		s.ErrorIs(err, apperrors.ErrForbidden, family)
	}
	s.budgetRepo.AssertNotCalled(s.T(), "SaveApproval", mock.Anything, mock.Anything)
	s.dispatcher.AssertNotCalled(s.T(), "Dispatch", mock.Anything, mock.Anything)
}

func (s *BudgetServiceTestSuite) TestRecordApprovalRejectsOtherFamily() {
	s.budget(domain.BudgetPresented)
	s.member("parent-1", domain.RoleParent)

	_, err := s.service.RecordParentApproval(s.ctx, "budget-1", "v1", dto.RecordApprovalRequest{FamilyID: "parent-2"}, "parent-1")

	s.ErrorIs(err, apperrors.ErrForbidden)
	s.budgetRepo.AssertNotCalled(s.T(), "SaveApproval", mock.Anything, mock.Anything)
}

func (s *BudgetServiceTestSuite) TestRecordApprovalTwiceIsDuplicate() {
	s.budget(domain.BudgetPresented)
	s.member("parent-1", domain.RoleParent)
	s.presentedSeason(domain.StatePresented)
	s.budgetRepo.On("SaveApproval", s.ctx, mock.Anything).Return(apperrors.ErrDuplicate).Once()

	_, err := s.service.RecordParentApproval(s.ctx, "budget-1", "v1", dto.RecordApprovalRequest{}, "parent-1")

	s.ErrorIs(err, apperrors.ErrDuplicate)
	s.dispatcher.AssertNotCalled(s.T(), "Dispatch", mock.Anything, mock.Anything)
}

func (s *BudgetServiceTestSuite) TestRecordApprovalForOldVersion() {
	s.budget(domain.BudgetPresented)
	s.member("parent-1", domain.RoleParent)
	s.presentedSeason(domain.StatePresented)

	_, err := s.service.RecordParentApproval(s.ctx, "budget-1", "v0", dto.RecordApprovalRequest{}, "parent-1")

	s.ErrorIs(err, apperrors.ErrPreconditionFailed)
}

func (s *BudgetServiceTestSuite) TestRecordApprovalAfterLock() {
	s.budget(domain.BudgetLocked)
	s.member("parent-1", domain.RoleParent)
	s.presentedSeason(domain.StateLocked)

	_, err := s.service.RecordParentApproval(s.ctx, "budget-1", "v1", dto.RecordApprovalRequest{}, "parent-1")

	s.ErrorIs(err, apperrors.ErrInvalidState)
}

func TestBudgetServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BudgetServiceTestSuite))
}
