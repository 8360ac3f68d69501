package services_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/SscSPs/team_finance_engine/internal/apperrors"
	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	portssvc "github.com/SscSPs/team_finance_engine/internal/core/ports/services"
	"github.com/SscSPs/team_finance_engine/internal/core/services"
	"github.com/SscSPs/team_finance_engine/internal/dto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"
)

type EnvelopeServiceTestSuite struct {
	suite.Suite
	budgetRepo   *MockBudgetRepository
	envelopeRepo *MockEnvelopeRepository
	txRepo       *MockTransactionRepository
	team         *MockTeamSvc
	service      portssvc.EnvelopeSvcFacade
	ctx          context.Context
}

func (s *EnvelopeServiceTestSuite) SetupTest() {
	s.budgetRepo = new(MockBudgetRepository)
	s.envelopeRepo = new(MockEnvelopeRepository)
	s.txRepo = new(MockTransactionRepository)
	s.team = new(MockTeamSvc)
	s.service = services.NewEnvelopeService(s.budgetRepo, s.envelopeRepo, s.txRepo, s.team, services.WithClock(fixedClock))
	s.ctx = context.Background()

	s.budgetRepo.On("FindBudgetByID", s.ctx, "budget-1").Return(&domain.Budget{BudgetID: "budget-1", TeamID: "team-1"}, nil)
}

func (s *EnvelopeServiceTestSuite) member(userID string) {
	s.team.On("AuthorizeTeamAction", s.ctx, userID, "team-1", mock.Anything).
		Return(&domain.TeamMember{UserID: userID, TeamID: "team-1", Role: domain.RoleTreasurer}, nil)
}

func (s *EnvelopeServiceTestSuite) TestCreateEnvelope() {
	s.member("treasurer-1")
	s.envelopeRepo.On("SaveEnvelope", s.ctx, mock.MatchedBy(func(e domain.Envelope) bool {
		return e.IsActive && e.Name == "Referees" && e.BudgetID == "budget-1"
	})).Return(nil).Once()

	env, err := s.service.CreateEnvelope(s.ctx, "budget-1", dto.CreateEnvelopeRequest{
		CategoryID:      "officials",
		Name:            " Referees ",
		CapAmount:       dec("400"),
		PeriodType:      string(domain.PeriodMonthly),
		VendorMatchType: string(domain.VendorContains),
		VendorMatch:     strPtr("referee"),
	}, "treasurer-1")

	s.Require().NoError(err)
	s.NotEmpty(env.EnvelopeID)
	s.Equal(fixedNow, env.CreatedAt)
}

func (s *EnvelopeServiceTestSuite) TestCreateEnvelopeNeedsVendorPattern() {
	s.member("treasurer-1")

	_, err := s.service.CreateEnvelope(s.ctx, "budget-1", dto.CreateEnvelopeRequest{
		CategoryID:      "officials",
		Name:            "Referees",
		CapAmount:       dec("400"),
		PeriodType:      string(domain.PeriodMonthly),
		VendorMatchType: string(domain.VendorExact),
	}, "treasurer-1")

	s.ErrorIs(err, apperrors.ErrValidation)
	s.envelopeRepo.AssertNotCalled(s.T(), "SaveEnvelope", mock.Anything, mock.Anything)
}

func (s *EnvelopeServiceTestSuite) TestDeactivateInactiveIsNoop() {
	s.member("treasurer-1")
	s.envelopeRepo.On("FindEnvelopeByID", s.ctx, "env-1").Return(&domain.Envelope{EnvelopeID: "env-1", BudgetID: "budget-1"}, nil).Once()

	s.NoError(s.service.DeactivateEnvelope(s.ctx, "env-1", "treasurer-1"))
	s.envelopeRepo.AssertNotCalled(s.T(), "DeactivateEnvelope", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *EnvelopeServiceTestSuite) TestSpendingSummary() {
	s.member("parent-1")
	env := monthlyEnvelope("env-1", "1000")
	s.envelopeRepo.On("FindEnvelopeByID", s.ctx, "env-1").Return(&env, nil).Once()
	from, to := env.PeriodWindow(fixedNow)
	s.txRepo.On("SumEnvelopeSpend", s.ctx, "env-1", from, to, "").Return(dec("250"), 3, nil).Once()

	summary, err := s.service.SpendingSummary(s.ctx, "env-1", fixedNow, "parent-1")

	s.Require().NoError(err)
	s.True(summary.Remaining.Equal(dec("750")))
	s.True(summary.PercentUsed.Equal(dec("25")))
	s.Equal(3, summary.TransactionCount)
}

func (s *EnvelopeServiceTestSuite) TestExportSpendingSummary() {
	s.member("treasurer-1")
	envs := []domain.Envelope{monthlyEnvelope("env-1", "1000"), monthlyEnvelope("env-2", "200")}
	envs[1].Name = "Snacks"
	s.envelopeRepo.On("ListEnvelopesByBudget", s.ctx, "budget-1", true).Return(envs, nil).Once()
	s.txRepo.On("SumEnvelopeSpend", s.ctx, "env-1", mock.Anything, mock.Anything, "").Return(dec("100"), 1, nil).Once()
	s.txRepo.On("SumEnvelopeSpend", s.ctx, "env-2", mock.Anything, mock.Anything, "").Return(dec("50"), 2, nil).Once()

	var buf bytes.Buffer
	s.Require().NoError(s.service.ExportSpendingSummary(s.ctx, "budget-1", fixedNow, "treasurer-1", &buf))

	f, err := excelize.OpenReader(&buf)
	s.Require().NoError(err)
	defer f.Close()
	rows, err := f.GetRows("Envelopes")
	s.Require().NoError(err)
	s.Require().Len(rows, 3)
	s.Equal("Envelope", rows[0][0])
	s.Equal("Equipment", rows[1][0])
	s.Equal("Snacks", rows[2][0])
	s.Equal("this month", rows[2][2])
}

func (s *EnvelopeServiceTestSuite) TestListEnvelopesRequiresMembership() {
	s.team.On("AuthorizeTeamAction", s.ctx, "stranger", "team-1", mock.Anything).Return(nil, apperrors.ErrForbidden).Once()

	_, err := s.service.ListEnvelopes(s.ctx, "budget-1", "stranger")

	s.ErrorIs(err, apperrors.ErrForbidden)
}

func TestEnvelopeServiceTestSuite(t *testing.T) {
	suite.Run(t, new(EnvelopeServiceTestSuite))
}
