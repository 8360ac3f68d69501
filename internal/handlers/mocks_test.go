package handlers_test

import (
	"context"
	"io"
	"time"

	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	portssvc "github.com/SscSPs/team_finance_engine/internal/core/ports/services"
	"github.com/SscSPs/team_finance_engine/internal/dto"
	"github.com/stretchr/testify/mock"
)

// --- Mock TransactionService ---
type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) GetTransaction(ctx context.Context, transactionID, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionService) ListTransactions(ctx context.Context, teamID, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	args := m.Called(ctx, teamID, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListTransactionsResponse), args.Error(1)
}

func (m *MockTransactionService) CreateTransaction(ctx context.Context, teamID string, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, *domain.RouteResult, error) {
	args := m.Called(ctx, teamID, req, userID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var route *domain.RouteResult
	if r := args.Get(1); r != nil {
		route = r.(*domain.RouteResult)
	}
	return args.Get(0).(*domain.Transaction), route, args.Error(2)
}

func (m *MockTransactionService) ImportTransactions(ctx context.Context, teamID string, req dto.ImportTransactionsRequest) (*dto.ImportTransactionsResponse, error) {
	args := m.Called(ctx, teamID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ImportTransactionsResponse), args.Error(1)
}

func (m *MockTransactionService) RevalidateTransaction(ctx context.Context, transactionID, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

var _ portssvc.TransactionSvcFacade = (*MockTransactionService)(nil)

// --- Mock ExceptionService ---
type MockExceptionService struct {
	mock.Mock
}

func (m *MockExceptionService) Resolve(ctx context.Context, transactionID string, req dto.ResolveExceptionRequest, userID string) (*domain.ResolutionResult, error) {
	args := m.Called(ctx, transactionID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ResolutionResult), args.Error(1)
}

var _ portssvc.ExceptionSvc = (*MockExceptionService)(nil)

// --- Mock BudgetService ---
type MockBudgetService struct {
	mock.Mock
}

func (m *MockBudgetService) GetBudget(ctx context.Context, budgetID, userID string) (*domain.Budget, *domain.BudgetVersion, error) {
	args := m.Called(ctx, budgetID, userID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var version *domain.BudgetVersion
	if v := args.Get(1); v != nil {
		version = v.(*domain.BudgetVersion)
	}
	return args.Get(0).(*domain.Budget), version, args.Error(2)
}

func (m *MockBudgetService) ApprovalProgress(ctx context.Context, budgetID, userID string) (*dto.ApprovalProgressResponse, error) {
	args := m.Called(ctx, budgetID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ApprovalProgressResponse), args.Error(1)
}

func (m *MockBudgetService) CreateBudget(ctx context.Context, teamID string, req dto.CreateBudgetRequest, userID string) (*domain.Budget, error) {
	args := m.Called(ctx, teamID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Budget), args.Error(1)
}

func (m *MockBudgetService) CreateVersion(ctx context.Context, budgetID string, req dto.CreateBudgetVersionRequest, userID string) (*domain.BudgetVersion, error) {
	args := m.Called(ctx, budgetID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetVersion), args.Error(1)
}

func (m *MockBudgetService) UpsertThresholdConfig(ctx context.Context, budgetID string, req dto.UpsertThresholdRequest, userID string) (*domain.BudgetThresholdConfig, error) {
	args := m.Called(ctx, budgetID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetThresholdConfig), args.Error(1)
}

func (m *MockBudgetService) RecordParentApproval(ctx context.Context, budgetID, versionID string, req dto.RecordApprovalRequest, userID string) (*dto.RecordApprovalResponse, error) {
	args := m.Called(ctx, budgetID, versionID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.RecordApprovalResponse), args.Error(1)
}

var _ portssvc.BudgetSvcFacade = (*MockBudgetService)(nil)

// --- Mock AssociationApprovalService ---
type MockAssociationService struct {
	mock.Mock
}

func (m *MockAssociationService) ApproveBudget(ctx context.Context, budgetID, versionID, userID string, notes *string) (*domain.TransitionResult, error) {
	args := m.Called(ctx, budgetID, versionID, userID, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransitionResult), args.Error(1)
}

func (m *MockAssociationService) RequestChanges(ctx context.Context, budgetID, versionID, userID string, notes *string) (*domain.TransitionResult, error) {
	args := m.Called(ctx, budgetID, versionID, userID, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransitionResult), args.Error(1)
}

var _ portssvc.AssociationApprovalSvc = (*MockAssociationService)(nil)

// --- Mock EnvelopeService ---
type MockEnvelopeService struct {
	mock.Mock
}

func (m *MockEnvelopeService) CreateEnvelope(ctx context.Context, budgetID string, req dto.CreateEnvelopeRequest, userID string) (*domain.Envelope, error) {
	args := m.Called(ctx, budgetID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Envelope), args.Error(1)
}

func (m *MockEnvelopeService) ListEnvelopes(ctx context.Context, budgetID, userID string) ([]domain.Envelope, error) {
	args := m.Called(ctx, budgetID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Envelope), args.Error(1)
}

func (m *MockEnvelopeService) DeactivateEnvelope(ctx context.Context, envelopeID, userID string) error {
	args := m.Called(ctx, envelopeID, userID)
	return args.Error(0)
}

func (m *MockEnvelopeService) SpendingSummary(ctx context.Context, envelopeID string, asOf time.Time, userID string) (*domain.EnvelopeSpendingSummary, error) {
	args := m.Called(ctx, envelopeID, asOf, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EnvelopeSpendingSummary), args.Error(1)
}

func (m *MockEnvelopeService) ExportSpendingSummary(ctx context.Context, budgetID string, asOf time.Time, userID string, w io.Writer) error {
	args := m.Called(ctx, budgetID, asOf, userID, w)
	return args.Error(0)
}

var _ portssvc.EnvelopeSvcFacade = (*MockEnvelopeService)(nil)

// --- Mock TeamSeasonService ---
type MockTeamSeasonService struct {
	mock.Mock
}

func (m *MockTeamSeasonService) GetTeamSeason(ctx context.Context, teamSeasonID, userID string) (*domain.TeamSeason, error) {
	args := m.Called(ctx, teamSeasonID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TeamSeason), args.Error(1)
}

func (m *MockTeamSeasonService) ListStateChanges(ctx context.Context, teamSeasonID, userID string) ([]domain.StateChange, error) {
	args := m.Called(ctx, teamSeasonID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StateChange), args.Error(1)
}

func (m *MockTeamSeasonService) AvailableActions(ctx context.Context, teamSeasonID, userID string) (*domain.TeamSeason, domain.Role, []domain.TeamSeasonAction, error) {
	args := m.Called(ctx, teamSeasonID, userID)
	if args.Get(0) == nil {
		return nil, "", nil, args.Error(3)
	}
	return args.Get(0).(*domain.TeamSeason), args.Get(1).(domain.Role), args.Get(2).([]domain.TeamSeasonAction), args.Error(3)
}

func (m *MockTeamSeasonService) Transition(ctx context.Context, teamSeasonID string, action domain.TeamSeasonAction, actor domain.Actor, in domain.TransitionInput) (*domain.TransitionResult, error) {
	args := m.Called(ctx, teamSeasonID, action, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransitionResult), args.Error(1)
}

func (m *MockTeamSeasonService) TransitionAsUser(ctx context.Context, teamSeasonID string, action domain.TeamSeasonAction, userID string, in domain.TransitionInput) (*domain.TransitionResult, error) {
	args := m.Called(ctx, teamSeasonID, action, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransitionResult), args.Error(1)
}

var _ portssvc.TeamSeasonSvcFacade = (*MockTeamSeasonService)(nil)
