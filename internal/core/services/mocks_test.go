package services_test

import (
	"context"
	"errors"
	"time"

	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/team_finance_engine/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Repository mocks ---

// MockTransactionRepository is a mock type for the TransactionRepositoryFacade interface
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindTransactionByExternalID(ctx context.Context, teamID, externalID string) (*domain.Transaction, error) {
	args := m.Called(ctx, teamID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListTransactionsByTeam(ctx context.Context, teamID string, filter portsrepo.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, teamID, filter, limit, nextToken)
	var txns []domain.Transaction
	if args.Get(0) != nil {
		txns = args.Get(0).([]domain.Transaction)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return txns, token, args.Error(2)
}

func (m *MockTransactionRepository) ListTransactionsInWindow(ctx context.Context, teamID string, from, to time.Time) ([]domain.Transaction, error) {
	args := m.Called(ctx, teamID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) CountTransactionsInWindow(ctx context.Context, teamID string, from, to time.Time) (int, error) {
	args := m.Called(ctx, teamID, from, to)
	return args.Int(0), args.Error(1)
}

func (m *MockTransactionRepository) LatestTransactionDate(ctx context.Context, teamID string, from, to time.Time) (*time.Time, error) {
	args := m.Called(ctx, teamID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockTransactionRepository) SumEnvelopeSpend(ctx context.Context, envelopeID string, from, to *time.Time, excludeID string) (decimal.Decimal, int, error) {
	args := m.Called(ctx, envelopeID, from, to, excludeID)
	return args.Get(0).(decimal.Decimal), args.Int(1), args.Error(2)
}

func (m *MockTransactionRepository) SumCategorySpend(ctx context.Context, teamID, seasonLabel, excludeID string) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, teamID, seasonLabel, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

func (m *MockTransactionRepository) SaveTransaction(ctx context.Context, tx domain.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) UpdateTransaction(ctx context.Context, tx domain.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// MockBudgetRepository is a mock type for the BudgetRepositoryFacade interface
type MockBudgetRepository struct {
	mock.Mock
}

func (m *MockBudgetRepository) FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	args := m.Called(ctx, budgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Budget), args.Error(1)
}

func (m *MockBudgetRepository) FindBudgetByTeamSeason(ctx context.Context, teamID, seasonLabel string) (*domain.Budget, error) {
	args := m.Called(ctx, teamID, seasonLabel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Budget), args.Error(1)
}

func (m *MockBudgetRepository) FindLockedBudgetByTeam(ctx context.Context, teamID string) (*domain.Budget, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Budget), args.Error(1)
}

func (m *MockBudgetRepository) FindVersionByID(ctx context.Context, versionID string) (*domain.BudgetVersion, error) {
	args := m.Called(ctx, versionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetVersion), args.Error(1)
}

func (m *MockBudgetRepository) LatestVersionNumber(ctx context.Context, budgetID string) (int, error) {
	args := m.Called(ctx, budgetID)
	return args.Int(0), args.Error(1)
}

func (m *MockBudgetRepository) CountApprovals(ctx context.Context, versionID string) (int, error) {
	args := m.Called(ctx, versionID)
	return args.Int(0), args.Error(1)
}

func (m *MockBudgetRepository) SaveBudget(ctx context.Context, budget domain.Budget) error {
	args := m.Called(ctx, budget)
	return args.Error(0)
}

func (m *MockBudgetRepository) SaveVersion(ctx context.Context, version domain.BudgetVersion) error {
	args := m.Called(ctx, version)
	return args.Error(0)
}

func (m *MockBudgetRepository) SaveApproval(ctx context.Context, approval domain.BudgetVersionApproval) error {
	args := m.Called(ctx, approval)
	return args.Error(0)
}

func (m *MockBudgetRepository) FindThresholdConfig(ctx context.Context, budgetID string) (*domain.BudgetThresholdConfig, error) {
	args := m.Called(ctx, budgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetThresholdConfig), args.Error(1)
}

func (m *MockBudgetRepository) UpsertThresholdConfig(ctx context.Context, cfg domain.BudgetThresholdConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

// MockEnvelopeRepository is a mock type for the EnvelopeRepositoryFacade interface
type MockEnvelopeRepository struct {
	mock.Mock
}

func (m *MockEnvelopeRepository) FindEnvelopeByID(ctx context.Context, envelopeID string) (*domain.Envelope, error) {
	args := m.Called(ctx, envelopeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Envelope), args.Error(1)
}

func (m *MockEnvelopeRepository) ListEnvelopesByBudget(ctx context.Context, budgetID string, activeOnly bool) ([]domain.Envelope, error) {
	args := m.Called(ctx, budgetID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Envelope), args.Error(1)
}

func (m *MockEnvelopeRepository) ListActiveEnvelopesForCategory(ctx context.Context, budgetID, categoryID string) ([]domain.Envelope, error) {
	args := m.Called(ctx, budgetID, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Envelope), args.Error(1)
}

func (m *MockEnvelopeRepository) SaveEnvelope(ctx context.Context, envelope domain.Envelope) error {
	args := m.Called(ctx, envelope)
	return args.Error(0)
}

func (m *MockEnvelopeRepository) DeactivateEnvelope(ctx context.Context, envelopeID, userID string, at time.Time) error {
	args := m.Called(ctx, envelopeID, userID, at)
	return args.Error(0)
}

// MockTeamSeasonRepository is a mock type for the TeamSeasonRepositoryFacade interface
type MockTeamSeasonRepository struct {
	mock.Mock
}

func (m *MockTeamSeasonRepository) FindTeamSeasonByID(ctx context.Context, teamSeasonID string) (*domain.TeamSeason, error) {
	args := m.Called(ctx, teamSeasonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TeamSeason), args.Error(1)
}

func (m *MockTeamSeasonRepository) FindTeamSeasonByTeamAndLabel(ctx context.Context, teamID, seasonLabel string) (*domain.TeamSeason, error) {
	args := m.Called(ctx, teamID, seasonLabel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TeamSeason), args.Error(1)
}

func (m *MockTeamSeasonRepository) ListStateChanges(ctx context.Context, teamSeasonID string) ([]domain.StateChange, error) {
	args := m.Called(ctx, teamSeasonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StateChange), args.Error(1)
}

func (m *MockTeamSeasonRepository) LatestStateChangeAt(ctx context.Context, teamSeasonID string) (*time.Time, error) {
	args := m.Called(ctx, teamSeasonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockTeamSeasonRepository) SaveTeamSeason(ctx context.Context, ts domain.TeamSeason) error {
	args := m.Called(ctx, ts)
	return args.Error(0)
}

func (m *MockTeamSeasonRepository) ApplyTransition(ctx context.Context, rec portsrepo.TransitionRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockTeamSeasonRepository) UpdateRollup(ctx context.Context, teamSeasonID string, eligibleFamilies, approvals int, lastActivityAt *time.Time) error {
	args := m.Called(ctx, teamSeasonID, eligibleFamilies, approvals, lastActivityAt)
	return args.Error(0)
}

// MockTeamRepository is a mock type for the TeamRepositoryFacade interface
type MockTeamRepository struct {
	mock.Mock
}

func (m *MockTeamRepository) FindTeamByID(ctx context.Context, teamID string) (*domain.Team, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Team), args.Error(1)
}

func (m *MockTeamRepository) FindTeamSettings(ctx context.Context, teamID string) (*domain.TeamSettings, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TeamSettings), args.Error(1)
}

func (m *MockTeamRepository) CountEligibleFamilies(ctx context.Context, teamID string) (int, error) {
	args := m.Called(ctx, teamID)
	return args.Int(0), args.Error(1)
}

func (m *MockTeamRepository) ListContactEmails(ctx context.Context, teamID string, roles []domain.Role) ([]string, error) {
	args := m.Called(ctx, teamID, roles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockTeamRepository) FindTeamMember(ctx context.Context, teamID, userID string) (*domain.TeamMember, error) {
	args := m.Called(ctx, teamID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TeamMember), args.Error(1)
}

func (m *MockTeamRepository) FindAssociationMember(ctx context.Context, associationID, userID string) (*domain.AssociationMember, error) {
	args := m.Called(ctx, associationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AssociationMember), args.Error(1)
}

func (m *MockTeamRepository) FindGovernance(ctx context.Context, associationID string) (*domain.AssociationGovernance, error) {
	args := m.Called(ctx, associationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AssociationGovernance), args.Error(1)
}

// MockAuditRepository is a mock type for the AuditRepository interface
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) SaveAuditEntry(ctx context.Context, entry domain.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// --- Service mocks ---

// MockTeamSvc is a mock type for the TeamSvcFacade interface
type MockTeamSvc struct {
	mock.Mock
}

func (m *MockTeamSvc) FindTeamByID(ctx context.Context, teamID string) (*domain.Team, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Team), args.Error(1)
}

func (m *MockTeamSvc) Settings(ctx context.Context, teamID string) (domain.TeamSettings, error) {
	args := m.Called(ctx, teamID)
	return args.Get(0).(domain.TeamSettings), args.Error(1)
}

func (m *MockTeamSvc) Governance(ctx context.Context, associationID *string) (domain.AssociationGovernance, error) {
	args := m.Called(ctx, associationID)
	return args.Get(0).(domain.AssociationGovernance), args.Error(1)
}

func (m *MockTeamSvc) ContactEmails(ctx context.Context, teamID string, roles ...domain.Role) ([]string, error) {
	args := m.Called(ctx, teamID, roles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockTeamSvc) AuthorizeTeamAction(ctx context.Context, userID, teamID string, roles ...domain.Role) (*domain.TeamMember, error) {
	args := m.Called(ctx, userID, teamID, roles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TeamMember), args.Error(1)
}

func (m *MockTeamSvc) ResolveActor(ctx context.Context, userID string, ts domain.TeamSeason, action domain.TeamSeasonAction) (domain.Actor, error) {
	args := m.Called(ctx, userID, ts, action)
	return args.Get(0).(domain.Actor), args.Error(1)
}

// MockLifecycle is a mock type for the TeamSeasonTransitionSvc interface
type MockLifecycle struct {
	mock.Mock
}

func (m *MockLifecycle) Transition(ctx context.Context, teamSeasonID string, action domain.TeamSeasonAction, actor domain.Actor, in domain.TransitionInput) (*domain.TransitionResult, error) {
	args := m.Called(ctx, teamSeasonID, action, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransitionResult), args.Error(1)
}

func (m *MockLifecycle) TransitionAsUser(ctx context.Context, teamSeasonID string, action domain.TeamSeasonAction, userID string, in domain.TransitionInput) (*domain.TransitionResult, error) {
	args := m.Called(ctx, teamSeasonID, action, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransitionResult), args.Error(1)
}

// MockThresholdSvc is a mock type for the ThresholdSvc interface
type MockThresholdSvc struct {
	mock.Mock
}

func (m *MockThresholdSvc) CheckAndLockBudget(ctx context.Context, teamSeasonID, versionID string) (*domain.LockCheckResult, error) {
	args := m.Called(ctx, teamSeasonID, versionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LockCheckResult), args.Error(1)
}

func (m *MockThresholdSvc) AutoActivateOnFirstTransaction(ctx context.Context, teamID, seasonLabel string) (bool, error) {
	args := m.Called(ctx, teamID, seasonLabel)
	return args.Bool(0), args.Error(1)
}

func (m *MockThresholdSvc) RefreshRollup(ctx context.Context, teamSeasonID string) (*domain.TeamSeason, error) {
	args := m.Called(ctx, teamSeasonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TeamSeason), args.Error(1)
}

// MockMatcher is a mock type for the EnvelopeMatcherSvc interface
type MockMatcher struct {
	mock.Mock
}

func (m *MockMatcher) Match(ctx context.Context, tx domain.Transaction) (domain.MatchResult, error) {
	args := m.Called(ctx, tx)
	return args.Get(0).(domain.MatchResult), args.Error(1)
}

// MockRouter is a mock type for the TransactionRouterSvc interface
type MockRouter struct {
	mock.Mock
}

func (m *MockRouter) Route(ctx context.Context, tx domain.Transaction, approvalThreshold decimal.Decimal) (domain.RouteResult, error) {
	args := m.Called(ctx, tx, approvalThreshold)
	return args.Get(0).(domain.RouteResult), args.Error(1)
}

// MockDispatcher is a mock type for the AutoTransitionDispatcher interface
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, ev domain.Event) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

// MockNotifier is a mock type for the Notifier interface
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) BudgetLocked(ctx context.Context, ts domain.TeamSeason, versionID string) {
	m.Called(ctx, ts, versionID)
}

func (m *MockNotifier) AssociationChangesRequested(ctx context.Context, ts domain.TeamSeason, notes string) {
	m.Called(ctx, ts, notes)
}

func (m *MockNotifier) ExceptionRaised(ctx context.Context, tx domain.Transaction) {
	m.Called(ctx, tx)
}

// MockAnalytics is a mock type for the AnalyticsSink interface
type MockAnalytics struct {
	mock.Mock
}

func (m *MockAnalytics) Track(ctx context.Context, distinctID, event string, properties map[string]any) {
	m.Called(ctx, distinctID, event, properties)
}

// --- Helpers ---

var fixedNow = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func strPtr(s string) *string { return &s }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func timePtr(t time.Time) *time.Time { return &t }

var assertErr = errors.New("database unavailable")
