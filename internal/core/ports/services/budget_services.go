package services

import (
	"context"
	"io"
	"time"

	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	"github.com/SscSPs/team_finance_engine/internal/dto"
)

// BudgetReaderSvc defines read operations for budget data
type BudgetReaderSvc interface {
	// GetBudget retrieves a budget and its current version, if any.
	GetBudget(ctx context.Context, budgetID, userID string) (*domain.Budget, *domain.BudgetVersion, error)

	// ApprovalProgress reports the acknowledgement count of the presented version.
	ApprovalProgress(ctx context.Context, budgetID, userID string) (*dto.ApprovalProgressResponse, error)
}

// BudgetWriterSvc defines write operations for budget data
type BudgetWriterSvc interface {
	// CreateBudget opens a team season and its budget, then starts budgeting.
	CreateBudget(ctx context.Context, teamID string, req dto.CreateBudgetRequest, userID string) (*domain.Budget, error)

	// CreateVersion adds a version and makes it current.
	CreateVersion(ctx context.Context, budgetID string, req dto.CreateBudgetVersionRequest, userID string) (*domain.BudgetVersion, error)

	// UpsertThresholdConfig sets the lock quorum.
	UpsertThresholdConfig(ctx context.Context, budgetID string, req dto.UpsertThresholdRequest, userID string) (*domain.BudgetThresholdConfig, error)

	// RecordParentApproval stores a family acknowledgement and may auto-lock the budget.
	RecordParentApproval(ctx context.Context, budgetID, versionID string, req dto.RecordApprovalRequest, userID string) (*dto.RecordApprovalResponse, error)
}

// BudgetSvcFacade combines all budget-related service interfaces
type BudgetSvcFacade interface {
	BudgetReaderSvc
	BudgetWriterSvc
}

// EnvelopeSvcFacade manages pre-authorized envelopes.
type EnvelopeSvcFacade interface {
	CreateEnvelope(ctx context.Context, budgetID string, req dto.CreateEnvelopeRequest, userID string) (*domain.Envelope, error)
	ListEnvelopes(ctx context.Context, budgetID, userID string) ([]domain.Envelope, error)
	DeactivateEnvelope(ctx context.Context, envelopeID, userID string) error

	// SpendingSummary reports usage of an envelope for the period containing asOf.
	SpendingSummary(ctx context.Context, envelopeID string, asOf time.Time, userID string) (*domain.EnvelopeSpendingSummary, error)

	// ExportSpendingSummary writes an xlsx workbook of all envelope summaries of a budget.
	ExportSpendingSummary(ctx context.Context, budgetID string, asOf time.Time, userID string, w io.Writer) error
}

// ThresholdSvc evaluates the automatic lifecycle transitions.
type ThresholdSvc interface {
	// CheckAndLockBudget locks a presented budget once its quorum is met.
	CheckAndLockBudget(ctx context.Context, teamSeasonID, versionID string) (*domain.LockCheckResult, error)

	// AutoActivateOnFirstTransaction starts the season on its first transaction.
	AutoActivateOnFirstTransaction(ctx context.Context, teamID, seasonLabel string) (bool, error)

	// RefreshRollup recomputes the denormalized counters of a team season.
	RefreshRollup(ctx context.Context, teamSeasonID string) (*domain.TeamSeason, error)
}

// AutoTransitionDispatcher routes events to their candidate automatic transition.
type AutoTransitionDispatcher interface {
	Dispatch(ctx context.Context, ev domain.Event) error
}
