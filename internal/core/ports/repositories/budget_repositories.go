package repositories

import (
	"context"

	"github.com/SscSPs/team_finance_engine/internal/core/domain"
)

// BudgetReader defines read operations for budget data
type BudgetReader interface {
	// FindBudgetByID retrieves a budget by its ID.
	FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error)

	// FindBudgetByTeamSeason retrieves the single budget of a team for a season.
	FindBudgetByTeamSeason(ctx context.Context, teamID, seasonLabel string) (*domain.Budget, error)

	// FindLockedBudgetByTeam retrieves the team's budget currently in LOCKED status.
	FindLockedBudgetByTeam(ctx context.Context, teamID string) (*domain.Budget, error)
}

// BudgetVersionReader defines read operations for budget versions and their approvals
type BudgetVersionReader interface {
	// FindVersionByID retrieves a version together with its allocations.
	FindVersionByID(ctx context.Context, versionID string) (*domain.BudgetVersion, error)

	// LatestVersionNumber returns the highest version number of a budget, 0 when none.
	LatestVersionNumber(ctx context.Context, budgetID string) (int, error)

	// CountApprovals counts family acknowledgements of a version.
	CountApprovals(ctx context.Context, versionID string) (int, error)
}

// BudgetWriter defines write operations for budget data
type BudgetWriter interface {
	// SaveBudget persists a new budget.
	SaveBudget(ctx context.Context, budget domain.Budget) error

	// SaveVersion persists a version with its allocations and makes it the budget's current version.
	SaveVersion(ctx context.Context, version domain.BudgetVersion) error

	// SaveApproval records a family acknowledgement. A repeat for the same family returns ErrDuplicate.
	SaveApproval(ctx context.Context, approval domain.BudgetVersionApproval) error
}

// ThresholdConfigRepository persists the lock quorum of a budget.
type ThresholdConfigRepository interface {
	FindThresholdConfig(ctx context.Context, budgetID string) (*domain.BudgetThresholdConfig, error)
	UpsertThresholdConfig(ctx context.Context, cfg domain.BudgetThresholdConfig) error
}

// BudgetRepositoryFacade combines all budget-related repository interfaces
type BudgetRepositoryFacade interface {
	BudgetReader
	BudgetVersionReader
	BudgetWriter
	ThresholdConfigRepository
}
