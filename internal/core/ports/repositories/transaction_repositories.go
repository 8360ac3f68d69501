package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionFilter narrows a transaction listing. Nil fields are ignored.
type TransactionFilter struct {
	Status      *domain.TransactionStatus
	SeasonLabel *string
}

// TransactionReader defines read operations for transaction data
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction, including soft-deleted ones.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindTransactionByExternalID looks up a feed transaction by its bank-side id.
	FindTransactionByExternalID(ctx context.Context, teamID, externalID string) (*domain.Transaction, error)

	// ListTransactionsByTeam retrieves a page of a team's transactions, newest first.
	// It returns the transactions, a token for the next page, and an error.
	ListTransactionsByTeam(ctx context.Context, teamID string, filter TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// ListTransactionsInWindow returns non-deleted team transactions dated within [from, to].
	ListTransactionsInWindow(ctx context.Context, teamID string, from, to time.Time) ([]domain.Transaction, error)

	// CountTransactionsInWindow counts non-deleted team transactions dated within [from, to].
	CountTransactionsInWindow(ctx context.Context, teamID string, from, to time.Time) (int, error)

	// LatestTransactionDate returns the most recent transaction date in [from, to], nil when none.
	LatestTransactionDate(ctx context.Context, teamID string, from, to time.Time) (*time.Time, error)
}

// SpendReader aggregates committed spend for budget and envelope checks.
type SpendReader interface {
	// SumEnvelopeSpend sums approved spend tied to an envelope. Nil bounds mean unbounded;
	// the window is [from, to). The transaction excludeID is left out of the sum, so a
	// transaction being re-evaluated is not counted against itself. Pass "" to count all.
	SumEnvelopeSpend(ctx context.Context, envelopeID string, from, to *time.Time, excludeID string) (decimal.Decimal, int, error)

	// SumCategorySpend sums approved expense spend per budget category for a team season,
	// keyed by the same category Transaction.BudgetCategoryID resolves to.
	SumCategorySpend(ctx context.Context, teamID, seasonLabel, excludeID string) (map[string]decimal.Decimal, error)
}

// TransactionWriter defines write operations for transaction data
type TransactionWriter interface {
	// SaveTransaction persists a new transaction. A clash on (team, external id) returns ErrDuplicate.
	SaveTransaction(ctx context.Context, tx domain.Transaction) error

	// UpdateTransaction overwrites the mutable fields of an existing transaction.
	UpdateTransaction(ctx context.Context, tx domain.Transaction) error
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	SpendReader
	TransactionWriter
}
