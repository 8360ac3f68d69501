package services

import (
	"context"

	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	"github.com/SscSPs/team_finance_engine/internal/dto"
	"github.com/shopspring/decimal"
)

// EnvelopeMatcherSvc decides whether an expense fits a pre-authorized envelope.
type EnvelopeMatcherSvc interface {
	Match(ctx context.Context, tx domain.Transaction) (domain.MatchResult, error)
}

// TransactionRouterSvc decides whether a transaction needs human approval.
type TransactionRouterSvc interface {
	Route(ctx context.Context, tx domain.Transaction, approvalThreshold decimal.Decimal) (domain.RouteResult, error)
}

// TransactionReaderSvc defines read operations for transaction data
type TransactionReaderSvc interface {
	// GetTransaction retrieves a transaction the user's team owns.
	GetTransaction(ctx context.Context, transactionID, userID string) (*domain.Transaction, error)

	// ListTransactions retrieves a page of a team's transactions.
	ListTransactions(ctx context.Context, teamID, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// TransactionWriterSvc defines write operations for transaction data
type TransactionWriterSvc interface {
	// CreateTransaction validates, routes and persists a manually entered transaction.
	CreateTransaction(ctx context.Context, teamID string, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, *domain.RouteResult, error)

	// ImportTransactions ingests bank feed candidates. Pending items are stored
	// unvalidated and known external ids are skipped.
	ImportTransactions(ctx context.Context, teamID string, req dto.ImportTransactionsRequest) (*dto.ImportTransactionsResponse, error)

	// RevalidateTransaction re-runs validation against the current budget state.
	RevalidateTransaction(ctx context.Context, transactionID, userID string) (*domain.Transaction, error)
}

// TransactionSvcFacade combines all transaction-related service interfaces
type TransactionSvcFacade interface {
	TransactionReaderSvc
	TransactionWriterSvc
}

// ExceptionSvc resolves transactions held in EXCEPTION.
type ExceptionSvc interface {
	Resolve(ctx context.Context, transactionID string, req dto.ResolveExceptionRequest, userID string) (*domain.ResolutionResult, error)
}
