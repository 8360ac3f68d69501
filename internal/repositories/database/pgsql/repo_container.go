package pgsql

import (
	portsrepo "github.com/SscSPs/team_finance_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TransactionRepo: newPgxTransactionRepository(dbPool),
		BudgetRepo:      newPgxBudgetRepository(dbPool),
		EnvelopeRepo:    newPgxEnvelopeRepository(dbPool),
		TeamSeasonRepo:  newPgxTeamSeasonRepository(dbPool),
		TeamRepo:        newPgxTeamRepository(dbPool),
		AuditRepo:       newPgxAuditRepository(dbPool),
	}
}
