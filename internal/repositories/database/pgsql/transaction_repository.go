package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/SscSPs/team_finance_engine/internal/apperrors"
	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/team_finance_engine/internal/core/ports/repositories"
	"github.com/SscSPs/team_finance_engine/internal/models"
	"github.com/SscSPs/team_finance_engine/internal/utils/mapping"
	"github.com/SscSPs/team_finance_engine/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const transactionColumns = `
	transaction_id, team_id, season_label, transaction_type, status, amount,
	category_id, system_category_id, vendor, description, transaction_date,
	receipt_url, external_id, pending, validation, exception_severity, exception_reason,
	envelope_id, approval_reason, resolved_at, resolved_by, deleted_at,
	created_at, created_by, last_updated_at, last_updated_by`

// spendStatuses are the stored statuses, legacy ones included, that consume budget.
var spendStatuses = func() []string {
	var out []string
	for _, s := range []domain.TransactionStatus{domain.StatusValidated, domain.StatusResolved, domain.StatusLocked} {
		out = append(out, s.StoredForms()...)
	}
	return out
}()

type PgxTransactionRepository struct {
	BaseRepository
}

func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.TeamID,
		&m.SeasonLabel,
		&m.TransactionType,
		&m.Status,
		&m.Amount,
		&m.CategoryID,
		&m.SystemCategoryID,
		&m.Vendor,
		&m.Description,
		&m.TransactionDate,
		&m.ReceiptURL,
		&m.ExternalID,
		&m.Pending,
		&m.Validation,
		&m.ExceptionSeverity,
		&m.ExceptionReason,
		&m.EnvelopeID,
		&m.ApprovalReason,
		&m.ResolvedAt,
		&m.ResolvedBy,
		&m.DeletedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxTransactionRepository) findOne(ctx context.Context, where string, args ...any) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions ` + where + `;`
	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find transaction", err)
	}
	tx, err := mapping.ToDomainTransaction(m)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to map transaction "+m.TransactionID, err)
	}
	return &tx, nil
}

func (r *PgxTransactionRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query transactions", err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan transaction row", err)
		}
		transactions = append(transactions, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating transaction rows", err)
	}
	return transactions, nil
}

func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return r.findOne(ctx, `WHERE transaction_id = $1`, transactionID)
}

func (r *PgxTransactionRepository) FindTransactionByExternalID(ctx context.Context, teamID, externalID string) (*domain.Transaction, error) {
	return r.findOne(ctx, `WHERE team_id = $1 AND external_id = $2`, teamID, externalID)
}

// ListTransactionsByTeam retrieves a page of a team's transactions using token-based pagination.
// It returns the transactions, a token for the next page, and an error.
func (r *PgxTransactionRepository) ListTransactionsByTeam(ctx context.Context, teamID string, filter portsrepo.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE team_id = $1 AND deleted_at IS NULL`
	args := []any{teamID}

	if filter.Status != nil {
		args = append(args, filter.Status.StoredForms())
		query += ` AND status = ANY($` + strconv.Itoa(len(args)) + `)`
	}
	if filter.SeasonLabel != nil {
		args = append(args, *filter.SeasonLabel)
		query += ` AND season_label = $` + strconv.Itoa(len(args))
	}
	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken", apperrors.ErrValidation)
		}
		args = append(args, lastDate, lastCreatedAt)
		query += ` AND (transaction_date, created_at) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}
	args = append(args, fetchLimit)
	query += ` ORDER BY transaction_date DESC, created_at DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.queryTransactions(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}

	var nextTokenVal *string
	if len(rows) > limit {
		last := rows[limit-1]
		token := pagination.EncodeToken(last.TransactionDate, last.CreatedAt)
		nextTokenVal = &token
		rows = rows[:limit]
	}

	transactions, err := mapping.ToDomainTransactionSlice(rows)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to map transactions of team "+teamID, err)
	}
	return transactions, nextTokenVal, nil
}

func (r *PgxTransactionRepository) ListTransactionsInWindow(ctx context.Context, teamID string, from, to time.Time) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE team_id = $1 AND deleted_at IS NULL AND transaction_date BETWEEN $2 AND $3
		ORDER BY transaction_date ASC, created_at ASC;`
	rows, err := r.queryTransactions(ctx, query, teamID, from, to)
	if err != nil {
		return nil, err
	}
	transactions, err := mapping.ToDomainTransactionSlice(rows)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to map transactions of team "+teamID, err)
	}
	return transactions, nil
}

func (r *PgxTransactionRepository) CountTransactionsInWindow(ctx context.Context, teamID string, from, to time.Time) (int, error) {
	var count int
	err := r.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM transactions WHERE team_id = $1 AND deleted_at IS NULL AND transaction_date BETWEEN $2 AND $3;`,
		teamID, from, to,
	).Scan(&count)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to count transactions of team "+teamID, err)
	}
	return count, nil
}

func (r *PgxTransactionRepository) LatestTransactionDate(ctx context.Context, teamID string, from, to time.Time) (*time.Time, error) {
	var latest *time.Time
	err := r.Pool.QueryRow(ctx,
		`SELECT MAX(transaction_date) FROM transactions WHERE team_id = $1 AND deleted_at IS NULL AND transaction_date BETWEEN $2 AND $3;`,
		teamID, from, to,
	).Scan(&latest)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to find latest transaction date of team "+teamID, err)
	}
	return latest, nil
}

func (r *PgxTransactionRepository) SumEnvelopeSpend(ctx context.Context, envelopeID string, from, to *time.Time, excludeID string) (decimal.Decimal, int, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0), COUNT(*)
		FROM transactions
		WHERE envelope_id = $1
		  AND deleted_at IS NULL
		  AND transaction_type = $2
		  AND status = ANY($3)
		  AND ($4::date IS NULL OR transaction_date >= $4::date)
		  AND ($5::date IS NULL OR transaction_date < $5::date)
		  AND transaction_id <> $6;
	`
	var spent decimal.Decimal
	var count int
	err := r.Pool.QueryRow(ctx, query, envelopeID, string(domain.Expense), spendStatuses, from, to, excludeID).Scan(&spent, &count)
	if err != nil {
		return decimal.Zero, 0, apperrors.NewAppError(500, "failed to sum spend of envelope "+envelopeID, err)
	}
	return spent, count, nil
}

func (r *PgxTransactionRepository) SumCategorySpend(ctx context.Context, teamID, seasonLabel, excludeID string) (map[string]decimal.Decimal, error) {
	// The grouping key mirrors domain.Transaction.BudgetCategoryID.
	query := `
		SELECT budget_category, SUM(amount)
		FROM (
			SELECT COALESCE(NULLIF(system_category_id, ''), NULLIF(category_id, '')) AS budget_category, amount
			FROM transactions
			WHERE team_id = $1
			  AND season_label = $2
			  AND deleted_at IS NULL
			  AND transaction_type = $3
			  AND status = ANY($4)
			  AND transaction_id <> $5
		) spend
		WHERE budget_category IS NOT NULL
		GROUP BY budget_category;
	`
	rows, err := r.Pool.Query(ctx, query, teamID, seasonLabel, string(domain.Expense), spendStatuses, excludeID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to sum category spend of team "+teamID, err)
	}
	defer rows.Close()

	spend := map[string]decimal.Decimal{}
	for rows.Next() {
		var categoryID string
		var total decimal.Decimal
		if err := rows.Scan(&categoryID, &total); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan category spend row", err)
		}
		spend[categoryID] = total
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating category spend rows", err)
	}
	return spend, nil
}

func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, tx domain.Transaction) error {
	m, err := mapping.ToModelTransaction(tx)
	if err != nil {
		return apperrors.NewAppError(500, "failed to map transaction "+tx.TransactionID, err)
	}
	query := `INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26);`
	_, err = r.Pool.Exec(ctx, query,
		m.TransactionID,
		m.TeamID,
		m.SeasonLabel,
		m.TransactionType,
		m.Status,
		m.Amount,
		m.CategoryID,
		m.SystemCategoryID,
		m.Vendor,
		m.Description,
		m.TransactionDate,
		m.ReceiptURL,
		m.ExternalID,
		m.Pending,
		m.Validation,
		m.ExceptionSeverity,
		m.ExceptionReason,
		m.EnvelopeID,
		m.ApprovalReason,
		m.ResolvedAt,
		m.ResolvedBy,
		m.DeletedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return fmt.Errorf("%w: transaction %s already exists", apperrors.ErrDuplicate, m.TransactionID)
		}
		return apperrors.NewAppError(500, "failed to save transaction "+m.TransactionID, err)
	}
	return nil
}

func (r *PgxTransactionRepository) UpdateTransaction(ctx context.Context, tx domain.Transaction) error {
	m, err := mapping.ToModelTransaction(tx)
	if err != nil {
		return apperrors.NewAppError(500, "failed to map transaction "+tx.TransactionID, err)
	}
	query := `
		UPDATE transactions SET
			status = $2,
			amount = $3,
			category_id = $4,
			system_category_id = $5,
			vendor = $6,
			description = $7,
			transaction_date = $8,
			receipt_url = $9,
			pending = $10,
			validation = $11,
			exception_severity = $12,
			exception_reason = $13,
			envelope_id = $14,
			approval_reason = $15,
			resolved_at = $16,
			resolved_by = $17,
			deleted_at = $18,
			last_updated_at = $19,
			last_updated_by = $20
		WHERE transaction_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.TransactionID,
		m.Status,
		m.Amount,
		m.CategoryID,
		m.SystemCategoryID,
		m.Vendor,
		m.Description,
		m.TransactionDate,
		m.ReceiptURL,
		m.Pending,
		m.Validation,
		m.ExceptionSeverity,
		m.ExceptionReason,
		m.EnvelopeID,
		m.ApprovalReason,
		m.ResolvedAt,
		m.ResolvedBy,
		m.DeletedAt,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update transaction "+m.TransactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
