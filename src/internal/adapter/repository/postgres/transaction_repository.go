package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/api-sage/ledger-service/src/internal/domain"
	"github.com/api-sage/ledger-service/src/internal/logger"
	"github.com/shopspring/decimal"
)

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create writes the intent row on the pool connection, outside of any unit of
// work. A transfer rejected later leaves this row behind as its audit trace.
func (r *TransactionRepository) Create(ctx context.Context, transaction domain.Transaction) (domain.Transaction, error) {
	logger.Info("transaction repository create intent", logger.Fields{
		"reference":            transaction.Reference,
		"sourceAccountId":      transaction.SourceAccountID,
		"destinationAccountId": transaction.DestinationAccountID,
	})

	const query = `
INSERT INTO transactions (reference, cash_amount, source_account_id, destination_account_id)
VALUES ($1, $2, $3, $4)
RETURNING id, registered_time, success`

	var (
		id             int64
		registeredTime time.Time
		success        bool
	)

	if err := r.db.QueryRowContext(
		ctx,
		query,
		transaction.Reference,
		transaction.CashAmount.String(),
		transaction.SourceAccountID,
		transaction.DestinationAccountID,
	).Scan(&id, &registeredTime, &success); err != nil {
		logger.Error("transaction repository create intent failed", err, logger.Fields{
			"reference": transaction.Reference,
		})
		return domain.Transaction{}, fmt.Errorf("create transaction intent: %w", err)
	}

	transaction.ID = id
	transaction.RegisteredTime = registeredTime
	transaction.Success = success
	transaction.ExecutedTime = nil

	return transaction, nil
}

func (r *TransactionRepository) List(ctx context.Context) ([]domain.Transaction, error) {
	const query = `
SELECT id, reference, cash_amount, source_account_id, destination_account_id,
       registered_time, executed_time, success
FROM transactions
ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("transaction repository list failed", err, nil)
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]domain.Transaction, 0)
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		transactions = append(transactions, transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}

	return transactions, nil
}

func scanTransaction(scanner interface{ Scan(...any) error }) (domain.Transaction, error) {
	var (
		transaction  domain.Transaction
		amount       string
		executedTime sql.NullTime
	)
	if err := scanner.Scan(
		&transaction.ID,
		&transaction.Reference,
		&amount,
		&transaction.SourceAccountID,
		&transaction.DestinationAccountID,
		&transaction.RegisteredTime,
		&executedTime,
		&transaction.Success,
	); err != nil {
		return domain.Transaction{}, err
	}

	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("parse cash_amount %q: %w", amount, err)
	}
	transaction.CashAmount = parsed

	if executedTime.Valid {
		value := executedTime.Time
		transaction.ExecutedTime = &value
	}

	return transaction, nil
}
