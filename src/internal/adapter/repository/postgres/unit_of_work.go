package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/api-sage/ledger-service/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/ledger-service/src/internal/commons"
	"github.com/api-sage/ledger-service/src/internal/domain"
	"github.com/api-sage/ledger-service/src/internal/logger"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type UnitOfWork struct {
	db *sql.DB
}

func NewUnitOfWork(db *sql.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) Begin(ctx context.Context) (repo_interfaces.LedgerTx, error) {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("unit of work begin failed", err, nil)
		return nil, fmt.Errorf("begin ledger transaction: %w", err)
	}

	return &ledgerTx{tx: tx}, nil
}

type ledgerTx struct {
	tx *sql.Tx
}

func (t *ledgerTx) GetAccountForUpdate(ctx context.Context, id int64) (domain.Account, error) {
	const query = `
SELECT id, name, available_cash, created_at, updated_at
FROM accounts
WHERE id = $1
FOR UPDATE`

	account, err := scanAccount(t.tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, commons.ErrRecordNotFound
		}
		logger.Error("unit of work lock account failed", err, logger.Fields{
			"accountId": id,
		})
		return domain.Account{}, fmt.Errorf("lock account %d: %w", id, err)
	}

	return account, nil
}

func (t *ledgerTx) UpdateAccountBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	const query = `
UPDATE accounts
SET available_cash = $2::numeric,
    updated_at = NOW()
WHERE id = $1`

	result, err := t.tx.ExecContext(ctx, query, id, balance.String())
	if err != nil {
		logger.Error("unit of work update balance failed", err, logger.Fields{
			"accountId": id,
		})
		return fmt.Errorf("update account %d balance: %w", id, classifyError(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update account %d balance rows affected: %w", id, err)
	}
	if rows == 0 {
		return commons.ErrRecordNotFound
	}

	return nil
}

func (t *ledgerTx) MarkTransactionExecuted(ctx context.Context, transactionID int64) (domain.Transaction, error) {
	const query = `
UPDATE transactions
SET success = TRUE,
    executed_time = NOW()
WHERE id = $1
  AND success = FALSE
RETURNING id, reference, cash_amount, source_account_id, destination_account_id,
          registered_time, executed_time, success`

	transaction, err := scanTransaction(t.tx.QueryRowContext(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Transaction{}, commons.ErrRecordNotFound
		}
		logger.Error("unit of work mark executed failed", err, logger.Fields{
			"transactionId": transactionID,
		})
		return domain.Transaction{}, fmt.Errorf("mark transaction %d executed: %w", transactionID, err)
	}

	return transaction, nil
}

func (t *ledgerTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		logger.Error("unit of work commit failed", err, nil)
		return fmt.Errorf("commit ledger transaction: %w", classifyError(err))
	}
	return nil
}

func (t *ledgerTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil {
		if errors.Is(err, sql.ErrTxDone) {
			return nil
		}
		return fmt.Errorf("rollback ledger transaction: %w", err)
	}
	return nil
}

// classifyError surfaces the Postgres condition behind a posting failure so
// the log line names it. 23514 is the non-negative balance check, 40P01 a
// deadlock, 40001 a serialization failure.
func classifyError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case "23514":
			return fmt.Errorf("balance constraint violated: %w", err)
		case "40P01":
			return fmt.Errorf("deadlock detected: %w", err)
		case "40001":
			return fmt.Errorf("serialization failure: %w", err)
		}
	}
	return err
}
