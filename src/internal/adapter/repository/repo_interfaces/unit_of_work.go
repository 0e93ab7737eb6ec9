package repo_interfaces

import (
	"context"

	"github.com/api-sage/ledger-service/src/internal/domain"
	"github.com/shopspring/decimal"
)

// UnitOfWork scopes the locked portion of a single transfer. Every LedgerTx
// must end in exactly one Commit or Rollback; both release all held locks.
type UnitOfWork interface {
	Begin(ctx context.Context) (LedgerTx, error)
}

type LedgerTx interface {
	// GetAccountForUpdate loads an account and holds an exclusive lock on it
	// until the unit of work ends. Callers must acquire accounts in ascending
	// id order; two transfers over the same pair then always lock in the same
	// sequence and cannot deadlock.
	GetAccountForUpdate(ctx context.Context, id int64) (domain.Account, error)
	UpdateAccountBalance(ctx context.Context, id int64, balance decimal.Decimal) error
	// MarkTransactionExecuted flips the intent row to success and stamps the
	// execution time. It only touches rows with success = FALSE; an executed
	// transaction never transitions again.
	MarkTransactionExecuted(ctx context.Context, transactionID int64) (domain.Transaction, error)
	Commit() error
	Rollback() error
}
