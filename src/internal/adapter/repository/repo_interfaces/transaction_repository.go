package repo_interfaces

import (
	"context"

	"github.com/api-sage/ledger-service/src/internal/domain"
)

type TransactionRepository interface {
	// Create persists the intent row outside of any unit of work, so it
	// survives whatever happens to the transfer afterwards.
	Create(ctx context.Context, transaction domain.Transaction) (domain.Transaction, error)
	List(ctx context.Context) ([]domain.Transaction, error)
}
