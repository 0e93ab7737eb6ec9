package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the append-only audit record of a transfer attempt. The row
// is persisted before any validation, so rejected attempts remain auditable.
// Once Success is true and ExecutedTime is set the record never changes again.
type Transaction struct {
	ID                   int64
	Reference            string
	CashAmount           decimal.Decimal
	SourceAccountID      int64
	DestinationAccountID int64
	RegisteredTime       time.Time
	ExecutedTime         *time.Time
	Success              bool
}
