package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a ledger account. AvailableCash never goes below zero in any
// committed state; only the transfer processor mutates it, under a row lock.
type Account struct {
	ID            int64
	Name          string
	AvailableCash decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
