package models

import (
	"time"

	"github.com/api-sage/ledger-service/src/internal/domain"
	"github.com/shopspring/decimal"
)

type CreateTransactionRequest struct {
	CashAmount           decimal.Decimal `json:"cash_amount"`
	SourceAccountID      int64           `json:"source_account_id"`
	DestinationAccountID int64           `json:"destination_account_id"`
}

// Validate covers only the checks that need no storage access. The processor
// calls it after the intent row is persisted, so rejected requests still
// leave an audit record.
func (r CreateTransactionRequest) Validate() error {
	if r.CashAmount.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidAmount
	}
	if r.SourceAccountID == r.DestinationAccountID {
		return domain.ErrSameAccount
	}
	return nil
}

type TransactionResponse struct {
	ID                   int64  `json:"id"`
	Reference            string `json:"reference"`
	CashAmount           string `json:"cash_amount"`
	SourceAccountID      int64  `json:"source_account_id"`
	DestinationAccountID int64  `json:"destination_account_id"`
	RegisteredTime       string `json:"registered_time"`
	ExecutedTime         string `json:"executed_time,omitempty"`
	Success              bool   `json:"success"`
}

func NewTransactionResponse(transaction domain.Transaction) TransactionResponse {
	response := TransactionResponse{
		ID:                   transaction.ID,
		Reference:            transaction.Reference,
		CashAmount:           transaction.CashAmount.StringFixed(2),
		SourceAccountID:      transaction.SourceAccountID,
		DestinationAccountID: transaction.DestinationAccountID,
		RegisteredTime:       transaction.RegisteredTime.UTC().Format(time.RFC3339Nano),
		Success:              transaction.Success,
	}
	if transaction.ExecutedTime != nil {
		response.ExecutedTime = transaction.ExecutedTime.UTC().Format(time.RFC3339Nano)
	}
	return response
}

func NewTransactionListResponse(transactions []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(transactions))
	for _, transaction := range transactions {
		out = append(out, NewTransactionResponse(transaction))
	}
	return out
}
