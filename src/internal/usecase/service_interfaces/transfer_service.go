package service_interfaces

import (
	"context"

	"github.com/api-sage/ledger-service/src/internal/adapter/http/models"
	"github.com/api-sage/ledger-service/src/internal/commons"
)

type TransferService interface {
	ProcessTransfer(ctx context.Context, req models.CreateTransactionRequest) (commons.Response[models.TransactionResponse], error)
	ListTransactions(ctx context.Context) (commons.Response[[]models.TransactionResponse], error)
}
