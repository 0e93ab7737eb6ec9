package service_interfaces

import (
	"context"

	"github.com/api-sage/ledger-service/src/internal/adapter/http/models"
	"github.com/api-sage/ledger-service/src/internal/commons"
)

type AccountService interface {
	CreateAccount(ctx context.Context, req models.CreateAccountRequest) (commons.Response[models.AccountResponse], error)
	GetAccount(ctx context.Context, id int64) (commons.Response[models.AccountResponse], error)
	ListAccounts(ctx context.Context) (commons.Response[[]models.AccountResponse], error)
}
