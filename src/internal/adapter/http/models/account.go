package models

import (
	"fmt"
	"strings"

	"github.com/api-sage/ledger-service/src/internal/domain"
	"github.com/shopspring/decimal"
)

type CreateAccountRequest struct {
	Name          string          `json:"name"`
	AvailableCash decimal.Decimal `json:"available_cash"`
}

func (r CreateAccountRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, "name is required")
	}
	if r.AvailableCash.IsNegative() {
		errs = append(errs, "available_cash cannot be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidAccount, strings.Join(errs, "; "))
	}
	return nil
}

type AccountResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	AvailableCash string `json:"available_cash"`
}

func NewAccountResponse(account domain.Account) AccountResponse {
	return AccountResponse{
		ID:            account.ID,
		Name:          account.Name,
		AvailableCash: account.AvailableCash.StringFixed(2),
	}
}

func NewAccountListResponse(accounts []domain.Account) []AccountResponse {
	out := make([]AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, NewAccountResponse(account))
	}
	return out
}
