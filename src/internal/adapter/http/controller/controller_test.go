package controller_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/api-sage/ledger-service/src/internal/adapter/http/controller"
	"github.com/api-sage/ledger-service/src/internal/adapter/http/middleware"
	"github.com/api-sage/ledger-service/src/internal/adapter/http/models"
	"github.com/api-sage/ledger-service/src/internal/adapter/http/router"
	"github.com/api-sage/ledger-service/src/internal/adapter/repository/memory"
	"github.com/api-sage/ledger-service/src/internal/commons"
	"github.com/api-sage/ledger-service/src/internal/domain"
	"github.com/api-sage/ledger-service/src/internal/usecase/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, []domain.Account) {
	t.Helper()

	store := memory.NewLedgerStore()
	accountRepo := memory.NewAccountRepository(store)
	transactionRepo := memory.NewTransactionRepository(store)

	accounts := make([]domain.Account, 0, 2)
	for _, seed := range []struct {
		name    string
		balance int64
	}{
		{"Alice", 1000},
		{"Bob", 500},
	} {
		account, err := accountRepo.Create(context.Background(), domain.Account{
			Name:          seed.name,
			AvailableCash: decimal.NewFromInt(seed.balance),
		})
		require.NoError(t, err)
		accounts = append(accounts, account)
	}

	mux := router.New(
		controller.NewAccountController(services.NewAccountService(accountRepo)),
		controller.NewTransactionController(services.NewTransferService(transactionRepo, store)),
	)

	server := httptest.NewServer(middleware.Recover(mux))
	t.Cleanup(server.Close)
	return server, accounts
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []string        `json:"errors"`
}

func postJSON(t *testing.T, url, body string) (int, envelope) {
	t.Helper()

	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return resp.StatusCode, payload
}

func getJSON(t *testing.T, url string) (int, envelope) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return resp.StatusCode, payload
}

func TestPostTransactionsSuccess(t *testing.T) {
	server, _ := newTestServer(t)

	status, payload := postJSON(t, server.URL+"/transactions",
		`{"cash_amount": 200, "source_account_id": 1, "destination_account_id": 2}`)
	require.Equal(t, http.StatusOK, status)
	require.True(t, payload.Success)

	var record struct {
		Success      bool   `json:"success"`
		CashAmount   string `json:"cash_amount"`
		ExecutedTime string `json:"executed_time"`
	}
	require.NoError(t, json.Unmarshal(payload.Data, &record))
	assert.True(t, record.Success)
	assert.Equal(t, "200.00", record.CashAmount)
	assert.NotEmpty(t, record.ExecutedTime)

	status, payload = getJSON(t, server.URL+"/accounts/1")
	require.Equal(t, http.StatusOK, status)
	var account struct {
		AvailableCash string `json:"available_cash"`
	}
	require.NoError(t, json.Unmarshal(payload.Data, &account))
	assert.Equal(t, "800.00", account.AvailableCash)
}

func TestPostTransactionsErrorStatuses(t *testing.T) {
	server, _ := newTestServer(t)

	cases := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"insufficient funds", `{"cash_amount": 1500, "source_account_id": 1, "destination_account_id": 2}`, http.StatusBadRequest, domain.ErrInsufficientFunds.Error()},
		{"negative amount", `{"cash_amount": -100, "source_account_id": 1, "destination_account_id": 2}`, http.StatusBadRequest, domain.ErrInvalidAmount.Error()},
		{"same account", `{"cash_amount": 100, "source_account_id": 1, "destination_account_id": 1}`, http.StatusBadRequest, domain.ErrSameAccount.Error()},
		{"missing source", `{"cash_amount": 100, "source_account_id": 99, "destination_account_id": 2}`, http.StatusNotFound, domain.ErrSourceAccountNotFound.Error()},
		{"missing destination", `{"cash_amount": 100, "source_account_id": 1, "destination_account_id": 99}`, http.StatusNotFound, domain.ErrDestinationAccountNotFound.Error()},
		{"malformed body", `{"cash_amount": `, http.StatusBadRequest, "invalid request body"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := postJSON(t, server.URL+"/transactions", tc.body)
			assert.Equal(t, tc.status, status)
			assert.False(t, payload.Success)
			assert.Equal(t, tc.message, payload.Message)
		})
	}
}

func TestGetTransactionsListsEveryAttempt(t *testing.T) {
	server, _ := newTestServer(t)

	status, _ := postJSON(t, server.URL+"/transactions",
		`{"cash_amount": 100, "source_account_id": 1, "destination_account_id": 2}`)
	require.Equal(t, http.StatusOK, status)

	status, _ = postJSON(t, server.URL+"/transactions",
		`{"cash_amount": -100, "source_account_id": 1, "destination_account_id": 2}`)
	require.Equal(t, http.StatusBadRequest, status)

	status, payload := getJSON(t, server.URL+"/transactions")
	require.Equal(t, http.StatusOK, status)

	var records []struct {
		Success    bool   `json:"success"`
		CashAmount string `json:"cash_amount"`
	}
	require.NoError(t, json.Unmarshal(payload.Data, &records))
	require.Len(t, records, 2)
	assert.True(t, records[0].Success)
	assert.Equal(t, "100.00", records[0].CashAmount)
	assert.False(t, records[1].Success)
}

// faultingTransferService stands in for a processor whose storage is down.
type faultingTransferService struct{}

func (faultingTransferService) ProcessTransfer(context.Context, models.CreateTransactionRequest) (commons.Response[models.TransactionResponse], error) {
	return commons.ErrorResponse[models.TransactionResponse](domain.ErrTransferFailed.Error(), "Unable to complete transfer posting"), domain.ErrTransferFailed
}

func (faultingTransferService) ListTransactions(context.Context) (commons.Response[[]models.TransactionResponse], error) {
	return commons.ErrorResponse[[]models.TransactionResponse]("failed to list transactions"), errors.New("storage offline")
}

func TestTransactionsStorageFaultMapsToInternalError(t *testing.T) {
	mux := router.New(nil, controller.NewTransactionController(faultingTransferService{}))
	server := httptest.NewServer(middleware.Recover(mux))
	t.Cleanup(server.Close)

	status, payload := postJSON(t, server.URL+"/transactions",
		`{"cash_amount": 100, "source_account_id": 1, "destination_account_id": 2}`)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.False(t, payload.Success)
	assert.Equal(t, domain.ErrTransferFailed.Error(), payload.Message)

	status, payload = getJSON(t, server.URL+"/transactions")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.False(t, payload.Success)
}

func TestAccountEndpoints(t *testing.T) {
	server, _ := newTestServer(t)

	status, payload := postJSON(t, server.URL+"/accounts", `{"name": "Charlie", "available_cash": 300}`)
	require.Equal(t, http.StatusOK, status)
	require.True(t, payload.Success)

	status, payload = getJSON(t, server.URL+"/accounts")
	require.Equal(t, http.StatusOK, status)
	var accounts []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(payload.Data, &accounts))
	assert.Len(t, accounts, 3)

	status, _ = getJSON(t, server.URL+"/accounts/999")
	assert.Equal(t, http.StatusNotFound, status)

	status, payload = postJSON(t, server.URL+"/accounts", `{"name": "", "available_cash": 300}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation failed", payload.Message)

	status, _ = getJSON(t, server.URL+"/accounts/not-a-number")
	assert.Equal(t, http.StatusBadRequest, status)
}
