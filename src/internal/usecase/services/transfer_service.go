package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/api-sage/ledger-service/src/internal/adapter/http/models"
	"github.com/api-sage/ledger-service/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/ledger-service/src/internal/commons"
	"github.com/api-sage/ledger-service/src/internal/domain"
	"github.com/api-sage/ledger-service/src/internal/logger"
	"github.com/google/uuid"
)

type TransferService struct {
	transactionRepo repo_interfaces.TransactionRepository
	uow             repo_interfaces.UnitOfWork
}

func NewTransferService(
	transactionRepo repo_interfaces.TransactionRepository,
	uow repo_interfaces.UnitOfWork,
) *TransferService {
	return &TransferService{
		transactionRepo: transactionRepo,
		uow:             uow,
	}
}

// ProcessTransfer moves funds between two accounts and records the attempt.
// The intent row is written before any validation, so every request leaves an
// audit trace whether or not it executes. Failure paths never remove it.
func (s *TransferService) ProcessTransfer(ctx context.Context, req models.CreateTransactionRequest) (commons.Response[models.TransactionResponse], error) {
	logger.Info("transfer service process transfer request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	intent, err := s.transactionRepo.Create(ctx, domain.Transaction{
		Reference:            uuid.NewString(),
		CashAmount:           req.CashAmount,
		SourceAccountID:      req.SourceAccountID,
		DestinationAccountID: req.DestinationAccountID,
	})
	if err != nil {
		logger.Error("transfer service record intent failed", err, nil)
		return commons.ErrorResponse[models.TransactionResponse](domain.ErrTransferFailed.Error(), "Unable to record the transfer attempt"), fmt.Errorf("%w: %v", domain.ErrTransferFailed, err)
	}

	if err := req.Validate(); err != nil {
		logger.Info("transfer service request rejected", logger.Fields{
			"transactionId": intent.ID,
			"reason":        err.Error(),
		})
		return commons.ErrorResponse[models.TransactionResponse](err.Error()), err
	}

	tx, err := s.uow.Begin(ctx)
	if err != nil {
		logger.Error("transfer service begin unit of work failed", err, logger.Fields{
			"transactionId": intent.ID,
		})
		return commons.ErrorResponse[models.TransactionResponse](domain.ErrTransferFailed.Error(), "Unable to process transfer right now"), fmt.Errorf("%w: %v", domain.ErrTransferFailed, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	source, destination, err := lockAccountPair(ctx, tx, req.SourceAccountID, req.DestinationAccountID)
	if err != nil {
		if errors.Is(err, domain.ErrSourceAccountNotFound) || errors.Is(err, domain.ErrDestinationAccountNotFound) {
			logger.Info("transfer service account lookup failed", logger.Fields{
				"transactionId": intent.ID,
				"reason":        err.Error(),
			})
			return commons.ErrorResponse[models.TransactionResponse](err.Error()), err
		}
		logger.Error("transfer service lock accounts failed", err, logger.Fields{
			"transactionId": intent.ID,
		})
		return commons.ErrorResponse[models.TransactionResponse](domain.ErrTransferFailed.Error(), "Unable to process transfer right now"), fmt.Errorf("%w: %v", domain.ErrTransferFailed, err)
	}

	if source.AvailableCash.LessThan(req.CashAmount) {
		logger.Info("transfer service insufficient funds", logger.Fields{
			"transactionId":   intent.ID,
			"sourceAccountId": source.ID,
		})
		return commons.ErrorResponse[models.TransactionResponse](domain.ErrInsufficientFunds.Error()), domain.ErrInsufficientFunds
	}

	if err := tx.UpdateAccountBalance(ctx, source.ID, source.AvailableCash.Sub(req.CashAmount)); err != nil {
		return s.failPosting(intent.ID, err)
	}
	if err := tx.UpdateAccountBalance(ctx, destination.ID, destination.AvailableCash.Add(req.CashAmount)); err != nil {
		return s.failPosting(intent.ID, err)
	}

	finalized, err := tx.MarkTransactionExecuted(ctx, intent.ID)
	if err != nil {
		return s.failPosting(intent.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return s.failPosting(intent.ID, err)
	}

	logger.Info("transfer service transfer executed", logger.Fields{
		"transactionId":        finalized.ID,
		"reference":            finalized.Reference,
		"sourceAccountId":      finalized.SourceAccountID,
		"destinationAccountId": finalized.DestinationAccountID,
	})

	return commons.SuccessResponse("Transaction successful", models.NewTransactionResponse(finalized)), nil
}

func (s *TransferService) ListTransactions(ctx context.Context) (commons.Response[[]models.TransactionResponse], error) {
	transactions, err := s.transactionRepo.List(ctx)
	if err != nil {
		logger.Error("transfer service list transactions failed", err, nil)
		return commons.ErrorResponse[[]models.TransactionResponse]("failed to list transactions", "Unable to list transactions right now"), err
	}

	return commons.SuccessResponse("Transactions retrieved", models.NewTransactionListResponse(transactions)), nil
}

// failPosting abandons the in-progress posting. The deferred rollback discards
// every balance change; the intent row stays behind with success = FALSE.
func (s *TransferService) failPosting(transactionID int64, err error) (commons.Response[models.TransactionResponse], error) {
	logger.Error("transfer service posting failed", err, logger.Fields{
		"transactionId": transactionID,
	})
	return commons.ErrorResponse[models.TransactionResponse](domain.ErrTransferFailed.Error(), "Unable to complete transfer posting"), fmt.Errorf("%w: %v", domain.ErrTransferFailed, err)
}

// lockAccountPair acquires both account locks in ascending id order, so two
// transfers over the same pair always lock in the same sequence regardless of
// transfer direction. Missing accounts are still reported source-first.
func lockAccountPair(ctx context.Context, tx repo_interfaces.LedgerTx, sourceID, destinationID int64) (domain.Account, domain.Account, error) {
	first, second := sourceID, destinationID
	if second < first {
		first, second = second, first
	}

	locked := make(map[int64]domain.Account, 2)
	missing := make(map[int64]bool, 2)
	for _, id := range []int64{first, second} {
		account, err := tx.GetAccountForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, commons.ErrRecordNotFound) {
				missing[id] = true
				continue
			}
			return domain.Account{}, domain.Account{}, err
		}
		locked[id] = account
	}

	if missing[sourceID] {
		return domain.Account{}, domain.Account{}, domain.ErrSourceAccountNotFound
	}
	if missing[destinationID] {
		return domain.Account{}, domain.Account{}, domain.ErrDestinationAccountNotFound
	}

	return locked[sourceID], locked[destinationID], nil
}
