package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/api-sage/ledger-service/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/ledger-service/src/internal/commons"
	"github.com/api-sage/ledger-service/src/internal/domain"
	"github.com/shopspring/decimal"
)

// LedgerStore is an in-process ledger with the same contracts as the postgres
// package. A per-account mutex stands in for the row lock, so units of work
// block each other exactly where SELECT ... FOR UPDATE would.
type LedgerStore struct {
	mu                sync.Mutex
	accounts          map[int64]*accountRecord
	transactions      map[int64]*domain.Transaction
	nextAccountID     int64
	nextTransactionID int64
}

type accountRecord struct {
	mu      sync.Mutex
	account domain.Account
}

func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		accounts:     make(map[int64]*accountRecord),
		transactions: make(map[int64]*domain.Transaction),
	}
}

type AccountRepository struct {
	store *LedgerStore
}

func NewAccountRepository(store *LedgerStore) *AccountRepository {
	return &AccountRepository{store: store}
}

func (r *AccountRepository) Create(_ context.Context, account domain.Account) (domain.Account, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextAccountID++
	account.ID = s.nextAccountID
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	s.accounts[account.ID] = &accountRecord{account: account}
	return account, nil
}

func (r *AccountRepository) GetByID(_ context.Context, id int64) (domain.Account, error) {
	s := r.store
	s.mu.Lock()
	record, ok := s.accounts[id]
	s.mu.Unlock()

	if !ok {
		return domain.Account{}, commons.ErrRecordNotFound
	}

	record.mu.Lock()
	defer record.mu.Unlock()
	return record.account, nil
}

func (r *AccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	s := r.store
	s.mu.Lock()
	ids := make([]int64, 0, len(s.accounts))
	for id := range s.accounts {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	accounts := make([]domain.Account, 0, len(ids))
	for _, id := range ids {
		account, err := r.GetByID(ctx, id)
		if err != nil {
			continue
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

type TransactionRepository struct {
	store *LedgerStore
}

func NewTransactionRepository(store *LedgerStore) *TransactionRepository {
	return &TransactionRepository{store: store}
}

// Create persists the intent row immediately; it is never part of a unit of
// work and survives any later rollback.
func (r *TransactionRepository) Create(_ context.Context, transaction domain.Transaction) (domain.Transaction, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextTransactionID++
	transaction.ID = s.nextTransactionID
	transaction.RegisteredTime = time.Now().UTC()
	transaction.Success = false
	transaction.ExecutedTime = nil

	stored := transaction
	s.transactions[transaction.ID] = &stored
	return transaction, nil
}

func (r *TransactionRepository) List(_ context.Context) ([]domain.Transaction, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.transactions))
	for id := range s.transactions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	transactions := make([]domain.Transaction, 0, len(ids))
	for _, id := range ids {
		transactions = append(transactions, *s.transactions[id])
	}
	return transactions, nil
}

func (s *LedgerStore) Begin(_ context.Context) (repo_interfaces.LedgerTx, error) {
	return &ledgerTx{
		store:          s,
		stagedBalances: make(map[int64]decimal.Decimal),
	}, nil
}

// ledgerTx stages writes and applies them on Commit. Locks taken through
// GetAccountForUpdate are held until Commit or Rollback.
type ledgerTx struct {
	store          *LedgerStore
	locked         []*accountRecord
	stagedBalances map[int64]decimal.Decimal
	executedID     int64
	executed       *domain.Transaction
	done           bool
}

func (t *ledgerTx) GetAccountForUpdate(_ context.Context, id int64) (domain.Account, error) {
	t.store.mu.Lock()
	record, ok := t.store.accounts[id]
	t.store.mu.Unlock()

	if !ok {
		return domain.Account{}, commons.ErrRecordNotFound
	}

	record.mu.Lock()
	t.locked = append(t.locked, record)
	return record.account, nil
}

func (t *ledgerTx) UpdateAccountBalance(_ context.Context, id int64, balance decimal.Decimal) error {
	t.stagedBalances[id] = balance
	return nil
}

func (t *ledgerTx) MarkTransactionExecuted(_ context.Context, transactionID int64) (domain.Transaction, error) {
	t.store.mu.Lock()
	stored, ok := t.store.transactions[transactionID]
	t.store.mu.Unlock()

	if !ok || stored.Success {
		return domain.Transaction{}, commons.ErrRecordNotFound
	}

	now := time.Now().UTC()
	finalized := *stored
	finalized.Success = true
	finalized.ExecutedTime = &now

	t.executedID = transactionID
	t.executed = &finalized
	return finalized, nil
}

func (t *ledgerTx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true

	for _, record := range t.locked {
		if balance, ok := t.stagedBalances[record.account.ID]; ok {
			record.account.AvailableCash = balance
			record.account.UpdatedAt = time.Now().UTC()
		}
	}

	if t.executed != nil {
		t.store.mu.Lock()
		stored := *t.executed
		t.store.transactions[t.executedID] = &stored
		t.store.mu.Unlock()
	}

	t.unlock()
	return nil
}

func (t *ledgerTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.unlock()
	return nil
}

func (t *ledgerTx) unlock() {
	for i := len(t.locked) - 1; i >= 0; i-- {
		t.locked[i].mu.Unlock()
	}
	t.locked = nil
}
