package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/Kyamuel/shillearnhub-backened/internal/common"
	"github.com/Kyamuel/shillearnhub-backened/internal/db/postgres"
)

// ---------- fakes ----------

type fakeRunner struct{}

func (fakeRunner) WithinTx(ctx context.Context, fn func(postgres.Querier) error) error {
	return fn(nil)
}

type fakeStore struct {
	balances map[int64]int64
	ledger   []*Transaction
}

func newFakeStore() *fakeStore {
	return &fakeStore{balances: make(map[int64]int64)}
}

func (s *fakeStore) CreateForUser(ctx context.Context, q postgres.Querier, userID int64) error {
	s.balances[userID] = 0
	return nil
}

func (s *fakeStore) GetByUserID(ctx context.Context, userID int64) (*Wallet, error) {
	bal, ok := s.balances[userID]
	if !ok {
		return nil, common.ErrWalletNotFound
	}
	return &Wallet{UserID: userID, Balance: bal}, nil
}

func (s *fakeStore) GetForUpdate(ctx context.Context, q postgres.Querier, userID int64) (*Wallet, error) {
	return s.GetByUserID(ctx, userID)
}

func (s *fakeStore) Credit(ctx context.Context, q postgres.Querier, userID, amount int64, description, reference string) (*Transaction, error) {
	if _, ok := s.balances[userID]; !ok {
		return nil, common.ErrWalletNotFound
	}
	s.balances[userID] += amount
	tx := &Transaction{Amount: amount, Kind: KindCredit, Description: description, Reference: reference}
	s.ledger = append(s.ledger, tx)
	return tx, nil
}

func (s *fakeStore) Debit(ctx context.Context, q postgres.Querier, userID, amount int64, description, reference string) (*Transaction, error) {
	bal, ok := s.balances[userID]
	if !ok {
		return nil, common.ErrWalletNotFound
	}
	if bal < amount {
		return nil, common.ErrInsufficientFunds
	}
	s.balances[userID] -= amount
	tx := &Transaction{Amount: amount, Kind: KindDebit, Description: description, Reference: reference}
	s.ledger = append(s.ledger, tx)
	return tx, nil
}

func (s *fakeStore) AddWithdrawn(ctx context.Context, q postgres.Querier, userID, amount int64) error {
	return nil
}

func (s *fakeStore) Totals(ctx context.Context) (int64, int64, int64, error) {
	var balance int64
	for _, b := range s.balances {
		balance += b
	}
	return balance, 0, 0, nil
}

func (s *fakeStore) Transactions(ctx context.Context, userID int64, limit, offset int) ([]*Transaction, error) {
	if limit > len(s.ledger) {
		limit = len(s.ledger)
	}
	return s.ledger[:limit], nil
}

// ---------- tests ----------

func TestCreditRejectsNonPositiveAmounts(t *testing.T) {
	store := newFakeStore()
	store.balances[1] = 100
	svc := NewService(store, fakeRunner{})

	for _, amount := range []int64{0, -1, -500} {
		if _, err := svc.Credit(context.Background(), 1, amount, "test", ""); !errors.Is(err, common.ErrInvalidAmount) {
			t.Errorf("Credit(%d) error = %v, want ErrInvalidAmount", amount, err)
		}
	}
	if store.balances[1] != 100 {
		t.Errorf("balance = %d, want 100 untouched", store.balances[1])
	}
}

func TestCreditUpdatesBalanceAndLedger(t *testing.T) {
	store := newFakeStore()
	store.balances[1] = 100
	svc := NewService(store, fakeRunner{})

	tx, err := svc.Credit(context.Background(), 1, 250, "Reward for completing mission: Watch ad", "")
	if err != nil {
		t.Fatalf("Credit: %v", err)
	}
	if tx.Kind != KindCredit || tx.Amount != 250 {
		t.Errorf("tx = %s/%d, want credit/250", tx.Kind, tx.Amount)
	}
	if store.balances[1] != 350 {
		t.Errorf("balance = %d, want 350", store.balances[1])
	}
	if len(store.ledger) != 1 {
		t.Errorf("ledger entries = %d, want 1", len(store.ledger))
	}
}

func TestDebitRejectsNonPositiveAmounts(t *testing.T) {
	store := newFakeStore()
	store.balances[1] = 100
	svc := NewService(store, fakeRunner{})

	if _, err := svc.Debit(context.Background(), 1, 0, "test", ""); !errors.Is(err, common.ErrInvalidAmount) {
		t.Errorf("Debit(0) error = %v, want ErrInvalidAmount", err)
	}
}

func TestDebitInsufficientFunds(t *testing.T) {
	store := newFakeStore()
	store.balances[1] = 100
	svc := NewService(store, fakeRunner{})

	if _, err := svc.Debit(context.Background(), 1, 101, "test", ""); !errors.Is(err, common.ErrInsufficientFunds) {
		t.Errorf("error = %v, want ErrInsufficientFunds", err)
	}
	if store.balances[1] != 100 {
		t.Errorf("balance = %d, want 100 untouched", store.balances[1])
	}
}

func TestDebitUpdatesBalance(t *testing.T) {
	store := newFakeStore()
	store.balances[1] = 1000
	svc := NewService(store, fakeRunner{})

	tx, err := svc.Debit(context.Background(), 1, 600, "Withdrawal request via mpesa", "")
	if err != nil {
		t.Fatalf("Debit: %v", err)
	}
	if tx.Kind != KindDebit {
		t.Errorf("tx kind = %s, want debit", tx.Kind)
	}
	if store.balances[1] != 400 {
		t.Errorf("balance = %d, want 400", store.balances[1])
	}
}

func TestHistoryClampsPaging(t *testing.T) {
	store := newFakeStore()
	for i := 0; i < 5; i++ {
		store.ledger = append(store.ledger, &Transaction{Amount: int64(i + 1), Kind: KindCredit})
	}
	svc := NewService(store, fakeRunner{})

	// Out-of-range limits fall back to the default page size.
	for _, limit := range []int{0, -3, 500} {
		txs, err := svc.History(context.Background(), 1, limit, 0)
		if err != nil {
			t.Fatalf("History(limit=%d): %v", limit, err)
		}
		if len(txs) != 5 {
			t.Errorf("History(limit=%d) returned %d entries, want 5", limit, len(txs))
		}
	}
}
