package referral

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Kyamuel/shillearnhub-backened/internal/db/postgres"
	"github.com/Kyamuel/shillearnhub-backened/internal/features/wallet"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeStore struct {
	edges       []*Referral
	commissions []struct {
		referralID int64
		amount     int64
	}
	nextID int64
}

func (f *fakeStore) CreateEdge(ctx context.Context, referrerID, referredID int64, level int) error {
	f.nextID++
	f.edges = append(f.edges, &Referral{
		ID: f.nextID, ReferrerID: referrerID, ReferredID: referredID, Level: level,
	})
	return nil
}

func (f *fakeStore) ReferrerOf(ctx context.Context, userID int64) (*Referral, error) {
	for _, e := range f.edges {
		if e.ReferredID == userID && e.Level == 1 {
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) EdgesTo(ctx context.Context, q postgres.Querier, referredID int64) ([]*Referral, error) {
	var out []*Referral
	for _, e := range f.edges {
		if e.ReferredID == referredID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) RecordCommission(ctx context.Context, q postgres.Querier, referralID, amount int64, description string) error {
	f.commissions = append(f.commissions, struct {
		referralID int64
		amount     int64
	}{referralID, amount})
	return nil
}

func (f *fakeStore) DirectReferrals(ctx context.Context, referrerID int64) ([]*Referral, error) {
	return nil, nil
}

func (f *fakeStore) StatsByLevel(ctx context.Context, referrerID int64) ([]*LevelStats, error) {
	return nil, nil
}

func (f *fakeStore) edgeLevels(referredID int64) map[int]int64 {
	out := make(map[int]int64)
	for _, e := range f.edges {
		if e.ReferredID == referredID {
			out[e.Level] = e.ReferrerID
		}
	}
	return out
}

type fakeDirectory map[string]int64

func (f fakeDirectory) IDByUsername(ctx context.Context, username string) (int64, error) {
	return f[username], nil
}

// fakeGate maps user id to the referral depth their tier covers.
type fakeGate map[int64]int

func (f fakeGate) ReferralDepth(ctx context.Context, userID int64, now time.Time) (int, error) {
	return f[userID], nil
}

type creditCall struct {
	userID int64
	amount int64
	desc   string
	ref    string
}

type fakeLedger struct {
	credits []creditCall
	fail    bool
}

func (f *fakeLedger) Credit(ctx context.Context, q postgres.Querier, userID, amount int64, description, reference string) (*wallet.Transaction, error) {
	if f.fail {
		return nil, fmt.Errorf("ledger down")
	}
	f.credits = append(f.credits, creditCall{userID, amount, description, reference})
	return &wallet.Transaction{Amount: amount}, nil
}

// ---------------------------------------------------------------------------
// RecordReferral
// ---------------------------------------------------------------------------

func TestRecordReferralDirectOnly(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, fakeDirectory{"alice": 1}, fakeGate{}, &fakeLedger{}, defaultRates())

	if err := svc.RecordReferral(context.Background(), 10, "alice", time.Now()); err != nil {
		t.Fatalf("RecordReferral: %v", err)
	}

	levels := store.edgeLevels(10)
	if len(levels) != 1 || levels[1] != 1 {
		t.Errorf("expected single level-1 edge from user 1, got %v", levels)
	}
}

func TestRecordReferralUnknownCode(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, fakeDirectory{}, fakeGate{}, &fakeLedger{}, defaultRates())

	if err := svc.RecordReferral(context.Background(), 10, "nobody", time.Now()); err != nil {
		t.Fatalf("unknown code must not fail registration: %v", err)
	}
	if len(store.edges) != 0 {
		t.Errorf("expected no edges, got %d", len(store.edges))
	}
}

func TestRecordReferralEmptyCode(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, fakeDirectory{}, fakeGate{}, &fakeLedger{}, defaultRates())

	if err := svc.RecordReferral(context.Background(), 10, "", time.Now()); err != nil {
		t.Fatalf("empty code must not fail registration: %v", err)
	}
	if len(store.edges) != 0 {
		t.Errorf("expected no edges, got %d", len(store.edges))
	}
}

// Chain: 1 <- 2 <- 3 <- 4, user 10 registers with code of user 4.
// User 3 covers level 2, user 2 does NOT cover level 3, user 1 covers
// level 4. The gated hop at user 2 still consumes a level, so user 1
// lands at level 4, not level 3.
func TestRecordReferralGatedHopConsumesLevel(t *testing.T) {
	store := &fakeStore{}
	// Build the existing chain bottom-up
	store.CreateEdge(context.Background(), 1, 2, 1)
	store.CreateEdge(context.Background(), 2, 3, 1)
	store.CreateEdge(context.Background(), 3, 4, 1)

	gate := fakeGate{3: 3, 2: 2, 1: 5}
	svc := NewService(store, fakeDirectory{"dave": 4}, gate, &fakeLedger{}, defaultRates())

	if err := svc.RecordReferral(context.Background(), 10, "dave", time.Now()); err != nil {
		t.Fatalf("RecordReferral: %v", err)
	}

	levels := store.edgeLevels(10)
	if levels[1] != 4 {
		t.Errorf("level 1 referrer = %d, want 4", levels[1])
	}
	if levels[2] != 3 {
		t.Errorf("level 2 referrer = %d, want 3", levels[2])
	}
	if _, ok := levels[3]; ok {
		t.Errorf("user 2 does not cover level 3, edge must not exist")
	}
	if levels[4] != 1 {
		t.Errorf("level 4 referrer = %d, want 1", levels[4])
	}
}

func TestRecordReferralStopsAtChainRoot(t *testing.T) {
	store := &fakeStore{}
	store.CreateEdge(context.Background(), 1, 2, 1)

	gate := fakeGate{1: 5}
	svc := NewService(store, fakeDirectory{"bob": 2}, gate, &fakeLedger{}, defaultRates())

	if err := svc.RecordReferral(context.Background(), 10, "bob", time.Now()); err != nil {
		t.Fatalf("RecordReferral: %v", err)
	}

	levels := store.edgeLevels(10)
	if len(levels) != 2 || levels[1] != 2 || levels[2] != 1 {
		t.Errorf("expected edges {1:2, 2:1}, got %v", levels)
	}
}

// ---------------------------------------------------------------------------
// PayCommissions
// ---------------------------------------------------------------------------

func TestPayCommissions(t *testing.T) {
	store := &fakeStore{}
	store.CreateEdge(context.Background(), 4, 10, 1)
	store.CreateEdge(context.Background(), 3, 10, 2)
	store.CreateEdge(context.Background(), 1, 10, 4)

	ledger := &fakeLedger{}
	svc := NewService(store, fakeDirectory{}, fakeGate{}, ledger, defaultRates())

	err := svc.PayCommissions(context.Background(), nil, 10, 3500, "SLH-AB12CD34")
	if err != nil {
		t.Fatalf("PayCommissions: %v", err)
	}

	if len(ledger.credits) != 3 {
		t.Fatalf("expected 3 credits, got %d", len(ledger.credits))
	}

	byUser := make(map[int64]creditCall)
	for _, c := range ledger.credits {
		byUser[c.userID] = c
	}
	if byUser[4].amount != 350 {
		t.Errorf("level 1 commission = %d, want 350", byUser[4].amount)
	}
	if byUser[3].amount != 175 {
		t.Errorf("level 2 commission = %d, want 175", byUser[3].amount)
	}
	if byUser[1].amount != 70 {
		t.Errorf("level 4 commission = %d, want 70", byUser[1].amount)
	}
	if byUser[4].desc != "Level 1 referral commission" {
		t.Errorf("unexpected description %q", byUser[4].desc)
	}
	if byUser[4].ref != "SLH-AB12CD34" {
		t.Errorf("credit must carry the payment reference, got %q", byUser[4].ref)
	}
	if len(store.commissions) != 3 {
		t.Errorf("expected 3 commission rows, got %d", len(store.commissions))
	}
}

func TestPayCommissionsSkipsZeroAmounts(t *testing.T) {
	store := &fakeStore{}
	store.CreateEdge(context.Background(), 5, 10, 5) // 1% of 99 truncates to 0

	ledger := &fakeLedger{}
	svc := NewService(store, fakeDirectory{}, fakeGate{}, ledger, defaultRates())

	if err := svc.PayCommissions(context.Background(), nil, 10, 99, "SLH-00000000"); err != nil {
		t.Fatalf("PayCommissions: %v", err)
	}
	if len(ledger.credits) != 0 {
		t.Errorf("zero commission must not hit the ledger, got %d credits", len(ledger.credits))
	}
	if len(store.commissions) != 0 {
		t.Errorf("zero commission must not be recorded, got %d rows", len(store.commissions))
	}
}

func TestPayCommissionsNoEdges(t *testing.T) {
	ledger := &fakeLedger{}
	svc := NewService(&fakeStore{}, fakeDirectory{}, fakeGate{}, ledger, defaultRates())

	if err := svc.PayCommissions(context.Background(), nil, 99, 3500, "SLH-11111111"); err != nil {
		t.Fatalf("PayCommissions without edges: %v", err)
	}
	if len(ledger.credits) != 0 {
		t.Errorf("expected no credits, got %d", len(ledger.credits))
	}
}
