package payment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Kyamuel/shillearnhub-backened/internal/common"
	"github.com/Kyamuel/shillearnhub-backened/internal/db/postgres"
	"github.com/Kyamuel/shillearnhub-backened/internal/features/membership"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeStore struct {
	rows   map[string]*Payment
	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[string]*Payment)}
}

func (f *fakeStore) Create(ctx context.Context, userID, tierID, amount int64, method, reference string) (*Payment, error) {
	f.nextID++
	p := &Payment{
		ID: f.nextID, UserID: userID, TierID: tierID, Amount: amount,
		Method: method, Reference: reference, Status: StatusPending,
		CreatedAt: time.Now(),
	}
	f.rows[reference] = p
	return p, nil
}

func (f *fakeStore) GetByReferenceForUpdate(ctx context.Context, q postgres.Querier, reference string) (*Payment, error) {
	p, ok := f.rows[reference]
	if !ok {
		return nil, common.ErrPaymentNotFound
	}
	snapshot := *p
	return &snapshot, nil
}

func (f *fakeStore) MarkCompleted(ctx context.Context, q postgres.Querier, paymentID int64, externalRef string, at time.Time) error {
	for _, p := range f.rows {
		if p.ID == paymentID {
			p.Status = StatusCompleted
			p.ExternalRef = externalRef
			p.CompletedAt = &at
			return nil
		}
	}
	return common.ErrPaymentNotFound
}

func (f *fakeStore) MarkFailed(ctx context.Context, q postgres.Querier, paymentID int64, at time.Time) error {
	for _, p := range f.rows {
		if p.ID == paymentID {
			p.Status = StatusFailed
			p.CompletedAt = &at
			return nil
		}
	}
	return common.ErrPaymentNotFound
}

func (f *fakeStore) GetByReference(ctx context.Context, reference string) (*Payment, error) {
	return f.GetByReferenceForUpdate(ctx, nil, reference)
}

func (f *fakeStore) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*Payment, error) {
	return nil, nil
}

type fakeMemberships struct {
	tier        *membership.Tier
	activations []int64 // tier ids, in order
}

func (f *fakeMemberships) PurchasableTier(ctx context.Context, tierID int64) (*membership.Tier, error) {
	if f.tier == nil || f.tier.ID != tierID {
		return nil, common.ErrInvalidTier
	}
	return f.tier, nil
}

func (f *fakeMemberships) ActivateForPayment(ctx context.Context, q postgres.Querier, userID, tierID int64, paymentRef string, now time.Time) error {
	f.activations = append(f.activations, tierID)
	return nil
}

type fakeCommissions struct {
	payouts int
}

func (f *fakeCommissions) PayCommissions(ctx context.Context, q postgres.Querier, buyerID, tierPrice int64, paymentRef string) error {
	f.payouts++
	return nil
}

type fakeDirectory struct {
	phone string
}

func (f *fakeDirectory) PhoneByID(ctx context.Context, userID int64) (string, error) {
	return f.phone, nil
}

type fakePusher struct {
	calls []string // phone numbers pushed to
	fail  bool
}

func (f *fakePusher) InitiateSTKPush(ctx context.Context, phone string, amount int64, reference, description string) (*StkResult, error) {
	if f.fail {
		return nil, errors.New("gateway timeout")
	}
	f.calls = append(f.calls, phone)
	return &StkResult{CheckoutRequestID: "ws_CO_1"}, nil
}

type fakeRunner struct{}

func (fakeRunner) WithinTx(ctx context.Context, fn func(q postgres.Querier) error) error {
	return fn(nil)
}

func basicTier() *membership.Tier {
	return &membership.Tier{ID: 1, Name: "basic", Price: 3500, IsActive: true, ReferralLevels: 3}
}

func newTestService() (*Service, *fakeStore, *fakeMemberships, *fakeCommissions, *fakePusher) {
	store := newFakeStore()
	mems := &fakeMemberships{tier: basicTier()}
	comms := &fakeCommissions{}
	pusher := &fakePusher{}
	svc := NewService(store, mems, comms, &fakeDirectory{phone: "254712345678"}, pusher, fakeRunner{})
	return svc, store, mems, comms, pusher
}

// ---------------------------------------------------------------------------
// Initialize
// ---------------------------------------------------------------------------

func TestInitialize(t *testing.T) {
	svc, store, _, _, pusher := newTestService()

	p, stk, err := svc.Initialize(context.Background(), 7, 1, MethodMpesa, "")
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !strings.HasPrefix(p.Reference, "SLH-") || len(p.Reference) != 12 {
		t.Errorf("reference %q must be SLH- plus 8 characters", p.Reference)
	}
	if p.Amount != 3500 {
		t.Errorf("amount = %d, want tier price 3500", p.Amount)
	}
	if p.Status != StatusPending {
		t.Errorf("status = %q, want pending", p.Status)
	}
	if stk.CheckoutRequestID == "" {
		t.Error("expected checkout request id")
	}
	if len(pusher.calls) != 1 || pusher.calls[0] != "254712345678" {
		t.Errorf("STK push calls = %v, want the profile msisdn", pusher.calls)
	}
	if _, ok := store.rows[p.Reference]; !ok {
		t.Error("payment row must exist before the push")
	}
}

func TestInitializeExplicitPhone(t *testing.T) {
	svc, _, _, _, pusher := newTestService()

	if _, _, err := svc.Initialize(context.Background(), 7, 1, MethodMpesa, "0798765432"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if pusher.calls[0] != "254798765432" {
		t.Errorf("push went to %q, want the normalized explicit phone", pusher.calls[0])
	}
}

func TestInitializeInvalidTier(t *testing.T) {
	svc, store, _, _, _ := newTestService()

	if _, _, err := svc.Initialize(context.Background(), 7, 99, MethodMpesa, ""); !errors.Is(err, common.ErrInvalidTier) {
		t.Errorf("err = %v, want ErrInvalidTier", err)
	}
	if len(store.rows) != 0 {
		t.Error("no payment row for an invalid tier")
	}
}

func TestInitializeBadMethod(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	if _, _, err := svc.Initialize(context.Background(), 7, 1, "card", ""); !errors.Is(err, common.ErrInvalidPaymentMethod) {
		t.Errorf("err = %v, want ErrInvalidPaymentMethod", err)
	}
}

func TestInitializePushFailureKeepsPending(t *testing.T) {
	svc, store, _, _, pusher := newTestService()
	pusher.fail = true

	if _, _, err := svc.Initialize(context.Background(), 7, 1, MethodMpesa, ""); err == nil {
		t.Fatal("expected gateway error")
	}
	// The pending row stays; a later initialize starts over with a
	// fresh reference.
	if len(store.rows) != 1 {
		t.Errorf("expected the pending row to remain, got %d rows", len(store.rows))
	}
}

// ---------------------------------------------------------------------------
// HandleCallback
// ---------------------------------------------------------------------------

func TestHandleCallbackSuccess(t *testing.T) {
	svc, store, mems, comms, _ := newTestService()

	p, _, err := svc.Initialize(context.Background(), 7, 1, MethodMpesa, "")
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if err := svc.HandleCallback(context.Background(), p.Reference, 0, "QGR7TEST01"); err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}

	row := store.rows[p.Reference]
	if row.Status != StatusCompleted {
		t.Errorf("status = %q, want completed", row.Status)
	}
	if row.ExternalRef != "QGR7TEST01" {
		t.Errorf("external ref = %q, want the receipt", row.ExternalRef)
	}
	if len(mems.activations) != 1 || mems.activations[0] != 1 {
		t.Errorf("activations = %v, want one activation of tier 1", mems.activations)
	}
	if comms.payouts != 1 {
		t.Errorf("commission payouts = %d, want 1", comms.payouts)
	}
}

func TestHandleCallbackDuplicateSettlesOnce(t *testing.T) {
	svc, _, mems, comms, _ := newTestService()

	p, _, err := svc.Initialize(context.Background(), 7, 1, MethodMpesa, "")
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := svc.HandleCallback(context.Background(), p.Reference, 0, "QGR7TEST01"); err != nil {
			t.Fatalf("callback %d: %v", i, err)
		}
	}

	if len(mems.activations) != 1 {
		t.Errorf("membership activated %d times, want 1", len(mems.activations))
	}
	if comms.payouts != 1 {
		t.Errorf("commissions paid %d times, want 1", comms.payouts)
	}
}

func TestHandleCallbackFailure(t *testing.T) {
	svc, store, mems, comms, _ := newTestService()

	p, _, err := svc.Initialize(context.Background(), 7, 1, MethodMpesa, "")
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if err := svc.HandleCallback(context.Background(), p.Reference, 1032, ""); err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}

	if store.rows[p.Reference].Status != StatusFailed {
		t.Errorf("status = %q, want failed", store.rows[p.Reference].Status)
	}
	if len(mems.activations) != 0 {
		t.Error("failed payment must not activate a membership")
	}
	if comms.payouts != 0 {
		t.Error("failed payment must not pay commissions")
	}
}

func TestHandleCallbackUnknownReference(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	if err := svc.HandleCallback(context.Background(), "SLH-DEADBEEF", 0, ""); !errors.Is(err, common.ErrPaymentNotFound) {
		t.Errorf("err = %v, want ErrPaymentNotFound", err)
	}
}

// ---------------------------------------------------------------------------
// Status
// ---------------------------------------------------------------------------

func TestStatusScopedToOwner(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	p, _, err := svc.Initialize(context.Background(), 7, 1, MethodMpesa, "")
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if _, err := svc.Status(context.Background(), 7, p.Reference); err != nil {
		t.Errorf("owner lookup failed: %v", err)
	}
	if _, err := svc.Status(context.Background(), 8, p.Reference); !errors.Is(err, common.ErrPaymentNotFound) {
		t.Errorf("foreign lookup err = %v, want ErrPaymentNotFound", err)
	}
}

func TestNewReferenceFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ref := newReference()
		if !strings.HasPrefix(ref, "SLH-") || len(ref) != 12 {
			t.Fatalf("reference %q must be SLH- plus 8 characters", ref)
		}
		if ref != strings.ToUpper(ref) {
			t.Fatalf("reference %q must be upper case", ref)
		}
		if seen[ref] {
			t.Fatalf("duplicate reference %q", ref)
		}
		seen[ref] = true
	}
}
