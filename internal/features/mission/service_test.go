package mission

import (
	"context"
	"testing"
	"time"

	"github.com/Kyamuel/shillearnhub-backened/internal/common"
	"github.com/Kyamuel/shillearnhub-backened/internal/db/postgres"
	"github.com/Kyamuel/shillearnhub-backened/internal/features/membership"
	"github.com/Kyamuel/shillearnhub-backened/internal/features/wallet"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeStore struct {
	missions    map[int64]*Mission
	completions []*Completion
	nextID      int64
}

func newFakeStore(missions ...*Mission) *fakeStore {
	f := &fakeStore{missions: make(map[int64]*Mission)}
	for _, m := range missions {
		f.missions[m.ID] = m
	}
	return f
}

func (f *fakeStore) GetActive(ctx context.Context, missionID int64) (*Mission, error) {
	m, ok := f.missions[missionID]
	if !ok || !m.IsActive {
		return nil, common.ErrMissionNotFound
	}
	return m, nil
}

func (f *fakeStore) ListAvailable(ctx context.Context, userID int64, day time.Time, limit int) ([]*Mission, error) {
	var out []*Mission
	for _, m := range f.missions {
		if !m.IsActive {
			continue
		}
		done := false
		for _, c := range f.completions {
			if c.UserID == userID && c.MissionID == m.ID && common.DayOf(c.CompletedAt).Equal(day) {
				done = true
			}
		}
		if !done && len(out) < limit {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) CompletedToday(ctx context.Context, q postgres.Querier, userID, missionID int64, day time.Time) (bool, error) {
	for _, c := range f.completions {
		if c.UserID == userID && c.MissionID == missionID && common.DayOf(c.CompletedAt).Equal(day) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CountToday(ctx context.Context, q postgres.Querier, userID int64, day time.Time) (int, error) {
	n := 0
	for _, c := range f.completions {
		if c.UserID == userID && common.DayOf(c.CompletedAt).Equal(day) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CreateCompletion(ctx context.Context, q postgres.Querier, userID, missionID, reward int64, proof string, at time.Time) (*Completion, error) {
	f.nextID++
	c := &Completion{
		ID: f.nextID, UserID: userID, MissionID: missionID,
		Reward: reward, Proof: proof, CompletedAt: at,
	}
	f.completions = append(f.completions, c)
	return c, nil
}

func (f *fakeStore) History(ctx context.Context, userID int64, limit, offset int) ([]*Completion, error) {
	return f.completions, nil
}

func (f *fakeStore) UserStats(ctx context.Context, userID int64, day, weekStart, monthStart time.Time) (*Stats, error) {
	return &Stats{}, nil
}

func (f *fakeStore) Create(ctx context.Context, m *Mission) error { return nil }
func (f *fakeStore) Update(ctx context.Context, m *Mission) error { return nil }

type fakeGate struct {
	mem *membership.Membership
	err error
}

func (f *fakeGate) Usable(ctx context.Context, userID int64, now time.Time) (*membership.Membership, error) {
	return f.mem, f.err
}

type fakeLedger struct {
	credits []struct {
		userID int64
		amount int64
		desc   string
	}
}

func (f *fakeLedger) GetForUpdate(ctx context.Context, q postgres.Querier, userID int64) (*wallet.Wallet, error) {
	return &wallet.Wallet{UserID: userID}, nil
}

func (f *fakeLedger) Credit(ctx context.Context, q postgres.Querier, userID, amount int64, description, reference string) (*wallet.Transaction, error) {
	f.credits = append(f.credits, struct {
		userID int64
		amount int64
		desc   string
	}{userID, amount, description})
	return &wallet.Transaction{Amount: amount}, nil
}

type fakeRunner struct{}

func (fakeRunner) WithinTx(ctx context.Context, fn func(q postgres.Querier) error) error {
	return fn(nil)
}

func basicMembership(daily int) *membership.Membership {
	return &membership.Membership{
		Tier:     membership.Tier{DailyMissions: daily},
		IsActive: true,
		EndDate:  time.Now().Add(24 * time.Hour),
	}
}

// ---------------------------------------------------------------------------
// Complete
// ---------------------------------------------------------------------------

func TestCompleteCreditsReward(t *testing.T) {
	store := newFakeStore(&Mission{
		ID: 1, Title: "Watch launch ad", Type: TypeAd, Duration: 30, Reward: 50, IsActive: true,
	})
	ledger := &fakeLedger{}
	svc := NewService(store, &fakeGate{mem: basicMembership(3)}, ledger, nil, fakeRunner{})

	comp, err := svc.Complete(context.Background(), 7, 1, `{"duration": 30}`)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if comp.Reward != 50 {
		t.Errorf("completion reward = %d, want 50", comp.Reward)
	}
	if len(ledger.credits) != 1 {
		t.Fatalf("expected 1 credit, got %d", len(ledger.credits))
	}
	c := ledger.credits[0]
	if c.userID != 7 || c.amount != 50 {
		t.Errorf("credit = user %d amount %d, want user 7 amount 50", c.userID, c.amount)
	}
	if c.desc != "Reward for completing mission: Watch launch ad" {
		t.Errorf("unexpected credit description %q", c.desc)
	}
}

func TestCompleteTwiceSameDay(t *testing.T) {
	store := newFakeStore(&Mission{
		ID: 1, Title: "Survey", Type: TypeSurvey, Reward: 30, IsActive: true,
	})
	svc := NewService(store, &fakeGate{mem: basicMembership(5)}, &fakeLedger{}, nil, fakeRunner{})

	proof := `{"responses": [{"q1": "ok"}]}`
	if _, err := svc.Complete(context.Background(), 7, 1, proof); err != nil {
		t.Fatalf("first completion: %v", err)
	}
	if _, err := svc.Complete(context.Background(), 7, 1, proof); err != common.ErrAlreadyCompletedToday {
		t.Errorf("second completion err = %v, want ErrAlreadyCompletedToday", err)
	}
	if len(store.completions) != 1 {
		t.Errorf("expected 1 completion, got %d", len(store.completions))
	}
}

func TestCompleteDailyLimit(t *testing.T) {
	store := newFakeStore(
		&Mission{ID: 1, Title: "A", Type: TypeSurvey, Reward: 10, IsActive: true},
		&Mission{ID: 2, Title: "B", Type: TypeSurvey, Reward: 10, IsActive: true},
		&Mission{ID: 3, Title: "C", Type: TypeSurvey, Reward: 10, IsActive: true},
	)
	ledger := &fakeLedger{}
	svc := NewService(store, &fakeGate{mem: basicMembership(2)}, ledger, nil, fakeRunner{})

	proof := `{"responses": [{"q1": "ok"}]}`
	for _, id := range []int64{1, 2} {
		if _, err := svc.Complete(context.Background(), 7, id, proof); err != nil {
			t.Fatalf("completion %d: %v", id, err)
		}
	}
	if _, err := svc.Complete(context.Background(), 7, 3, proof); err != common.ErrDailyLimitReached {
		t.Errorf("over-quota err = %v, want ErrDailyLimitReached", err)
	}
	if len(ledger.credits) != 2 {
		t.Errorf("expected 2 credits, got %d", len(ledger.credits))
	}
}

func TestCompleteInvalidProof(t *testing.T) {
	store := newFakeStore(&Mission{
		ID: 1, Title: "Ad", Type: TypeAd, Duration: 30, Reward: 50, IsActive: true,
	})
	ledger := &fakeLedger{}
	svc := NewService(store, &fakeGate{mem: basicMembership(3)}, ledger, nil, fakeRunner{})

	if _, err := svc.Complete(context.Background(), 7, 1, `{"duration": 10}`); err != common.ErrInvalidProof {
		t.Errorf("err = %v, want ErrInvalidProof", err)
	}
	if len(store.completions) != 0 || len(ledger.credits) != 0 {
		t.Error("invalid proof must not record a completion or credit")
	}
}

func TestCompleteRequiresMembership(t *testing.T) {
	store := newFakeStore(&Mission{ID: 1, Type: TypeSurvey, Reward: 10, IsActive: true})
	svc := NewService(store, &fakeGate{err: common.ErrMembershipRequired}, &fakeLedger{}, nil, fakeRunner{})

	if _, err := svc.Complete(context.Background(), 7, 1, `{"responses":[1]}`); err != common.ErrMembershipRequired {
		t.Errorf("err = %v, want ErrMembershipRequired", err)
	}
}

func TestCompleteUnknownMission(t *testing.T) {
	svc := NewService(newFakeStore(), &fakeGate{mem: basicMembership(3)}, &fakeLedger{}, nil, fakeRunner{})

	if _, err := svc.Complete(context.Background(), 7, 42, `x`); err != common.ErrMissionNotFound {
		t.Errorf("err = %v, want ErrMissionNotFound", err)
	}
}

// ---------------------------------------------------------------------------
// ListAvailable
// ---------------------------------------------------------------------------

func TestListAvailableCapsAtRemainingQuota(t *testing.T) {
	store := newFakeStore(
		&Mission{ID: 1, Title: "A", Type: TypeSurvey, Reward: 10, IsActive: true},
		&Mission{ID: 2, Title: "B", Type: TypeSurvey, Reward: 10, IsActive: true},
		&Mission{ID: 3, Title: "C", Type: TypeSurvey, Reward: 10, IsActive: true},
	)
	svc := NewService(store, &fakeGate{mem: basicMembership(2)}, &fakeLedger{}, nil, fakeRunner{})

	proof := `{"responses": [{"q1": "ok"}]}`
	if _, err := svc.Complete(context.Background(), 7, 1, proof); err != nil {
		t.Fatalf("completion: %v", err)
	}

	missions, remaining, err := svc.ListAvailable(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}
	if remaining != 1 {
		t.Errorf("remaining = %d, want 1", remaining)
	}
	if len(missions) != 1 {
		t.Errorf("missions = %d, want 1", len(missions))
	}
}

func TestListAvailableQuotaExhausted(t *testing.T) {
	store := newFakeStore(&Mission{ID: 1, Title: "A", Type: TypeSurvey, Reward: 10, IsActive: true})
	svc := NewService(store, &fakeGate{mem: basicMembership(1)}, &fakeLedger{}, nil, fakeRunner{})

	if _, err := svc.Complete(context.Background(), 7, 1, `{"responses":[1]}`); err != nil {
		t.Fatalf("completion: %v", err)
	}

	missions, remaining, err := svc.ListAvailable(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}
	if remaining != 0 || len(missions) != 0 {
		t.Errorf("expected empty day, got remaining=%d missions=%d", remaining, len(missions))
	}
}
