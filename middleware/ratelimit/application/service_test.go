package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"ratelimit-gateway/middleware/ratelimit/domain"
)

type fakeStore struct {
	counts  map[domain.Key]int64
	windows []time.Duration
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{counts: make(map[domain.Key]int64)}
}

func (s *fakeStore) IncrWindow(_ context.Context, key domain.Key, window time.Duration) (int64, error) {
	s.windows = append(s.windows, window)
	if s.err != nil {
		return 0, s.err
	}
	s.counts[key]++
	return s.counts[key], nil
}

func TestService_Decide_FailsWithoutStore(t *testing.T) {
	svc := Service{Window: time.Second, Max: 1}
	dec, err := svc.Decide(context.Background(), "k")
	if !errors.Is(err, ErrNoStore) {
		t.Fatalf("expected ErrNoStore, got %v", err)
	}
	if dec.Outcome != domain.OutcomeStoreError {
		t.Fatalf("expected store-error outcome, got %q", dec.Outcome)
	}
}

func TestService_Decide_MaxIsInclusive(t *testing.T) {
	store := newFakeStore()
	svc := Service{Store: store, Window: time.Second, Max: 3}

	for i := int64(1); i <= 3; i++ {
		dec, err := svc.Decide(context.Background(), "k")
		if err != nil {
			t.Fatalf("unexpected error at request %d: %v", i, err)
		}
		if dec.Outcome != domain.OutcomeProceed {
			t.Fatalf("expected request %d to proceed, got %q", i, dec.Outcome)
		}
		if dec.Count != i {
			t.Fatalf("expected count=%d, got %d", i, dec.Count)
		}
	}

	dec, err := svc.Decide(context.Background(), "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec.Outcome != domain.OutcomeDenied {
		t.Fatalf("expected 4th request denied, got %q", dec.Outcome)
	}
	if dec.Count != 4 || dec.Remaining() != 0 {
		t.Fatalf("expected count=4 remaining=0, got count=%d remaining=%d", dec.Count, dec.Remaining())
	}
}

func TestService_Decide_PassesWindowToStore(t *testing.T) {
	store := newFakeStore()
	svc := Service{Store: store, Window: 1500 * time.Millisecond, Max: 1}

	if _, err := svc.Decide(context.Background(), "k"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.windows) != 1 || store.windows[0] != 1500*time.Millisecond {
		t.Fatalf("expected one call with window=1.5s, got %v", store.windows)
	}
}

func TestService_Decide_ReturnsStoreError(t *testing.T) {
	boom := errors.New("connection refused")
	store := newFakeStore()
	store.err = boom
	svc := Service{Store: store, Window: time.Second, Max: 1}

	dec, err := svc.Decide(context.Background(), "k")
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
	if dec.Outcome != domain.OutcomeStoreError {
		t.Fatalf("expected store-error outcome, got %q", dec.Outcome)
	}
	if len(store.windows) != 1 {
		t.Fatalf("expected exactly one store attempt, got %d", len(store.windows))
	}
}

func TestService_Decide_KeysAreIndependent(t *testing.T) {
	store := newFakeStore()
	svc := Service{Store: store, Window: time.Second, Max: 1}

	for _, k := range []domain.Key{"a", "b"} {
		dec, err := svc.Decide(context.Background(), k)
		if err != nil || dec.Outcome != domain.OutcomeProceed {
			t.Fatalf("expected key %q to proceed, got %+v err=%v", k, dec, err)
		}
	}
}
