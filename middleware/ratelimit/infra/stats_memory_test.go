package infra

import (
	"context"
	"testing"

	"ratelimit-gateway/middleware/ratelimit/domain"
)

func TestMemoryStatsStore_CountsByOutcome(t *testing.T) {
	s := NewMemoryStatsStore(WithTrackKeys(true))
	ctx := context.Background()

	events := []domain.StatsEvent{
		{Key: "a", Outcome: domain.OutcomeProceed, Method: "GET", Path: "/"},
		{Key: "a", Outcome: domain.OutcomeDenied, Method: "GET", Path: "/"},
		{Key: "b", Outcome: domain.OutcomeSkipped, Method: "GET", Path: "/health"},
		{Key: "b", Outcome: domain.OutcomeStoreError, Method: "GET", Path: "/"},
	}
	for _, ev := range events {
		if err := s.Record(ctx, ev); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	want := Counters{Proceed: 1, Denied: 1, StoreError: 1, Skipped: 1}
	if got := s.Total(); got != want {
		t.Fatalf("expected total %+v, got %+v", want, got)
	}
	if got := s.ByRoute()["GET /"]; got.Proceed != 1 || got.Denied != 1 || got.StoreError != 1 {
		t.Fatalf("unexpected route counters: %+v", got)
	}
	if got := s.ByKey()["b"]; got.Skipped != 1 || got.StoreError != 1 {
		t.Fatalf("unexpected key counters: %+v", got)
	}
}

func TestMemoryStatsStore_KeysNotTrackedByDefault(t *testing.T) {
	s := NewMemoryStatsStore()
	_ = s.Record(context.Background(), domain.StatsEvent{Key: "a", Outcome: domain.OutcomeProceed})

	if len(s.ByKey()) != 0 {
		t.Fatalf("expected no per-key counters")
	}
}
