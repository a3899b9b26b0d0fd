package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"adpulse/internal/insight"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "adpulse-test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if snap, err := s.LatestSnapshot(ctx); err != nil || snap != nil {
		t.Fatalf("empty store: snap=%v err=%v, want nil, nil", snap, err)
	}

	first := &insight.Snapshot{
		GeneratedAt:     "2026-02-17T10:00:00Z",
		Currency:        "INR",
		DateRangeStart:  "2026-02-10",
		DateRangeEnd:    "2026-02-17",
		ConfidenceScore: 0.7,
		KPIs:            []insight.KPI{{Name: "ctr", Value: 1.8, Unit: "%"}},
	}
	second := &insight.Snapshot{
		GeneratedAt:     "2026-02-18T10:00:00Z",
		Currency:        "INR",
		DateRangeStart:  "2026-02-11",
		DateRangeEnd:    "2026-02-18",
		ConfidenceScore: 0.85,
	}

	if err := s.SaveSnapshot(ctx, first); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if err := s.SaveSnapshot(ctx, second); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	got, err := s.LatestSnapshot(ctx)
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if got == nil || got.GeneratedAt != second.GeneratedAt {
		t.Errorf("LatestSnapshot = %+v, want the second snapshot", got)
	}
	if got.ConfidenceScore != 0.85 {
		t.Errorf("confidence = %v, want 0.85", got.ConfidenceScore)
	}
}

func TestTurnsOldestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, turn := range []struct{ role, text string }{
		{"user", "how is CTR?"},
		{"assistant", "CTR is 2.5%, above benchmark."},
		{"user", "and spend?"},
	} {
		if err := s.SaveTurn(ctx, turn.role, turn.text); err != nil {
			t.Fatalf("SaveTurn: %v", err)
		}
	}

	turns, err := s.RecentTurns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentTurns: %v", err)
	}
	if len(turns) != 3 {
		t.Fatalf("turns = %d, want 3", len(turns))
	}
	if turns[0].Text != "how is CTR?" || turns[2].Text != "and spend?" {
		t.Errorf("turns not in chronological order: %+v", turns)
	}

	limited, err := s.RecentTurns(ctx, 2)
	if err != nil {
		t.Fatalf("RecentTurns(2): %v", err)
	}
	if len(limited) != 2 || limited[0].Role != "assistant" {
		t.Errorf("limited turns = %+v, want the latest two oldest-first", limited)
	}
}

func TestSyncMarks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if last, err := s.LastSync(ctx); err != nil || !last.IsZero() {
		t.Fatalf("empty store: last=%v err=%v, want zero time", last, err)
	}

	at := time.Date(2026, 2, 18, 9, 30, 0, 0, time.UTC)
	if err := s.MarkSync(ctx, at); err != nil {
		t.Fatalf("MarkSync: %v", err)
	}

	last, err := s.LastSync(ctx)
	if err != nil {
		t.Fatalf("LastSync: %v", err)
	}
	if !last.Equal(at) {
		t.Errorf("LastSync = %v, want %v", last, at)
	}
}
