// Package store persists local dashboard history: fetched snapshots,
// conversation turns, and sync marks.
package store

import (
	"context"
	"time"

	"adpulse/internal/insight"
)

// Turn is one persisted conversation entry.
type Turn struct {
	ID   int64
	Role string // "user" | "assistant"
	Text string
	At   time.Time
}

// SnapshotStore persists analysis snapshots fetched from the backend.
type SnapshotStore interface {
	// SaveSnapshot records a fetched snapshot.
	SaveSnapshot(ctx context.Context, snap *insight.Snapshot) error

	// LatestSnapshot returns the most recently saved snapshot, or nil
	// when none has been stored yet.
	LatestSnapshot(ctx context.Context) (*insight.Snapshot, error)
}

// TurnStore persists conversation turns.
type TurnStore interface {
	// SaveTurn appends a completed conversation turn.
	SaveTurn(ctx context.Context, role, text string) error

	// RecentTurns returns up to limit turns, oldest first.
	RecentTurns(ctx context.Context, limit int) ([]Turn, error)
}

// SyncStore records manual sync completions.
type SyncStore interface {
	// MarkSync records a successful sync at the given time.
	MarkSync(ctx context.Context, at time.Time) error

	// LastSync returns the most recent sync time, or the zero time.
	LastSync(ctx context.Context) (time.Time, error)
}
