// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package readstate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/metrics"
	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/models"
)

// CursorStore persists the read cursor. LoadCursor returns nil when nothing
// has been saved yet.
type CursorStore interface {
	LoadCursor(ctx context.Context) (*models.ReadCursor, error)
	SaveCursor(ctx context.Context, c models.ReadCursor) error
}

// Tracker owns the read cursor for one user. The cursor only moves when the
// feed goes from focused to unfocused, so "seen" means "present when the user
// last left the feed".
type Tracker struct {
	store   CursorStore
	metrics *metrics.Metrics
	now     func() time.Time

	mu      sync.Mutex
	cursor  *models.ReadCursor
	focused bool
}

// NewTracker reads the persisted cursor. A failed read is logged and the
// tracker starts with no cursor, which shows every event as unseen.
func NewTracker(ctx context.Context, store CursorStore, m *metrics.Metrics) *Tracker {
	t := &Tracker{store: store, metrics: m, now: time.Now}

	c, err := store.LoadCursor(ctx)
	if err != nil {
		slog.Warn("failed to load read cursor, treating feed as unseen", "error", err)
		return t
	}
	t.cursor = c
	return t
}

// Cursor returns a copy of the current cursor, or nil.
func (t *Tracker) Cursor() *models.ReadCursor {
	t.mu.Lock()
	defer t.mu.Unlock()
	return copyCursor(t.cursor)
}

// Focused reports whether the feed is currently on screen.
func (t *Tracker) Focused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.focused
}

// Partition tags events against the current cursor. It never changes state.
func (t *Tracker) Partition(events []models.NotificationEvent) []models.SeenEvent {
	return ComputeReadPartition(events, t.Cursor())
}

// SetFocus records a focus change. Only a focused→unfocused transition
// advances the cursor to the newest event and writes it to the store; repeated
// blur signals are ignored. It reports whether the cursor was advanced.
//
// If the write fails the in-memory cursor still moves and the error is
// returned.
func (t *Tracker) SetFocus(ctx context.Context, focused bool, events []models.NotificationEvent) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	wasFocused := t.focused
	t.focused = focused
	if focused || !wasFocused {
		return false, nil
	}

	next := AdvanceCursor(events, t.cursor)
	if next == nil || next == t.cursor {
		return false, nil
	}

	c := *next
	c.SavedAt = t.now().UTC().Truncate(time.Second)
	t.cursor = &c

	err := t.store.SaveCursor(ctx, c)
	t.metrics.CursorWritten(err)
	if err != nil {
		slog.Error("failed to persist read cursor", "proposal_id", c.ProposalID, "time", c.Time, "error", err)
		return true, fmt.Errorf("saving read cursor: %w", err)
	}

	slog.Info("read cursor advanced", "proposal_id", c.ProposalID, "time", c.Time)
	return true, nil
}

func copyCursor(c *models.ReadCursor) *models.ReadCursor {
	if c == nil {
		return nil
	}
	out := *c
	return &out
}
