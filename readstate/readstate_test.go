// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package readstate

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/models"
)

func ev(id string, t int64) models.NotificationEvent {
	return models.NotificationEvent{ProposalID: id, Event: models.EventStart, Time: t}
}

func seenFlags(out []models.SeenEvent) []bool {
	flags := make([]bool, len(out))
	for i, s := range out {
		flags[i] = s.Seen
	}
	return flags
}

func TestComputeReadPartition(t *testing.T) {
	feed := []models.NotificationEvent{ev("A", 300), ev("B", 200), ev("C", 100)}

	tests := []struct {
		name   string
		events []models.NotificationEvent
		cursor *models.ReadCursor
		want   []bool
	}{
		{
			name:   "cursor in the middle",
			events: feed,
			cursor: &models.ReadCursor{ProposalID: "B", Time: 200},
			want:   []bool{false, true, true},
		},
		{
			name:   "nil cursor",
			events: feed,
			cursor: nil,
			want:   []bool{false, false, false},
		},
		{
			name:   "cursor matches newest",
			events: feed,
			cursor: &models.ReadCursor{ProposalID: "A", Time: 300},
			want:   []bool{true, true, true},
		},
		{
			name:   "cursor matches nothing",
			events: feed,
			cursor: &models.ReadCursor{ProposalID: "Z", Time: 999},
			want:   []bool{false, false, false},
		},
		{
			name:   "time-only match does not count",
			events: feed,
			cursor: &models.ReadCursor{ProposalID: "Z", Time: 200},
			want:   []bool{false, false, false},
		},
		{
			name:   "proposal-only match does not count",
			events: feed,
			cursor: &models.ReadCursor{ProposalID: "B", Time: 250},
			want:   []bool{false, false, false},
		},
		{
			name:   "same proposal emits several events",
			events: []models.NotificationEvent{ev("A", 500), ev("A", 400), ev("A", 300)},
			cursor: &models.ReadCursor{ProposalID: "A", Time: 400},
			want:   []bool{false, true, true},
		},
		{
			name:   "malformed events stay unseen",
			events: []models.NotificationEvent{ev("A", 300), ev("B", 200), ev("", 150), ev("C", 0), ev("D", 50)},
			cursor: &models.ReadCursor{ProposalID: "B", Time: 200},
			want:   []bool{false, true, false, false, true},
		},
		{
			name:   "empty cursor never matches malformed events",
			events: []models.NotificationEvent{ev("", 0), ev("A", 100)},
			cursor: &models.ReadCursor{},
			want:   []bool{false, false},
		},
		{
			name:   "empty feed",
			events: nil,
			cursor: &models.ReadCursor{ProposalID: "A", Time: 1},
			want:   []bool{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := seenFlags(ComputeReadPartition(tt.events, tt.cursor))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestComputeReadPartition_Idempotent(t *testing.T) {
	feed := []models.NotificationEvent{ev("A", 300), ev("B", 200), ev("C", 100)}
	cursor := &models.ReadCursor{ProposalID: "B", Time: 200}

	first := ComputeReadPartition(feed, cursor)
	second := ComputeReadPartition(feed, cursor)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical output, got %v and %v", first, second)
	}
	for i, s := range first {
		if s.Event != feed[i] {
			t.Errorf("Event %d changed: %+v", i, s.Event)
		}
	}
}

func TestAdvanceCursor(t *testing.T) {
	prior := &models.ReadCursor{ProposalID: "old", Time: 1}

	tests := []struct {
		name   string
		events []models.NotificationEvent
		want   *models.ReadCursor
	}{
		{"newest event", []models.NotificationEvent{ev("A", 300), ev("B", 200)}, &models.ReadCursor{ProposalID: "A", Time: 300}},
		{"empty feed keeps prior", nil, prior},
		{"leading malformed skipped", []models.NotificationEvent{ev("", 400), ev("B", 200)}, &models.ReadCursor{ProposalID: "B", Time: 200}},
		{"all malformed keeps prior", []models.NotificationEvent{ev("", 400)}, prior},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AdvanceCursor(tt.events, prior)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(ev("A", 1)); err != nil {
		t.Errorf("Expected valid event, got %v", err)
	}
	if err := Validate(ev("", 1)); !errors.Is(err, ErrMalformedEvent) {
		t.Errorf("Expected ErrMalformedEvent, got %v", err)
	}
	if err := Validate(ev("A", -5)); !errors.Is(err, ErrMalformedEvent) {
		t.Errorf("Expected ErrMalformedEvent, got %v", err)
	}
}

type memStore struct {
	cursor  *models.ReadCursor
	saves   int
	loadErr error
	saveErr error
}

func (m *memStore) LoadCursor(ctx context.Context) (*models.ReadCursor, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.cursor, nil
}

func (m *memStore) SaveCursor(ctx context.Context, c models.ReadCursor) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.cursor = &c
	return nil
}

func TestTracker_BlurAdvancesCursor(t *testing.T) {
	ctx := context.Background()
	store := &memStore{cursor: &models.ReadCursor{ProposalID: "B", Time: 200}}
	tr := NewTracker(ctx, store, nil)

	feed := []models.NotificationEvent{ev("A", 300), ev("B", 200), ev("C", 100)}

	if _, err := tr.SetFocus(ctx, true, feed); err != nil {
		t.Fatal(err)
	}
	if got := seenFlags(tr.Partition(feed)); !reflect.DeepEqual(got, []bool{false, true, true}) {
		t.Errorf("Expected partition against previous cursor, got %v", got)
	}

	// New event arrives while focused: still unseen, no write.
	feed = append([]models.NotificationEvent{ev("N", 400)}, feed...)
	if got := seenFlags(tr.Partition(feed)); !reflect.DeepEqual(got, []bool{false, false, true, true}) {
		t.Errorf("Expected new event unseen while focused, got %v", got)
	}
	if store.saves != 0 {
		t.Errorf("Expected no writes while focused, got %d", store.saves)
	}

	advanced, err := tr.SetFocus(ctx, false, feed)
	if err != nil {
		t.Fatal(err)
	}
	if !advanced {
		t.Fatal("Expected cursor to advance on blur")
	}
	if store.saves != 1 {
		t.Errorf("Expected one write, got %d", store.saves)
	}
	if store.cursor.ProposalID != "N" || store.cursor.Time != 400 {
		t.Errorf("Expected persisted cursor N@400, got %+v", store.cursor)
	}
	if store.cursor.SavedAt.IsZero() {
		t.Error("Expected SavedAt to be set")
	}

	// Duplicate blur is ignored.
	if advanced, _ := tr.SetFocus(ctx, false, feed); advanced {
		t.Error("Duplicate blur should not advance")
	}
	if store.saves != 1 {
		t.Errorf("Expected still one write, got %d", store.saves)
	}

	// Re-entering shows everything as seen.
	tr.SetFocus(ctx, true, feed)
	if got := seenFlags(tr.Partition(feed)); !reflect.DeepEqual(got, []bool{true, true, true, true}) {
		t.Errorf("Expected all seen after re-entry, got %v", got)
	}
}

func TestTracker_BlurWithoutFocusIsNoop(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	tr := NewTracker(ctx, store, nil)

	advanced, err := tr.SetFocus(ctx, false, []models.NotificationEvent{ev("A", 1)})
	if err != nil || advanced {
		t.Errorf("Expected no-op, got advanced=%v err=%v", advanced, err)
	}
	if store.saves != 0 {
		t.Errorf("Expected no writes, got %d", store.saves)
	}
}

func TestTracker_EmptyFeedKeepsCursor(t *testing.T) {
	ctx := context.Background()
	prior := &models.ReadCursor{ProposalID: "B", Time: 200}
	store := &memStore{cursor: prior}
	tr := NewTracker(ctx, store, nil)

	tr.SetFocus(ctx, true, nil)
	advanced, err := tr.SetFocus(ctx, false, nil)
	if err != nil || advanced {
		t.Errorf("Expected no advance on empty feed, got advanced=%v err=%v", advanced, err)
	}
	if got := tr.Cursor(); got == nil || got.ProposalID != "B" {
		t.Errorf("Expected prior cursor, got %+v", got)
	}
}

func TestTracker_LoadFailureFailsOpen(t *testing.T) {
	store := &memStore{loadErr: errors.New("corrupt")}
	tr := NewTracker(context.Background(), store, nil)

	if tr.Cursor() != nil {
		t.Error("Expected nil cursor after failed load")
	}
	got := seenFlags(tr.Partition([]models.NotificationEvent{ev("A", 1)}))
	if !reflect.DeepEqual(got, []bool{false}) {
		t.Errorf("Expected unseen, got %v", got)
	}
}

func TestTracker_SaveFailure(t *testing.T) {
	ctx := context.Background()
	store := &memStore{saveErr: errors.New("read-only")}
	tr := NewTracker(ctx, store, nil)

	tr.SetFocus(ctx, true, nil)
	advanced, err := tr.SetFocus(ctx, false, []models.NotificationEvent{ev("A", 10)})
	if err == nil {
		t.Fatal("Expected save error")
	}
	if !advanced {
		t.Error("Expected in-memory cursor to advance")
	}
	if c := tr.Cursor(); c == nil || c.ProposalID != "A" {
		t.Errorf("Expected in-memory cursor A, got %+v", c)
	}
}
