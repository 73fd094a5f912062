// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package readstate

import (
	"errors"
	"fmt"

	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/models"
)

var ErrMalformedEvent = errors.New("malformed notification event")

// Validate reports whether e carries the identity fields the partition needs.
func Validate(e models.NotificationEvent) error {
	if e.ProposalID == "" {
		return fmt.Errorf("%w: missing proposal id", ErrMalformedEvent)
	}
	if e.Time <= 0 {
		return fmt.Errorf("%w: missing time for proposal %s", ErrMalformedEvent, e.ProposalID)
	}
	return nil
}

// matches requires both fields: one proposal emits several events and
// proposal ids carry no ordering.
func matches(e models.NotificationEvent, c *models.ReadCursor) bool {
	return c != nil && e.ProposalID == c.ProposalID && e.Time == c.Time
}

// ComputeReadPartition tags each event of a newest-first feed as seen or
// unseen against cursor. Events before the first exact cursor match are
// unseen; the match and everything older are seen. A nil cursor, or one that
// matches nothing, leaves every event unseen. Malformed events are always
// unseen and never match.
func ComputeReadPartition(events []models.NotificationEvent, cursor *models.ReadCursor) []models.SeenEvent {
	out := make([]models.SeenEvent, len(events))
	reached := false
	for i, e := range events {
		wellFormed := Validate(e) == nil
		if !reached && wellFormed && matches(e, cursor) {
			reached = true
		}
		out[i] = models.SeenEvent{Event: e, Seen: reached && wellFormed}
	}
	return out
}

// AdvanceCursor returns the cursor to persist when the feed leaves focus: the
// newest well-formed event. With no such event the prior cursor is returned
// unchanged.
func AdvanceCursor(events []models.NotificationEvent, prior *models.ReadCursor) *models.ReadCursor {
	for _, e := range events {
		if Validate(e) != nil {
			continue
		}
		return &models.ReadCursor{ProposalID: e.ProposalID, Time: e.Time}
	}
	return prior
}
