// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/db"
	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/loader"
	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/models"
	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/readstate"
	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/results"
	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/testutil"
)

var errUpstream = errors.New("upstream unavailable")

// countingStore wraps a proposal store and counts fetches. When fail is set
// every fetch errors.
type countingStore struct {
	next  loader.ProposalStore
	calls atomic.Int32
	fail  atomic.Bool
}

func (c *countingStore) FetchProposalWithVotes(ctx context.Context, id string) (*models.Proposal, []models.Vote, error) {
	c.calls.Add(1)
	if c.fail.Load() {
		return nil, nil, errUpstream
	}
	return c.next.FetchProposalWithVotes(ctx, id)
}

type proposalFixture struct {
	store    *db.Store
	upstream *countingStore
	sessions *loader.Registry
	handler  *ProposalHandler
}

func newProposalFixture(t *testing.T) *proposalFixture {
	t.Helper()

	store := db.NewStore(testutil.SetupTestDB(t))
	upstream := &countingStore{next: store}
	sessions := loader.NewRegistry(nil)
	l := loader.New(upstream, results.NewEngine(), nil)

	return &proposalFixture{
		store:    store,
		upstream: upstream,
		sessions: sessions,
		handler:  NewProposalHandler(l, sessions, store),
	}
}

type failingCursorStore struct{}

func (failingCursorStore) LoadCursor(ctx context.Context) (*models.ReadCursor, error) {
	return nil, nil
}

func (failingCursorStore) SaveCursor(ctx context.Context, c models.ReadCursor) error {
	return errors.New("disk full")
}

// newNotificationFixture uses the SQL cursor store unless cursors is given.
func newNotificationFixture(t *testing.T, cursors readstate.CursorStore) (*db.Store, *NotificationHandler) {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	if cursors == nil {
		return newNotificationFixtureOn(t, conn)
	}
	store := db.NewStore(conn)
	tracker := readstate.NewTracker(context.Background(), cursors, nil)
	return store, NewNotificationHandler(store, tracker)
}

// newNotificationFixtureOn builds a handler over an existing database, as a
// restarted process would.
func newNotificationFixtureOn(t *testing.T, conn *sqlx.DB) (*db.Store, *NotificationHandler) {
	t.Helper()

	store := db.NewStore(conn)
	cursors := db.NewCursorStore(conn, testutil.TestAccount)
	tracker := readstate.NewTracker(context.Background(), cursors, nil)
	return store, NewNotificationHandler(store, tracker)
}
