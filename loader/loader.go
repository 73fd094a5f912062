// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/metrics"
	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/models"
)

var (
	ErrMissingID     = errors.New("proposal reference has no id")
	ErrFetchFailed   = errors.New("fetch failed")
	ErrSessionClosed = errors.New("viewing session closed")
	ErrNotLoaded     = errors.New("core proposal not loaded")
)

// ProposalStore fetches the authoritative proposal record and its votes in a
// single query. A nil proposal with a nil error means the store has no record;
// the seed is kept as is.
type ProposalStore interface {
	FetchProposalWithVotes(ctx context.Context, id string) (*models.Proposal, []models.Vote, error)
}

// ResultsEngine aggregates votes into results. It may return a revised vote
// list; a nil Votes field means no update.
type ResultsEngine interface {
	Aggregate(ctx context.Context, space models.Space, proposal models.Proposal, votes []models.Vote) (models.Aggregate, error)
}

// CoreLoaded is the output of LoadCore and the only accepted input of
// LoadResults. Only this package can build a non-zero value.
type CoreLoaded struct {
	session  *Session
	proposal models.Proposal
	votes    []models.Vote
}

// Proposal returns the merged proposal as of the core load.
func (c CoreLoaded) Proposal() models.Proposal { return cloneProposal(c.proposal) }

// Votes returns the vote list as of the core load.
func (c CoreLoaded) Votes() []models.Vote { return cloneVotes(c.votes) }

// Ready is the output of LoadResults.
type Ready struct {
	snapshot models.ProposalSnapshot
}

func (r Ready) Snapshot() models.ProposalSnapshot { return r.snapshot }

// Loader drives the two-phase fetch for proposal sessions. It holds no
// per-proposal state; that lives in Session.
type Loader struct {
	store   ProposalStore
	engine  ResultsEngine
	metrics *metrics.Metrics
}

func New(store ProposalStore, engine ResultsEngine, m *metrics.Metrics) *Loader {
	return &Loader{store: store, engine: engine, metrics: m}
}

// LoadCore fetches the proposal and its votes and merges them into the
// session's proposal. On failure the session returns to its last settled
// phase and the error wraps ErrFetchFailed.
func (l *Loader) LoadCore(ctx context.Context, s *Session) (CoreLoaded, error) {
	seed, err := s.beginCore()
	if err != nil {
		return CoreLoaded{}, err
	}
	if seed.ID == "" {
		s.rollback()
		return CoreLoaded{}, ErrMissingID
	}

	start := time.Now()
	fetched, votes, err := l.store.FetchProposalWithVotes(ctx, seed.ID)
	l.metrics.ObservePhase("core", start, err)
	if err != nil {
		s.rollback()
		slog.Warn("proposal fetch failed", "proposal_id", seed.ID, "error", err)
		return CoreLoaded{}, fmt.Errorf("%w: proposal %s: %w", ErrFetchFailed, seed.ID, err)
	}

	merged := MergeProposal(seed, fetched)
	if votes == nil {
		votes = []models.Vote{}
	}
	merged.Votes = cloneVotes(votes)

	if err := s.applyCore(merged); err != nil {
		return CoreLoaded{}, err
	}

	slog.Debug("proposal core loaded", "proposal_id", merged.ID, "votes", len(votes))
	return CoreLoaded{
		session:  s,
		proposal: cloneProposal(merged),
		votes:    cloneVotes(votes),
	}, nil
}

// LoadResults hands the core votes to the results engine. Engine failures are
// absorbed: ResultsLoaded still becomes true and the previous votes and
// results stay in place.
func (l *Loader) LoadResults(ctx context.Context, space models.Space, core CoreLoaded) (Ready, error) {
	s := core.session
	if s == nil {
		return Ready{}, ErrNotLoaded
	}
	if err := s.beginResults(); err != nil {
		return Ready{}, err
	}

	start := time.Now()
	agg, err := l.engine.Aggregate(ctx, space, core.proposal, core.votes)
	l.metrics.ObservePhase("results", start, err)

	failed := err != nil
	if failed {
		slog.Warn("results aggregation failed, keeping last known results",
			"proposal_id", core.proposal.ID,
			"error", err,
		)
	}

	snap, err := s.applyResults(agg, failed)
	if err != nil {
		return Ready{}, err
	}
	return Ready{snapshot: snap}, nil
}

// SpaceResolver picks the space for a proposal once its core fields are
// known. A nil resolver yields the zero Space.
type SpaceResolver func(p models.Proposal) models.Space

// SpaceFrom resolves against a space directory, falling back to routeSpaceID
// when the proposal names no space.
func SpaceFrom(directory map[string]models.Space, routeSpaceID string) SpaceResolver {
	return func(p models.Proposal) models.Space {
		return ResolveSpace(directory, p, routeSpaceID)
	}
}

// Load runs LoadCore then LoadResults for the session, resolving the space
// from the merged proposal in between. Concurrent calls for the same session
// share one run; late callers get the same snapshot. The shared run is not
// cancelled with any single caller, each caller stops waiting when its own
// ctx is done.
func (l *Loader) Load(ctx context.Context, s *Session, resolve SpaceResolver) (models.ProposalSnapshot, error) {
	id := s.ID()
	runCtx := context.WithoutCancel(ctx)
	ch := s.refresh.DoChan(id, func() (any, error) {
		core, err := l.LoadCore(runCtx, s)
		if err != nil {
			return nil, err
		}
		var space models.Space
		if resolve != nil {
			space = resolve(core.Proposal())
		}
		ready, err := l.LoadResults(runCtx, space, core)
		if err != nil {
			return nil, err
		}
		return ready.Snapshot(), nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			slog.Debug("joined in-flight proposal load", "proposal_id", id)
		}
		if res.Err != nil {
			return s.Snapshot(), res.Err
		}
		return res.Val.(models.ProposalSnapshot), nil
	case <-ctx.Done():
		return s.Snapshot(), ctx.Err()
	}
}

// Refresh re-fetches a session that has already been shown, for example after
// the user cast a vote. Rendered content stays in place until the new data
// arrives.
func (l *Loader) Refresh(ctx context.Context, s *Session, resolve SpaceResolver) (models.ProposalSnapshot, error) {
	slog.Info("refreshing proposal", "proposal_id", s.ID(), "phase", s.Phase().String())
	return l.Load(ctx, s, resolve)
}
