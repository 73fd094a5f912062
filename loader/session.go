// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package loader

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/metrics"
	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/models"
)

// Phase tracks how much of a proposal has been loaded.
type Phase int

const (
	PhaseSeeded Phase = iota
	PhaseLoadingCore
	PhaseCoreLoaded
	PhaseLoadingResults
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseSeeded:
		return "seeded"
	case PhaseLoadingCore:
		return "loading_core"
	case PhaseCoreLoaded:
		return "core_loaded"
	case PhaseLoadingResults:
		return "loading_results"
	case PhaseReady:
		return "ready"
	}
	return "unknown"
}

// Session owns the one Proposal object for an id while it is being viewed.
// All mutation goes through the loader; callers read via Snapshot.
type Session struct {
	mu            sync.Mutex
	proposal      models.Proposal
	phase         Phase
	settled       Phase // last phase reached successfully
	loaded        bool
	resultsLoaded bool
	resultsFailed bool
	closed        bool

	refresh singleflight.Group
}

func newSession(seed models.Proposal) *Session {
	return &Session{
		proposal: cloneProposal(seed),
		phase:    PhaseSeeded,
		settled:  PhaseSeeded,
	}
}

// ID returns the proposal id the session was opened for.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proposal.ID
}

// Phase returns the current loading phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Snapshot returns an immutable copy of the proposal with its phase flags.
func (s *Session) Snapshot() models.ProposalSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() models.ProposalSnapshot {
	return models.ProposalSnapshot{
		Proposal:      cloneProposal(s.proposal),
		Phase:         s.phase.String(),
		Loaded:        s.loaded,
		ResultsLoaded: s.resultsLoaded,
		ResultsFailed: s.resultsFailed,
	}
}

// beginCore moves into PhaseLoadingCore and returns the current proposal as
// the merge seed.
func (s *Session) beginCore() (models.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return models.Proposal{}, ErrSessionClosed
	}
	s.phase = PhaseLoadingCore
	return cloneProposal(s.proposal), nil
}

func (s *Session) beginResults() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.phase = PhaseLoadingResults
	return nil
}

// rollback returns to the last successful phase after a failed fetch.
func (s *Session) rollback() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = s.settled
}

func (s *Session) applyCore(p models.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.proposal = p
	s.phase = PhaseCoreLoaded
	s.settled = PhaseCoreLoaded
	s.loaded = true
	return nil
}

// applyResults stores the engine output. Votes and results are only replaced
// when the engine returned a non-empty vote list.
func (s *Session) applyResults(agg models.Aggregate, failed bool) (models.ProposalSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return models.ProposalSnapshot{}, ErrSessionClosed
	}
	if !failed && len(agg.Votes) > 0 {
		s.proposal.Votes = cloneVotes(agg.Votes)
		s.proposal.Results = cloneResults(agg.Results)
	}
	s.resultsLoaded = true
	s.resultsFailed = failed
	s.phase = PhaseReady
	s.settled = PhaseReady
	return s.snapshotLocked(), nil
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Registry keeps one Session per proposal id for a viewing session.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	metrics  *metrics.Metrics
}

func NewRegistry(m *metrics.Metrics) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		metrics:  m,
	}
}

// Open returns the session for seed.ID, creating it from seed if needed.
// An existing session is reused as is; the seed is ignored in that case.
func (r *Registry) Open(seed models.Proposal) (*Session, error) {
	if seed.ID == "" {
		return nil, ErrMissingID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[seed.ID]; ok {
		return s, nil
	}
	s := newSession(seed)
	r.sessions[seed.ID] = s
	r.metrics.SetSessions(len(r.sessions))
	return s, nil
}

// Get looks up an open session.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Close discards the session for id. Loads still in flight for it finish but
// their results are not applied.
func (r *Registry) Close(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return false
	}
	s.close()
	delete(r.sessions, id)
	r.metrics.SetSessions(len(r.sessions))
	return true
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
