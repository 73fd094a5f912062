// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"log/slog"

	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/models"
)

// ProposalFetcher is the upstream source of authoritative proposals.
type ProposalFetcher interface {
	FetchProposalWithVotes(ctx context.Context, id string) (*models.Proposal, []models.Vote, error)
}

// WriteThrough fetches from upstream and records every successful fetch in
// the local store. When upstream fails, a cached copy is served instead; the
// upstream error is returned only if nothing is cached.
type WriteThrough struct {
	upstream ProposalFetcher
	cache    *Store
}

func NewWriteThrough(upstream ProposalFetcher, cache *Store) *WriteThrough {
	return &WriteThrough{upstream: upstream, cache: cache}
}

func (w *WriteThrough) FetchProposalWithVotes(ctx context.Context, id string) (*models.Proposal, []models.Vote, error) {
	p, votes, err := w.upstream.FetchProposalWithVotes(ctx, id)
	if err != nil {
		cached, cachedVotes, cacheErr := w.cache.FetchProposalWithVotes(ctx, id)
		if cacheErr != nil || cached == nil {
			return nil, nil, err
		}
		slog.Warn("upstream fetch failed, serving cached proposal",
			"proposal_id", id,
			"error", err,
		)
		return cached, cachedVotes, nil
	}
	if p == nil {
		return nil, nil, nil
	}

	record := *p
	record.Votes = votes
	if err := w.cache.UpsertProposal(ctx, record); err != nil {
		slog.Warn("failed to cache proposal", "proposal_id", id, "error", err)
	}
	return p, votes, nil
}
