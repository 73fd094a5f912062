// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package loader

import (
	"slices"

	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/models"
)

// MergeProposal lays the authoritative record over the seed, field by field.
// Authoritative values win whenever they are set; anything only the seed
// carries (a denormalized space, earlier results) survives. Votes are not
// merged; the caller sets them from the fetch.
func MergeProposal(seed models.Proposal, auth *models.Proposal) models.Proposal {
	out := cloneProposal(seed)
	if auth == nil {
		return out
	}

	if auth.ID != "" {
		out.ID = auth.ID
	}
	if auth.Space != nil {
		sp := mergeSpace(out.Space, *auth.Space)
		out.Space = &sp
	}
	if auth.Title != "" {
		out.Title = auth.Title
	}
	if auth.Body != "" {
		out.Body = auth.Body
	}
	if auth.Author != "" {
		out.Author = auth.Author
	}
	if auth.Type != "" {
		out.Type = auth.Type
	}
	if auth.Choices != nil {
		out.Choices = slices.Clone(auth.Choices)
	}
	if auth.Strategies != nil {
		out.Strategies = slices.Clone(auth.Strategies)
	}
	if auth.Start != 0 {
		out.Start = auth.Start
	}
	if auth.End != 0 {
		out.End = auth.End
	}
	if auth.Snapshot != "" {
		out.Snapshot = auth.Snapshot
	}
	if auth.State != "" {
		out.State = auth.State
	}
	if auth.Results != nil {
		out.Results = cloneResults(auth.Results)
	}
	return out
}

// mergeSpace lays auth over seed the same way MergeProposal does. A seed for
// a different space id is dropped.
func mergeSpace(seed *models.Space, auth models.Space) models.Space {
	if seed == nil || (auth.ID != "" && seed.ID != "" && seed.ID != auth.ID) {
		out := auth
		out.Categories = slices.Clone(auth.Categories)
		return out
	}

	out := *seed
	out.Categories = slices.Clone(seed.Categories)
	if auth.ID != "" {
		out.ID = auth.ID
	}
	if auth.Name != "" {
		out.Name = auth.Name
	}
	if auth.Avatar != "" {
		out.Avatar = auth.Avatar
	}
	if auth.Network != "" {
		out.Network = auth.Network
	}
	if auth.Symbol != "" {
		out.Symbol = auth.Symbol
	}
	if auth.Categories != nil {
		out.Categories = slices.Clone(auth.Categories)
	}
	if auth.Followers != 0 {
		out.Followers = auth.Followers
	}
	// The hub does not report follows; only a set flag overrides.
	out.Following = out.Following || auth.Following
	out.Private = out.Private || auth.Private
	return out
}

// ResolveSpace picks the space a proposal belongs to: the proposal's own space
// id, else routeSpaceID, completed from the directory when it has an entry.
// It returns the zero Space when neither id is known.
func ResolveSpace(directory map[string]models.Space, p models.Proposal, routeSpaceID string) models.Space {
	var space models.Space
	if p.Space != nil {
		space = *p.Space
	}
	if space.ID == "" {
		space.ID = routeSpaceID
	}
	if space.ID == "" {
		return models.Space{}
	}
	if known, ok := directory[space.ID]; ok {
		known.ID = space.ID
		return known
	}
	return space
}

func cloneProposal(p models.Proposal) models.Proposal {
	out := p
	if p.Space != nil {
		sp := *p.Space
		sp.Categories = slices.Clone(p.Space.Categories)
		out.Space = &sp
	}
	out.Choices = slices.Clone(p.Choices)
	out.Strategies = slices.Clone(p.Strategies)
	out.Votes = cloneVotes(p.Votes)
	out.Results = cloneResults(p.Results)
	return out
}

func cloneVotes(votes []models.Vote) []models.Vote {
	if votes == nil {
		return nil
	}
	out := make([]models.Vote, len(votes))
	for i, v := range votes {
		out[i] = v
		out[i].Choice = slices.Clone(v.Choice)
	}
	return out
}

func cloneResults(r *models.Results) *models.Results {
	if r == nil {
		return nil
	}
	out := *r
	out.ScoresByChoice = slices.Clone(r.ScoresByChoice)
	out.Rankings = slices.Clone(r.Rankings)
	return &out
}
