// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package hub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/models"
)

const proposalVotesQuery = `
query ProposalVotes($id: String!, $first: Int!) {
  proposal(id: $id) {
    id
    title
    body
    author
    type
    choices
    start
    end
    snapshot
    state
    strategies { name network params }
    space { id name }
  }
  votes(first: $first, where: { proposal: $id }, orderBy: "created", orderDirection: asc) {
    id
    voter
    choice
    vp
    created
  }
}`

const spacesQuery = `
query Spaces($first: Int!) {
  spaces(first: $first, orderBy: "followersCount", orderDirection: desc) {
    id
    name
    avatar
    network
    symbol
    categories
    followersCount
    private
  }
}`

const followsQuery = `
query Follows($follower: String!) {
  follows(first: 1000, where: { follower: $follower }) {
    space { id }
  }
}`

type wireSpace struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Avatar         string   `json:"avatar"`
	Network        string   `json:"network"`
	Symbol         string   `json:"symbol"`
	Categories     []string `json:"categories"`
	FollowersCount int      `json:"followersCount"`
	Private        bool     `json:"private"`
}

type wireProposal struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Body       string            `json:"body"`
	Author     string            `json:"author"`
	Type       string            `json:"type"`
	Choices    []string          `json:"choices"`
	Start      int64             `json:"start"`
	End        int64             `json:"end"`
	Snapshot   string            `json:"snapshot"`
	State      string            `json:"state"`
	Strategies []models.Strategy `json:"strategies"`
	Space      *wireSpace        `json:"space"`
}

type wireVote struct {
	ID      string          `json:"id"`
	Voter   string          `json:"voter"`
	Choice  json.RawMessage `json:"choice"`
	VP      float64         `json:"vp"`
	Created int64           `json:"created"`
}

func (w wireSpace) toModel() models.Space {
	return models.Space{
		ID:         w.ID,
		Name:       w.Name,
		Avatar:     w.Avatar,
		Network:    w.Network,
		Symbol:     w.Symbol,
		Categories: w.Categories,
		Followers:  w.FollowersCount,
		Private:    w.Private,
	}
}

// FetchProposalWithVotes loads a proposal and its votes in one round trip.
// A proposal the hub does not know yields a nil proposal and a nil error.
func (c *Client) FetchProposalWithVotes(ctx context.Context, id string) (*models.Proposal, []models.Vote, error) {
	var data struct {
		Proposal *wireProposal `json:"proposal"`
		Votes    []wireVote    `json:"votes"`
	}
	vars := map[string]any{"id": id, "first": maxVotes}
	if err := c.query(ctx, proposalVotesQuery, vars, &data); err != nil {
		return nil, nil, fmt.Errorf("fetching proposal %s: %w", id, err)
	}

	votes := make([]models.Vote, len(data.Votes))
	for i, v := range data.Votes {
		votes[i] = models.Vote{ID: v.ID, Voter: v.Voter, Choice: v.Choice, VP: v.VP, Created: v.Created}
	}

	if data.Proposal == nil {
		return nil, votes, nil
	}

	w := data.Proposal
	p := &models.Proposal{
		ID:         w.ID,
		Title:      w.Title,
		Body:       w.Body,
		Author:     w.Author,
		Type:       w.Type,
		Choices:    w.Choices,
		Strategies: w.Strategies,
		Start:      w.Start,
		End:        w.End,
		Snapshot:   w.Snapshot,
		State:      w.State,
	}
	if w.Space != nil {
		s := w.Space.toModel()
		p.Space = &s
	}
	return p, votes, nil
}

// FetchSpaces returns up to first spaces ordered by follower count.
func (c *Client) FetchSpaces(ctx context.Context, first int) ([]models.Space, error) {
	var data struct {
		Spaces []wireSpace `json:"spaces"`
	}
	if err := c.query(ctx, spacesQuery, map[string]any{"first": first}, &data); err != nil {
		return nil, fmt.Errorf("fetching spaces: %w", err)
	}

	spaces := make([]models.Space, len(data.Spaces))
	for i, w := range data.Spaces {
		spaces[i] = w.toModel()
	}
	return spaces, nil
}

// FetchFollowedSpaceIDs returns the ids of the spaces an account follows.
func (c *Client) FetchFollowedSpaceIDs(ctx context.Context, account string) ([]string, error) {
	var data struct {
		Follows []struct {
			Space struct {
				ID string `json:"id"`
			} `json:"space"`
		} `json:"follows"`
	}
	if err := c.query(ctx, followsQuery, map[string]any{"follower": account}, &data); err != nil {
		return nil, fmt.Errorf("fetching follows for %s: %w", account, err)
	}

	ids := make([]string, 0, len(data.Follows))
	for _, f := range data.Follows {
		if f.Space.ID != "" {
			ids = append(ids, f.Space.ID)
		}
	}
	return ids, nil
}
