// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package results

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/models"
)

var (
	ErrUnsupportedType = errors.New("unsupported voting type")
	ErrNoChoices       = errors.New("proposal has no choices")
)

var supportedTypes = map[string]bool{
	models.TypeSingleChoice: true,
	models.TypeApproval:     true,
	models.TypeRankedChoice: true,
	models.TypeWeighted:     true,
	models.TypeQuadratic:    true,
	models.TypeBasic:        true,
}

// Engine tallies votes locally. It normalises the vote list before counting:
// one vote per voter (the latest wins) and no votes whose choice does not fit
// the proposal type.
type Engine struct {
	now func() time.Time
}

func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// Aggregate returns the normalised vote list and the tallies. The returned
// Votes is nil when no vote survives normalisation.
func (e *Engine) Aggregate(ctx context.Context, space models.Space, p models.Proposal, votes []models.Vote) (models.Aggregate, error) {
	if err := ctx.Err(); err != nil {
		return models.Aggregate{}, err
	}

	votingType := p.Type
	if votingType == "" {
		votingType = models.TypeSingleChoice
	}
	n := len(p.Choices)
	if n == 0 {
		return models.Aggregate{}, fmt.Errorf("%w: %s", ErrNoChoices, p.ID)
	}

	if !supportedTypes[votingType] {
		return models.Aggregate{}, fmt.Errorf("%w: %q", ErrUnsupportedType, votingType)
	}

	var ballots []ballot
	dropped := 0
	for _, v := range latestPerVoter(votes) {
		b, err := decodeChoice(votingType, n, v)
		if err != nil {
			dropped++
			slog.Debug("dropping vote", "proposal_id", p.ID, "vote_id", v.ID, "error", err)
			continue
		}
		ballots = append(ballots, b)
	}
	if dropped > 0 {
		slog.Info("votes filtered during aggregation",
			"space", space.ID,
			"proposal_id", p.ID,
			"dropped", dropped,
			"kept", len(ballots),
		)
	}

	res := &models.Results{
		VoteCount:  len(ballots),
		ComputedAt: e.now().UTC(),
	}
	for _, b := range ballots {
		res.ScoresTotal += b.vote.VP
	}

	switch votingType {
	case models.TypeRankedChoice:
		res.ScoresByChoice = rankedScores(ballots, n)
	case models.TypeQuadratic:
		res.ScoresByChoice = quadraticScores(ballots, n, res.ScoresTotal)
		res.Rankings = computeRankings(p.Choices, ballots)
	case models.TypeWeighted:
		res.ScoresByChoice = shareScores(ballots, n)
		res.Rankings = computeRankings(p.Choices, ballots)
	default:
		res.ScoresByChoice = shareScores(ballots, n)
	}

	var revised []models.Vote
	if len(ballots) > 0 {
		revised = make([]models.Vote, len(ballots))
		for i, b := range ballots {
			revised[i] = b.vote
		}
	}

	return models.Aggregate{Votes: revised, Results: res}, nil
}

// latestPerVoter keeps each voter's most recent vote, preserving arrival order.
func latestPerVoter(votes []models.Vote) []models.Vote {
	best := make(map[string]int, len(votes))
	for i, v := range votes {
		key := strings.ToLower(v.Voter)
		if j, ok := best[key]; !ok || v.Created >= votes[j].Created {
			best[key] = i
		}
	}

	out := make([]models.Vote, 0, len(best))
	for i, v := range votes {
		if best[strings.ToLower(v.Voter)] == i {
			out = append(out, v)
		}
	}
	return out
}

// shareScores credits each choice with the voter's power times its share.
func shareScores(ballots []ballot, n int) []float64 {
	scores := make([]float64, n)
	for _, b := range ballots {
		for c, share := range b.shares {
			scores[c-1] += b.vote.VP * share
		}
	}
	return scores
}

// quadraticScores sums sqrt(share*vp) per choice, then rescales so the
// scores add up to the total voting power.
func quadraticScores(ballots []ballot, n int, total float64) []float64 {
	q := make([]float64, n)
	sum := 0.0
	for _, b := range ballots {
		for c, share := range b.shares {
			v := math.Sqrt(share * b.vote.VP)
			q[c-1] += v
			sum += v
		}
	}
	if sum == 0 {
		return q
	}
	for i := range q {
		q[i] = q[i] / sum * total
	}
	return q
}

// rankedScores runs instant runoff: the weakest remaining choice is
// eliminated until one holds a majority of the live votes or two remain.
func rankedScores(ballots []ballot, n int) []float64 {
	eliminated := make([]bool, n+1)
	for {
		scores := make([]float64, n)
		live := 0.0
		for _, b := range ballots {
			for _, c := range b.ranking {
				if !eliminated[c] {
					scores[c-1] += b.vote.VP
					live += b.vote.VP
					break
				}
			}
		}

		remaining, top, weakest := 0, 0.0, 0
		for c := 1; c <= n; c++ {
			if eliminated[c] {
				continue
			}
			remaining++
			if scores[c-1] > top {
				top = scores[c-1]
			}
			if weakest == 0 || scores[c-1] <= scores[weakest-1] {
				weakest = c
			}
		}

		if remaining <= 2 || live == 0 || top*2 > live {
			return scores
		}
		eliminated[weakest] = true
	}
}
