// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package results

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/models"
)

// ballot is a vote decoded against its proposal: for each 1-indexed choice,
// the share of the voter's power it receives. Ranked ballots also keep their
// preference order.
type ballot struct {
	vote    models.Vote
	shares  map[int]float64
	ranking []int
}

// decodeChoice validates a raw choice for the voting type and number of
// choices and returns the decoded ballot.
func decodeChoice(votingType string, numChoices int, v models.Vote) (ballot, error) {
	b := ballot{vote: v, shares: make(map[int]float64)}

	switch votingType {
	case models.TypeSingleChoice, models.TypeBasic:
		var c int
		if err := json.Unmarshal(v.Choice, &c); err != nil {
			return b, fmt.Errorf("choice is not an index: %w", err)
		}
		if c < 1 || c > numChoices {
			return b, fmt.Errorf("choice %d out of range", c)
		}
		b.shares[c] = 1

	case models.TypeApproval, models.TypeRankedChoice:
		var cs []int
		if err := json.Unmarshal(v.Choice, &cs); err != nil {
			return b, fmt.Errorf("choice is not an index list: %w", err)
		}
		if len(cs) == 0 {
			return b, fmt.Errorf("empty choice list")
		}
		for _, c := range cs {
			if c < 1 || c > numChoices {
				return b, fmt.Errorf("choice %d out of range", c)
			}
			if _, dup := b.shares[c]; dup {
				return b, fmt.Errorf("choice %d listed twice", c)
			}
			b.shares[c] = 1
		}
		if votingType == models.TypeRankedChoice {
			b.ranking = cs
			// Only the first preference counts until elimination.
			b.shares = map[int]float64{cs[0]: 1}
		}

	case models.TypeWeighted, models.TypeQuadratic:
		var raw map[string]float64
		if err := json.Unmarshal(v.Choice, &raw); err != nil {
			return b, fmt.Errorf("choice is not a weight map: %w", err)
		}
		total := 0.0
		weights := make(map[int]float64, len(raw))
		for k, w := range raw {
			c, err := strconv.Atoi(k)
			if err != nil || c < 1 || c > numChoices {
				return b, fmt.Errorf("choice key %q out of range", k)
			}
			if w < 0 {
				return b, fmt.Errorf("negative weight for choice %d", c)
			}
			weights[c] = w
			total += w
		}
		if total <= 0 {
			return b, fmt.Errorf("weights sum to zero")
		}
		for c, w := range weights {
			if w > 0 {
				b.shares[c] = w / total
			}
		}

	default:
		return b, fmt.Errorf("%w: %q", ErrUnsupportedType, votingType)
	}

	return b, nil
}
