// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package results

import (
	"sort"

	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/models"
)

// vetoShare is the negative share at which a choice with a non-positive
// median is pushed below every non-vetoed choice.
const vetoShare = 0.33

// computeRankings ranks choices by Balanced Majority Judgment over each
// voter's allocation. A voter's share of a choice (0..1) is mapped to a signed
// score s = 2*share - 1, so an unfunded choice counts as -1.
func computeRankings(labels []string, ballots []ballot) []models.ChoiceStats {
	stats := make([]models.ChoiceStats, len(labels))
	for i, label := range labels {
		choice := i + 1

		signed := make([]float64, 0, len(ballots))
		for _, b := range ballots {
			signed = append(signed, 2.0*b.shares[choice]-1.0)
		}
		sort.Float64s(signed)

		stat := models.ChoiceStats{
			Choice:   choice,
			Label:    label,
			Median:   percentile(signed, 0.5),
			P10:      percentile(signed, 0.1),
			P90:      percentile(signed, 0.9),
			Mean:     mean(signed),
			NegShare: negativeShare(signed),
		}

		// Soft veto
		stat.Veto = len(signed) > 0 && stat.NegShare >= vetoShare && stat.Median <= 0

		stats[i] = stat
	}

	// Lexicographic order
	sort.SliceStable(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]

		// 1. Non-vetoed choices come first
		if a.Veto != b.Veto {
			return !a.Veto
		}

		// 2. Higher median wins
		if a.Median != b.Median {
			return a.Median > b.Median
		}

		// 3. Higher p10 wins (least-misery tiebreaker)
		if a.P10 != b.P10 {
			return a.P10 > b.P10
		}

		// 4. Higher p90 wins (upside tiebreaker)
		if a.P90 != b.P90 {
			return a.P90 > b.P90
		}

		// 5. Higher mean wins
		if a.Mean != b.Mean {
			return a.Mean > b.Mean
		}

		// 6. Lower choice index wins
		return a.Choice < b.Choice
	})

	for i := range stats {
		stats[i].Rank = i + 1
	}
	return stats
}

// percentile calculates the p-th percentile of sorted data
// p should be in range [0, 1]
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0.0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	// Linear interpolation between closest ranks
	rank := p * float64(len(sorted)-1)
	lower := int(rank)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := rank - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// negativeShare calculates the fraction of negative scores
func negativeShare(signed []float64) float64 {
	if len(signed) == 0 {
		return 0.0
	}

	neg := 0
	for _, s := range signed {
		if s < 0 {
			neg++
		}
	}
	return float64(neg) / float64(len(signed))
}
