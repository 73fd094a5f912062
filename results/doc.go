// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package results computes proposal tallies from a raw vote list.

The Engine is the local implementation of the loader's results step. It
receives the authoritative proposal and its votes and returns a revised vote
list together with the tallies.

# Normalisation

Before counting, the vote list is normalised:

  - One vote per voter. Voter addresses compare case-insensitively and the
    vote with the greatest created timestamp wins; ties go to the later entry.
  - Votes whose choice does not decode for the proposal type are dropped.

Surviving votes keep their arrival order. When nothing survives, the returned
vote list is nil, which callers treat as "no update".

# Voting Types

	single-choice, basic   choice is a 1-indexed int
	approval               choice is a list of ints, each credited in full
	ranked-choice          choice is a preference list, tallied by instant runoff
	weighted               choice is {"index": weight}, power split by weight
	quadratic              as weighted, credited sqrt(share*vp) then rescaled

# Rankings

Weighted and quadratic proposals also carry Balanced Majority Judgment
rankings. Each voter's share of a choice maps to a signed score
s = 2*share - 1 and choices are ordered by:

 1. Non-vetoed before vetoed (veto: neg_share >= 0.33 and median <= 0)
 2. Higher median
 3. Higher p10
 4. Higher p90
 5. Higher mean
 6. Lower choice index
*/
package results
