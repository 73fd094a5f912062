// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package loader turns a bare proposal reference into a fully populated
proposal with votes and aggregated results.

# Sessions

A Registry holds one Session per proposal id. Opening an id that is already
open returns the same Session, so there is exactly one Proposal object per id:

	reg := loader.NewRegistry(m)
	s, err := reg.Open(models.Proposal{ID: id, Title: fromList.Title})

Closing a session discards it; loads still in flight are not applied.

# Phases

	seeded → loading_core → core_loaded → loading_results → ready

LoadCore returns a CoreLoaded value and LoadResults only accepts one, so
results can never be requested before the core fetch completed:

	core, err := l.LoadCore(ctx, s)
	if err != nil {
		// errors.Is(err, loader.ErrFetchFailed); the session keeps its last phase
	}
	ready, _ := l.LoadResults(ctx, space, core)
	snap := ready.Snapshot()

# Last Known Good

When the results engine returns no votes, or fails outright, the session keeps
its previous votes and results. ResultsLoaded becomes true either way;
ResultsFailed tells the two apart.

# Refresh

Load and Refresh run both phases. Concurrent calls for the same session are
coalesced and share one result.
*/
package loader
