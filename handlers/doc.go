// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the governance feed API.

# Handler Types

Each handler is a struct holding the stores and services it needs:

  - ProposalHandler: Proposal viewing sessions, refresh and previews
  - NotificationHandler: Notification feed, focus tracking and event ingest
  - SpaceHandler: Explore directory and space sync

Handlers are created via constructor functions:

	proposalHandler := handlers.NewProposalHandler(l, sessions, store)

# Proposal Sessions

Viewing a proposal opens a session that owns the proposal until it is closed:

	GET    /proposals/{id}?space= → GetProposal (opens and loads)
	POST   /proposals/{id}/refresh → RefreshProposal (re-runs both phases)
	DELETE /proposals/{id}         → CloseProposal
	GET    /proposals/{id}/preview → GetPreview

The session is seeded from the local cache so list content shows at once.
Loading runs in two phases: core (proposal and votes) then results. The
response is a snapshot with phase, loaded, results_loaded and results_failed
flags. A failed core fetch returns 502 and leaves the previous content.

# Notification Feed

	GET  /notifications        → GetNotifications (events with seen flags)
	POST /notifications/focus  → SetFocus {"focused": bool}
	POST /notifications/events → IngestEvents

Events are marked seen only when the user leaves the feed: the transition
from focused to unfocused moves the read cursor to the newest event shown.
An account that follows no spaces gets an empty feed.

# Explore

	GET  /spaces?q=&category= → ListSpaces
	POST /spaces/sync         → SyncSpaces (pulls directory and follows)
*/
package handlers
