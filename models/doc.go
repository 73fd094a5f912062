// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

  - Space: a governance space (name, avatar, followers, following flag)
  - Proposal: a governance item with voting window, votes and optional results
  - Vote: a voter's choice; the choice shape depends on the proposal type
  - Results: aggregated tallies, plus per-choice rankings for weighted types
  - Aggregate: a results engine response (nil Votes means "no update")
  - NotificationEvent: one entry of the newest-first notification feed
  - ReadCursor: the persisted (proposal_id, time) boundary of what was seen
  - SeenEvent: an event tagged seen/unseen

# Request Types

  - FocusRequest: focused
  - IngestEventsRequest: events

# Response Types

  - ProposalSnapshot: proposal with phase and completeness flags
  - ProposalPreviewResponse: shortened title/body and period text
  - NotificationsResponse: partitioned feed items and the current cursor
  - FocusResponse, IngestEventsResponse, SpacesResponse
  - ErrorResponse: error, message

# Preview Helpers

Shorten, ShortenAddress, PreviewBody and Period produce list-row text:

	models.Period(models.StateActive, p.Start, p.End, time.Now())
	// "Ends 2 days from now"

# Constants

States:

	StatePending = "pending"
	StateActive  = "active"
	StateClosed  = "closed"

Voting types: single-choice, approval, ranked-choice, weighted, quadratic, basic.
*/
package models
