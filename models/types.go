// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"time"
)

// Proposal state constants
const (
	StatePending = "pending"
	StateActive  = "active"
	StateClosed  = "closed"
)

// Voting type constants
const (
	TypeSingleChoice = "single-choice"
	TypeApproval     = "approval"
	TypeRankedChoice = "ranked-choice"
	TypeWeighted     = "weighted"
	TypeQuadratic    = "quadratic"
	TypeBasic        = "basic"
)

// Notification event kinds. The set is open; the feed provider may emit others.
const (
	EventCreated = "proposal/created"
	EventStart   = "proposal/start"
	EventEnd     = "proposal/end"
	EventUpdated = "proposal/updated"
	EventDeleted = "proposal/deleted"
)

// Domain types

type Space struct {
	ID         string   `json:"id"`
	Name       string   `json:"name,omitempty"`
	Avatar     string   `json:"avatar,omitempty"`
	Network    string   `json:"network,omitempty"`
	Symbol     string   `json:"symbol,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Followers  int      `json:"followers"`
	Following  bool     `json:"following"`
	Private    bool     `json:"private"`
}

type Strategy struct {
	Name    string          `json:"name"`
	Network string          `json:"network,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type Proposal struct {
	ID         string     `json:"id"`
	Space      *Space     `json:"space,omitempty"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
	Author     string     `json:"author,omitempty"`
	Type       string     `json:"type,omitempty"`
	Choices    []string   `json:"choices,omitempty"`
	Strategies []Strategy `json:"strategies,omitempty"`
	Start      int64      `json:"start"`
	End        int64      `json:"end"`
	Snapshot   string     `json:"snapshot,omitempty"`
	State      string     `json:"state,omitempty"`
	Votes      []Vote     `json:"votes"`
	Results    *Results   `json:"results,omitempty"`
}

// Vote choice shape depends on the proposal type: an index for single-choice
// and basic, a list of indexes for approval and ranked-choice, and an
// index->weight object for weighted and quadratic.
type Vote struct {
	ID      string          `json:"id"`
	Voter   string          `json:"voter"`
	Choice  json.RawMessage `json:"choice"`
	VP      float64         `json:"vp"`
	Created int64           `json:"created"`
}

// Results Types

type ChoiceStats struct {
	Choice   int     `json:"choice"` // 1-indexed
	Label    string  `json:"label"`
	Median   float64 `json:"median"`
	P10      float64 `json:"p10"`
	P90      float64 `json:"p90"`
	Mean     float64 `json:"mean"`
	NegShare float64 `json:"neg_share"`
	Veto     bool    `json:"veto"`
	Rank     int     `json:"rank"` // 1-indexed ranking
}

type Results struct {
	ScoresByChoice []float64     `json:"scores_by_choice"`
	ScoresTotal    float64       `json:"scores_total"`
	VoteCount      int           `json:"vote_count"`
	Rankings       []ChoiceStats `json:"rankings,omitempty"`
	ComputedAt     time.Time     `json:"computed_at"`
}

// Aggregate is what a results engine hands back. A nil Votes slice means
// "no update", never "zero votes".
type Aggregate struct {
	Votes   []Vote
	Results *Results
}

// Notification types

type NotificationEvent struct {
	ProposalID string `json:"proposal_id"`
	Event      string `json:"event"`
	Time       int64  `json:"time"`
}

type ReadCursor struct {
	ProposalID string    `json:"proposal_id"`
	Time       int64     `json:"time"`
	SavedAt    time.Time `json:"saved_at"`
}

type SeenEvent struct {
	Event NotificationEvent `json:"event"`
	Seen  bool              `json:"seen"`
}

// Request types

type FocusRequest struct {
	Focused *bool `json:"focused"`
}

type IngestEventsRequest struct {
	Events []NotificationEvent `json:"events"`
}

// Response types

type ProposalSnapshot struct {
	Proposal      Proposal `json:"proposal"`
	Phase         string   `json:"phase"`
	Loaded        bool     `json:"loaded"`
	ResultsLoaded bool     `json:"results_loaded"`
	ResultsFailed bool     `json:"results_failed"`
}

type ProposalPreviewResponse struct {
	ID        string `json:"id"`
	SpaceName string `json:"space_name,omitempty"`
	Author    string `json:"author,omitempty"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	State     string `json:"state"`
	Period    string `json:"period"`
}

// NotificationItem pairs an event with its seen flag. Proposal is nil when the
// referenced proposal is not cached yet; clients render a placeholder.
type NotificationItem struct {
	ProposalID string    `json:"proposal_id"`
	Event      string    `json:"event"`
	Time       int64     `json:"time"`
	Seen       bool      `json:"seen"`
	Proposal   *Proposal `json:"proposal,omitempty"`
}

type NotificationsResponse struct {
	Items  []NotificationItem `json:"items"`
	Cursor *ReadCursor        `json:"cursor,omitempty"`
}

type FocusResponse struct {
	Focused  bool        `json:"focused"`
	Advanced bool        `json:"advanced"`
	Cursor   *ReadCursor `json:"cursor,omitempty"`
}

type IngestEventsResponse struct {
	Inserted int `json:"inserted"`
	// Malformed counts stored events that can never match a read cursor.
	Malformed int `json:"malformed"`
}

type SpacesResponse struct {
	Spaces []Space `json:"spaces"`
}

type SyncSpacesResponse struct {
	Synced    int `json:"synced"`
	Following int `json:"following"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
