// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/models"
)

var ErrNotFound = errors.New("not found")

// Store is the local cache of spaces, proposals, votes and the notification
// feed. Queries use ? placeholders and are rebound for the active driver.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type spaceRow struct {
	ID         string `db:"id"`
	Name       string `db:"name"`
	Avatar     string `db:"avatar"`
	Network    string `db:"network"`
	Symbol     string `db:"symbol"`
	Categories string `db:"categories"`
	Followers  int    `db:"followers"`
	Following  bool   `db:"is_following"`
	Private    bool   `db:"is_private"`
}

func (r spaceRow) toModel() models.Space {
	s := models.Space{
		ID:        r.ID,
		Name:      r.Name,
		Avatar:    r.Avatar,
		Network:   r.Network,
		Symbol:    r.Symbol,
		Followers: r.Followers,
		Following: r.Following,
		Private:   r.Private,
	}
	_ = json.Unmarshal([]byte(r.Categories), &s.Categories)
	return s
}

type proposalRow struct {
	ID         string         `db:"id"`
	SpaceID    string         `db:"space_id"`
	SpaceName  sql.NullString `db:"space_name"`
	Title      string         `db:"title"`
	Body       string         `db:"body"`
	Author     string         `db:"author"`
	Type       string         `db:"voting_type"`
	Choices    string         `db:"choices"`
	Strategies string         `db:"strategies"`
	StartAt    int64          `db:"start_at"`
	EndAt      int64          `db:"end_at"`
	Snapshot   string         `db:"snapshot"`
	State      string         `db:"state"`
}

func (r proposalRow) toModel() models.Proposal {
	p := models.Proposal{
		ID:       r.ID,
		Title:    r.Title,
		Body:     r.Body,
		Author:   r.Author,
		Type:     r.Type,
		Start:    r.StartAt,
		End:      r.EndAt,
		Snapshot: r.Snapshot,
		State:    r.State,
	}
	if r.SpaceID != "" {
		p.Space = &models.Space{ID: r.SpaceID, Name: r.SpaceName.String}
	}
	_ = json.Unmarshal([]byte(r.Choices), &p.Choices)
	_ = json.Unmarshal([]byte(r.Strategies), &p.Strategies)
	return p
}

type voteRow struct {
	ID      string  `db:"id"`
	Voter   string  `db:"voter"`
	Choice  string  `db:"choice"`
	VP      float64 `db:"vp"`
	Created int64   `db:"created"`
}

const proposalColumns = `
	p.id, p.space_id, s.name AS space_name, p.title, p.body, p.author,
	p.voting_type, p.choices, p.strategies, p.start_at, p.end_at,
	p.snapshot, p.state`

// UpsertSpaces inserts or updates a batch of spaces.
func (s *Store) UpsertSpaces(ctx context.Context, spaces []models.Space) error {
	if len(spaces) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query := tx.Rebind(`
		INSERT INTO space (id, name, avatar, network, symbol, categories, followers, is_following, is_private)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			avatar = excluded.avatar,
			network = excluded.network,
			symbol = excluded.symbol,
			categories = excluded.categories,
			followers = excluded.followers,
			is_following = excluded.is_following,
			is_private = excluded.is_private`)

	for _, sp := range spaces {
		if sp.ID == "" {
			continue
		}
		categories, err := marshalList(sp.Categories)
		if err != nil {
			return fmt.Errorf("encoding categories for space %s: %w", sp.ID, err)
		}
		if _, err := tx.ExecContext(ctx, query,
			sp.ID, sp.Name, sp.Avatar, sp.Network, sp.Symbol,
			categories, sp.Followers, sp.Following, sp.Private,
		); err != nil {
			return fmt.Errorf("upserting space %s: %w", sp.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing spaces: %w", err)
	}
	return nil
}

// ListSpaces returns the explore listing: public spaces, followed spaces
// first, then by follower count. search matches id or name case-insensitively;
// category keeps only spaces tagged with it.
func (s *Store) ListSpaces(ctx context.Context, search, category string) ([]models.Space, error) {
	query := `
		SELECT id, name, avatar, network, symbol, categories, followers, is_following, is_private
		FROM space
		WHERE is_private = ?`
	args := []any{false}

	if search = strings.ToLower(strings.TrimSpace(search)); search != "" {
		query += ` AND (LOWER(id) LIKE ? OR LOWER(name) LIKE ?)`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY is_following DESC, followers DESC, id`

	var rows []spaceRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("listing spaces: %w", err)
	}

	spaces := make([]models.Space, 0, len(rows))
	for _, r := range rows {
		sp := r.toModel()
		if category != "" && !slices.Contains(sp.Categories, category) {
			continue
		}
		spaces = append(spaces, sp)
	}
	return spaces, nil
}

// SpaceDirectory returns every cached space keyed by id.
func (s *Store) SpaceDirectory(ctx context.Context) (map[string]models.Space, error) {
	var rows []spaceRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, name, avatar, network, symbol, categories, followers, is_following, is_private
		FROM space`)
	if err != nil {
		return nil, fmt.Errorf("loading space directory: %w", err)
	}

	directory := make(map[string]models.Space, len(rows))
	for _, r := range rows {
		directory[r.ID] = r.toModel()
	}
	return directory, nil
}

// CountFollowedSpaces returns how many cached spaces the account follows.
func (s *Store) CountFollowedSpaces(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, s.db.Rebind(`SELECT COUNT(*) FROM space WHERE is_following = ?`), true)
	if err != nil {
		return 0, fmt.Errorf("counting followed spaces: %w", err)
	}
	return n, nil
}

// UpsertProposal stores a proposal and replaces its cached votes.
func (s *Store) UpsertProposal(ctx context.Context, p models.Proposal) error {
	if p.ID == "" {
		return fmt.Errorf("upserting proposal: empty id")
	}

	choices, err := marshalList(p.Choices)
	if err != nil {
		return fmt.Errorf("encoding choices: %w", err)
	}
	strategies, err := marshalList(p.Strategies)
	if err != nil {
		return fmt.Errorf("encoding strategies: %w", err)
	}
	spaceID := ""
	if p.Space != nil {
		spaceID = p.Space.ID
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO proposal (
			id, space_id, title, body, author, voting_type, choices, strategies,
			start_at, end_at, snapshot, state, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			space_id = excluded.space_id,
			title = excluded.title,
			body = excluded.body,
			author = excluded.author,
			voting_type = excluded.voting_type,
			choices = excluded.choices,
			strategies = excluded.strategies,
			start_at = excluded.start_at,
			end_at = excluded.end_at,
			snapshot = excluded.snapshot,
			state = excluded.state,
			fetched_at = excluded.fetched_at`),
		p.ID, spaceID, p.Title, p.Body, p.Author, p.Type, choices, strategies,
		p.Start, p.End, p.Snapshot, p.State, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upserting proposal %s: %w", p.ID, err)
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM vote WHERE proposal_id = ?`), p.ID); err != nil {
		return fmt.Errorf("clearing votes for %s: %w", p.ID, err)
	}

	insertVote := tx.Rebind(`
		INSERT INTO vote (id, proposal_id, voter, choice, vp, created)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`)
	for _, v := range p.Votes {
		choice := string(v.Choice)
		if choice == "" {
			choice = "null"
		}
		if _, err := tx.ExecContext(ctx, insertVote, v.ID, p.ID, v.Voter, choice, v.VP, v.Created); err != nil {
			return fmt.Errorf("inserting vote %s: %w", v.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing proposal %s: %w", p.ID, err)
	}
	return nil
}

// FetchProposalWithVotes returns the cached proposal and its votes. A
// proposal that is not cached yields a nil proposal and a nil error.
func (s *Store) FetchProposalWithVotes(ctx context.Context, id string) (*models.Proposal, []models.Vote, error) {
	p, err := s.GetProposal(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	var rows []voteRow
	err = s.db.SelectContext(ctx, &rows, s.db.Rebind(`
		SELECT id, voter, choice, vp, created
		FROM vote
		WHERE proposal_id = ?
		ORDER BY created, id`), id)
	if err != nil {
		return nil, nil, fmt.Errorf("loading votes for %s: %w", id, err)
	}

	votes := make([]models.Vote, len(rows))
	for i, r := range rows {
		votes[i] = models.Vote{
			ID:      r.ID,
			Voter:   r.Voter,
			Choice:  json.RawMessage(r.Choice),
			VP:      r.VP,
			Created: r.Created,
		}
	}
	return p, votes, nil
}

// GetProposal returns a cached proposal without votes.
func (s *Store) GetProposal(ctx context.Context, id string) (*models.Proposal, error) {
	var row proposalRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`
		SELECT `+proposalColumns+`
		FROM proposal p
		LEFT JOIN space s ON s.id = p.space_id
		WHERE p.id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("proposal %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading proposal %s: %w", id, err)
	}

	p := row.toModel()
	return &p, nil
}

// GetProposals returns the cached proposals among ids, keyed by id.
// Missing ids are absent from the map.
func (s *Store) GetProposals(ctx context.Context, ids []string) (map[string]models.Proposal, error) {
	out := make(map[string]models.Proposal, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`
		SELECT `+proposalColumns+`
		FROM proposal p
		LEFT JOIN space s ON s.id = p.space_id
		WHERE p.id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("building proposal query: %w", err)
	}

	var rows []proposalRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("loading proposals: %w", err)
	}
	for _, r := range rows {
		out[r.ID] = r.toModel()
	}
	return out, nil
}

// InsertEvents appends feed events, ignoring ones already stored.
// It returns how many rows were new.
func (s *Store) InsertEvents(ctx context.Context, events []models.NotificationEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query := tx.Rebind(`
		INSERT INTO notification_event (id, proposal_id, event, event_time)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (proposal_id, event, event_time) DO NOTHING`)

	// Batches arrive newest first; inserting oldest first gives the newest the
	// highest seq.
	inserted := 0
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		res, err := tx.ExecContext(ctx, query, uuid.NewString(), e.ProposalID, e.Event, e.Time)
		if err != nil {
			return 0, fmt.Errorf("inserting event for %s: %w", e.ProposalID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing events: %w", err)
	}
	return inserted, nil
}

// ListEvents returns up to limit feed events, newest first. Events with the
// same time are listed in reverse arrival order.
func (s *Store) ListEvents(ctx context.Context, limit int) ([]models.NotificationEvent, error) {
	var rows []struct {
		ProposalID string `db:"proposal_id"`
		Event      string `db:"event"`
		EventTime  int64  `db:"event_time"`
	}
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(`
		SELECT proposal_id, event, event_time
		FROM notification_event
		ORDER BY event_time DESC, seq DESC
		LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}

	events := make([]models.NotificationEvent, len(rows))
	for i, r := range rows {
		events[i] = models.NotificationEvent{ProposalID: r.ProposalID, Event: r.Event, Time: r.EventTime}
	}
	return events, nil
}

func marshalList[T any](items []T) (string, error) {
	if items == nil {
		return "[]", nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
