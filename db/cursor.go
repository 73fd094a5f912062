// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/models"
)

// CursorStore persists the read cursor for one account in the read_cursor table.
type CursorStore struct {
	db      *sqlx.DB
	account string
}

func NewCursorStore(db *sqlx.DB, account string) *CursorStore {
	return &CursorStore{db: db, account: account}
}

// LoadCursor returns nil when the account has never advanced its cursor.
func (c *CursorStore) LoadCursor(ctx context.Context) (*models.ReadCursor, error) {
	var row struct {
		ProposalID string `db:"proposal_id"`
		EventTime  int64  `db:"event_time"`
		SavedAt    int64  `db:"saved_at"`
	}
	err := c.db.GetContext(ctx, &row, c.db.Rebind(`
		SELECT proposal_id, event_time, saved_at
		FROM read_cursor
		WHERE account = ?`), c.account)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading read cursor: %w", err)
	}

	return &models.ReadCursor{
		ProposalID: row.ProposalID,
		Time:       row.EventTime,
		SavedAt:    time.Unix(row.SavedAt, 0).UTC(),
	}, nil
}

// SaveCursor overwrites the account's cursor. Last write wins.
func (c *CursorStore) SaveCursor(ctx context.Context, cursor models.ReadCursor) error {
	_, err := c.db.ExecContext(ctx, c.db.Rebind(`
		INSERT INTO read_cursor (account, proposal_id, event_time, saved_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (account) DO UPDATE SET
			proposal_id = excluded.proposal_id,
			event_time = excluded.event_time,
			saved_at = excluded.saved_at`),
		c.account, cursor.ProposalID, cursor.Time, cursor.SavedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("saving read cursor: %w", err)
	}
	return nil
}
