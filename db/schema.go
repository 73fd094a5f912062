// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported DATABASE_TYPE values and the driver each maps to.
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// Open connects to the configured database and verifies the connection.
// SQLite connections are limited to one so per-connection pragmas hold
// and in-memory databases are shared across queries.
func Open(dbType, url string) (*sqlx.DB, error) {
	switch dbType {
	case TypeSQLite, TypePostgres:
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	conn, err := sqlx.Open(dbType, url)
	if err != nil {
		return nil, fmt.Errorf("opening %s db: %w", dbType, err)
	}

	if dbType == TypeSQLite {
		conn.SetMaxOpenConns(1)
		if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("enabling foreign keys: %w", err)
		}
		if !strings.Contains(url, ":memory:") {
			if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
				conn.Close()
				return nil, fmt.Errorf("enabling WAL mode: %w", err)
			}
		}
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pinging %s db: %w", dbType, err)
	}

	return conn, nil
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sqlx.DB) error {
	seq := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.DriverName() == TypePostgres {
		seq = "BIGSERIAL PRIMARY KEY"
	}
	_, err := db.Exec(strings.ReplaceAll(schema, "{{event_seq}}", seq))
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Timestamps are unix seconds so the schema runs unchanged on SQLite and Postgres.
const schema = `
-- Spaces
CREATE TABLE IF NOT EXISTS space (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    avatar TEXT NOT NULL DEFAULT '',
    network TEXT NOT NULL DEFAULT '',
    symbol TEXT NOT NULL DEFAULT '',
    categories TEXT NOT NULL DEFAULT '[]',
    followers INTEGER NOT NULL DEFAULT 0,
    is_following BOOLEAN NOT NULL DEFAULT FALSE,
    is_private BOOLEAN NOT NULL DEFAULT FALSE
);

-- Proposals
CREATE TABLE IF NOT EXISTS proposal (
    id TEXT PRIMARY KEY,
    space_id TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL DEFAULT '',
    body TEXT NOT NULL DEFAULT '',
    author TEXT NOT NULL DEFAULT '',
    voting_type TEXT NOT NULL DEFAULT '',
    choices TEXT NOT NULL DEFAULT '[]',
    strategies TEXT NOT NULL DEFAULT '[]',
    start_at BIGINT NOT NULL DEFAULT 0,
    end_at BIGINT NOT NULL DEFAULT 0,
    snapshot TEXT NOT NULL DEFAULT '',
    state TEXT NOT NULL DEFAULT '',
    fetched_at BIGINT NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_proposal_space_id ON proposal(space_id);

-- Votes
CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    proposal_id TEXT NOT NULL REFERENCES proposal(id) ON DELETE CASCADE,
    voter TEXT NOT NULL,
    choice TEXT NOT NULL,
    vp DOUBLE PRECISION NOT NULL DEFAULT 0,
    created BIGINT NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_vote_proposal_id ON vote(proposal_id);

-- Notification feed. Malformed events (no proposal id, time <= 0) are kept;
-- seq orders events that share a time by arrival.
CREATE TABLE IF NOT EXISTS notification_event (
    seq {{event_seq}},
    id TEXT NOT NULL UNIQUE,
    proposal_id TEXT NOT NULL DEFAULT '',
    event TEXT NOT NULL DEFAULT '',
    event_time BIGINT NOT NULL DEFAULT 0,
    UNIQUE (proposal_id, event, event_time)
);

CREATE INDEX IF NOT EXISTS idx_notification_event_time ON notification_event(event_time);

-- Read cursor, one per account
CREATE TABLE IF NOT EXISTS read_cursor (
    account TEXT PRIMARY KEY,
    proposal_id TEXT NOT NULL,
    event_time BIGINT NOT NULL,
    saved_at BIGINT NOT NULL
);
`
