// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles the local SQL cache and the persisted read cursor.

# Connections

Open accepts "sqlite" (modernc.org/sqlite, the default) or "postgres"
(lib/pq). Queries are written with ? placeholders and rebound through sqlx
for the active driver:

	conn, err := db.Open("sqlite", "file:govfeed.db")
	if err != nil {
		log.Fatal(err)
	}
	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

CreateSchema is safe to call multiple times - uses IF NOT EXISTS for all
tables and indexes.

# Tables

  - space: Explore directory, follow flag and privacy
  - proposal: Cached proposal records (choices and strategies as JSON text)
  - vote: Cached votes per proposal
  - notification_event: Feed events, unique per (proposal_id, event, event_time),
    listed by time then arrival (seq). Malformed events are stored as sent.
  - read_cursor: Newest seen event per account

All timestamps are unix seconds.

# Stores

  - Store: Spaces, proposals, votes and the feed
  - CursorStore: readstate.CursorStore backed by read_cursor
  - WriteThrough: Wraps an upstream fetcher and caches what it returns
*/
package db
