// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the govfeed API server.

govfeed backs a governance reader: it loads proposals with their votes and
tallied results, and keeps a notification feed whose seen state follows a
per-account read cursor.

# Starting the Server

The server reads environment variables (optionally from a .env file) or CLI
flags:

	ACCOUNT=0xabc... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -account 0xabc...

# Configuration

Required settings:

  - ACCOUNT (-account): Account whose follows and read cursor are served

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): Connection string (sqlite default: file:govfeed.db)
  - HUB_URL (-hub): GraphQL endpoint, or "off" to serve from cache only
  - CURSOR_BACKEND (-cursor): sql or redis (default: sql)
  - REDIS_URL (-redis): Required when the cursor backend is redis

# Architecture

  - loader: Two-phase proposal loading with last-known-good results
  - results: Vote tallying per voting type
  - readstate: Seen/unseen partition and read cursor tracking
  - hub: GraphQL client for the upstream hub
  - db: Schema, cache store, write-through fetcher, cursor store
  - cursorcache: Redis read cursor store
  - handlers, router, middleware: HTTP surface
  - metrics: Prometheus collectors
  - models: Shared types and preview helpers
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
