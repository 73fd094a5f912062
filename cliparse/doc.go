// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Connection string (default for sqlite: file:govfeed.db)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - HubURL: Hub GraphQL endpoint, "off" for cache only
  - RedisURL: Redis connection URL
  - CursorBackend: Where the read cursor lives, sql or redis (default: sql)
  - Account: Address whose feed and follows are served (required)

# CLI Flags

	-p        Server port
	-d        Database URL
	-t        Database type
	-hub      Hub endpoint
	-redis    Redis URL
	-cursor   Read cursor backend
	-account  Account address
	-env      Env file to load (default: .env, ignored if missing)

# Environment Variables

Flags fall back to environment variables:

	PORT           → -p
	DATABASE_URL   → -d
	DATABASE_TYPE  → -t
	HUB_URL        → -hub
	REDIS_URL      → -redis
	CURSOR_BACKEND → -cursor
	ACCOUNT        → -account

CLI flags take precedence over environment variables, and variables already
set in the environment take precedence over the env file.

# Validation

ParseFlags returns an error if:

  - ACCOUNT is missing
  - DATABASE_TYPE is not sqlite or postgres
  - DATABASE_URL is missing for postgres
  - CURSOR_BACKEND is redis and REDIS_URL is missing
*/
package cliparse
