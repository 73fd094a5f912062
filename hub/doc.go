// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package hub is a client for the governance hub's GraphQL API.

Client implements the proposal store used by the loader: one query returns
the proposal and its votes together. It also lists spaces and the spaces an
account follows, which seed the explore directory.

Requests are retried on transport errors, 429 and 5xx with exponential
backoff (1s, 2s, 4s... capped at 30s). GraphQL errors in a 200 response are
not retried and surface as ErrGraphQL.
*/
package hub
