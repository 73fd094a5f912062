// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package cursorcache stores the notification read cursor in Redis, for
// deployments where several instances serve the same account. Selected with
// CURSOR_BACKEND=redis; the key is govfeed:cursor:<account>.
package cursorcache
