// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package readstate partitions the notification feed into seen and unseen
events against a persisted read cursor.

# Partition

ComputeReadPartition is a pure function of (events, cursor). The feed is
newest-first; everything before the first event matching the cursor on both
proposal id and time is unseen, the rest is seen:

	events: A@300, B@200, C@100   cursor: B@200
	result: A unseen, B seen, C seen

A nil cursor shows everything as unseen. Events without a proposal id or time
are always unseen.

# Cursor Lifecycle

Tracker reads the cursor once at startup. SetFocus(ctx, false, events) on a
focused feed moves the cursor to the newest event and persists it; nothing else
writes. New events that arrive while the feed is open stay unseen until the
user leaves and comes back.
*/
package readstate
