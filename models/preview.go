// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Preview limits used by list rows.
const (
	PreviewTitleLimit = 124
	PreviewBodyLimit  = 140
)

var lineJoin = regexp.MustCompile(`(\S+)\n\s*(\S+)`)

// Shorten truncates s to limit runes and appends "...".
func Shorten(s string, limit int) string {
	r := []rune(s)
	if limit <= 0 || len(r) <= limit {
		return s
	}
	return strings.TrimSpace(string(r[:limit])) + "..."
}

// ShortenAddress renders a wallet address as 0x1234...abcd
func ShortenAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

// PreviewBody shortens a proposal body and joins wrapped lines.
func PreviewBody(body string) string {
	return lineJoin.ReplaceAllString(Shorten(body, PreviewBodyLimit), "$1 $2")
}

// Period describes a proposal's voting window relative to now.
func Period(state string, start, end int64, now time.Time) string {
	switch state {
	case StateClosed:
		return "Ended " + humanize.RelTime(time.Unix(end, 0), now, "ago", "from now")
	case StateActive:
		return "Ends " + humanize.RelTime(time.Unix(end, 0), now, "ago", "from now")
	}
	return "Starts " + humanize.RelTime(time.Unix(start, 0), now, "ago", "from now")
}

// Preview builds the compact list representation of a proposal.
func Preview(p Proposal, now time.Time) ProposalPreviewResponse {
	resp := ProposalPreviewResponse{
		ID:     p.ID,
		Author: ShortenAddress(p.Author),
		Title:  Shorten(p.Title, PreviewTitleLimit),
		Body:   PreviewBody(p.Body),
		State:  p.State,
		Period: Period(p.State, p.Start, p.End, now),
	}
	if p.Space != nil {
		resp.SpaceName = p.Space.Name
	}
	return resp
}
