// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"strings"
	"testing"
	"time"
)

func TestShorten(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"under limit", "short", 10, "short"},
		{"at limit", "exactly10!", 10, "exactly10!"},
		{"over limit", "hello world", 5, "hello..."},
		{"trailing space trimmed", "hello world", 6, "hello..."},
		{"runes not bytes", "héllo wörld", 5, "héllo..."},
		{"zero limit", "anything", 0, "anything"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Shorten(tt.in, tt.limit); got != tt.want {
				t.Errorf("Shorten(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
			}
		})
	}
}

func TestShortenAddress(t *testing.T) {
	if got := ShortenAddress("0x1234567890abcdef1234567890abcdef12345678"); got != "0x1234...5678" {
		t.Errorf("Expected 0x1234...5678, got %q", got)
	}
	if got := ShortenAddress("alice.eth"); got != "alice.eth" {
		t.Errorf("Short names should pass through, got %q", got)
	}
}

func TestPreviewBody(t *testing.T) {
	if got := PreviewBody("first line\n  second line"); got != "first line second line" {
		t.Errorf("Expected wrapped lines joined, got %q", got)
	}

	long := strings.Repeat("a", PreviewBodyLimit+20)
	got := PreviewBody(long)
	if len([]rune(got)) != PreviewBodyLimit+3 {
		t.Errorf("Expected body cut to %d runes plus ellipsis, got %d", PreviewBodyLimit, len([]rune(got)))
	}
}

func TestPeriod(t *testing.T) {
	now := time.Unix(1700000000, 0)
	day := int64(24 * 60 * 60)

	tests := []struct {
		state string
		start int64
		end   int64
		want  string
	}{
		{StateClosed, now.Unix() - 10*day, now.Unix() - 3*day, "Ended 3 days ago"},
		{StateActive, now.Unix() - day, now.Unix() + 3*day, "Ends 3 days from now"},
		{StatePending, now.Unix() + 3*day, now.Unix() + 10*day, "Starts 3 days from now"},
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			if got := Period(tt.state, tt.start, tt.end, now); got != tt.want {
				t.Errorf("Period() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPreview(t *testing.T) {
	p := Proposal{
		ID:     "0xabc",
		Title:  strings.Repeat("t", PreviewTitleLimit+1),
		Body:   "body",
		Author: "0x1234567890abcdef1234567890abcdef12345678",
		State:  StateClosed,
		End:    1700000000 - 3*24*60*60,
		Space:  &Space{ID: "gov.eth", Name: "Gov"},
	}

	got := Preview(p, time.Unix(1700000000, 0))
	if got.SpaceName != "Gov" {
		t.Errorf("Expected space name Gov, got %q", got.SpaceName)
	}
	if !strings.HasSuffix(got.Title, "...") {
		t.Errorf("Expected shortened title, got %q", got.Title)
	}
	if got.Author != "0x1234...5678" {
		t.Errorf("Expected short author, got %q", got.Author)
	}
	if got.Period != "Ended 3 days ago" {
		t.Errorf("Expected period text, got %q", got.Period)
	}
}
