// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cursorcache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/models"
)

// Requires a running Redis; set REDIS_TEST_URL to run.
func setupStore(t *testing.T) *Store {
	t.Helper()

	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	rdb, err := Open(ctx, url)
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	s := New(rdb, "test-"+uuid.NewString())
	t.Cleanup(func() {
		rdb.Del(context.Background(), s.key)
		rdb.Close()
	})
	return s
}

func TestOpenRejectsBadURL(t *testing.T) {
	_, err := Open(context.Background(), "not a url")
	if err == nil {
		t.Error("Expected error for malformed url")
	}
}

func TestLoadEmpty(t *testing.T) {
	s := setupStore(t)

	c, err := s.LoadCursor(context.Background())
	if err != nil {
		t.Fatalf("LoadCursor failed: %v", err)
	}
	if c != nil {
		t.Errorf("Expected nil cursor, got %+v", c)
	}
}

func TestSaveLastWriteWins(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	saved := time.Unix(1700000000, 0).UTC()

	for _, c := range []models.ReadCursor{
		{ProposalID: "A", Time: 100, SavedAt: saved},
		{ProposalID: "B", Time: 300, SavedAt: saved},
	} {
		if err := s.SaveCursor(ctx, c); err != nil {
			t.Fatalf("SaveCursor failed: %v", err)
		}
	}

	c, err := s.LoadCursor(ctx)
	if err != nil {
		t.Fatalf("LoadCursor failed: %v", err)
	}
	if c == nil || c.ProposalID != "B" || c.Time != 300 {
		t.Errorf("Expected (B, 300), got %+v", c)
	}
	if !c.SavedAt.Equal(saved) {
		t.Errorf("Expected saved_at %v, got %v", saved, c.SavedAt)
	}
}
