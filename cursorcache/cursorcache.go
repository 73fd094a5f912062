// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cursorcache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/models"
)

const keyPrefix = "govfeed:cursor:"

// Open parses a redis:// URL and checks the server is reachable.
func Open(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}

// Store keeps one account's read cursor in a redis hash.
type Store struct {
	rdb *redis.Client
	key string
}

func New(rdb *redis.Client, account string) *Store {
	return &Store{rdb: rdb, key: keyPrefix + account}
}

// LoadCursor returns nil when no cursor has been saved.
func (s *Store) LoadCursor(ctx context.Context) (*models.ReadCursor, error) {
	fields, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("loading read cursor: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	eventTime, err := strconv.ParseInt(fields["time"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decoding cursor time: %w", err)
	}
	savedAt, _ := strconv.ParseInt(fields["saved_at"], 10, 64)

	return &models.ReadCursor{
		ProposalID: fields["proposal_id"],
		Time:       eventTime,
		SavedAt:    time.Unix(savedAt, 0).UTC(),
	}, nil
}

// SaveCursor overwrites the stored cursor. Last write wins.
func (s *Store) SaveCursor(ctx context.Context, cursor models.ReadCursor) error {
	err := s.rdb.HSet(ctx, s.key,
		"proposal_id", cursor.ProposalID,
		"time", strconv.FormatInt(cursor.Time, 10),
		"saved_at", strconv.FormatInt(cursor.SavedAt.Unix(), 10),
	).Err()
	if err != nil {
		return fmt.Errorf("saving read cursor: %w", err)
	}
	return nil
}
