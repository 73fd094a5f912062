// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package hub

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(srv.URL, srv.Client())
	c.retryDelay = time.Millisecond
	return c
}

func TestFetchProposalWithVotes(t *testing.T) {
	var gotVars map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		var req graphQLRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		gotVars = req.Variables

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{
			"proposal":{"id":"0xprop","title":"Final","body":"b","type":"single-choice",
				"choices":["For","Against"],"start":100,"end":200,"state":"closed",
				"space":{"id":"test.eth","name":"Test DAO"}},
			"votes":[
				{"id":"v1","voter":"0xA","choice":1,"vp":10,"created":150},
				{"id":"v2","voter":"0xB","choice":2,"vp":5.5,"created":160}
			]}}`))
	})

	p, votes, err := c.FetchProposalWithVotes(context.Background(), "0xprop")
	if err != nil {
		t.Fatalf("FetchProposalWithVotes failed: %v", err)
	}

	if gotVars["id"] != "0xprop" {
		t.Errorf("Expected id variable 0xprop, got %v", gotVars["id"])
	}
	if p == nil || p.Title != "Final" || p.State != "closed" {
		t.Fatalf("Unexpected proposal: %+v", p)
	}
	if p.Space == nil || p.Space.Name != "Test DAO" {
		t.Errorf("Expected space Test DAO, got %+v", p.Space)
	}
	if len(votes) != 2 {
		t.Fatalf("Expected 2 votes, got %d", len(votes))
	}
	if votes[1].VP != 5.5 || string(votes[1].Choice) != "2" {
		t.Errorf("Unexpected vote: %+v", votes[1])
	}
}

func TestFetchProposalUnknown(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"proposal":null,"votes":[]}}`))
	})

	p, _, err := c.FetchProposalWithVotes(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Expected nil error, got %v", err)
	}
	if p != nil {
		t.Errorf("Expected nil proposal, got %+v", p)
	}
}

func TestGraphQLErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"errors":[{"message":"bad id"}]}`))
	})

	_, _, err := c.FetchProposalWithVotes(context.Background(), "0xprop")
	if !errors.Is(err, ErrGraphQL) {
		t.Errorf("Expected ErrGraphQL, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("Expected query errors not to be retried, got %d calls", calls.Load())
	}
}

func TestRetryOnServerError(t *testing.T) {
	tests := []struct {
		name       string
		failures   int32
		status     int
		expectErr  bool
		expectCall int32
	}{
		{"recovers after one 503", 1, http.StatusServiceUnavailable, false, 2},
		{"recovers after 429", 2, http.StatusTooManyRequests, false, 3},
		{"gives up after attempts", 5, http.StatusBadGateway, true, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if calls.Add(1) <= tt.failures {
					w.WriteHeader(tt.status)
					return
				}
				w.Write([]byte(`{"data":{"spaces":[]}}`))
			})

			_, err := c.FetchSpaces(context.Background(), 10)
			if tt.expectErr && !errors.Is(err, ErrStatus) {
				t.Errorf("Expected ErrStatus, got %v", err)
			}
			if !tt.expectErr && err != nil {
				t.Errorf("Expected success, got %v", err)
			}
			if calls.Load() != tt.expectCall {
				t.Errorf("Expected %d calls, got %d", tt.expectCall, calls.Load())
			}
		})
	}
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := c.FetchSpaces(context.Background(), 10)
	if !errors.Is(err, ErrStatus) {
		t.Errorf("Expected ErrStatus, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("Expected 1 call, got %d", calls.Load())
	}
}

func TestFetchSpacesAndFollows(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req graphQLRequest
		json.NewDecoder(r.Body).Decode(&req)

		if _, ok := req.Variables["follower"]; ok {
			w.Write([]byte(`{"data":{"follows":[{"space":{"id":"a.eth"}},{"space":{"id":""}}]}}`))
			return
		}
		w.Write([]byte(`{"data":{"spaces":[
			{"id":"a.eth","name":"A","followersCount":42,"categories":["protocol"],"private":false}
		]}}`))
	})

	spaces, err := c.FetchSpaces(context.Background(), 10)
	if err != nil {
		t.Fatalf("FetchSpaces failed: %v", err)
	}
	if len(spaces) != 1 || spaces[0].Followers != 42 {
		t.Errorf("Unexpected spaces: %+v", spaces)
	}

	ids, err := c.FetchFollowedSpaceIDs(context.Background(), "0xme")
	if err != nil {
		t.Fatalf("FetchFollowedSpaceIDs failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "a.eth" {
		t.Errorf("Expected [a.eth], got %v", ids)
	}
}

func TestRetryStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int
	_, _, err := doWithRetry(ctx, 5, time.Hour, func() (int, []byte, error) {
		calls++
		cancel()
		return http.StatusServiceUnavailable, nil, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}
