// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/cliparse"
	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/db"
	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/models"
)

// TestDBURL is the connection string for the test database
const TestDBURL = ":memory:"

// TestAccount is the account the test config serves
const TestAccount = "0x00000000000000000000000000000000000000aa"

// SetupTestDB creates a fresh in-memory database with the full schema.
// The connection is closed when the test ends.
func SetupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, TestDBURL)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3318,
		DatabaseURL:   TestDBURL,
		DatabaseType:  db.TypeSQLite,
		HubURL:        cliparse.HubOff,
		CursorBackend: cliparse.CursorBackendSQL,
		Account:       TestAccount,
	}
}

// CreateTestSpace stores a space; following controls whether the test account follows it
func CreateTestSpace(t *testing.T, store *db.Store, id string, following bool) models.Space {
	t.Helper()

	space := models.Space{ID: id, Name: "Space " + id, Followers: 10, Following: following}
	if err := store.UpsertSpaces(context.Background(), []models.Space{space}); err != nil {
		t.Fatalf("Failed to create test space: %v", err)
	}
	return space
}

// CreateTestProposal caches a single-choice proposal with the given votes
func CreateTestProposal(t *testing.T, store *db.Store, id, spaceID string, votes ...models.Vote) models.Proposal {
	t.Helper()

	p := models.Proposal{
		ID:      id,
		Space:   &models.Space{ID: spaceID},
		Title:   "Test proposal " + id,
		Body:    "A test proposal",
		Author:  "0x1234567890abcdef1234567890abcdef12345678",
		Type:    models.TypeSingleChoice,
		Choices: []string{"For", "Against"},
		Start:   1700000000,
		End:     1700600000,
		State:   models.StateClosed,
		Votes:   votes,
	}
	if err := store.UpsertProposal(context.Background(), p); err != nil {
		t.Fatalf("Failed to create test proposal: %v", err)
	}
	return p
}

// TestVote builds a single-choice vote
func TestVote(id, voter string, choice int, vp float64, created int64) models.Vote {
	raw, _ := json.Marshal(choice)
	return models.Vote{ID: id, Voter: voter, Choice: raw, VP: vp, Created: created}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
