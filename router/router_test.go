// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/db"
	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/loader"
	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/metrics"
	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/readstate"
	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/results"
	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/testutil"
)

func newTestRouter(t *testing.T) (*http.ServeMux, *db.Store) {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	store := db.NewStore(conn)

	mux := NewRouter(Deps{
		Store:    store,
		Loader:   loader.New(store, results.NewEngine(), m),
		Sessions: loader.NewRegistry(m),
		Tracker:  readstate.NewTracker(context.Background(), db.NewCursorStore(conn, testutil.TestAccount), m),
		Account:  testutil.TestAccount,
		Gatherer: reg,
	})
	return mux, store
}

func TestHealthEndpoint(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	expected := "govfeed API v1"
	if w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "govfeed_loader_open_sessions") {
		t.Errorf("Expected session gauge in metrics output, got:\n%s", w.Body.String())
	}
}

func TestRouteExistence(t *testing.T) {
	mux, _ := newTestRouter(t)

	// Some routes return 404 or 503 when data or upstream is missing, which is
	// valid handler behavior
	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/"},
		{"GET", "/metrics"},

		{"GET", "/spaces"},
		{"POST", "/spaces/sync"},

		{"GET", "/proposals/test-id"},
		{"POST", "/proposals/test-id/refresh"},
		{"DELETE", "/proposals/test-id"},
		{"GET", "/proposals/test-id/preview"},

		{"GET", "/notifications"},
		{"POST", "/notifications/focus"},
		{"POST", "/notifications/events"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code == http.StatusMethodNotAllowed {
				t.Errorf("Route %s %s returned 405, expected route handler to exist", tc.method, tc.path)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	mux, _ := newTestRouter(t)

	testCases := []struct {
		method string
		path   string
	}{
		{"POST", "/health"},
		{"PUT", "/proposals/test-id"},
		{"GET", "/notifications/focus"},
		{"DELETE", "/spaces"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected 405 for %s %s, got %d", tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestPathParameterExtraction(t *testing.T) {
	mux, store := newTestRouter(t)

	testutil.CreateTestSpace(t, store, "gov.eth", true)
	testutil.CreateTestProposal(t, store, "0xabc", "gov.eth",
		testutil.TestVote("v1", "0x01", 1, 10, 1700000100))

	t.Run("proposal ID extraction", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/proposals/0xabc", nil)
		w := httptest.NewRecorder()

		mux.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200 for stored proposal, got %d. Body: %s", w.Code, w.Body.String())
		}
		if w.Header().Get("X-Request-ID") == "" {
			t.Error("Expected request ID header from logging middleware")
		}
	})

	t.Run("preview after load", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/proposals/0xabc/preview", nil)
		w := httptest.NewRecorder()

		mux.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d. Body: %s", w.Code, w.Body.String())
		}
	})
}

func TestSyncWithoutHub(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest("POST", "/spaces/sync", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 without a space source, got %d", w.Code)
	}
}
