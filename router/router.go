// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/db"
	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/handlers"
	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/loader"
	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/middleware"
	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/readstate"
)

// Deps holds everything the route handlers are built from.
type Deps struct {
	Store    *db.Store
	Loader   *loader.Loader
	Sessions *loader.Registry
	Tracker  *readstate.Tracker
	// Spaces may be nil when the hub is disabled; sync then answers 503.
	Spaces  handlers.SpaceSource
	Account string
	// Gatherer backs /metrics. Nil falls back to the default registry.
	Gatherer prometheus.Gatherer
}

func NewRouter(deps Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	proposalHandler := handlers.NewProposalHandler(deps.Loader, deps.Sessions, deps.Store)
	notificationHandler := handlers.NewNotificationHandler(deps.Store, deps.Tracker)
	spaceHandler := handlers.NewSpaceHandler(deps.Store, deps.Spaces, deps.Account)

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Space directory
	mux.HandleFunc("GET /spaces", middleware.WithLogging(spaceHandler.ListSpaces))
	mux.HandleFunc("POST /spaces/sync", middleware.WithLogging(spaceHandler.SyncSpaces))

	// Proposal detail sessions
	mux.HandleFunc("GET /proposals/{id}", middleware.WithLogging(proposalHandler.GetProposal))
	mux.HandleFunc("POST /proposals/{id}/refresh", middleware.WithLogging(proposalHandler.RefreshProposal))
	mux.HandleFunc("DELETE /proposals/{id}", middleware.WithLogging(proposalHandler.CloseProposal))
	mux.HandleFunc("GET /proposals/{id}/preview", middleware.WithLogging(proposalHandler.GetPreview))

	// Notification feed and read state
	mux.HandleFunc("GET /notifications", middleware.WithLogging(notificationHandler.GetNotifications))
	mux.HandleFunc("POST /notifications/focus", middleware.WithLogging(notificationHandler.SetFocus))
	mux.HandleFunc("POST /notifications/events", middleware.WithLogging(notificationHandler.IngestEvents))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("govfeed API v1"))
	})

	return mux
}
