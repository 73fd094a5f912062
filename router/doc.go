// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the govfeed API.

# Route Registration

NewRouter creates a configured http.ServeMux from its dependencies:

	mux := router.NewRouter(router.Deps{
		Store:    store,
		Loader:   loader.New(upstream, results.NewEngine(), m),
		Sessions: loader.NewRegistry(m),
		Tracker:  tracker,
		Spaces:   hubClient,
		Account:  cfg.Account,
		Gatherer: reg,
	})

# Endpoints

Health and metrics:

	GET /health
	GET /metrics

Spaces:

	GET  /spaces      - Explore directory (?q=, ?category=)
	POST /spaces/sync - Pull spaces and follows from the hub

Proposals (one viewing session per id):

	GET    /proposals/{id}         - Open a session and load it
	POST   /proposals/{id}/refresh - Reload an open session
	DELETE /proposals/{id}         - Close the session
	GET    /proposals/{id}/preview - Compact preview data

Notifications:

	GET  /notifications        - Feed with seen flags
	POST /notifications/focus  - Report focus gained or lost
	POST /notifications/events - Ingest feed events

Every route except health, metrics and root runs through
middleware.WithLogging.
*/
package router
