// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/db"
	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/middleware"
	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/models"
)

// SpaceSource lists spaces and an account's follows. Implemented by hub.Client.
type SpaceSource interface {
	FetchSpaces(ctx context.Context, first int) ([]models.Space, error)
	FetchFollowedSpaceIDs(ctx context.Context, account string) ([]string, error)
}

// DefaultSpaceSyncSize is how many spaces a sync pulls from the source.
const DefaultSpaceSyncSize = 500

type SpaceHandler struct {
	store   *db.Store
	source  SpaceSource
	account string
}

// NewSpaceHandler returns a handler for the explore directory. source may be
// nil when running cache-only, in which case sync is unavailable.
func NewSpaceHandler(store *db.Store, source SpaceSource, account string) *SpaceHandler {
	return &SpaceHandler{store: store, source: source, account: account}
}

// ListSpaces handles GET /spaces?q=&category=
// Public spaces, followed first, then by follower count.
func (h *SpaceHandler) ListSpaces(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	spaces, err := h.store.ListSpaces(r.Context(), q.Get("q"), q.Get("category"))
	if err != nil {
		slog.Error("failed to list spaces", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SpacesResponse{Spaces: spaces})
}

// SyncSpaces handles POST /spaces/sync
// Pulls the directory and the account's follows from the source.
func (h *SpaceHandler) SyncSpaces(w http.ResponseWriter, r *http.Request) {
	if h.source == nil {
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "No space source configured")
		return
	}

	resp, err := SyncSpaces(r.Context(), h.source, h.store, h.account, DefaultSpaceSyncSize)
	if err != nil {
		slog.Error("space sync failed", "error", err)
		middleware.ErrorResponse(w, http.StatusBadGateway, "Failed to sync spaces")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// SyncSpaces stores up to first spaces from source, flagging the ones
// account follows. Followed spaces outside the listing are stored too.
func SyncSpaces(ctx context.Context, source SpaceSource, store *db.Store, account string, first int) (models.SyncSpacesResponse, error) {
	spaces, err := source.FetchSpaces(ctx, first)
	if err != nil {
		return models.SyncSpacesResponse{}, err
	}
	followedIDs, err := source.FetchFollowedSpaceIDs(ctx, account)
	if err != nil {
		return models.SyncSpacesResponse{}, err
	}

	followed := make(map[string]bool, len(followedIDs))
	for _, id := range followedIDs {
		followed[id] = true
	}
	for i := range spaces {
		if followed[spaces[i].ID] {
			spaces[i].Following = true
			delete(followed, spaces[i].ID)
		}
	}
	for id := range followed {
		spaces = append(spaces, models.Space{ID: id, Following: true})
	}

	if err := store.UpsertSpaces(ctx, spaces); err != nil {
		return models.SyncSpacesResponse{}, err
	}

	slog.Info("spaces synced", "spaces", len(spaces), "following", len(followedIDs))
	return models.SyncSpacesResponse{Synced: len(spaces), Following: len(followedIDs)}, nil
}
