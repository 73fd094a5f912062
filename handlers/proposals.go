// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/db"
	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/loader"
	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/middleware"
	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/models"
)

type ProposalHandler struct {
	loader   *loader.Loader
	sessions *loader.Registry
	store    *db.Store
	now      func() time.Time
}

func NewProposalHandler(l *loader.Loader, sessions *loader.Registry, store *db.Store) *ProposalHandler {
	return &ProposalHandler{loader: l, sessions: sessions, store: store, now: time.Now}
}

// GetProposal handles GET /proposals/{id}?space=
// Opens a viewing session seeded from the cache and loads it. A ready session
// is returned as is (use refresh to re-fetch); one mid-load is joined.
func (h *ProposalHandler) GetProposal(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}
	routeSpaceID := r.URL.Query().Get("space")

	seed := models.Proposal{ID: id}
	cached, err := h.store.GetProposal(r.Context(), id)
	switch {
	case err == nil:
		seed = *cached
	case errors.Is(err, db.ErrNotFound):
	default:
		slog.Warn("failed to read cached proposal", "proposal_id", id, "error", err)
	}
	if seed.Space == nil && routeSpaceID != "" {
		seed.Space = &models.Space{ID: routeSpaceID}
	}

	session, err := h.sessions.Open(seed)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if session.Phase() == loader.PhaseReady {
		middleware.JSONResponse(w, http.StatusOK, session.Snapshot())
		return
	}

	h.load(w, r, session, routeSpaceID, false)
}

// RefreshProposal handles POST /proposals/{id}/refresh
// Re-runs both phases against the open session, e.g. after a vote was cast.
func (h *ProposalHandler) RefreshProposal(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	session, ok := h.sessions.Get(id)
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Proposal is not open")
		return
	}

	h.load(w, r, session, r.URL.Query().Get("space"), true)
}

func (h *ProposalHandler) load(w http.ResponseWriter, r *http.Request, session *loader.Session, routeSpaceID string, refresh bool) {
	directory, err := h.store.SpaceDirectory(r.Context())
	if err != nil {
		slog.Warn("failed to load space directory", "error", err)
	}
	resolve := loader.SpaceFrom(directory, routeSpaceID)

	var snap models.ProposalSnapshot
	if refresh {
		snap, err = h.loader.Refresh(r.Context(), session, resolve)
	} else {
		snap, err = h.loader.Load(r.Context(), session, resolve)
	}

	switch {
	case err == nil:
		middleware.JSONResponse(w, http.StatusOK, snap)
	case errors.Is(err, loader.ErrFetchFailed):
		middleware.ErrorResponse(w, http.StatusBadGateway, "Failed to load proposal")
	case errors.Is(err, loader.ErrSessionClosed):
		middleware.ErrorResponse(w, http.StatusConflict, "Proposal view was closed")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		slog.Debug("proposal request ended before load finished", "proposal_id", session.ID(), "error", err)
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Request cancelled")
	default:
		slog.Error("proposal load failed", "proposal_id", session.ID(), "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load proposal")
	}
}

// CloseProposal handles DELETE /proposals/{id}
// Ends the viewing session; loads still in flight are discarded.
func (h *ProposalHandler) CloseProposal(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.Close(r.PathValue("id")) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Proposal is not open")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPreview handles GET /proposals/{id}/preview
// Returns shortened display text from the open session, or the cache.
func (h *ProposalHandler) GetPreview(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var p models.Proposal
	if session, ok := h.sessions.Get(id); ok {
		p = session.Snapshot().Proposal
	} else {
		cached, err := h.store.GetProposal(r.Context(), id)
		if errors.Is(err, db.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Proposal not found")
			return
		}
		if err != nil {
			slog.Error("failed to query proposal", "proposal_id", id, "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		p = *cached
	}

	middleware.JSONResponse(w, http.StatusOK, models.Preview(p, h.now()))
}
