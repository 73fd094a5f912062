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
	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/readstate"
)

// DefaultFeedLimit caps how many events the feed shows.
const DefaultFeedLimit = 100

type NotificationHandler struct {
	store   *db.Store
	tracker *readstate.Tracker
	limit   int
}

func NewNotificationHandler(store *db.Store, tracker *readstate.Tracker) *NotificationHandler {
	return &NotificationHandler{store: store, tracker: tracker, limit: DefaultFeedLimit}
}

// feed returns the events currently shown, newest first. An account that
// follows no spaces has an empty feed.
func (h *NotificationHandler) feed(ctx context.Context) ([]models.NotificationEvent, error) {
	followed, err := h.store.CountFollowedSpaces(ctx)
	if err != nil {
		return nil, err
	}
	if followed == 0 {
		return []models.NotificationEvent{}, nil
	}
	return h.store.ListEvents(ctx, h.limit)
}

// GetNotifications handles GET /notifications
// Returns the feed with a seen flag per event. Proposal details come from the
// cache; events whose proposal is not cached carry no details.
func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	events, err := h.feed(r.Context())
	if err != nil {
		slog.Error("failed to load feed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ProposalID)
	}
	proposals, err := h.store.GetProposals(r.Context(), ids)
	if err != nil {
		slog.Warn("failed to load feed proposals", "error", err)
		proposals = nil
	}

	items := make([]models.NotificationItem, 0, len(events))
	for _, se := range h.tracker.Partition(events) {
		item := models.NotificationItem{
			ProposalID: se.Event.ProposalID,
			Event:      se.Event.Event,
			Time:       se.Event.Time,
			Seen:       se.Seen,
		}
		if p, ok := proposals[se.Event.ProposalID]; ok {
			item.Proposal = &p
		}
		items = append(items, item)
	}

	middleware.JSONResponse(w, http.StatusOK, models.NotificationsResponse{
		Items:  items,
		Cursor: h.tracker.Cursor(),
	})
}

// SetFocus handles POST /notifications/focus
// Leaving the feed (focused true -> false) marks everything shown as seen.
func (h *NotificationHandler) SetFocus(w http.ResponseWriter, r *http.Request) {
	var req models.FocusRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Focused == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "focused is required")
		return
	}

	events, err := h.feed(r.Context())
	if err != nil {
		slog.Error("failed to load feed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// A failed write is logged by the tracker; the in-memory cursor has moved.
	advanced, _ := h.tracker.SetFocus(r.Context(), *req.Focused, events)

	middleware.JSONResponse(w, http.StatusOK, models.FocusResponse{
		Focused:  h.tracker.Focused(),
		Advanced: advanced,
		Cursor:   h.tracker.Cursor(),
	})
}

// IngestEvents handles POST /notifications/events
// Accepts feed events pushed by the feed provider. Duplicates are ignored.
// Malformed events are stored and counted; they show as unseen.
func (h *NotificationHandler) IngestEvents(w http.ResponseWriter, r *http.Request) {
	var req models.IngestEventsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(req.Events) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "events are required")
		return
	}
	malformed := 0
	for i, e := range req.Events {
		if err := readstate.Validate(e); err != nil {
			malformed++
			slog.Debug("malformed feed event", "index", i, "error", err)
		}
	}

	inserted, err := h.store.InsertEvents(r.Context(), req.Events)
	if err != nil {
		slog.Error("failed to store events", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if malformed > 0 {
		slog.Warn("feed batch contained malformed events", "malformed", malformed)
	}
	slog.Info("feed events ingested", "received", len(req.Events), "inserted", inserted)
	middleware.JSONResponse(w, http.StatusCreated, models.IngestEventsResponse{Inserted: inserted, Malformed: malformed})
}
