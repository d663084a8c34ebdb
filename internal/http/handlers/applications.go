package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rahmanmohd/incubator-api/internal/domain"
	"github.com/rahmanmohd/incubator-api/internal/middleware"
	"github.com/rahmanmohd/incubator-api/internal/review"
)

// ApplicationsList serves the aggregated feed. Per-kind read failures come
// back as warnings on a 200, not as a hard error.
func (a *App) ApplicationsList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ListFilter{Search: q.Get("search")}

	if raw := q.Get("kind"); raw != "" && !strings.EqualFold(raw, "all") {
		kind, err := domain.ParseKind(raw)
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "unknown kind "+strconv.Quote(raw))
			return
		}
		filter.Kind = kind
	}
	if raw := q.Get("status"); raw != "" && !strings.EqualFold(raw, "all") {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "unknown status "+strconv.Quote(raw))
			return
		}
		filter.Status = status
	}
	filter.Page = intQuery(q.Get("page"), 1)
	filter.PageSize = intQuery(q.Get("pageSize"), review.DefaultPageSize)

	page, err := a.Applications.List(r.Context(), filter)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load applications")
		return
	}
	a.json(w, http.StatusOK, page)
}

// ApplicationsStats serves the dashboard counters.
func (a *App) ApplicationsStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.Applications.Stats(r.Context())
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}
	a.json(w, http.StatusOK, stats)
}

// ApplicationsGet serves one application by (kind, id).
func (a *App) ApplicationsGet(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := a.kindAndID(w, r)
	if !ok {
		return
	}
	app, err := a.Applications.Get(r.Context(), kind, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "application not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load application")
		return
	}
	a.json(w, http.StatusOK, app)
}

type updateStatusRequest struct {
	Status           string  `json:"status"`
	Notes            *string `json:"notes"`
	ExpectReviewedAt *string `json:"expectReviewedAt"`
}

// ApplicationsUpdateStatus applies a reviewer's status transition.
func (a *App) ApplicationsUpdateStatus(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := a.kindAndID(w, r)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "unknown status "+strconv.Quote(req.Status))
		return
	}

	var expect *time.Time
	if req.ExpectReviewedAt != nil {
		ts, err := time.Parse(time.RFC3339, *req.ExpectReviewedAt)
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "expectReviewedAt must be RFC 3339")
			return
		}
		expect = &ts
	}

	reviewerID := middleware.ReviewerIDFromContext(r.Context())
	if reviewerID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing reviewer identity")
		return
	}

	res, err := a.Reviews.UpdateStatus(r.Context(), review.UpdateRequest{
		Kind:             kind,
		ID:               id,
		Status:           status,
		ReviewerID:       reviewerID,
		Notes:            req.Notes,
		ExpectReviewedAt: expect,
		Locale:           middleware.LocaleFromContext(r.Context()),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			a.error(w, http.StatusNotFound, "not_found", "application not found")
		case errors.Is(err, domain.ErrConflict):
			a.error(w, http.StatusConflict, "conflict", "application was reviewed by someone else")
		default:
			a.error(w, http.StatusInternalServerError, "internal", "failed to update application")
		}
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"application": res.Application,
		"notified":    res.Notified,
	})
}

// ApplicationsDelete removes one application row.
func (a *App) ApplicationsDelete(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := a.kindAndID(w, r)
	if !ok {
		return
	}
	if err := a.Reviews.Delete(r.Context(), kind, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "application not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to delete application")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApplicationsFeed hands off to the websocket bridge.
func (a *App) ApplicationsFeed(w http.ResponseWriter, r *http.Request) {
	if a.Feed == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "feed is not enabled")
		return
	}
	a.Feed.ServeHTTP(w, r)
}

func (a *App) kindAndID(w http.ResponseWriter, r *http.Request) (domain.Kind, string, bool) {
	kind, err := domain.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "unknown kind")
		return "", "", false
	}
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "id is required")
		return "", "", false
	}
	return kind, id, true
}

func intQuery(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
