package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rahmanmohd/incubator-api/internal/domain"
	"github.com/rahmanmohd/incubator-api/internal/middleware"
	"github.com/rahmanmohd/incubator-api/internal/review"
)

type stubReader struct {
	page       *domain.Page
	stats      *domain.Stats
	app        *domain.Application
	err        error
	lastFilter domain.ListFilter
}

func (s *stubReader) List(ctx context.Context, filter domain.ListFilter) (*domain.Page, error) {
	s.lastFilter = filter
	return s.page, s.err
}

func (s *stubReader) Get(ctx context.Context, kind domain.Kind, id string) (*domain.Application, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.app, nil
}

func (s *stubReader) Stats(ctx context.Context) (*domain.Stats, error) {
	return s.stats, s.err
}

type stubReviewer struct {
	result  *review.UpdateResult
	err     error
	lastReq review.UpdateRequest
	deleted bool
}

func (s *stubReviewer) UpdateStatus(ctx context.Context, req review.UpdateRequest) (*review.UpdateResult, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubReviewer) Delete(ctx context.Context, kind domain.Kind, id string) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = true
	return nil
}

func testApp(reader *stubReader, reviewer *stubReviewer) *App {
	return NewApp(reader, reviewer, nil, zerolog.Nop())
}

func withURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestApplicationsListPassesFilterThrough(t *testing.T) {
	reader := &stubReader{page: &domain.Page{
		Items:    []domain.Application{{ID: "inc-1", Kind: domain.KindIncubation}},
		Total:    1,
		Page:     2,
		PageSize: 5,
		Warnings: []string{"mentor"},
	}}
	app := testApp(reader, &stubReviewer{})

	req := httptest.NewRequest("GET", "/v1/applications?search=nimbus&status=Approved&kind=incubation&page=2&pageSize=5", nil)
	rr := httptest.NewRecorder()
	app.ApplicationsList(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if reader.lastFilter.Search != "nimbus" ||
		reader.lastFilter.Status != domain.StatusApproved ||
		reader.lastFilter.Kind != domain.KindIncubation ||
		reader.lastFilter.Page != 2 || reader.lastFilter.PageSize != 5 {
		t.Fatalf("filter not forwarded: %+v", reader.lastFilter)
	}

	var payload domain.Page
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Warnings) != 1 || payload.Warnings[0] != "mentor" {
		t.Fatalf("warnings not surfaced: %#v", payload.Warnings)
	}
}

func TestApplicationsListAcceptsAll(t *testing.T) {
	reader := &stubReader{page: &domain.Page{Page: 1, PageSize: 20}}
	app := testApp(reader, &stubReviewer{})

	req := httptest.NewRequest("GET", "/v1/applications?status=all&kind=ALL", nil)
	rr := httptest.NewRecorder()
	app.ApplicationsList(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d (%s)", rr.Code, rr.Body.String())
	}
	if reader.lastFilter.Kind != "" || reader.lastFilter.Status != "" {
		t.Fatalf("\"all\" should clear filters: %+v", reader.lastFilter)
	}
}

func TestApplicationsListRejectsUnknownFilters(t *testing.T) {
	app := testApp(&stubReader{}, &stubReviewer{})

	for _, target := range []string{
		"/v1/applications?kind=pitchdeck",
		"/v1/applications?status=waitlisted",
	} {
		rr := httptest.NewRecorder()
		app.ApplicationsList(rr, httptest.NewRequest("GET", target, nil))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "bad_request") {
			t.Fatalf("%s: expected error body, got %s", target, rr.Body.String())
		}
	}
}

func TestApplicationsStats(t *testing.T) {
	reader := &stubReader{stats: &domain.Stats{
		Total: 9, Pending: 4, UnderReview: 2, Approved: 2, Rejected: 1,
		PerKind: map[domain.Kind]int{domain.KindHackathon: 3},
	}}
	app := testApp(reader, &stubReviewer{})

	rr := httptest.NewRecorder()
	app.ApplicationsStats(rr, httptest.NewRequest("GET", "/v1/applications/stats", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["total"] != float64(9) || payload["underReview"] != float64(2) {
		t.Fatalf("unexpected stats payload: %#v", payload)
	}
}

func TestApplicationsGetNotFound(t *testing.T) {
	app := testApp(&stubReader{err: domain.ErrNotFound}, &stubReviewer{})

	req := withURLParams(httptest.NewRequest("GET", "/v1/applications/grant/g-1", nil),
		map[string]string{"kind": "grant", "id": "g-1"})
	rr := httptest.NewRecorder()
	app.ApplicationsGet(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func patchRequest(t *testing.T, body string, params map[string]string, reviewer string) *http.Request {
	t.Helper()
	req := httptest.NewRequest("PATCH", "/v1/applications/incubation/abc123", strings.NewReader(body))
	req = withURLParams(req, params)
	if reviewer != "" {
		req = req.WithContext(middleware.ContextWithReviewerID(req.Context(), reviewer))
	}
	return req
}

func TestApplicationsUpdateStatus(t *testing.T) {
	reviewedBy := "admin-1"
	reviewedAt := time.Now().UTC()
	reviewer := &stubReviewer{result: &review.UpdateResult{
		Application: &domain.Application{
			ID:         "abc123",
			Kind:       domain.KindIncubation,
			Status:     domain.StatusApproved,
			ReviewedBy: &reviewedBy,
			ReviewedAt: &reviewedAt,
		},
		Notified: true,
	}}
	app := testApp(&stubReader{}, reviewer)

	req := patchRequest(t, `{"status":"Approved","notes":"Great traction"}`,
		map[string]string{"kind": "incubation", "id": "abc123"}, "admin-1")
	rr := httptest.NewRecorder()
	app.ApplicationsUpdateStatus(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d (%s)", rr.Code, rr.Body.String())
	}
	if reviewer.lastReq.Status != domain.StatusApproved || reviewer.lastReq.ReviewerID != "admin-1" {
		t.Fatalf("request not forwarded: %+v", reviewer.lastReq)
	}
	if reviewer.lastReq.Notes == nil || *reviewer.lastReq.Notes != "Great traction" {
		t.Fatalf("notes not forwarded: %#v", reviewer.lastReq.Notes)
	}

	var payload struct {
		Application domain.Application `json:"application"`
		Notified    bool               `json:"notified"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Application.Status != domain.StatusApproved || !payload.Notified {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestApplicationsUpdateStatusValidation(t *testing.T) {
	app := testApp(&stubReader{}, &stubReviewer{})
	params := map[string]string{"kind": "incubation", "id": "abc123"}

	cases := map[string]struct {
		body string
		want int
	}{
		"bad json":       {body: "{", want: http.StatusBadRequest},
		"unknown status": {body: `{"status":"waitlisted"}`, want: http.StatusBadRequest},
		"bad timestamp":  {body: `{"status":"approved","expectReviewedAt":"yesterday"}`, want: http.StatusBadRequest},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			app.ApplicationsUpdateStatus(rr, patchRequest(t, tc.body, params, "admin-1"))
			if rr.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rr.Code)
			}
		})
	}

	t.Run("unknown kind", func(t *testing.T) {
		rr := httptest.NewRecorder()
		app.ApplicationsUpdateStatus(rr, patchRequest(t, `{"status":"approved"}`,
			map[string]string{"kind": "fellowship", "id": "abc123"}, "admin-1"))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("missing reviewer", func(t *testing.T) {
		rr := httptest.NewRecorder()
		app.ApplicationsUpdateStatus(rr, patchRequest(t, `{"status":"approved"}`, params, ""))
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})
}

func TestApplicationsUpdateStatusErrorMapping(t *testing.T) {
	params := map[string]string{"kind": "incubation", "id": "abc123"}
	cases := map[error]int{
		domain.ErrNotFound: http.StatusNotFound,
		domain.ErrConflict: http.StatusConflict,
	}
	for err, want := range cases {
		app := testApp(&stubReader{}, &stubReviewer{err: err})
		rr := httptest.NewRecorder()
		app.ApplicationsUpdateStatus(rr, patchRequest(t, `{"status":"approved"}`, params, "admin-1"))
		if rr.Code != want {
			t.Fatalf("%v: expected %d, got %d", err, want, rr.Code)
		}
	}
}

func TestApplicationsDelete(t *testing.T) {
	reviewer := &stubReviewer{}
	app := testApp(&stubReader{}, reviewer)

	req := withURLParams(httptest.NewRequest("DELETE", "/v1/applications/hackathon/h-1", nil),
		map[string]string{"kind": "hackathon", "id": "h-1"})
	rr := httptest.NewRecorder()
	app.ApplicationsDelete(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if !reviewer.deleted {
		t.Fatal("delete not forwarded")
	}
}

func TestApplicationsDeleteNotFound(t *testing.T) {
	app := testApp(&stubReader{}, &stubReviewer{err: domain.ErrNotFound})

	req := withURLParams(httptest.NewRequest("DELETE", "/v1/applications/hackathon/h-9", nil),
		map[string]string{"kind": "hackathon", "id": "h-9"})
	rr := httptest.NewRecorder()
	app.ApplicationsDelete(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
