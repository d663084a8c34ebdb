package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/rahmanmohd/incubator-api/internal/domain"
	"github.com/rahmanmohd/incubator-api/internal/review"
)

// ApplicationReader is the aggregator surface the read handlers need.
type ApplicationReader interface {
	List(ctx context.Context, filter domain.ListFilter) (*domain.Page, error)
	Get(ctx context.Context, kind domain.Kind, id string) (*domain.Application, error)
	Stats(ctx context.Context) (*domain.Stats, error)
}

// ApplicationReviewer is the notifier surface the write handlers need.
type ApplicationReviewer interface {
	UpdateStatus(ctx context.Context, req review.UpdateRequest) (*review.UpdateResult, error)
	Delete(ctx context.Context, kind domain.Kind, id string) error
}

type App struct {
	Applications ApplicationReader
	Reviews      ApplicationReviewer
	Feed         http.Handler
	Logger       zerolog.Logger
}

func NewApp(reader ApplicationReader, reviewer ApplicationReviewer, feedHandler http.Handler, logger zerolog.Logger) *App {
	return &App{Applications: reader, Reviews: reviewer, Feed: feedHandler, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, map[string]any{
		"error": map[string]string{"code": kind, "message": message},
	})
}
