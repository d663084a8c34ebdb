package domain

import (
	"context"
	"time"
)

// ReviewUpdate carries one status transition. Notes is applied only when
// non-nil so an update without notes keeps the existing ones. When
// ExpectReviewedAt is set the store must apply the update only if the row's
// reviewed_at still equals it, and report ErrConflict otherwise; when nil,
// last write wins.
type ReviewUpdate struct {
	Status           Status
	ReviewerID       string
	Notes            *string
	ExpectReviewedAt *time.Time
}

// ApplicationStore defines persistence over the per-kind application tables.
// Every method resolves Kind to its backing table; ids are meaningful only
// together with their kind.
type ApplicationStore interface {
	ListByKind(ctx context.Context, kind Kind) ([]Application, error)
	GetByKind(ctx context.Context, kind Kind, id string) (*Application, error)
	CountByStatus(ctx context.Context, kind Kind, status Status) (int, error)
	UpdateReview(ctx context.Context, kind Kind, id string, upd ReviewUpdate) (*Application, error)
	DeleteByKind(ctx context.Context, kind Kind, id string) error
}
