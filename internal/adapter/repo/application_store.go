package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rahmanmohd/incubator-api/internal/domain"
	"github.com/rahmanmohd/incubator-api/internal/infra"
)

// ApplicationStorePG implements domain.ApplicationStore over the per-kind
// Postgres tables.
type ApplicationStorePG struct {
	db infra.SQLExecutor
}

// NewApplicationStore creates a store backed by the given executor.
func NewApplicationStore(db infra.SQLExecutor) *ApplicationStorePG {
	return &ApplicationStorePG{db: db}
}

// ListByKind returns every row of one kind, newest first, already
// normalized.
func (s *ApplicationStorePG) ListByKind(ctx context.Context, kind domain.Kind) ([]domain.Application, error) {
	q, err := queriesFor(kind)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, q.selectAll)
	if err != nil {
		return nil, fmt.Errorf("list %s applications: %w", kind, err)
	}
	defer rows.Close()

	var apps []domain.Application
	for rows.Next() {
		app, err := scanApplication(rows, kind)
		if err != nil {
			return nil, fmt.Errorf("scan %s application: %w", kind, err)
		}
		apps = append(apps, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s applications: %w", kind, err)
	}
	return apps, nil
}

// GetByKind fetches one application by its (kind, id) identity.
func (s *ApplicationStorePG) GetByKind(ctx context.Context, kind domain.Kind, id string) (*domain.Application, error) {
	q, err := queriesFor(kind)
	if err != nil {
		return nil, err
	}
	app, err := scanApplication(s.db.QueryRow(ctx, q.selectOne, id), kind)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get %s application: %w", kind, err)
	}
	return app, nil
}

// CountByStatus runs a count-only query; no rows are fetched.
func (s *ApplicationStorePG) CountByStatus(ctx context.Context, kind domain.Kind, status domain.Status) (int, error) {
	q, err := queriesFor(kind)
	if err != nil {
		return 0, err
	}
	var count int
	if err := s.db.QueryRow(ctx, q.countByStatus, string(status)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s applications: %w", kind, err)
	}
	return count, nil
}

// UpdateReview applies a status transition to a single row and returns the
// updated application. With ExpectReviewedAt set the update only lands when
// the stored reviewed_at still matches; a mismatch on an existing row is
// domain.ErrConflict.
func (s *ApplicationStorePG) UpdateReview(ctx context.Context, kind domain.Kind, id string, upd domain.ReviewUpdate) (*domain.Application, error) {
	q, err := queriesFor(kind)
	if err != nil {
		return nil, err
	}

	var row pgx.Row
	if upd.ExpectReviewedAt != nil {
		row = s.db.QueryRow(ctx, q.updateGuarded, id, string(upd.Status), upd.Notes, upd.ReviewerID, *upd.ExpectReviewedAt)
	} else {
		row = s.db.QueryRow(ctx, q.updatePlain, id, string(upd.Status), upd.Notes, upd.ReviewerID)
	}

	app, err := scanApplication(row, kind)
	if err == nil {
		return app, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("update %s application: %w", kind, err)
	}
	if upd.ExpectReviewedAt != nil {
		// The guarded update matched nothing; distinguish a missing row from
		// a lost race on reviewed_at.
		var count int
		if err := s.db.QueryRow(ctx, q.exists, id).Scan(&count); err != nil {
			return nil, fmt.Errorf("update %s application: %w", kind, err)
		}
		if count > 0 {
			return nil, domain.ErrConflict
		}
	}
	return nil, domain.ErrNotFound
}

// DeleteByKind removes a single row.
func (s *ApplicationStorePG) DeleteByKind(ctx context.Context, kind domain.Kind, id string) error {
	q, err := queriesFor(kind)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, q.deleteOne, id)
	if err != nil {
		return fmt.Errorf("delete %s application: %w", kind, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// scanApplication reads one row in the uniform column order the registry
// emits and finishes normalization (status casing).
func scanApplication(row pgx.Row, kind domain.Kind) (*domain.Application, error) {
	var (
		app       domain.Application
		rawStatus string
	)
	if err := row.Scan(
		&app.ID,
		&app.SubjectName,
		&app.ApplicantName,
		&app.ContactEmail,
		&app.StageOrTrack,
		&rawStatus,
		&app.SubmittedAt,
		&app.ReviewedBy,
		&app.ReviewedAt,
		&app.AdminNotes,
	); err != nil {
		return nil, err
	}
	app.Kind = kind
	app.Status = domain.NormalizeStatus(rawStatus)
	return &app, nil
}

var _ domain.ApplicationStore = (*ApplicationStorePG)(nil)
