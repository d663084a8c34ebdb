package review

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rahmanmohd/incubator-api/internal/domain"
	"github.com/rahmanmohd/incubator-api/internal/feed"
	"github.com/rahmanmohd/incubator-api/internal/mailer"
)

// EventPublisher receives application-change events from the write path.
type EventPublisher interface {
	Publish(ev feed.Event)
}

// UpdateRequest carries one status transition from the HTTP layer. Kind and
// Status arrive already validated. ExpectReviewedAt is the optional
// compare-and-swap guard; nil preserves last-write-wins.
type UpdateRequest struct {
	Kind             domain.Kind
	ID               string
	Status           domain.Status
	ReviewerID       string
	Notes            *string
	ExpectReviewedAt *time.Time
	Locale           string
}

// UpdateResult reports the persisted application and whether the applicant
// notification actually went out.
type UpdateResult struct {
	Application *domain.Application
	Notified    bool
}

// Notifier applies status transitions and dispatches best-effort applicant
// notifications. It is the sole mutator of application rows.
type Notifier struct {
	store  domain.ApplicationStore
	mailer mailer.Mailer
	events EventPublisher
	logger zerolog.Logger
}

func NewNotifier(store domain.ApplicationStore, m mailer.Mailer, events EventPublisher, logger zerolog.Logger) *Notifier {
	return &Notifier{store: store, mailer: m, events: events, logger: logger}
}

// UpdateStatus updates exactly one row and, on success, publishes a feed
// event and emails the applicant. The update is the transaction of record:
// a failed email is logged, never surfaced; a failed update sends nothing.
//
// Any status may be set from any other. The pending → under_review →
// approved/rejected ordering is advisory only and deliberately not
// enforced; admins rely on re-opening "terminal" rows.
func (n *Notifier) UpdateStatus(ctx context.Context, req UpdateRequest) (*UpdateResult, error) {
	current, err := n.store.GetByKind(ctx, req.Kind, req.ID)
	if err != nil {
		return nil, err
	}
	firstReview := current.ReviewedAt == nil

	updated, err := n.store.UpdateReview(ctx, req.Kind, req.ID, domain.ReviewUpdate{
		Status:           req.Status,
		ReviewerID:       req.ReviewerID,
		Notes:            req.Notes,
		ExpectReviewedAt: req.ExpectReviewedAt,
	})
	if err != nil {
		return nil, err
	}

	if n.events != nil {
		n.events.Publish(feed.Event{
			Type:   feed.EventStatusChanged,
			Kind:   updated.Kind,
			ID:     updated.ID,
			Status: updated.Status,
			At:     time.Now().UTC(),
		})
	}

	return &UpdateResult{
		Application: updated,
		Notified:    n.notify(ctx, updated, firstReview, req.Locale),
	}, nil
}

// Delete removes one row. No notification is sent; deletion is an admin
// cleanup action, not a review outcome.
func (n *Notifier) Delete(ctx context.Context, kind domain.Kind, id string) error {
	if err := n.store.DeleteByKind(ctx, kind, id); err != nil {
		return err
	}
	if n.events != nil {
		n.events.Publish(feed.Event{
			Type: feed.EventDeleted,
			Kind: kind,
			ID:   id,
			At:   time.Now().UTC(),
		})
	}
	return nil
}

func (n *Notifier) notify(ctx context.Context, app *domain.Application, firstReview bool, locale string) bool {
	if app.ContactEmail == "" {
		n.logger.Warn().
			Str("kind", string(app.Kind)).
			Str("id", app.ID).
			Msg("application has no contact email, notification skipped")
		return false
	}

	data := map[string]string{
		"subject_name":   app.SubjectName,
		"applicant_name": app.ApplicantName,
		"status":         string(app.Status),
		"status_label":   mailer.StatusLabel(app.Status),
	}
	if app.AdminNotes != nil && *app.AdminNotes != "" {
		data["admin_notes"] = *app.AdminNotes
	}

	err := n.mailer.Send(ctx, mailer.Message{
		To:          app.ContactEmail,
		TemplateKey: mailer.TemplateFor(app.Kind, firstReview),
		Locale:      locale,
		Data:        data,
	})
	if err != nil {
		n.logger.Error().Err(err).
			Str("kind", string(app.Kind)).
			Str("id", app.ID).
			Msg("status notification dispatch failed")
		return false
	}
	return true
}
