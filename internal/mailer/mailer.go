// Package mailer dispatches transactional email for application review
// events. Delivery is best-effort: the review workflow never fails because
// an email did not go out.
package mailer

import (
	"context"

	"github.com/rs/zerolog"
)

// Message is one notification request. TemplateKey selects a provider-side
// template; Data supplies its variables. Rendering is the provider's
// concern.
type Message struct {
	To          string            `json:"to"`
	TemplateKey string            `json:"template_key"`
	Locale      string            `json:"locale,omitempty"`
	Data        map[string]string `json:"data,omitempty"`
}

// Mailer sends a single message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer is the fallback used when no email provider is configured. It
// records what would have been sent and succeeds.
type LogMailer struct {
	Logger zerolog.Logger
}

func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{Logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.Logger.Info().
		Str("to", msg.To).
		Str("template", msg.TemplateKey).
		Str("locale", msg.Locale).
		Msg("email provider not configured, notification logged only")
	return nil
}

var _ Mailer = (*LogMailer)(nil)
