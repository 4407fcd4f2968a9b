// Package email implements the outbound notification mailer against an
// HTTP mail provider.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskhub/task-service/internal/core/domain"
)

const sendTimeout = 10 * time.Second

// Config captures the provider settings. An empty APIKey disables delivery:
// sends are logged and dropped, which is the expected local-development mode.
type Config struct {
	Endpoint string
	APIKey   string
	Sender   string
}

// Mailer posts notification messages to the configured provider endpoint.
type Mailer struct {
	cfg    Config
	client *http.Client
	log    zerolog.Logger
}

func NewMailer(cfg Config, log zerolog.Logger) *Mailer {
	return &Mailer{
		cfg:    cfg,
		client: &http.Client{Timeout: sendTimeout},
		log:    log,
	}
}

type sendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             emailAddress      `json:"from"`
	Subject          string            `json:"subject"`
	Content          []messageContent  `json:"content"`
}

type personalization struct {
	To []emailAddress `json:"to"`
}

type emailAddress struct {
	Email string `json:"email"`
}

type messageContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Send delivers one notification synchronously. The caller decides whether a
// failure matters; the dispatcher treats it as log-and-drop.
func (m *Mailer) Send(ctx context.Context, job domain.EmailJob) error {
	if m.cfg.APIKey == "" {
		m.log.Info().
			Str("email_id", job.ID).
			Str("kind", string(job.Kind)).
			Str("to", job.To).
			Msg("mailer disabled, dropping notification")
		return nil
	}

	subject, body := composeMessage(job)
	payload, err := json.Marshal(sendRequest{
		Personalizations: []personalization{{To: []emailAddress{{Email: job.To}}}},
		From:             emailAddress{Email: m.cfg.Sender},
		Subject:          subject,
		Content:          []messageContent{{Type: "text/plain", Value: body}},
	})
	if err != nil {
		return fmt.Errorf("marshal send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// The key travels only in the Authorization header and never appears in
	// errors or logs.
	req.Header.Set("Authorization", "Bearer "+m.cfg.APIKey)

	res, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return fmt.Errorf("send request status %d: %s", res.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}

// composeMessage renders the subject and plain-text body for a job kind.
func composeMessage(job domain.EmailJob) (subject, body string) {
	switch job.Kind {
	case domain.EmailCancellation:
		return "Sorry to see you go!",
			fmt.Sprintf("Goodbye, %s. We hope to see you back sometime soon.", job.Name)
	default:
		return "Thanks for joining!",
			fmt.Sprintf("Welcome to TaskHub, %s. Let us know how you get along with the app.", job.Name)
	}
}
