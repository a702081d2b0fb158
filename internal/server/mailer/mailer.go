// Package mailer delivers password reset links. Actual mail transport is
// outside this service; LogMailer records the delivery in the server log.
package mailer

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/notesauth/internal/logging"
)

type Mailer interface {
	SendPasswordReset(ctx context.Context, to string, resetURL string) error
}

// LogMailer writes each reset link to the logger instead of sending it.
type LogMailer struct {
	logger logging.Logger
}

func NewLogMailer(logger logging.Logger) *LogMailer {
	return &LogMailer{logger: logger.With("module", "mailer")}
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, to string, resetURL string) error {
	m.logger.Info(ctx, "password reset mail queued", "to", to, "url", resetURL)
	return nil
}

// ResetURL returns base + "/reset-password" with token as a query parameter.
func ResetURL(base string, token string) (string, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return "", fmt.Errorf("base url is required")
	}
	parsed, err := url.Parse(strings.TrimRight(base, "/") + "/reset-password")
	if err != nil {
		return "", err
	}
	query := parsed.Query()
	query.Set("token", token)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
