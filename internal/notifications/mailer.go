package notifications

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/kigurumiya/reserve-backend/pkg/config"
	"github.com/kigurumiya/reserve-backend/pkg/logger"
)

// Message is a single plain-text email.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Mailer delivers messages to recipients.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NewMailer picks the delivery backend from configuration. Mock mode and a
// missing SMTP host both fall back to logging the message instead of sending.
func NewMailer(cfg config.EmailConfig, logg *logger.Logger) Mailer {
	if cfg.MockMode || cfg.SMTPHost == "" {
		return &mockMailer{logg: logg}
	}
	return &smtpMailer{cfg: cfg}
}

type smtpMailer struct {
	cfg config.EmailConfig
}

func (m *smtpMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("no recipients")
	}

	from := m.cfg.FromEmail
	headers := []string{
		fmt.Sprintf("From: %s <%s>", m.cfg.FromName, from),
		fmt.Sprintf("To: %s", strings.Join(msg.To, ", ")),
		fmt.Sprintf("Subject: %s", msg.Subject),
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="utf-8"`,
		"",
	}
	payload := []byte(strings.Join(headers, "\r\n") + "\r\n" + msg.Body)

	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	var auth smtp.Auth
	if m.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUsername, m.cfg.SMTPPassword, m.cfg.SMTPHost)
	}
	if err := smtp.SendMail(addr, auth, from, msg.To, payload); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

type mockMailer struct {
	logg *logger.Logger
}

func (m *mockMailer) Send(ctx context.Context, msg Message) error {
	ctx = m.logg.WithFields(ctx, map[string]any{
		"to":      strings.Join(msg.To, ", "),
		"subject": msg.Subject,
	})
	m.logg.Info(ctx, "mock email")
	return nil
}
