package notifications

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kigurumiya/reserve-backend/internal/reservations"
	"github.com/kigurumiya/reserve-backend/pkg/config"
	"github.com/kigurumiya/reserve-backend/pkg/logger"
)

type captureMailer struct {
	sent []Message
	err  error
}

func (m *captureMailer) Send(ctx context.Context, msg Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func emailConfig() config.EmailConfig {
	return config.EmailConfig{
		FromName:                 "Kigurumi Reserve",
		FromEmail:                "noreply@example.com",
		AdminRecipients:          []string{"staff@example.com"},
		SendCustomerNotification: true,
		SendAdminNotification:    true,
	}
}

func testView() reservations.ReservationView {
	return reservations.ReservationView{
		ConfirmationCode: "RABCDEFGH2",
		CustomerName:     "Hana Sato",
		Phone:            "203-555-0101",
		Email:            "hana@example.com",
		Date:             "2026-09-10",
		ItemName:         "Fox",
	}
}

func newNotifications(t *testing.T, mailer Mailer, cfg config.EmailConfig) *Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(mailer, logg, cfg)
	require.NoError(t, err)
	return svc
}

func TestReservationConfirmedSendsCustomerAndAdmin(t *testing.T) {
	mailer := &captureMailer{}
	svc := newNotifications(t, mailer, emailConfig())

	svc.ReservationConfirmed(context.Background(), testView(), 3, 1)

	require.Len(t, mailer.sent, 2)

	customer := mailer.sent[0]
	assert.Equal(t, []string{"hana@example.com"}, customer.To)
	assert.Contains(t, customer.Subject, "RABCDEFGH2")
	assert.Contains(t, customer.Body, "Fox")
	assert.Contains(t, customer.Body, "2026-09-10")

	admin := mailer.sent[1]
	assert.Equal(t, []string{"staff@example.com"}, admin.To)
	assert.NotContains(t, admin.Subject, "low stock")
	assert.Contains(t, admin.Body, "Units left that day: 3")
}

func TestReservationConfirmedFlagsLowStock(t *testing.T) {
	mailer := &captureMailer{}
	svc := newNotifications(t, mailer, emailConfig())

	svc.ReservationConfirmed(context.Background(), testView(), 1, 2)

	require.Len(t, mailer.sent, 2)
	admin := mailer.sent[1]
	assert.Contains(t, admin.Subject, "low stock")
	assert.Contains(t, admin.Body, "warning threshold")
}

func TestReservationConfirmedRespectsToggles(t *testing.T) {
	cfg := emailConfig()
	cfg.SendCustomerNotification = false
	cfg.SendAdminNotification = false
	mailer := &captureMailer{}
	svc := newNotifications(t, mailer, cfg)

	svc.ReservationConfirmed(context.Background(), testView(), 3, 1)
	assert.Empty(t, mailer.sent)
}

func TestReservationCancelledSendsNotices(t *testing.T) {
	mailer := &captureMailer{}
	svc := newNotifications(t, mailer, emailConfig())

	svc.ReservationCancelled(context.Background(), testView())

	require.Len(t, mailer.sent, 2)
	assert.Contains(t, mailer.sent[0].Subject, "cancelled")
	assert.Contains(t, mailer.sent[1].Subject, "Cancellation")
}

func TestMailerFailureDoesNotPanic(t *testing.T) {
	mailer := &captureMailer{err: errors.New("smtp down")}
	svc := newNotifications(t, mailer, emailConfig())

	svc.ReservationConfirmed(context.Background(), testView(), 3, 1)
	svc.ReservationCancelled(context.Background(), testView())
	assert.Empty(t, mailer.sent)
}

func TestMockMailerUsedWithoutSMTPHost(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	mailer := NewMailer(config.EmailConfig{}, logg)
	_, ok := mailer.(*mockMailer)
	assert.True(t, ok)

	mailer = NewMailer(config.EmailConfig{SMTPHost: "smtp.example.com", MockMode: true}, logg)
	_, ok = mailer.(*mockMailer)
	assert.True(t, ok)

	mailer = NewMailer(config.EmailConfig{SMTPHost: "smtp.example.com"}, logg)
	_, ok = mailer.(*smtpMailer)
	assert.True(t, ok)
}
