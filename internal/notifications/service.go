package notifications

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"go.uber.org/multierr"

	"github.com/kigurumiya/reserve-backend/internal/reservations"
	"github.com/kigurumiya/reserve-backend/pkg/config"
	"github.com/kigurumiya/reserve-backend/pkg/logger"
)

// Service sends reservation emails. Delivery failures are logged and never
// surfaced to the caller, a confirmed booking stands whether or not the email
// went out.
type Service struct {
	mailer Mailer
	logg   *logger.Logger
	cfg    config.EmailConfig
}

// NewService wires the notification dependencies.
func NewService(mailer Mailer, logg *logger.Logger, cfg config.EmailConfig) (*Service, error) {
	if mailer == nil {
		return nil, fmt.Errorf("mailer required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{mailer: mailer, logg: logg, cfg: cfg}, nil
}

type confirmationData struct {
	CustomerName     string
	ConfirmationCode string
	ItemName         string
	Date             string
	FromName         string
}

type cancellationData struct {
	CustomerName     string
	ConfirmationCode string
	ItemName         string
	Date             string
	FromName         string
}

type adminAlertData struct {
	CustomerName     string
	Phone            string
	Email            string
	ConfirmationCode string
	ItemName         string
	Date             string
	Remaining        int
	LowStock         bool
}

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`Subject: Reservation received - {{.ConfirmationCode}}

Dear {{.CustomerName}},

We have received your reservation request. It is held for you and our staff
will confirm it shortly.

Confirmation code: {{.ConfirmationCode}}
Costume: {{.ItemName}}
Date: {{.Date}}

Keep this code, you will need it together with your phone number to look up
or cancel the reservation.

Best regards,
{{.FromName}}`))

var cancellationTemplate = template.Must(template.New("cancellation").Parse(`Subject: Reservation cancelled - {{.ConfirmationCode}}

Dear {{.CustomerName}},

Your reservation {{.ConfirmationCode}} for {{.ItemName}} on {{.Date}} has been
cancelled. The date is open for booking again.

Best regards,
{{.FromName}}`))

var adminConfirmedTemplate = template.Must(template.New("adminConfirmed").Parse(`Subject: New reservation: {{.ItemName}} on {{.Date}}{{if .LowStock}} (low stock){{end}}

New reservation received.

Code: {{.ConfirmationCode}}
Customer: {{.CustomerName}}
Phone: {{.Phone}}
Email: {{.Email}}
Costume: {{.ItemName}}
Date: {{.Date}}
Units left that day: {{.Remaining}}
{{if .LowStock}}
Stock for this date is at or below the warning threshold.
{{end}}`))

var adminCancelledTemplate = template.Must(template.New("adminCancelled").Parse(`Subject: Cancellation: {{.ItemName}} on {{.Date}}

Reservation {{.ConfirmationCode}} was cancelled.

Customer: {{.CustomerName}}
Phone: {{.Phone}}
Costume: {{.ItemName}}
Date: {{.Date}}`))

// ReservationConfirmed emails the customer their confirmation and alerts the
// admin recipients, flagging the date when remaining stock dips to the
// warning threshold.
func (s *Service) ReservationConfirmed(ctx context.Context, view reservations.ReservationView, remaining int, warningThreshold int) {
	var errs error
	if s.cfg.SendCustomerNotification && view.Email != "" {
		errs = multierr.Append(errs, s.render(ctx, confirmationTemplate, []string{view.Email}, confirmationData{
			CustomerName:     view.CustomerName,
			ConfirmationCode: view.ConfirmationCode,
			ItemName:         view.ItemName,
			Date:             view.Date,
			FromName:         s.cfg.FromName,
		}))
	}
	if s.cfg.SendAdminNotification && len(s.cfg.AdminRecipients) > 0 {
		errs = multierr.Append(errs, s.render(ctx, adminConfirmedTemplate, s.cfg.AdminRecipients, adminAlertData{
			CustomerName:     view.CustomerName,
			Phone:            view.Phone,
			Email:            view.Email,
			ConfirmationCode: view.ConfirmationCode,
			ItemName:         view.ItemName,
			Date:             view.Date,
			Remaining:        remaining,
			LowStock:         remaining <= warningThreshold,
		}))
	}
	if errs != nil {
		ctx = s.logg.WithConfirmationCode(ctx, view.ConfirmationCode)
		s.logg.Error(ctx, "send confirmation emails", errs)
	}
}

// ReservationCancelled emails cancellation notices.
func (s *Service) ReservationCancelled(ctx context.Context, view reservations.ReservationView) {
	var errs error
	if s.cfg.SendCustomerNotification && view.Email != "" {
		errs = multierr.Append(errs, s.render(ctx, cancellationTemplate, []string{view.Email}, cancellationData{
			CustomerName:     view.CustomerName,
			ConfirmationCode: view.ConfirmationCode,
			ItemName:         view.ItemName,
			Date:             view.Date,
			FromName:         s.cfg.FromName,
		}))
	}
	if s.cfg.SendAdminNotification && len(s.cfg.AdminRecipients) > 0 {
		errs = multierr.Append(errs, s.render(ctx, adminCancelledTemplate, s.cfg.AdminRecipients, adminAlertData{
			CustomerName:     view.CustomerName,
			Phone:            view.Phone,
			ConfirmationCode: view.ConfirmationCode,
			ItemName:         view.ItemName,
			Date:             view.Date,
		}))
	}
	if errs != nil {
		ctx = s.logg.WithConfirmationCode(ctx, view.ConfirmationCode)
		s.logg.Error(ctx, "send cancellation emails", errs)
	}
}

// render executes a template whose first line carries the subject, then hands
// the message to the mailer.
func (s *Service) render(ctx context.Context, tmpl *template.Template, to []string, data any) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("execute %s template: %w", tmpl.Name(), err)
	}
	subject, body, err := splitSubject(buf.String())
	if err != nil {
		return fmt.Errorf("%s template: %w", tmpl.Name(), err)
	}
	if err := s.mailer.Send(ctx, Message{To: to, Subject: subject, Body: body}); err != nil {
		return fmt.Errorf("send %s email: %w", tmpl.Name(), err)
	}
	return nil
}

func splitSubject(content string) (string, string, error) {
	lines := strings.Split(content, "\n")
	if len(lines) < 2 || !strings.HasPrefix(lines[0], "Subject: ") {
		return "", "", fmt.Errorf("missing subject line")
	}
	return strings.TrimPrefix(lines[0], "Subject: "), strings.Join(lines[2:], "\n"), nil
}
