package notify

import (
	"context"
	"fmt"
	"html"

	"btevta-wasl-backend/internal/domain"
	"btevta-wasl-backend/internal/logger"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// MailSender is the subset of the SendGrid client used here.
type MailSender interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridNotifier emails events to the operations recipients.
type SendGridNotifier struct {
	client     MailSender
	from       *mail.Email
	recipients []*mail.Email
}

func NewSendGridNotifier(apiKey, fromEmail, fromName string, recipients []string) *SendGridNotifier {
	return newSendGridNotifier(sendgrid.NewSendClient(apiKey), fromEmail, fromName, recipients)
}

func newSendGridNotifier(client MailSender, fromEmail, fromName string, recipients []string) *SendGridNotifier {
	to := make([]*mail.Email, 0, len(recipients))
	for _, r := range recipients {
		to = append(to, mail.NewEmail("", r))
	}
	return &SendGridNotifier{client: client, from: mail.NewEmail(fromName, fromEmail), recipients: to}
}

func (s *SendGridNotifier) Send(ctx context.Context, ev domain.Event) error {
	if len(s.recipients) == 0 {
		return nil
	}
	title, message := Describe(ev)
	subject := fmt.Sprintf("[WASL] %s", title)
	htmlContent := fmt.Sprintf(`<html><body><h3>%s</h3><p>%s</p><p><small>event %s</small></p></body></html>`,
		html.EscapeString(title), html.EscapeString(message), ev.ID)

	msg := mail.NewV3Mail()
	msg.SetFrom(s.from)
	msg.Subject = subject
	p := mail.NewPersonalization()
	p.AddTos(s.recipients...)
	msg.AddPersonalizations(p)
	msg.AddContent(mail.NewContent("text/plain", message), mail.NewContent("text/html", htmlContent))

	logger.ExternalServiceCall("sendgrid", "send", "kind", ev.Kind, "recipients", len(s.recipients))
	resp, err := s.client.Send(msg)
	if err == nil && resp != nil && resp.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", resp.StatusCode, resp.Body)
	}
	logger.ExternalServiceResult("sendgrid", "send", err, "kind", ev.Kind)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
