package transport

import (
	"context"
	"fmt"

	"github.com/leadpulse/leadpulse/pkg/domain"
	"github.com/leadpulse/leadpulse/pkg/logger"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailTransport delivers email through SendGrid. Without an API key it
// runs in console-only mode and logs the message instead of sending,
// which is useful for development.
type EmailTransport struct {
	fromEmail   string
	fromName    string
	client      *sendgrid.Client
	useSendGrid bool
	log         logger.Logger
}

// NewEmailTransport creates an email transport.
func NewEmailTransport(fromEmail, fromName, sendGridAPIKey string, log logger.Logger) *EmailTransport {
	if log == nil {
		log = logger.Default()
	}
	useSendGrid := sendGridAPIKey != ""
	if useSendGrid {
		log.Info("email transport initialized with SendGrid")
	} else {
		log.Warn("email transport in console-only mode (set SENDGRID_API_KEY for production)")
	}

	t := &EmailTransport{
		fromEmail:   fromEmail,
		fromName:    fromName,
		useSendGrid: useSendGrid,
		log:         log,
	}
	if useSendGrid {
		t.client = sendgrid.NewSendClient(sendGridAPIKey)
	}
	return t
}

// Send delivers one email to destination.
func (t *EmailTransport) Send(ctx context.Context, destination string, msg domain.OutboundMessage) error {
	if !t.useSendGrid {
		t.log.Info("[console email]", "to", destination, "subject", msg.Subject, "body", msg.Body)
		return nil
	}

	from := mail.NewEmail(t.fromName, t.fromEmail)
	to := mail.NewEmail("", destination)
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.Body, "")

	resp, err := t.client.SendWithContext(ctx, message)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("sendgrid send failed: %w", err)
	}

	switch {
	case resp.StatusCode == 401 || resp.StatusCode == 403:
		return fmt.Errorf("sendgrid returned %d: %w", resp.StatusCode, domain.ErrTransportAuth)
	case resp.StatusCode >= 400:
		return fmt.Errorf("sendgrid returned %d: %w", resp.StatusCode, domain.ErrTransportRejected)
	}

	return nil
}
