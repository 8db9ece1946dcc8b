package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// sendgridClient is the subset of *sendgrid.Client used here.
type sendgridClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridConfig holds configuration for SendGrid.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// SendGridSender mails call back requests to the team inbox via the SendGrid API.
type SendGridSender struct {
	client    sendgridClient
	fromEmail string
	fromName  string
	inbox     Inbox
	logger    *slog.Logger
}

// NewSendGridSender creates a new SendGrid sender.
// Returns nil when no API key is configured.
func NewSendGridSender(cfg SendGridConfig, inbox Inbox, logger *slog.Logger) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	if cfg.FromEmail == "" {
		cfg.FromEmail = DefaultFromEmail
	}
	if cfg.FromName == "" {
		cfg.FromName = DefaultFromName
	}
	if inbox.Name == "" {
		inbox.Name = DefaultInboxName
	}
	return &SendGridSender{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		inbox:     inbox,
		logger:    logger,
	}
}

// Send renders the call back request and sends it via SendGrid.
func (s *SendGridSender) Send(ctx context.Context, msg TemplateMessage) error {
	const op = "email.sendgrid.send"

	if s.client == nil {
		return sendFailure(fmt.Errorf("sendgrid client not configured"), op, "")
	}

	email, err := renderCallback(s.inbox, msg.Params)
	if err != nil {
		return renderFailure(err, op)
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(email.ToName, email.To)
	message := mail.NewSingleEmail(from, email.Subject, to, email.TextBody, email.HTMLBody)
	if email.ReplyTo != "" {
		message.SetReplyTo(mail.NewEmail(msg.Params.Name, email.ReplyTo))
	}

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		s.logger.Error("sendgrid send failed", "provider", ProviderSendGrid, "error", err, "to", email.To)
		return sendFailure(err, op, "")
	}

	if response.StatusCode >= 400 {
		s.logger.Error("sendgrid returned error status",
			"provider", ProviderSendGrid,
			"status", response.StatusCode,
			"body", response.Body,
			"to", email.To,
		)
		return sendFailure(fmt.Errorf("sendgrid returned status %d", response.StatusCode), op, "")
	}

	s.logger.Info("email sent", "provider", ProviderSendGrid, "to", email.To, "status", response.StatusCode)
	return nil
}

var _ Sender = (*SendGridSender)(nil)
