package email

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/smtp"
)

// =============================================================================
// SMTP Sender Implementation
// =============================================================================

// SMTPSender mails call back requests to the team inbox over SMTP.
//
// This implementation works with:
// - Mailhog (development): No authentication required
// - Postmark SMTP or any relay (production): username/password authentication
type SMTPSender struct {
	config SMTPConfig
	inbox  Inbox
	logger *slog.Logger

	// sendMail is smtp.SendMail; replaced in tests.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender creates a new SMTP-based sender.
//
// Example usage:
//
//	sender, err := email.NewSMTPSender(
//	    email.SMTPConfig{Host: "localhost", Port: 1025},
//	    email.Inbox{Email: "sales@example.com"},
//	    logger,
//	)
func NewSMTPSender(config SMTPConfig, inbox Inbox, logger *slog.Logger) (*SMTPSender, error) {
	if inbox.Email == "" {
		return nil, fmt.Errorf("smtp sender requires an inbox address")
	}

	// Set defaults
	if config.From == "" {
		config.From = DefaultFromEmail
	}
	if config.FromName == "" {
		config.FromName = DefaultFromName
	}
	if inbox.Name == "" {
		inbox.Name = DefaultInboxName
	}

	return &SMTPSender{
		config:   config,
		inbox:    inbox,
		logger:   logger,
		sendMail: smtp.SendMail,
	}, nil
}

// Send renders the call back request and sends it via SMTP.
func (s *SMTPSender) Send(ctx context.Context, msg TemplateMessage) error {
	const op = "email.smtp.send"

	email, err := renderCallback(s.inbox, msg.Params)
	if err != nil {
		return renderFailure(err, op)
	}

	// Honor cancellation before dialing; net/smtp has no context support.
	if err := ctx.Err(); err != nil {
		return sendFailure(err, op, "")
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	// Create auth if credentials are provided (not needed for Mailhog)
	var auth smtp.Auth
	if s.config.Username != "" && s.config.Password != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}

	if err := s.sendMail(addr, auth, s.config.From, []string{email.To}, s.buildMessage(email)); err != nil {
		s.logger.Error("failed to send email",
			"provider", ProviderSMTP,
			"to", email.To,
			"subject", email.Subject,
			"error", err,
		)
		return sendFailure(err, op, "")
	}

	s.logger.Info("email sent",
		"provider", ProviderSMTP,
		"to", email.To,
		"subject", email.Subject,
	)

	return nil
}

// buildMessage constructs the raw email message with headers.
func (s *SMTPSender) buildMessage(email Email) []byte {
	var buf bytes.Buffer

	fromHeader := fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	toHeader := email.To
	if email.ToName != "" {
		toHeader = fmt.Sprintf("%s <%s>", email.ToName, email.To)
	}

	buf.WriteString(fmt.Sprintf("From: %s\r\n", fromHeader))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", toHeader))
	if email.ReplyTo != "" {
		buf.WriteString(fmt.Sprintf("Reply-To: %s\r\n", email.ReplyTo))
	}
	// Encoded words keep line breaks and non-ASCII names out of the raw header
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", email.Subject)))
	buf.WriteString("MIME-Version: 1.0\r\n")

	// Create multipart message for HTML + text
	boundary := "===============COWORK_BOUNDARY==============="
	buf.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary))
	buf.WriteString("\r\n")

	// Plain text part
	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(email.TextBody)
	buf.WriteString("\r\n")

	// HTML part
	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(email.HTMLBody)
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	return buf.Bytes()
}

// =============================================================================
// Compile-time interface check
// =============================================================================

var _ Sender = (*SMTPSender)(nil)
