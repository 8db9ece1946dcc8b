// Package email delivers call back requests to the sales team.
//
// This package defines a Sender interface with implementations for:
// - EmailJS REST API (the default, template rendered by EmailJS)
// - SMTP (Mailhog in development, any relay in production)
// - SendGrid API
// - AWS SES
// - Log-only sender for local development
package email

import (
	"context"

	"github.com/DukeRupert/cowork/internal/domain"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Sender delivers one rendered call back request.
//
// Implementations perform exactly one attempt and never retry. A rejected
// send is returned as a domain.EDISPATCH error whose Message is the reason
// reported by the provider, when the provider gives one.
type Sender interface {
	Send(ctx context.Context, msg TemplateMessage) error
}

// =============================================================================
// Email Data Types
// =============================================================================

// TemplateMessage is a template-based send request. The three identifiers
// are opaque to this package and forwarded to providers that understand them.
type TemplateMessage struct {
	ServiceID  string                 // Email service identifier
	TemplateID string                 // Template identifier
	UserID     string                 // Sender/account identifier
	Params     domain.CallbackPayload // Template parameters
}

// Email represents a single rendered email message.
type Email struct {
	To       string // Recipient email address
	ToName   string // Recipient display name
	ReplyTo  string // Lead's address, so sales can answer directly
	Subject  string // Email subject line
	HTMLBody string // HTML content of the email
	TextBody string // Plain text fallback content
}

// =============================================================================
// Configuration Types
// =============================================================================

// SMTPConfig holds SMTP server configuration.
type SMTPConfig struct {
	Host     string // SMTP server hostname (e.g., "localhost" for Mailhog)
	Port     int    // SMTP server port (e.g., 1025 for Mailhog)
	Username string // SMTP authentication username (empty for Mailhog)
	Password string // SMTP authentication password (empty for Mailhog)
	From     string // Default sender email address
	FromName string // Default sender display name
}

// Inbox is the team mailbox that receives call back requests.
type Inbox struct {
	Email string
	Name  string
}

// =============================================================================
// Common Constants
// =============================================================================

const (
	// DefaultFromEmail is the default sender email for lead notifications.
	DefaultFromEmail = "noreply@cowork.local"

	// DefaultFromName is the default sender display name.
	DefaultFromName = "Cowork Website"

	// DefaultInboxName is the display name used when none is configured.
	DefaultInboxName = "Sales"
)

// Provider names accepted by configuration.
const (
	ProviderEmailJS  = "emailjs"
	ProviderSMTP     = "smtp"
	ProviderSendGrid = "sendgrid"
	ProviderSES      = "ses"
	ProviderLog      = "log"
)
