package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultEmailJSURL is the EmailJS REST send endpoint.
const DefaultEmailJSURL = "https://api.emailjs.com/api/v1.0/email/send"

// EmailJSConfig holds EmailJS API configuration.
type EmailJSConfig struct {
	APIURL      string        // Send endpoint (defaults to DefaultEmailJSURL)
	AccessToken string        // Optional private key for server-side calls
	Timeout     time.Duration // HTTP client timeout (defaults to 15s)
}

// EmailJSSender sends call back requests through the EmailJS REST API.
// EmailJS renders the template identified by TemplateMessage.TemplateID,
// so the payload field names must match the template variables.
//
// Server-side use requires "non-browser applications" to be enabled on
// the EmailJS account.
type EmailJSSender struct {
	apiURL      string
	accessToken string
	client      *http.Client
	logger      *slog.Logger
}

// emailJSRequest is the JSON body accepted by the send endpoint.
type emailJSRequest struct {
	ServiceID      string      `json:"service_id"`
	TemplateID     string      `json:"template_id"`
	UserID         string      `json:"user_id"`
	AccessToken    string      `json:"accessToken,omitempty"`
	TemplateParams interface{} `json:"template_params"`
}

// NewEmailJSSender creates a new EmailJS sender.
func NewEmailJSSender(cfg EmailJSConfig, logger *slog.Logger) *EmailJSSender {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultEmailJSURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &EmailJSSender{
		apiURL:      cfg.APIURL,
		accessToken: cfg.AccessToken,
		client:      &http.Client{Timeout: cfg.Timeout},
		logger:      logger,
	}
}

// Send posts the template parameters to EmailJS. Any non-2xx response is a
// dispatch failure whose message is the response text.
func (s *EmailJSSender) Send(ctx context.Context, msg TemplateMessage) error {
	const op = "email.emailjs.send"

	body, err := json.Marshal(emailJSRequest{
		ServiceID:      msg.ServiceID,
		TemplateID:     msg.TemplateID,
		UserID:         msg.UserID,
		AccessToken:    s.accessToken,
		TemplateParams: msg.Params,
	})
	if err != nil {
		return renderFailure(err, op)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return renderFailure(err, op)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("emailjs request failed",
			"provider", ProviderEmailJS,
			"template_id", msg.TemplateID,
			"error", err,
		)
		return sendFailure(err, op, "")
	}
	defer resp.Body.Close()

	// EmailJS answers with a short plain-text status ("OK" or a reason).
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reason := string(respBody)
		s.logger.Error("emailjs returned error status",
			"provider", ProviderEmailJS,
			"status", resp.StatusCode,
			"body", reason,
			"template_id", msg.TemplateID,
		)
		return sendFailure(fmt.Errorf("emailjs returned status %d", resp.StatusCode), op, reason)
	}

	s.logger.Info("email sent",
		"provider", ProviderEmailJS,
		"template_id", msg.TemplateID,
		"status", resp.StatusCode,
	)
	return nil
}

var _ Sender = (*EmailJSSender)(nil)
