package email

import (
	"context"
	"log/slog"
)

// LogSender logs call back requests instead of sending them.
// Useful in development when no email provider is configured.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a sender that only logs.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the request and always succeeds.
func (s *LogSender) Send(ctx context.Context, msg TemplateMessage) error {
	s.logger.Info("log sender: would send call back request",
		"provider", ProviderLog,
		"service_id", msg.ServiceID,
		"template_id", msg.TemplateID,
		"title", msg.Params.Title,
		"workspace", msg.Params.Workspace,
	)
	return nil
}

var _ Sender = (*LogSender)(nil)
