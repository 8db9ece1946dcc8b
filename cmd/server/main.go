package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DukeRupert/cowork/internal"
	"github.com/DukeRupert/cowork/internal/email"
	"github.com/DukeRupert/cowork/internal/handler"
	"github.com/DukeRupert/cowork/internal/lead"
	"github.com/DukeRupert/cowork/internal/metrics"
	"github.com/DukeRupert/cowork/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize the delivery provider
	sender, err := newSender(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("email sender initialization failed: %w", err)
	}
	logger.Info("Email sender ready", "provider", cfg.LeadDeliveryProvider)

	leadCfg := lead.Config{
		ServiceID:  cfg.EmailJSServiceID,
		TemplateID: cfg.EmailJSTemplateID,
		UserID:     cfg.EmailJSUserID,
		Provider:   cfg.LeadDeliveryProvider,
	}
	if err := leadCfg.Validate(); err != nil {
		return fmt.Errorf("lead config invalid: %w", err)
	}

	notifier := lead.NotifierFunc(func(ctx context.Context, n lead.Notification) {
		logger.Debug("notification shown", "type", string(n.Kind), "title", n.Title)
	})

	// Each browser gets its own form instance and dispatcher
	forms := lead.NewRegistry(func() (*lead.Dispatcher, error) {
		return lead.NewDispatcher(leadCfg, sender, notifier, logger)
	}, cfg.FormInstanceTTL, cfg.FormInstanceMax, logger)
	defer forms.Close()

	// Initialize middleware
	isSecure := !cfg.IsDevelopment()
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	securityMw := middleware.NewSecurityHeadersMiddleware(isSecure)
	metricsAuth := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)
	callbackLimit := middleware.NewCallbackRateLimit(cfg.CallbackRateLimit, cfg.CallbackRateWindow, logger)

	if !metricsAuth.Enabled() {
		logger.Warn("Metrics endpoint is unprotected, set METRICS_USERNAME and METRICS_PASSWORD")
	}

	// Initialize handlers
	whatsAppHandler := handler.NewWhatsAppHandler(cfg.WhatsAppPhone, cfg.WhatsAppMessage)
	contactHandler := handler.NewContactHandler(forms, logger, isSecure, whatsAppHandler.URL())

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus metrics
	mux.Handle("GET /metrics", metricsAuth.Handler(promhttp.Handler()))

	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		// Only handle exact root path
		if r.URL.Path != "/" {
			handler.NotFoundResponse(w, r, logger)
			return
		}
		http.Redirect(w, r, "/contact", http.StatusSeeOther)
	})

	contactHandler.RegisterRoutes(mux, callbackLimit.Limit)
	whatsAppHandler.RegisterRoutes(mux)

	stack := middleware.Stack(
		loggingMw.Handler,
		securityMw.Handler,
		metrics.Middleware("/", "/contact", "/api/callback", "/api/workspaces", "/whatsapp", "/health"),
	)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           stack(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	// In-flight sends get the full shutdown window to finish
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

// newSender builds the email sender for the configured provider.
func newSender(ctx context.Context, cfg *internal.Config, logger *slog.Logger) (email.Sender, error) {
	inbox := email.Inbox{Email: cfg.LeadInboxEmail, Name: cfg.LeadInboxName}

	switch cfg.LeadDeliveryProvider {
	case email.ProviderEmailJS:
		return email.NewEmailJSSender(email.EmailJSConfig{
			APIURL:      cfg.EmailJSAPIURL,
			AccessToken: cfg.EmailJSAccessToken,
			Timeout:     cfg.DispatchTimeout,
		}, logger), nil

	case email.ProviderSMTP:
		return email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
		}, inbox, logger)

	case email.ProviderSendGrid:
		sender := email.NewSendGridSender(email.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SMTPFrom,
			FromName:  cfg.SMTPFromName,
		}, inbox, logger)
		if sender == nil {
			return nil, fmt.Errorf("sendgrid requires an API key")
		}
		return sender, nil

	case email.ProviderSES:
		return email.NewSESSender(ctx, email.SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretAccessKey,
			FromEmail:       cfg.SMTPFrom,
			FromName:        cfg.SMTPFromName,
		}, inbox, logger)

	case email.ProviderLog:
		return email.NewLogSender(logger), nil

	default:
		return nil, fmt.Errorf("unknown delivery provider %q", cfg.LeadDeliveryProvider)
	}
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
