package internal

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	Port     int
	LogLevel string

	// EmailJS identifiers, forwarded with every call back request
	EmailJSServiceID   string
	EmailJSTemplateID  string
	EmailJSUserID      string
	EmailJSAccessToken string // Optional private key
	EmailJSAPIURL      string

	// Delivery provider: "emailjs", "smtp", "sendgrid", "ses" or "log"
	LeadDeliveryProvider string
	DispatchTimeout      time.Duration

	// Team inbox for the providers that mail the request directly
	LeadInboxEmail string
	LeadInboxName  string

	// SMTP Configuration
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string

	// SendGrid Configuration
	SendGridAPIKey string

	// AWS SES Configuration
	AWSRegion          string
	SESAccessKeyID     string
	SESSecretAccessKey string

	// WhatsApp quick-contact link
	WhatsAppPhone   string
	WhatsAppMessage string

	// Call back submissions per client IP
	CallbackRateLimit  int
	CallbackRateWindow time.Duration

	// Idle form instances are dropped after this long, and at most
	// FormInstanceMax exist at once
	FormInstanceTTL time.Duration
	FormInstanceMax int

	// Metrics endpoint authentication
	// If both are empty, the /metrics endpoint will be unprotected (not recommended)
	MetricsUsername string
	MetricsPassword string
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func NewConfig() (*Config, error) {
	// Load .env file if it exists (ignored in production)
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		EmailJSAccessToken: getEnv("EMAILJS_ACCESS_TOKEN", ""),
		EmailJSAPIURL:      getEnv("EMAILJS_API_URL", "https://api.emailjs.com/api/v1.0/email/send"),

		LeadDeliveryProvider: strings.ToLower(getEnv("LEAD_DELIVERY_PROVIDER", "emailjs")),
		DispatchTimeout:      getEnvDuration("DISPATCH_TIMEOUT", 15*time.Second),

		LeadInboxEmail: getEnv("LEAD_INBOX_EMAIL", ""),
		LeadInboxName:  getEnv("LEAD_INBOX_NAME", "Sales"),

		// SMTP defaults for Mailhog (development)
		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnvInt("SMTP_PORT", 1025),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@cowork.local"),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "Cowork Website"),

		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),

		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		SESAccessKeyID:     getEnv("SES_ACCESS_KEY_ID", ""),
		SESSecretAccessKey: getEnv("SES_SECRET_ACCESS_KEY", ""),

		WhatsAppPhone:   getEnv("WHATSAPP_PHONE", "94778673863"),
		WhatsAppMessage: getEnv("WHATSAPP_MESSAGE", "Hello! I'm interested in your co-working spaces."),

		CallbackRateLimit:  getEnvInt("CALLBACK_RATE_LIMIT", 5),
		CallbackRateWindow: getEnvDuration("CALLBACK_RATE_WINDOW", 10*time.Minute),

		FormInstanceTTL: getEnvDuration("FORM_INSTANCE_TTL", time.Hour),
		FormInstanceMax: getEnvInt("FORM_INSTANCE_MAX", 10000),

		// Metrics authentication
		MetricsUsername: getEnv("METRICS_USERNAME", ""),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),
	}

	// Required
	cfg.EmailJSServiceID = os.Getenv("EMAILJS_SERVICE_ID")
	if cfg.EmailJSServiceID == "" {
		return nil, fmt.Errorf("EMAILJS_SERVICE_ID is required")
	}
	cfg.EmailJSTemplateID = os.Getenv("EMAILJS_TEMPLATE_ID")
	if cfg.EmailJSTemplateID == "" {
		return nil, fmt.Errorf("EMAILJS_TEMPLATE_ID is required")
	}
	cfg.EmailJSUserID = os.Getenv("EMAILJS_USER_ID")
	if cfg.EmailJSUserID == "" {
		return nil, fmt.Errorf("EMAILJS_USER_ID is required")
	}

	// Validate delivery provider configuration
	switch cfg.LeadDeliveryProvider {
	case "emailjs", "log":
	case "smtp", "ses":
		if cfg.LeadInboxEmail == "" {
			return nil, fmt.Errorf("LEAD_INBOX_EMAIL is required when LEAD_DELIVERY_PROVIDER is '%s'", cfg.LeadDeliveryProvider)
		}
	case "sendgrid":
		if cfg.LeadInboxEmail == "" {
			return nil, fmt.Errorf("LEAD_INBOX_EMAIL is required when LEAD_DELIVERY_PROVIDER is 'sendgrid'")
		}
		if cfg.SendGridAPIKey == "" {
			return nil, fmt.Errorf("SENDGRID_API_KEY is required when LEAD_DELIVERY_PROVIDER is 'sendgrid'")
		}
	default:
		return nil, fmt.Errorf("LEAD_DELIVERY_PROVIDER must be one of 'emailjs', 'smtp', 'sendgrid', 'ses' or 'log', got: %s", cfg.LeadDeliveryProvider)
	}

	if cfg.CallbackRateLimit <= 0 {
		return nil, fmt.Errorf("CALLBACK_RATE_LIMIT must be positive, got: %d", cfg.CallbackRateLimit)
	}
	if cfg.FormInstanceMax <= 0 {
		return nil, fmt.Errorf("FORM_INSTANCE_MAX must be positive, got: %d", cfg.FormInstanceMax)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
