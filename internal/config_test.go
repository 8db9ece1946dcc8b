package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setRequired sets the variables NewConfig cannot start without.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("EMAILJS_SERVICE_ID", "service_1")
	t.Setenv("EMAILJS_TEMPLATE_ID", "template_1")
	t.Setenv("EMAILJS_USER_ID", "user_1")
}

// isolate runs the test from an empty directory so no .env is loaded.
func isolate(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	for _, key := range []string{
		"ENV", "PORT", "LOG_LEVEL", "LEAD_DELIVERY_PROVIDER", "LEAD_INBOX_EMAIL",
		"SENDGRID_API_KEY", "CALLBACK_RATE_LIMIT", "CALLBACK_RATE_WINDOW",
		"FORM_INSTANCE_TTL", "FORM_INSTANCE_MAX", "DISPATCH_TIMEOUT", "WHATSAPP_PHONE", "WHATSAPP_MESSAGE",
	} {
		t.Setenv(key, "")
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	isolate(t)
	setRequired(t)

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "emailjs", cfg.LeadDeliveryProvider)
	assert.Equal(t, "https://api.emailjs.com/api/v1.0/email/send", cfg.EmailJSAPIURL)
	assert.Equal(t, 15*time.Second, cfg.DispatchTimeout)
	assert.Equal(t, "94778673863", cfg.WhatsAppPhone)
	assert.Equal(t, "Hello! I'm interested in your co-working spaces.", cfg.WhatsAppMessage)
	assert.Equal(t, 5, cfg.CallbackRateLimit)
	assert.Equal(t, 10*time.Minute, cfg.CallbackRateWindow)
	assert.Equal(t, time.Hour, cfg.FormInstanceTTL)
	assert.Equal(t, 10000, cfg.FormInstanceMax)
	assert.Equal(t, "Sales", cfg.LeadInboxName)
}

func TestNewConfig_RequiresEmailJSIdentifiers(t *testing.T) {
	tests := []struct {
		name    string
		unset   string
		wantErr string
	}{
		{"service", "EMAILJS_SERVICE_ID", "EMAILJS_SERVICE_ID is required"},
		{"template", "EMAILJS_TEMPLATE_ID", "EMAILJS_TEMPLATE_ID is required"},
		{"user", "EMAILJS_USER_ID", "EMAILJS_USER_ID is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			setRequired(t)
			t.Setenv(tt.unset, "")

			cfg, err := NewConfig()
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewConfig_Providers(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		wantErr  string
		provider string
	}{
		{name: "log", env: map[string]string{"LEAD_DELIVERY_PROVIDER": "log"}, provider: "log"},
		{name: "case insensitive", env: map[string]string{"LEAD_DELIVERY_PROVIDER": "EmailJS"}, provider: "emailjs"},
		{name: "smtp without inbox", env: map[string]string{"LEAD_DELIVERY_PROVIDER": "smtp"}, wantErr: "LEAD_INBOX_EMAIL"},
		{
			name:     "smtp with inbox",
			env:      map[string]string{"LEAD_DELIVERY_PROVIDER": "smtp", "LEAD_INBOX_EMAIL": "sales@cowork.test"},
			provider: "smtp",
		},
		{
			name:    "sendgrid without key",
			env:     map[string]string{"LEAD_DELIVERY_PROVIDER": "sendgrid", "LEAD_INBOX_EMAIL": "sales@cowork.test"},
			wantErr: "SENDGRID_API_KEY",
		},
		{
			name:     "ses with inbox",
			env:      map[string]string{"LEAD_DELIVERY_PROVIDER": "ses", "LEAD_INBOX_EMAIL": "sales@cowork.test"},
			provider: "ses",
		},
		{name: "unknown", env: map[string]string{"LEAD_DELIVERY_PROVIDER": "pigeon"}, wantErr: "LEAD_DELIVERY_PROVIDER must be one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := NewConfig()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.provider, cfg.LeadDeliveryProvider)
		})
	}
}

func TestNewConfig_InvalidValuesFallBack(t *testing.T) {
	isolate(t)
	setRequired(t)
	t.Setenv("PORT", "eighty")
	t.Setenv("FORM_INSTANCE_TTL", "forever")

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, time.Hour, cfg.FormInstanceTTL)
}

func TestNewConfig_RejectsNonPositiveRateLimit(t *testing.T) {
	isolate(t)
	setRequired(t)
	t.Setenv("CALLBACK_RATE_LIMIT", "0")

	_, err := NewConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CALLBACK_RATE_LIMIT")
}

func TestNewConfig_FormInstanceMax(t *testing.T) {
	isolate(t)
	setRequired(t)

	t.Setenv("FORM_INSTANCE_MAX", "250")
	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.FormInstanceMax)

	t.Setenv("FORM_INSTANCE_MAX", "-1")
	_, err = NewConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FORM_INSTANCE_MAX")
}

func TestNewConfig_LoadsDotEnv(t *testing.T) {
	isolate(t)
	// godotenv never overrides a variable that is already present, even
	// when empty, so these are removed outright. Setenv restores them.
	for _, key := range []string{"EMAILJS_SERVICE_ID", "EMAILJS_TEMPLATE_ID", "EMAILJS_USER_ID"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	env := "EMAILJS_SERVICE_ID=from_file\nEMAILJS_TEMPLATE_ID=tpl\nEMAILJS_USER_ID=usr\n"
	require.NoError(t, os.WriteFile(filepath.Join(".", ".env"), []byte(env), 0o600))

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "from_file", cfg.EmailJSServiceID)
}
