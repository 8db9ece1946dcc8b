package email

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/DukeRupert/cowork/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/smithy-go"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Helpers
// =============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMessage() TemplateMessage {
	return TemplateMessage{
		ServiceID:  "service_abc",
		TemplateID: "template_xyz",
		UserID:     "user_123",
		Params: domain.CallbackPayload{
			Title:       "New call back request",
			Name:        "Jane",
			CompanyName: "-",
			Email:       "jane@x.com",
			Phone:       "0771234567",
			Workspace:   "Meeting Room",
			Message:     "-",
		},
	}
}

func testInbox() Inbox {
	return Inbox{Email: "sales@cowork.test"}
}

func dispatchMessage(t *testing.T, err error) string {
	t.Helper()
	var e *domain.Error
	require.True(t, errors.As(err, &e), "expected *domain.Error, got %T", err)
	require.Equal(t, domain.EDISPATCH, e.Code)
	return e.Message
}

// =============================================================================
// EmailJS
// =============================================================================

func TestEmailJSSender_Send_Success(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("OK"))
	}))
	defer server.Close()

	sender := NewEmailJSSender(EmailJSConfig{APIURL: server.URL, AccessToken: "secret"}, testLogger())
	require.NoError(t, sender.Send(context.Background(), testMessage()))

	assert.Equal(t, "service_abc", got["service_id"])
	assert.Equal(t, "template_xyz", got["template_id"])
	assert.Equal(t, "user_123", got["user_id"])
	assert.Equal(t, "secret", got["accessToken"])

	params, ok := got["template_params"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, map[string]interface{}{
		"title":       "New call back request",
		"name":        "Jane",
		"companyName": "-",
		"email":       "jane@x.com",
		"phone":       "0771234567",
		"workspace":   "Meeting Room",
		"message":     "-",
	}, params)
}

func TestEmailJSSender_Send_OmitsEmptyAccessToken(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte("OK"))
	}))
	defer server.Close()

	sender := NewEmailJSSender(EmailJSConfig{APIURL: server.URL}, testLogger())
	require.NoError(t, sender.Send(context.Background(), testMessage()))

	_, present := got["accessToken"]
	assert.False(t, present)
}

func TestEmailJSSender_Send_RejectedUsesResponseText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("  The template ID is invalid\n"))
	}))
	defer server.Close()

	sender := NewEmailJSSender(EmailJSConfig{APIURL: server.URL}, testLogger())
	err := sender.Send(context.Background(), testMessage())

	assert.Equal(t, "The template ID is invalid", dispatchMessage(t, err))
}

func TestEmailJSSender_Send_LongReasonIsTruncated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(strings.Repeat("x", 500)))
	}))
	defer server.Close()

	sender := NewEmailJSSender(EmailJSConfig{APIURL: server.URL}, testLogger())
	err := sender.Send(context.Background(), testMessage())

	assert.Len(t, dispatchMessage(t, err), maxReasonLength)
}

func TestEmailJSSender_Send_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	sender := NewEmailJSSender(EmailJSConfig{APIURL: server.URL, Timeout: 20 * time.Millisecond}, testLogger())
	err := sender.Send(context.Background(), testMessage())

	assert.Empty(t, dispatchMessage(t, err))
}

func TestNewEmailJSSender_Defaults(t *testing.T) {
	sender := NewEmailJSSender(EmailJSConfig{}, testLogger())
	assert.Equal(t, DefaultEmailJSURL, sender.apiURL)
	assert.Equal(t, 15*time.Second, sender.client.Timeout)
}

// =============================================================================
// SMTP
// =============================================================================

func TestNewSMTPSender_RequiresInbox(t *testing.T) {
	_, err := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 1025}, Inbox{}, testLogger())
	assert.Error(t, err)
}

func TestSMTPSender_Send(t *testing.T) {
	sender, err := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 1025}, testInbox(), testLogger())
	require.NoError(t, err)

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	sender.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		assert.Nil(t, a, "no auth without credentials")
		return nil
	}

	require.NoError(t, sender.Send(context.Background(), testMessage()))

	assert.Equal(t, "localhost:1025", gotAddr)
	assert.Equal(t, DefaultFromEmail, gotFrom)
	assert.Equal(t, []string{"sales@cowork.test"}, gotTo)

	raw := string(gotMsg)
	assert.Contains(t, raw, "To: Sales <sales@cowork.test>\r\n")
	assert.Contains(t, raw, "Reply-To: jane@x.com\r\n")
	assert.Contains(t, raw, "Subject: New call back request: Jane (Meeting Room)\r\n")
	assert.Contains(t, raw, "multipart/alternative")
	assert.Contains(t, raw, "Workspace: Meeting Room")
}

func TestSMTPSender_Send_Failure(t *testing.T) {
	sender, err := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 1025}, testInbox(), testLogger())
	require.NoError(t, err)
	sender.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	err = sender.Send(context.Background(), testMessage())
	assert.Empty(t, dispatchMessage(t, err))
}

func TestSMTPSender_Send_CanceledContext(t *testing.T) {
	sender, err := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 1025}, testInbox(), testLogger())
	require.NoError(t, err)
	called := false
	sender.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		called = true
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = sender.Send(ctx, testMessage())
	assert.Equal(t, domain.EDISPATCH, domain.ErrorCode(err))
	assert.False(t, called)
}

// headerValue returns the value of the named header in a raw message.
func headerValue(t *testing.T, raw, name string) string {
	t.Helper()
	head, _, found := strings.Cut(raw, "\r\n\r\n")
	require.True(t, found, "message has no header block")
	for _, line := range strings.Split(head, "\r\n") {
		if v, ok := strings.CutPrefix(line, name+": "); ok {
			return v
		}
	}
	t.Fatalf("header %s not found", name)
	return ""
}

func TestSMTPSender_Send_SubjectCannotInjectHeaders(t *testing.T) {
	sender, err := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 1025}, testInbox(), testLogger())
	require.NoError(t, err)

	var gotMsg []byte
	sender.sendMail = func(_ string, _ smtp.Auth, _ string, _ []string, msg []byte) error {
		gotMsg = msg
		return nil
	}

	msg := testMessage()
	msg.Params.Name = "Jane\r\nBcc: victim@evil.test"
	require.NoError(t, sender.Send(context.Background(), msg))

	raw := string(gotMsg)
	head, _, _ := strings.Cut(raw, "\r\n\r\n")
	assert.NotContains(t, head, "\nBcc:")
	assert.NotContains(t, head, "\rBcc:")

	subject, err := new(mime.WordDecoder).DecodeHeader(headerValue(t, raw, "Subject"))
	require.NoError(t, err)
	assert.Equal(t, "New call back request: Jane\r\nBcc: victim@evil.test (Meeting Room)", subject)
}

func TestSMTPSender_Send_EncodesNonASCIISubject(t *testing.T) {
	sender, err := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 1025}, testInbox(), testLogger())
	require.NoError(t, err)

	var gotMsg []byte
	sender.sendMail = func(_ string, _ smtp.Auth, _ string, _ []string, msg []byte) error {
		gotMsg = msg
		return nil
	}

	msg := testMessage()
	msg.Params.Name = "Zoë"
	require.NoError(t, sender.Send(context.Background(), msg))

	encoded := headerValue(t, string(gotMsg), "Subject")
	assert.True(t, strings.HasPrefix(encoded, "=?utf-8?q?"), "subject %q is not an encoded word", encoded)

	subject, err := new(mime.WordDecoder).DecodeHeader(encoded)
	require.NoError(t, err)
	assert.Equal(t, "New call back request: Zoë (Meeting Room)", subject)
}

func TestCleanReason(t *testing.T) {
	assert.Equal(t, "bad key", cleanReason("  bad key \n"))
	assert.Len(t, cleanReason(strings.Repeat("x", 500)), maxReasonLength)

	// Truncation never splits a multi-byte rune
	reason := cleanReason("x" + strings.Repeat("é", 150))
	assert.True(t, utf8.ValidString(reason))
	assert.LessOrEqual(t, len(reason), maxReasonLength)
	assert.Equal(t, "x"+strings.Repeat("é", 99), reason)
}

// =============================================================================
// SendGrid
// =============================================================================

type fakeSendGrid struct {
	got      *mail.SGMailV3
	response *rest.Response
	err      error
}

func (f *fakeSendGrid) SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	f.got = email
	return f.response, f.err
}

func TestNewSendGridSender_NoAPIKey(t *testing.T) {
	assert.Nil(t, NewSendGridSender(SendGridConfig{}, testInbox(), testLogger()))
}

func TestSendGridSender_Send(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{APIKey: "SG.test"}, testInbox(), testLogger())
	require.NotNil(t, sender)

	fake := &fakeSendGrid{response: &rest.Response{StatusCode: http.StatusAccepted}}
	sender.client = fake

	require.NoError(t, sender.Send(context.Background(), testMessage()))
	require.NotNil(t, fake.got)
	assert.Equal(t, "New call back request: Jane (Meeting Room)", fake.got.Subject)
	assert.Equal(t, "jane@x.com", fake.got.ReplyTo.Address)
	require.Len(t, fake.got.Personalizations, 1)
	assert.Equal(t, "sales@cowork.test", fake.got.Personalizations[0].To[0].Address)
}

func TestSendGridSender_Send_Failures(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeSendGrid
	}{
		{"transport error", &fakeSendGrid{err: errors.New("timeout")}},
		{"error status", &fakeSendGrid{response: &rest.Response{StatusCode: http.StatusUnauthorized, Body: "bad key"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := NewSendGridSender(SendGridConfig{APIKey: "SG.test"}, testInbox(), testLogger())
			sender.client = tt.fake

			err := sender.Send(context.Background(), testMessage())
			assert.Empty(t, dispatchMessage(t, err))
		})
	}
}

// =============================================================================
// SES
// =============================================================================

type fakeSES struct {
	got *sesv2.SendEmailInput
	err error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.got = params
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESSender_Send(t *testing.T) {
	fake := &fakeSES{}
	sender := newSESSender(fake, SESConfig{FromEmail: "web@cowork.test"}, testInbox(), testLogger())

	require.NoError(t, sender.Send(context.Background(), testMessage()))
	require.NotNil(t, fake.got)
	assert.Equal(t, "Cowork Website <web@cowork.test>", aws.ToString(fake.got.FromEmailAddress))
	assert.Equal(t, []string{"sales@cowork.test"}, fake.got.Destination.ToAddresses)
	assert.Equal(t, []string{"jane@x.com"}, fake.got.ReplyToAddresses)
	assert.Equal(t, "New call back request: Jane (Meeting Room)", aws.ToString(fake.got.Content.Simple.Subject.Data))
	assert.Contains(t, aws.ToString(fake.got.Content.Simple.Body.Html.Data), "Meeting Room")
}

func TestSESSender_Send_APIErrorReason(t *testing.T) {
	fake := &fakeSES{err: &smithy.GenericAPIError{
		Code:    "MessageRejected",
		Message: "Email address is not verified.",
	}}
	sender := newSESSender(fake, SESConfig{}, testInbox(), testLogger())

	err := sender.Send(context.Background(), testMessage())
	assert.Equal(t, "Email address is not verified.", dispatchMessage(t, err))
}

func TestSESSender_Send_TransportError(t *testing.T) {
	fake := &fakeSES{err: errors.New("dial tcp: i/o timeout")}
	sender := newSESSender(fake, SESConfig{}, testInbox(), testLogger())

	err := sender.Send(context.Background(), testMessage())
	assert.Empty(t, dispatchMessage(t, err))
}

// =============================================================================
// Log sender and rendering
// =============================================================================

func TestLogSender_Send(t *testing.T) {
	assert.NoError(t, NewLogSender(testLogger()).Send(context.Background(), testMessage()))
}

func TestRenderCallback_EscapesHTML(t *testing.T) {
	msg := testMessage()
	msg.Params.Message = "<script>alert(1)</script>"

	email, err := renderCallback(testInbox(), msg.Params)
	require.NoError(t, err)

	assert.NotContains(t, email.HTMLBody, "<script>")
	assert.Contains(t, email.HTMLBody, "&lt;script&gt;")
	assert.Contains(t, email.TextBody, "<script>alert(1)</script>")
	assert.Contains(t, email.HTMLBody, "New Call Back Request")
}
