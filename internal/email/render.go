package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/DukeRupert/cowork/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(
	template.New("email").Funcs(emailTemplateFuncs()).ParseFS(templateFS, "templates/*.html"),
)

// renderCallback renders a call back request for providers that need a
// complete email rather than a remote template.
func renderCallback(inbox Inbox, p domain.CallbackPayload) (Email, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "callback_request.html", p); err != nil {
		return Email{}, fmt.Errorf("failed to render callback email template: %w", err)
	}

	textBody := fmt.Sprintf(`%s

Name:      %s
Company:   %s
Email:     %s
Phone:     %s
Workspace: %s

Additional requests:
%s
`, p.Title, p.Name, p.CompanyName, p.Email, p.Phone, p.Workspace, p.Message)

	return Email{
		To:       inbox.Email,
		ToName:   inbox.Name,
		ReplyTo:  p.Email,
		Subject:  fmt.Sprintf("%s: %s (%s)", p.Title, p.Name, p.Workspace),
		HTMLBody: buf.String(),
		TextBody: textBody,
	}, nil
}

// =============================================================================
// Template Functions
// =============================================================================

// emailTemplateFuncs returns template functions available in email templates.
func emailTemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"title": func(s string) string {
			return cases.Title(language.English).String(s)
		},
		"currentYear": func() int {
			return time.Now().Year()
		},
	}
}
