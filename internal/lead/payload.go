package lead

import "github.com/DukeRupert/cowork/internal/domain"

const (
	// PayloadTitle is the fixed title of every call back email.
	PayloadTitle = "New call back request"

	// Placeholder replaces empty optional fields so the email template never
	// renders a blank value.
	Placeholder = "-"
)

// BuildPayload maps a validated submission onto the email template
// parameters. It never fails: an unrecognized workspace key is passed
// through unchanged.
func BuildPayload(sub domain.LeadSubmission) domain.CallbackPayload {
	return domain.CallbackPayload{
		Title:       PayloadTitle,
		Name:        sub.Name,
		CompanyName: orPlaceholder(sub.CompanyName),
		Email:       sub.Email,
		Phone:       sub.Phone,
		Workspace:   sub.WorkspaceType.Label(),
		Message:     orPlaceholder(sub.Message),
	}
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}
