// Package contact renders the request-a-call-back page.
package contact

import "github.com/DukeRupert/cowork/internal/templ/shared"

// CallbackPageData contains data for the call back page.
type CallbackPageData struct {
	Form        FormData
	Errors      map[string]string // field -> message
	Flash       *shared.Flash
	CSRFToken   string
	Workspaces  []WorkspaceOption
	Sending     bool   // Disables the submit button
	WhatsAppURL string // Floating chat link; omitted when empty
}

// FormData holds the values echoed back into the form.
type FormData struct {
	Name          string
	CompanyName   string
	Email         string
	Phone         string
	WorkspaceType string
	Message       string
}

// WorkspaceOption is one entry of the workspace select. Value is always the
// enumeration key; Label is only displayed.
type WorkspaceOption struct {
	Value string
	Label string
}
