// Package domain contains core business types and interfaces.
//
// This file defines the lead submission captured by the "request a call
// back" form and the workspace categories a lead can ask about.
package domain

// =============================================================================
// Workspace Types
// =============================================================================

// WorkspaceType is the category of physical space a lead is inquiring about.
// The zero value is not a valid workspace type.
type WorkspaceType string

const (
	WorkspaceHotDesk       WorkspaceType = "hot_desk"
	WorkspaceDedicatedDesk WorkspaceType = "dedicated_desk"
	WorkspacePrivateOffice WorkspaceType = "private_office"
	WorkspaceMeetingRoom   WorkspaceType = "meeting_room"
	WorkspaceHuddlePods    WorkspaceType = "huddle_pods"
)

// workspaceTypes lists the enumeration in display order.
var workspaceTypes = []WorkspaceType{
	WorkspaceHotDesk,
	WorkspaceDedicatedDesk,
	WorkspacePrivateOffice,
	WorkspaceMeetingRoom,
	WorkspaceHuddlePods,
}

var workspaceLabels = map[WorkspaceType]string{
	WorkspaceHotDesk:       "Hot Desk",
	WorkspaceDedicatedDesk: "Dedicated Desk",
	WorkspacePrivateOffice: "Private Office",
	WorkspaceMeetingRoom:   "Meeting Room",
	WorkspaceHuddlePods:    "Huddle Pods",
}

// WorkspaceTypes returns every workspace type in display order.
func WorkspaceTypes() []WorkspaceType {
	out := make([]WorkspaceType, len(workspaceTypes))
	copy(out, workspaceTypes)
	return out
}

// IsValid returns true if w is a member of the enumeration.
func (w WorkspaceType) IsValid() bool {
	_, ok := workspaceLabels[w]
	return ok
}

// Label returns the human-readable display label.
// Unrecognized keys are returned unchanged.
func (w WorkspaceType) Label() string {
	if label, ok := workspaceLabels[w]; ok {
		return label
	}
	return string(w)
}

// String returns the internal key.
func (w WorkspaceType) String() string {
	return string(w)
}

// ParseWorkspaceType converts an internal key to a WorkspaceType.
// Display labels are not accepted; only the stable keys are.
func ParseWorkspaceType(key string) (WorkspaceType, bool) {
	w := WorkspaceType(key)
	if !w.IsValid() {
		return "", false
	}
	return w, true
}

// =============================================================================
// Lead Submission
// =============================================================================

// LeadSubmission is a validated "request a call back" form payload.
// Values of this type are only produced by validation; WorkspaceType is
// always a member of the enumeration.
type LeadSubmission struct {
	Name          string        // Required, non-empty after trimming
	CompanyName   string        // Optional
	Email         string        // Required, valid email syntax
	Phone         string        // Required, non-empty
	WorkspaceType WorkspaceType // Required enumeration key
	Message       string        // Optional free text
}

// =============================================================================
// Dispatch Payload
// =============================================================================

// CallbackPayload is the parameter object handed to the external email
// template. Field names must match the template variables exactly.
type CallbackPayload struct {
	Title       string `json:"title"`
	Name        string `json:"name"`
	CompanyName string `json:"companyName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Workspace   string `json:"workspace"`
	Message     string `json:"message"`
}
