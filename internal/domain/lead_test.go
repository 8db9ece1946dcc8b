package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkspaceType_Label(t *testing.T) {
	tests := []struct {
		name string
		in   WorkspaceType
		want string
	}{
		{"hot desk", WorkspaceHotDesk, "Hot Desk"},
		{"dedicated desk", WorkspaceDedicatedDesk, "Dedicated Desk"},
		{"private office", WorkspacePrivateOffice, "Private Office"},
		{"meeting room", WorkspaceMeetingRoom, "Meeting Room"},
		{"huddle pods", WorkspaceHuddlePods, "Huddle Pods"},

		// Unknown keys pass through unchanged
		{"unknown key", WorkspaceType("rooftop"), "rooftop"},
		{"empty", WorkspaceType(""), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Label())
			// Repeated lookups are stable
			assert.Equal(t, tt.in.Label(), tt.in.Label())
		})
	}
}

func TestParseWorkspaceType(t *testing.T) {
	tests := []struct {
		key    string
		want   WorkspaceType
		wantOK bool
	}{
		{"hot_desk", WorkspaceHotDesk, true},
		{"huddle_pods", WorkspaceHuddlePods, true},
		{"meeting_room", WorkspaceMeetingRoom, true},

		// Labels are not keys
		{"Meeting Room", "", false},
		{"Hot Desk", "", false},

		{"HOT_DESK", "", false},
		{"", "", false},
		{"huddle_pod", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := ParseWorkspaceType(tt.key)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWorkspaceTypes_ReturnsCopy(t *testing.T) {
	types := WorkspaceTypes()
	assert.Len(t, types, 5)
	assert.Equal(t, WorkspaceHotDesk, types[0])

	types[0] = "tampered"
	assert.Equal(t, WorkspaceHotDesk, WorkspaceTypes()[0])
}

func TestValidationError_Kinds(t *testing.T) {
	ve := NewValidationError("lead.validate", "name", EREQUIRED, "Name is required.")
	ve = AddFieldError(ve, "email", EFORMAT, "Please enter a valid email.")

	assert.True(t, ve.Has("name"))
	assert.True(t, ve.Has("email"))
	assert.False(t, ve.Has("phone"))
	assert.Equal(t, EREQUIRED, ve.Kind("name"))
	assert.Equal(t, EFORMAT, ve.Kind("email"))
	assert.Equal(t, "", ve.Kind("phone"))
	assert.Equal(t, EINVALID, ErrorCode(ve))
	assert.Equal(t, "lead.validate", ErrorOp(ve))
}

func TestDispatchFailure(t *testing.T) {
	err := DispatchFailure(assert.AnError, "lead.dispatch", "The template ID is invalid")

	assert.Equal(t, EDISPATCH, ErrorCode(err))
	assert.Equal(t, "The template ID is invalid", ErrorMessage(err))
	assert.ErrorIs(t, err, assert.AnError)
}

func TestErrorMessage_HidesInternalDetails(t *testing.T) {
	err := Internal(assert.AnError, "lead.dispatch", "smtp dial tcp 10.0.0.1:25 refused")

	assert.Equal(t, "An internal error occurred. Please try again later.", ErrorMessage(err))
}
