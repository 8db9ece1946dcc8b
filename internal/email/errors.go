package email

import (
	"strings"
	"unicode/utf8"

	"github.com/DukeRupert/cowork/internal/domain"
)

// maxReasonLength bounds provider-supplied failure text shown to users.
const maxReasonLength = 200

// sendFailure wraps a provider error as a dispatch failure. reason is the
// provider's own explanation, if any; it becomes the user-facing message.
func sendFailure(err error, op, reason string) error {
	return domain.DispatchFailure(err, op, cleanReason(reason))
}

// renderFailure reports a local rendering problem. The user only sees the
// generic failure message for these.
func renderFailure(err error, op string) error {
	return domain.Internal(err, op, "failed to render email")
}

func cleanReason(reason string) string {
	reason = strings.TrimSpace(reason)
	if len(reason) > maxReasonLength {
		cut := maxReasonLength
		for cut > 0 && !utf8.RuneStart(reason[cut]) {
			cut--
		}
		reason = reason[:cut]
	}
	return reason
}
