package lead

import (
	"context"
	"errors"

	"github.com/DukeRupert/cowork/internal/domain"
)

// NotificationKind distinguishes success and error notifications.
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// User-facing notification text.
const (
	SuccessTitle   = "Success"
	SuccessMessage = "Email sent successfully!"
	ErrorTitle     = "Error"
	GenericFailure = "Failed to send email. Please try again."
)

// Notification is a user-facing toast produced by a submission attempt.
type Notification struct {
	Kind    NotificationKind `json:"type"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
}

// IsZero reports whether no notification was produced.
func (n Notification) IsZero() bool {
	return n.Kind == ""
}

// Notifier shows notifications to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, n Notification)

// Notify calls f(ctx, n).
func (f NotifierFunc) Notify(ctx context.Context, n Notification) {
	f(ctx, n)
}

func successNotification() Notification {
	return Notification{
		Kind:    NotificationSuccess,
		Title:   SuccessTitle,
		Message: SuccessMessage,
	}
}

// failureNotification derives the message from a dispatch failure, falling
// back to GenericFailure when the failure carries no usable reason.
func failureNotification(err error) Notification {
	message := GenericFailure

	var e *domain.Error
	if errors.As(err, &e) && e.Code == domain.EDISPATCH && e.Message != "" {
		message = e.Message
	}

	return Notification{
		Kind:    NotificationError,
		Title:   ErrorTitle,
		Message: message,
	}
}
