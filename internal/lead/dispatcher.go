package lead

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/DukeRupert/cowork/internal/domain"
	"github.com/DukeRupert/cowork/internal/email"
	"github.com/DukeRupert/cowork/internal/metrics"
	"github.com/google/uuid"
)

// =============================================================================
// Submission State
// =============================================================================

// State is the lifecycle of one submission attempt:
// Idle -> Sending -> (Success | Failed) -> Idle.
type State int32

const (
	StateIdle State = iota
	StateSending
	StateSuccess
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// =============================================================================
// Configuration
// =============================================================================

// Config holds the identifiers forwarded to the email service.
type Config struct {
	ServiceID  string // Email service identifier
	TemplateID string // Template identifier
	UserID     string // Sender/account identifier
	Provider   string // Provider name, used for logs and metrics
}

// Validate reports every missing identifier.
func (c Config) Validate() error {
	var missing []string
	if c.ServiceID == "" {
		missing = append(missing, "service ID")
	}
	if c.TemplateID == "" {
		missing = append(missing, "template ID")
	}
	if c.UserID == "" {
		missing = append(missing, "user ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("dispatcher config missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// =============================================================================
// Dispatcher
// =============================================================================

// ErrInFlight is returned when a submission is attempted while another one
// from the same form instance is still sending.
var ErrInFlight = domain.Conflict("lead.dispatch", "Your request is already being sent. Please wait.")

// Dispatcher sends validated submissions and owns the submission state of
// one form instance. At most one submission is Sending at a time; a second
// Submit during a send returns ErrInFlight without contacting the sender.
type Dispatcher struct {
	config   Config
	sender   email.Sender
	notifier Notifier
	logger   *slog.Logger

	state    atomic.Int32
	observer func(State)
}

// NewDispatcher creates a Dispatcher. notifier may be nil.
func NewDispatcher(cfg Config, sender email.Sender, notifier Notifier, logger *slog.Logger) (*Dispatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sender == nil {
		return nil, errors.New("dispatcher requires a sender")
	}
	if cfg.Provider == "" {
		cfg.Provider = "unknown"
	}
	return &Dispatcher{
		config:   cfg,
		sender:   sender,
		notifier: notifier,
		logger:   logger,
	}, nil
}

// OnStateChange registers fn to be called on every state transition.
// It must be called before the dispatcher is used.
func (d *Dispatcher) OnStateChange(fn func(State)) {
	d.observer = fn
}

// State returns the current submission state.
func (d *Dispatcher) State() State {
	return State(d.state.Load())
}

// Sending reports whether a submission is in flight.
func (d *Dispatcher) Sending() bool {
	return d.State() == StateSending
}

// Submit maps sub to the email payload and performs exactly one send.
//
// The returned Notification is the one shown to the user; it is also passed
// to the configured Notifier. On a rejected send the error is a
// domain.EDISPATCH error. In every case the dispatcher is back to Idle when
// Submit returns.
func (d *Dispatcher) Submit(ctx context.Context, sub domain.LeadSubmission) (Notification, error) {
	const op = "lead.dispatch"

	if !d.state.CompareAndSwap(int32(StateIdle), int32(StateSending)) {
		metrics.LeadSubmitted(metrics.StatusInFlight)
		d.logger.Warn("submission rejected, another is in flight", "state", d.State().String())
		return Notification{}, ErrInFlight
	}
	d.emit(StateSending)

	ref := uuid.New()
	msg := email.TemplateMessage{
		ServiceID:  d.config.ServiceID,
		TemplateID: d.config.TemplateID,
		UserID:     d.config.UserID,
		Params:     BuildPayload(sub),
	}

	start := time.Now()
	err := d.send(ctx, msg)
	metrics.LeadDispatched(d.config.Provider, time.Since(start))

	var n Notification
	if err != nil {
		d.transition(StateFailed)
		n = failureNotification(err)
		metrics.LeadSubmitted(metrics.StatusFailed)
		d.logger.Error("call back request failed",
			"ref", ref,
			"provider", d.config.Provider,
			"workspace", sub.WorkspaceType.String(),
			"error", err,
		)
		if domain.ErrorCode(err) != domain.EDISPATCH {
			err = domain.DispatchFailure(err, op, "")
		}
	} else {
		d.transition(StateSuccess)
		n = successNotification()
		metrics.LeadSubmitted(metrics.StatusSent)
		d.logger.Info("call back request sent",
			"ref", ref,
			"provider", d.config.Provider,
			"workspace", sub.WorkspaceType.String(),
		)
	}

	if d.notifier != nil {
		d.notifier.Notify(ctx, n)
	}
	d.transition(StateIdle)

	return n, err
}

// send calls the sender, converting a panic into an error so the state is
// always released.
func (d *Dispatcher) send(ctx context.Context, msg email.TemplateMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sender panicked: %v", r)
		}
	}()
	return d.sender.Send(ctx, msg)
}

func (d *Dispatcher) transition(s State) {
	d.state.Store(int32(s))
	d.emit(s)
}

func (d *Dispatcher) emit(s State) {
	d.logger.Debug("submission state changed", "state", s.String())
	if d.observer != nil {
		d.observer(s)
	}
}
