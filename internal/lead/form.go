package lead

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/DukeRupert/cowork/internal/domain"
	"github.com/DukeRupert/cowork/internal/metrics"
)

// =============================================================================
// Form Instance
// =============================================================================

// Form is one callback form instance. It owns its dispatcher, so its
// submission state is never shared with other instances. Entered values are
// kept after every submission attempt.
type Form struct {
	dispatcher *Dispatcher
	validator  *Validator

	// busy is held for the whole of Submit, validation included
	busy atomic.Bool

	mu           sync.Mutex
	values       Values
	preselect    string
	preselectErr error
}

// NewForm creates a form whose default workspace is preselect.
//
// The preselection is validated like user input. When it is rejected the
// form is still returned, with an empty workspace, alongside the
// *domain.ValidationError.
func NewForm(d *Dispatcher, preselect string) (*Form, error) {
	f := &Form{
		dispatcher: d,
		validator:  defaultValidator,
	}
	return f, f.Reset(preselect)
}

// Reset replaces the form state with fresh defaults carrying preselect as
// the workspace. An empty preselect leaves the workspace unselected.
func (f *Form) Reset(preselect string) error {
	defaults, err := defaultValues(f.validator, preselect)

	f.mu.Lock()
	f.values = defaults
	f.preselect = preselect
	f.preselectErr = err
	f.mu.Unlock()

	return err
}

// DefaultValues returns the values a fresh form would start with for
// preselect, without creating a form. A rejected preselection leaves the
// workspace empty and is returned as a *domain.ValidationError.
func DefaultValues(preselect string) (Values, error) {
	return defaultValues(defaultValidator, preselect)
}

func defaultValues(v *Validator, preselect string) (Values, error) {
	var defaults Values
	if preselect == "" {
		return defaults, nil
	}
	workspace, err := v.ValidateWorkspace(preselect)
	if err != nil {
		return defaults, err
	}
	defaults.WorkspaceType = workspace.String()
	return defaults, nil
}

// Preselection returns the workspace the form was last reset with and the
// error it was rejected with, if any.
func (f *Form) Preselection() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.preselect, f.preselectErr
}

// Values returns the form's current values.
func (f *Form) Values() Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// Sending reports whether a submission is being validated or sent.
func (f *Form) Sending() bool {
	return f.busy.Load() || f.dispatcher.Sending()
}

// Submit stores raw as the form's values, validates it and dispatches it.
//
// Invalid input returns a *domain.ValidationError and never reaches the
// dispatcher. A submission while another is sending returns ErrInFlight and
// leaves the stored values untouched.
func (f *Form) Submit(ctx context.Context, raw Values) (Notification, error) {
	if !f.busy.CompareAndSwap(false, true) {
		metrics.LeadSubmitted(metrics.StatusInFlight)
		return Notification{}, ErrInFlight
	}
	defer f.busy.Store(false)

	f.mu.Lock()
	f.values = raw
	f.mu.Unlock()

	sub, err := f.validator.Validate(raw)
	if err != nil {
		recordInvalid(err)
		return Notification{}, err
	}

	return f.dispatcher.Submit(ctx, sub)
}

func recordInvalid(err error) {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		return
	}
	metrics.LeadSubmitted(metrics.StatusInvalid)
	for field, kind := range ve.Kinds {
		metrics.LeadFieldInvalid(field, kind)
	}
}

// =============================================================================
// Form Registry
// =============================================================================

// DispatcherFactory builds a fresh dispatcher for a new form instance.
type DispatcherFactory func() (*Dispatcher, error)

// DefaultMaxForms bounds the number of live form instances.
const DefaultMaxForms = 10000

// Registry holds the live form instances, one per key (a browser's CSRF
// token). Instances idle for longer than the TTL are dropped, and no more
// than maxForms exist at once.
type Registry struct {
	newDispatcher DispatcherFactory
	ttl           time.Duration
	maxForms      int
	logger        *slog.Logger

	mu      sync.Mutex
	entries map[string]*registryEntry
	done    chan struct{}
	once    sync.Once
}

type registryEntry struct {
	form     *Form
	lastSeen time.Time
}

// NewRegistry creates a registry and starts its expiry loop. Call Close to
// stop it. Non-positive ttl and maxForms fall back to one hour and
// DefaultMaxForms.
func NewRegistry(factory DispatcherFactory, ttl time.Duration, maxForms int, logger *slog.Logger) *Registry {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if maxForms <= 0 {
		maxForms = DefaultMaxForms
	}
	r := &Registry{
		newDispatcher: factory,
		ttl:           ttl,
		maxForms:      maxForms,
		logger:        logger,
		entries:       make(map[string]*registryEntry),
		done:          make(chan struct{}),
	}

	go r.cleanup()

	return r
}

// Get returns the form for key, creating it on first use. A new form gets
// preselect as its default workspace; for an existing form a non-empty
// preselect that differs from the previous one resets it. A rejected
// preselection is returned as a *domain.ValidationError alongside the form.
// When the registry is full a domain.ERATELIMIT error is returned.
func (r *Registry) Get(key, preselect string) (*Form, error) {
	const op = "lead.registry.get"

	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.entries[key]; ok {
		entry.lastSeen = time.Now()
		return entry.form, applyPreselection(entry.form, preselect)
	}

	if len(r.entries) >= r.maxForms {
		r.expireLocked(time.Now())
		if len(r.entries) >= r.maxForms {
			r.logger.Warn("form instance limit reached", "instances", len(r.entries))
			return nil, domain.RateLimit(op)
		}
	}

	d, err := r.newDispatcher()
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create form")
	}
	form, perr := NewForm(d, preselect)
	r.entries[key] = &registryEntry{form: form, lastSeen: time.Now()}
	r.logger.Debug("form instance created", "instances", len(r.entries))
	return form, perr
}

// Find is Get without creation: found is false when key has no form.
func (r *Registry) Find(key, preselect string) (form *Form, found bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[key]
	if !ok {
		return nil, false, nil
	}
	entry.lastSeen = time.Now()
	return entry.form, true, applyPreselection(entry.form, preselect)
}

func applyPreselection(f *Form, preselect string) error {
	if preselect == "" {
		return nil
	}
	last, lastErr := f.Preselection()
	switch {
	case preselect == last:
		return lastErr
	case f.Sending():
		return nil
	default:
		return f.Reset(preselect)
	}
}

// Len returns the number of live form instances.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Close stops the expiry loop.
func (r *Registry) Close() {
	r.once.Do(func() { close(r.done) })
}

func (r *Registry) cleanup() {
	ticker := time.NewTicker(r.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case now := <-ticker.C:
			r.expire(now)
		}
	}
}

// expire removes idle forms, never one that is still sending.
func (r *Registry) expire(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expireLocked(now)
}

func (r *Registry) expireLocked(now time.Time) {
	for key, entry := range r.entries {
		if now.Sub(entry.lastSeen) > r.ttl && !entry.form.Sending() {
			delete(r.entries, key)
		}
	}
}
