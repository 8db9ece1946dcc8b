// Package handler contains HTTP handlers for the cowork website.
//
// This file implements the request-a-call-back page and its JSON API.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/DukeRupert/cowork/internal/csrf"
	"github.com/DukeRupert/cowork/internal/domain"
	"github.com/DukeRupert/cowork/internal/lead"
	"github.com/DukeRupert/cowork/internal/middleware"
	"github.com/DukeRupert/cowork/internal/templ/pages/contact"
	"github.com/DukeRupert/cowork/internal/templ/shared"
)

// maxCallbackBody bounds JSON request bodies on the callback API.
const maxCallbackBody = 64 << 10

// inFlightMessage is shown when a second submission arrives while the first
// is still being sent.
const inFlightMessage = "Your request is already being sent. Please wait."

// =============================================================================
// Handler Configuration
// =============================================================================

// ContactHandler serves the call back form. Every browser gets its own form
// instance, keyed by its CSRF token, so single-flight is enforced per
// browser rather than globally.
type ContactHandler struct {
	forms       *lead.Registry
	logger      *slog.Logger
	isSecure    bool
	whatsAppURL string
}

// NewContactHandler creates a new ContactHandler. whatsAppURL may be empty
// to omit the floating chat link.
func NewContactHandler(forms *lead.Registry, logger *slog.Logger, isSecure bool, whatsAppURL string) *ContactHandler {
	return &ContactHandler{
		forms:       forms,
		logger:      logger,
		isSecure:    isSecure,
		whatsAppURL: whatsAppURL,
	}
}

// =============================================================================
// Route Registration
// =============================================================================

// RegisterRoutes registers the contact routes with the provided mux.
// limit wraps the routes that send email.
//
// Routes:
// - GET  /contact        -> Show
// - POST /contact        -> Submit
// - POST /api/callback   -> SubmitJSON
// - GET  /api/workspaces -> Workspaces
func (h *ContactHandler) RegisterRoutes(mux *http.ServeMux, limit func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /contact", h.Show)
	mux.Handle("POST /contact", limit(http.HandlerFunc(h.Submit)))
	mux.Handle("POST /api/callback", limit(http.HandlerFunc(h.SubmitJSON)))
	mux.HandleFunc("GET /api/workspaces", h.Workspaces)
}

// =============================================================================
// GET /contact - Show Form
// =============================================================================

// Show renders the call back form. The optional ?workspace= query
// preselects a workspace; an unknown value is reported on the field and
// leaves the selection empty.
//
// A browser's form instance is created by its first POST. Until then the
// page renders the defaults without registering anything.
func (h *ContactHandler) Show(w http.ResponseWriter, r *http.Request) {
	token := csrf.EnsureToken(w, r, h.isSecure)
	preselect := r.URL.Query().Get("workspace")

	var (
		values  lead.Values
		sending bool
	)
	form, found, err := h.forms.Find(token, preselect)
	if found {
		values, sending = form.Values(), form.Sending()
	} else {
		values, err = lead.DefaultValues(preselect)
	}

	var ve *domain.ValidationError
	switch {
	case err == nil:
	case errors.As(err, &ve):
		h.logger.Info("rejected workspace preselection", "workspace", preselect)
	default:
		InternalErrorResponse(w, r, h.logger, err)
		return
	}

	data := h.pageData(token, values, sending)
	if ve != nil {
		data.Errors = ve.Fields
	}
	h.render(w, r, data)
}

// =============================================================================
// POST /contact - Submit Form
// =============================================================================

// Submit validates and dispatches an HTML form submission and re-renders
// the form with the entered values and the outcome.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.contact.submit", "Invalid form data"))
		return
	}

	if !csrf.ValidateRequest(r) {
		h.logger.Warn("csrf validation failed", "path", r.URL.Path)
		http.Error(w, "Invalid or expired form. Please reload the page and try again.", http.StatusForbidden)
		return
	}
	token := csrf.GetTokenFromRequest(r)

	form, err := h.forms.Get(token, "")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	raw := lead.Values{
		Name:          r.FormValue(lead.FieldName),
		CompanyName:   r.FormValue(lead.FieldCompanyName),
		Email:         r.FormValue(lead.FieldEmail),
		Phone:         r.FormValue(lead.FieldPhone),
		WorkspaceType: r.FormValue(lead.FieldWorkspaceType),
		Message:       r.FormValue(lead.FieldMessage),
	}

	n, err := form.Submit(r.Context(), raw)

	data := h.pageData(token, form.Values(), form.Sending())

	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		data.Errors = ve.Fields
	case domain.ErrorCode(err) == domain.ECONFLICT:
		data.Flash = &shared.Flash{Type: shared.FlashWarning, Message: inFlightMessage}
		data.Sending = true
	case !n.IsZero():
		data.Flash = notificationFlash(n)
	case err != nil:
		InternalErrorResponse(w, r, h.logger, err)
		return
	}

	h.render(w, r, data)
}

// =============================================================================
// POST /api/callback - Submit JSON
// =============================================================================

// CallbackResponse is the body of a callback API response.
type CallbackResponse struct {
	Notification *lead.Notification `json:"notification,omitempty"`
	Error        *APIError          `json:"error,omitempty"`
}

// APIError is the error member of a CallbackResponse.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SubmitJSON validates and dispatches a JSON submission.
//
// Responses:
//   - 200 with the success notification
//   - 400 with field errors
//   - 409 while another submission from the same client is sending
//   - 429 when no form instance can be created for the client
//   - 502 with the error notification when the email service rejects it
func (h *ContactHandler) SubmitJSON(w http.ResponseWriter, r *http.Request) {
	const op = "handler.contact.submit_json"

	var raw lead.Values
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCallbackBody)).Decode(&raw); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "Request body must be a JSON object"))
		return
	}

	form, err := h.forms.Get(apiFormKey(r), "")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	n, err := form.Submit(r.Context(), raw)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			ValidationErrorResponse(w, r, h.logger, err)
			return
		}
		if domain.ErrorCode(err) != domain.EDISPATCH {
			ErrorResponse(w, r, h.logger, err)
			return
		}

		logError(h.logger, r, err, domain.EDISPATCH, domain.ErrorOp(err), http.StatusBadGateway)
		writeJSON(w, http.StatusBadGateway, CallbackResponse{
			Notification: &n,
			Error:        &APIError{Code: domain.EDISPATCH, Message: n.Message},
		})
		return
	}

	writeJSON(w, http.StatusOK, CallbackResponse{Notification: &n})
}

// apiFormKey identifies the form instance of an API client: its CSRF cookie
// when it has one, otherwise its IP address.
func apiFormKey(r *http.Request) string {
	if token := csrf.GetTokenFromRequest(r); token != "" {
		return "api:" + token
	}
	return "api:ip:" + middleware.ClientIP(r)
}

// =============================================================================
// GET /api/workspaces - List Workspaces
// =============================================================================

// WorkspaceOption is one workspace in the API listing.
type WorkspaceOption struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Workspaces lists the workspace keys accepted by the callback API.
func (h *ContactHandler) Workspaces(w http.ResponseWriter, r *http.Request) {
	types := domain.WorkspaceTypes()
	out := make([]WorkspaceOption, 0, len(types))
	for _, ws := range types {
		out = append(out, WorkspaceOption{Key: ws.String(), Label: ws.Label()})
	}
	writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// Helpers
// =============================================================================

func (h *ContactHandler) pageData(token string, v lead.Values, sending bool) contact.CallbackPageData {
	return contact.CallbackPageData{
		Form: contact.FormData{
			Name:          v.Name,
			CompanyName:   v.CompanyName,
			Email:         v.Email,
			Phone:         v.Phone,
			WorkspaceType: v.WorkspaceType,
			Message:       v.Message,
		},
		Errors:      make(map[string]string),
		CSRFToken:   token,
		Workspaces:  workspaceOptions(),
		Sending:     sending,
		WhatsAppURL: h.whatsAppURL,
	}
}

func (h *ContactHandler) render(w http.ResponseWriter, r *http.Request, data contact.CallbackPageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := contact.CallbackPage(data).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render contact page", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func workspaceOptions() []contact.WorkspaceOption {
	types := domain.WorkspaceTypes()
	opts := make([]contact.WorkspaceOption, 0, len(types))
	for _, ws := range types {
		opts = append(opts, contact.WorkspaceOption{Value: ws.String(), Label: ws.Label()})
	}
	return opts
}

// notificationFlash converts a submission notification to a page flash.
func notificationFlash(n lead.Notification) *shared.Flash {
	flashType := shared.FlashInfo
	switch n.Kind {
	case lead.NotificationSuccess:
		flashType = shared.FlashSuccess
	case lead.NotificationError:
		flashType = shared.FlashError
	}
	return &shared.Flash{
		Type:    flashType,
		Title:   n.Title,
		Message: n.Message,
	}
}
