package handler

import (
	"net/http"

	"github.com/DukeRupert/cowork/internal/whatsapp"
)

// WhatsAppHandler redirects visitors to a prefilled WhatsApp chat.
type WhatsAppHandler struct {
	url string
}

// NewWhatsAppHandler creates a handler for the given phone and message.
func NewWhatsAppHandler(phone, message string) *WhatsAppHandler {
	return &WhatsAppHandler{url: whatsapp.Link(phone, message)}
}

// URL returns the deep link the handler redirects to.
func (h *WhatsAppHandler) URL() string {
	return h.url
}

// RegisterRoutes registers GET /whatsapp.
func (h *WhatsAppHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /whatsapp", h.Redirect)
}

// Redirect sends the visitor to the chat link.
func (h *WhatsAppHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.url, http.StatusFound)
}
