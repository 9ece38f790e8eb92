package handlers

import (
	"context"
	"net/http"

	"github.com/baechuer/otp-dashboard/internal/audit"
	"github.com/baechuer/otp-dashboard/internal/domain"
	"github.com/baechuer/otp-dashboard/internal/logger"
	"github.com/go-chi/chi/v5"
)

type APIKeyStore interface {
	List(ctx context.Context) ([]domain.APIKey, error)
	Create(ctx context.Context, in domain.APIKeyInput) (*domain.CreatedAPIKey, error)
	Delete(ctx context.Context, id string) error
}

type SMTPLister interface {
	List(ctx context.Context) ([]domain.SMTPConfig, error)
}

type APIKeyHandler struct {
	keys  APIKeyStore
	smtp  SMTPLister
	audit *audit.Logger
}

func NewAPIKeyHandler(keys APIKeyStore, smtp SMTPLister, auditLog *audit.Logger) *APIKeyHandler {
	return &APIKeyHandler{keys: keys, smtp: smtp, audit: auditLog}
}

type APIKeysView struct {
	Keys        []domain.APIKey     `json:"keys"`
	SMTPConfigs []domain.SMTPConfig `json:"smtpConfigs"`
	Degraded    bool                `json:"degraded"`
}

// List returns the keys plus the SMTP configs for the create form's
// selector. A failed SMTP lookup leaves the selector empty.
func (h *APIKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	keys, err := h.keys.List(r.Context())
	if err != nil {
		handleFailure(w, r, err, "Could not load API keys.")
		return
	}

	view := APIKeysView{Keys: keys, SMTPConfigs: []domain.SMTPConfig{}}
	if view.Keys == nil {
		view.Keys = []domain.APIKey{}
	}

	smtp, err := h.smtp.List(r.Context())
	switch {
	case err != nil:
		logger.Ctx(r.Context()).Warn().Err(err).Msg("smtp_lookup_degraded")
		view.Degraded = true
	case smtp != nil:
		view.SMTPConfigs = smtp
	}

	writeJSON(w, http.StatusOK, view)
}

func (h *APIKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.APIKeyInput
	if !decodeValid(w, r, &in) {
		return
	}

	key, err := h.keys.Create(r.Context(), in)
	if err != nil {
		handleFailure(w, r, err, "Could not create the API key.")
		return
	}

	h.audit.APIKeyCreated(r.Context(), currentUserID(r), key.ID)
	writeJSON(w, http.StatusCreated, key)
}

func (h *APIKeyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.keys.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleFailure(w, r, err, "Could not delete the API key.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
