package handlers

import (
	"context"
	"net/http"

	"github.com/baechuer/otp-dashboard/internal/domain"
	"github.com/go-chi/chi/v5"
)

type SMTPStore interface {
	List(ctx context.Context) ([]domain.SMTPConfig, error)
	Create(ctx context.Context, in domain.SMTPInput) (*domain.SMTPConfig, error)
	Update(ctx context.Context, id string, in domain.SMTPUpdate) (*domain.SMTPConfig, error)
	Delete(ctx context.Context, id string) error
}

type SMTPHandler struct {
	smtp SMTPStore
}

func NewSMTPHandler(smtp SMTPStore) *SMTPHandler {
	return &SMTPHandler{smtp: smtp}
}

func (h *SMTPHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.smtp.List(r.Context())
	if err != nil {
		handleFailure(w, r, err, "Could not load SMTP configurations.")
		return
	}
	if items == nil {
		items = []domain.SMTPConfig{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *SMTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.SMTPInput
	if !decodeValid(w, r, &in) {
		return
	}

	cfg, err := h.smtp.Create(r.Context(), in)
	if err != nil {
		handleFailure(w, r, err, "Could not save the SMTP configuration.")
		return
	}
	writeJSON(w, http.StatusCreated, cfg)
}

func (h *SMTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in domain.SMTPUpdate
	if !decodeValid(w, r, &in) {
		return
	}

	cfg, err := h.smtp.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		handleFailure(w, r, err, "Could not update the SMTP configuration.")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *SMTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.smtp.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleFailure(w, r, err, "Could not delete the SMTP configuration.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
