package handlers

import (
	"context"
	"net/http"

	"github.com/baechuer/otp-dashboard/internal/domain"
	"github.com/baechuer/otp-dashboard/internal/preview"
	"github.com/go-chi/chi/v5"
)

type TemplateStore interface {
	List(ctx context.Context) ([]domain.Template, error)
	Get(ctx context.Context, id string) (*domain.Template, error)
	Create(ctx context.Context, in domain.TemplateInput) (*domain.Template, error)
	Update(ctx context.Context, id string, in domain.TemplateInput) (*domain.Template, error)
	Delete(ctx context.Context, id string) error
}

type TemplateHandler struct {
	templates TemplateStore
	renderer  *preview.Renderer
}

func NewTemplateHandler(templates TemplateStore, renderer *preview.Renderer) *TemplateHandler {
	return &TemplateHandler{templates: templates, renderer: renderer}
}

func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.templates.List(r.Context())
	if err != nil {
		handleFailure(w, r, err, "Could not load templates.")
		return
	}
	if items == nil {
		items = []domain.Template{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.templates.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleFailure(w, r, err, "Could not load the template.")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.TemplateInput
	if !decodeValid(w, r, &in) {
		return
	}

	t, err := h.templates.Create(r.Context(), in)
	if err != nil {
		handleFailure(w, r, err, "Could not create the template.")
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in domain.TemplateInput
	if !decodeValid(w, r, &in) {
		return
	}

	t, err := h.templates.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		handleFailure(w, r, err, "Could not update the template.")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.templates.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleFailure(w, r, err, "Could not delete the template.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type previewRequest struct {
	OTP string `json:"otp" validate:"omitempty,numeric,max=12"`
}

// previewDraft is a template still being edited.
type previewDraft struct {
	domain.TemplateInput
	OTP string `json:"otp" validate:"omitempty,numeric,max=12"`
}

// Preview renders a stored template. The id "draft" renders the template
// sent in the body instead, so the editor can preview before saving.
func (h *TemplateHandler) Preview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if id == "draft" {
		var in previewDraft
		if !decodeValid(w, r, &in) {
			return
		}
		writeJSON(w, http.StatusOK, h.renderer.Render(domain.Template{
			Name:       in.Name,
			Subject:    in.Subject,
			HeaderText: in.HeaderText,
			BodyText:   in.BodyText,
			FooterText: in.FooterText,
			Styles:     in.Styles,
		}, in.OTP))
		return
	}

	var req previewRequest
	if r.ContentLength > 0 && !decodeValid(w, r, &req) {
		return
	}

	t, err := h.templates.Get(r.Context(), id)
	if err != nil {
		handleFailure(w, r, err, "Could not load the template.")
		return
	}
	writeJSON(w, http.StatusOK, h.renderer.Render(*t, req.OTP))
}
