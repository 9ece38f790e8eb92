package handlers

import (
	"context"
	"net/http"

	"github.com/baechuer/otp-dashboard/internal/audit"
	"github.com/baechuer/otp-dashboard/internal/domain"
	"github.com/go-chi/chi/v5"
)

type AdminBackend interface {
	Stats(ctx context.Context) (*domain.AdminStats, error)
	ListPlans(ctx context.Context) ([]domain.Plan, error)
	CreatePlan(ctx context.Context, in domain.PlanInput) (*domain.Plan, error)
	UpdatePlan(ctx context.Context, id string, in domain.PlanInput) (*domain.Plan, error)
	DeletePlan(ctx context.Context, id string) error
	AssignDefaultPlans(ctx context.Context) (*domain.MessageResponse, error)
}

type AdminHandler struct {
	admin AdminBackend
	audit *audit.Logger
}

func NewAdminHandler(admin AdminBackend, auditLog *audit.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, audit: auditLog}
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.Stats(r.Context())
	if err != nil {
		handleFailure(w, r, err, "Could not load platform statistics.")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.admin.ListPlans(r.Context())
	if err != nil {
		handleFailure(w, r, err, "Could not load plans.")
		return
	}
	if plans == nil {
		plans = []domain.Plan{}
	}
	writeJSON(w, http.StatusOK, plans)
}

func (h *AdminHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var in domain.PlanInput
	if !decodeValid(w, r, &in) {
		return
	}

	plan, err := h.admin.CreatePlan(r.Context(), in)
	if err != nil {
		handleFailure(w, r, err, "Could not create the plan.")
		return
	}

	h.audit.AdminPlansChanged(r.Context(), currentUserID(r), "create", plan.ID)
	writeJSON(w, http.StatusCreated, plan)
}

func (h *AdminHandler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	var in domain.PlanInput
	if !decodeValid(w, r, &in) {
		return
	}

	id := chi.URLParam(r, "id")
	plan, err := h.admin.UpdatePlan(r.Context(), id, in)
	if err != nil {
		handleFailure(w, r, err, "Could not update the plan.")
		return
	}

	h.audit.AdminPlansChanged(r.Context(), currentUserID(r), "update", id)
	writeJSON(w, http.StatusOK, plan)
}

func (h *AdminHandler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.admin.DeletePlan(r.Context(), id); err != nil {
		handleFailure(w, r, err, "Could not delete the plan.")
		return
	}

	h.audit.AdminPlansChanged(r.Context(), currentUserID(r), "delete", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) AssignDefaultPlans(w http.ResponseWriter, r *http.Request) {
	resp, err := h.admin.AssignDefaultPlans(r.Context())
	if err != nil {
		handleFailure(w, r, err, "Could not assign default plans.")
		return
	}

	h.audit.AdminPlansChanged(r.Context(), currentUserID(r), "assign_defaults", "")
	writeJSON(w, http.StatusOK, resp)
}
