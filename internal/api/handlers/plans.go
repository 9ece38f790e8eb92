package handlers

import (
	"context"
	"net/http"

	"github.com/baechuer/otp-dashboard/internal/audit"
	"github.com/baechuer/otp-dashboard/internal/domain"
	"github.com/baechuer/otp-dashboard/internal/logger"
	"github.com/baechuer/otp-dashboard/internal/services"
)

type PlanCatalog interface {
	List(ctx context.Context) ([]domain.Plan, error)
	Current(ctx context.Context) (*domain.Plan, error)
	Usage(ctx context.Context) (*domain.Usage, error)
	Upgrade(ctx context.Context, planID string) (*domain.CheckoutSession, error)
}

type PlanHandler struct {
	plans PlanCatalog
	audit *audit.Logger
}

func NewPlanHandler(plans PlanCatalog, auditLog *audit.Logger) *PlanHandler {
	return &PlanHandler{plans: plans, audit: auditLog}
}

type PlansView struct {
	Plans    []domain.Plan `json:"plans"`
	Current  *domain.Plan  `json:"current"`
	PlanName string        `json:"planName"`
	Usage    *domain.Usage `json:"usage"`
	Degraded bool          `json:"degraded"`
}

// List is the billing screen. The catalog is required; the current plan
// and usage are not.
func (h *PlanHandler) List(w http.ResponseWriter, r *http.Request) {
	plans, err := h.plans.List(r.Context())
	if err != nil {
		handleFailure(w, r, err, "Could not load plans.")
		return
	}

	view := PlansView{Plans: plans}
	if view.Plans == nil {
		view.Plans = []domain.Plan{}
	}

	log := logger.Ctx(r.Context())
	if cur, err := h.plans.Current(r.Context()); err != nil {
		log.Warn().Err(err).Msg("plan_lookup_degraded")
		if m := sessionOf(r); m != nil {
			view.Current = m.Plan()
		}
		view.Degraded = true
	} else {
		view.Current = cur
	}
	view.PlanName = domain.PlanName(view.Current)

	if usage, err := h.plans.Usage(r.Context()); err != nil {
		log.Warn().Err(err).Msg("usage_lookup_degraded")
		view.Degraded = true
	} else {
		view.Usage = usage
	}

	writeJSON(w, http.StatusOK, view)
}

func (h *PlanHandler) Upgrade(w http.ResponseWriter, r *http.Request) {
	var req services.UpgradeRequest
	if !decodeValid(w, r, &req) {
		return
	}

	checkout, err := h.plans.Upgrade(r.Context(), req.PlanID)
	if err != nil {
		handleFailure(w, r, err, "Could not start the upgrade.")
		return
	}

	h.audit.PlanUpgradeRequested(r.Context(), currentUserID(r), req.PlanID)
	writeJSON(w, http.StatusOK, checkout)
}
