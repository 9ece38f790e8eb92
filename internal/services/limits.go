package services

import (
	"net/http"
	"strings"

	"github.com/baechuer/otp-dashboard/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resource names a plan-limited resource.
type Resource string

const (
	ResourceAPIKeys   Resource = "apikeys"
	ResourceTemplates Resource = "templates"
	ResourceSMTP      Resource = "smtp"
)

var planLimitErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "dashboard_plan_limit_errors_total",
		Help: "Create requests rejected by the backend for exceeding the plan",
	},
	[]string{"resource"},
)

// noun is how the upgrade hint refers to the resource.
func (r Resource) noun() string {
	switch r {
	case ResourceAPIKeys:
		return "keys"
	case ResourceTemplates:
		return "templates"
	case ResourceSMTP:
		return "SMTP configurations"
	default:
		return string(r)
	}
}

// NormalizeLimit rewrites a plan-limit rejection into an upgrade hint.
// Anything else comes back unchanged.
func NormalizeLimit(resource Resource, err error) error {
	f, ok := domain.AsFailure(err)
	if !ok || f.Status != http.StatusBadRequest {
		return err
	}
	if !strings.Contains(strings.ToLower(f.Message), "limit") {
		return err
	}

	planLimitErrors.WithLabelValues(string(resource)).Inc()

	msg := strings.TrimRight(strings.TrimSpace(f.Message), ".")
	return &domain.Failure{
		Kind:    domain.KindPlanLimit,
		Status:  f.Status,
		Message: msg + ". Upgrade your plan to create more " + resource.noun() + ".",
		Err:     f.Err,
	}
}
