package handlers

import (
	"context"
	"net/http"

	"github.com/baechuer/otp-dashboard/internal/domain"
	"github.com/baechuer/otp-dashboard/internal/logger"
	"github.com/baechuer/otp-dashboard/internal/tracing"
	"golang.org/x/sync/errgroup"
)

type LogReader interface {
	List(ctx context.Context) ([]domain.SendLog, error)
	Recent(ctx context.Context, n int) ([]domain.SendLog, error)
	Stats(ctx context.Context) (*domain.LogStats, error)
	Get(ctx context.Context, id string) (*domain.SendLog, error)
}

type PlanReader interface {
	Current(ctx context.Context) (*domain.Plan, error)
}

// RecentLogCount is how many logs the home view shows.
const RecentLogCount = 5

type DashboardHandler struct {
	logs  LogReader
	plans PlanReader
}

func NewDashboardHandler(logs LogReader, plans PlanReader) *DashboardHandler {
	return &DashboardHandler{logs: logs, plans: plans}
}

type HomeView struct {
	Stats      domain.LogStats     `json:"stats"`
	RecentLogs []domain.SendLog    `json:"recentLogs"`
	PlanName   string              `json:"planName"`
	Plan       *domain.Plan        `json:"plan"`
	Usage      []domain.UsageMeter `json:"usage"`
	Degraded   bool                `json:"degraded"`
}

// Home loads stats and recent logs together. Either failing fails the view;
// the plan is best-effort.
func (h *DashboardHandler) Home(w http.ResponseWriter, r *http.Request) {
	var (
		stats  *domain.LogStats
		recent []domain.SendLog
		plan   *domain.Plan
		planOK bool
	)

	if m := sessionOf(r); m != nil {
		plan = m.Plan()
	}

	ctx, span := tracing.StartSpan(r.Context(), "dashboard.home")
	defer span.End()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = h.logs.Stats(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = h.logs.Recent(ctx, RecentLogCount)
		return err
	})

	// not part of the group: its failure must not cancel the others
	planDone := make(chan struct{})
	if plan != nil {
		planOK = true
		close(planDone)
	} else {
		go func() {
			defer close(planDone)
			p, err := h.plans.Current(r.Context())
			if err != nil {
				logger.Ctx(r.Context()).Warn().Err(err).Msg("plan_lookup_degraded")
				return
			}
			plan, planOK = p, true
		}()
	}

	err := g.Wait()
	<-planDone
	if err != nil {
		handleFailure(w, r, err, "Could not load the dashboard.")
		return
	}

	if recent == nil {
		recent = []domain.SendLog{}
	}
	writeJSON(w, http.StatusOK, HomeView{
		Stats:      *stats,
		RecentLogs: recent,
		PlanName:   domain.PlanName(plan),
		Plan:       plan,
		Usage:      domain.PlanUsage(plan, *stats),
		Degraded:   !planOK,
	})
}
