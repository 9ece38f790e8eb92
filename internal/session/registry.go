package session

import (
	"context"
	"sync"
	"time"

	"github.com/baechuer/otp-dashboard/internal/logger"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "dashboard_sessions_active",
	Help: "Session managers held in memory by this process",
})

// Registry hands out one Manager per session id for the life of the process.
type Registry struct {
	store   Store
	backend Backend
	idle    time.Duration

	mu       sync.Mutex
	managers map[string]*Manager
}

func NewRegistry(store Store, backend Backend, idle time.Duration) *Registry {
	return &Registry{
		store:    store,
		backend:  backend,
		idle:     idle,
		managers: make(map[string]*Manager),
	}
}

// Get returns the manager for sid, restoring it from the store the first
// time the id is seen and reconciling it with the store afterwards.
func (r *Registry) Get(ctx context.Context, sid string) *Manager {
	r.mu.Lock()
	m, ok := r.managers[sid]
	if !ok {
		m = NewManager(sid, r.store, r.backend)
		r.managers[sid] = m
		activeSessions.Set(float64(len(r.managers)))
	}
	r.mu.Unlock()

	m.Initialize(ctx)
	if ok {
		m.refresh(ctx)
	}
	m.Touch()
	return m
}

// Known reports whether sid was issued by this process or has a record in
// the store. A store error counts as known so an outage does not replace
// every cookie.
func (r *Registry) Known(ctx context.Context, sid string) bool {
	r.mu.Lock()
	_, ok := r.managers[sid]
	r.mu.Unlock()
	if ok {
		return true
	}

	rec, err := r.store.Load(ctx, sid)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("sid", sid).Msg("session_lookup_failed")
		return true
	}
	return !rec.Empty()
}

// Renew moves old to a freshly generated id and signs out the old id, so an
// id known before login is worthless after it.
func (r *Registry) Renew(ctx context.Context, old *Manager) (*Manager, error) {
	next := NewManager(uuid.NewString(), r.store, r.backend)
	if err := old.handOff(ctx, next); err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.managers[old.id] == old {
		delete(r.managers, old.id)
	}
	r.managers[next.id] = next
	activeSessions.Set(float64(len(r.managers)))
	r.mu.Unlock()

	return next, nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.managers)
}

// Sweep drops managers idle for longer than the configured duration. Their
// state stays in the store and is restored on the next request.
func (r *Registry) Sweep(now time.Time) int {
	if r.idle <= 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for sid, m := range r.managers {
		if m.idleSince(now) > r.idle && !m.busy() {
			delete(r.managers, sid)
			evicted++
		}
	}
	activeSessions.Set(float64(len(r.managers)))
	return evicted
}

// Run sweeps on every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := r.Sweep(now); n > 0 {
				logger.Log.Debug().Int("evicted", n).Msg("session_sweep")
			}
		}
	}
}
