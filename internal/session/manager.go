package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/baechuer/otp-dashboard/internal/apiclient"
	"github.com/baechuer/otp-dashboard/internal/domain"
	"github.com/baechuer/otp-dashboard/internal/logger"
)

var ErrNotAuthenticated = errors.New("session: not authenticated")

type Status int

const (
	StatusLoading Status = iota
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Backend is what a Manager needs from the auth endpoints.
type Backend interface {
	Login(ctx context.Context, email, password string) (*domain.AuthResponse, error)
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.RegisterResponse, error)
	CurrentPlan(ctx context.Context) (*domain.Plan, error)
}

// Snapshot is a consistent read of a session.
type Snapshot struct {
	Status Status       `json:"-"`
	User   *domain.User `json:"user"`
	Plan   *domain.Plan `json:"plan"`
}

// Manager owns one browser session and is its only writer.
//
// opMu serializes Login, Logout and UpdateUser against each other. mu guards
// the fields and is never held across a network call.
type Manager struct {
	id      string
	store   Store
	backend Backend

	initOnce sync.Once
	opMu     sync.Mutex

	mu      sync.RWMutex
	token   string
	user    *domain.User
	pending int

	lastSeen atomic.Int64
}

func NewManager(id string, store Store, backend Backend) *Manager {
	m := &Manager{
		id:      id,
		store:   store,
		backend: backend,
		// loading until Initialize has run
		pending: 1,
	}
	m.Touch()
	return m
}

func (m *Manager) ID() string { return m.id }

// Initialize restores the session from the store. Only the first call does
// anything; later calls return immediately once it has finished.
func (m *Manager) Initialize(ctx context.Context) {
	m.initOnce.Do(func() {
		defer m.end()

		ctx = context.WithoutCancel(ctx)
		rec, err := m.store.Load(ctx, m.id)
		if err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("sid", m.id).Msg("session_load_failed")
			return
		}
		m.apply(ctx, rec)
	})
}

// refresh reloads the record so a logout or login made by another instance
// sharing the store is seen here. It is skipped while this instance has a
// write in flight for the session.
func (m *Manager) refresh(ctx context.Context) {
	if !m.opMu.TryLock() {
		return
	}
	defer m.opMu.Unlock()

	if m.busy() {
		return
	}

	rec, err := m.store.Load(context.WithoutCancel(ctx), m.id)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("sid", m.id).Msg("session_refresh_failed")
		return
	}
	m.apply(ctx, rec)
}

// apply replaces the in-memory state with rec. An empty or malformed record
// leaves the session signed out.
func (m *Manager) apply(ctx context.Context, rec Record) {
	var u *domain.User
	if rec.Token != "" && len(rec.User) > 0 {
		var decoded domain.User
		if err := json.Unmarshal(rec.User, &decoded); err != nil || decoded.ID == "" {
			logger.Ctx(ctx).Warn().Err(err).Str("sid", m.id).Msg("session_user_malformed")
		} else {
			u = &decoded
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if u == nil {
		m.token, m.user = "", nil
		return
	}
	m.token, m.user = rec.Token, u
}

// handOff moves this session's state to next, which must not be shared
// yet, and signs this one out in memory and in the store.
func (m *Manager) handOff(ctx context.Context, next *Manager) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.RLock()
	token, user := m.token, m.user.Clone()
	m.mu.RUnlock()

	// next starts from this state, not from its own empty record
	next.initOnce.Do(next.end)

	if token != "" && user != nil {
		if err := next.persist(ctx, token, user); err != nil {
			return err
		}
		next.mu.Lock()
		next.token, next.user = token, user
		next.mu.Unlock()
	}

	m.mu.Lock()
	m.token, m.user = "", nil
	m.mu.Unlock()

	if err := m.store.Clear(context.WithoutCancel(ctx), m.id); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("sid", m.id).Msg("session_clear_failed")
	}
	return nil
}

// Login authenticates against the backend and establishes the session.
// Backend failures are returned unchanged and leave the session as it was.
func (m *Manager) Login(ctx context.Context, email, password string) (*domain.User, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.begin()
	defer m.end()

	resp, err := m.backend.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if resp.AccessToken == "" || resp.User == nil {
		return nil, &domain.Failure{Kind: domain.KindUpstream, Message: "Login response did not include a session"}
	}

	m.mu.Lock()
	prevToken, prevUser := m.token, m.user
	m.token = resp.AccessToken
	m.user = resp.User.Clone()
	m.mu.Unlock()

	user := resp.User.Clone()
	plan, err := m.backend.CurrentPlan(apiclient.WithTokenSource(ctx, m))
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("user_id", user.ID).Msg("plan_fetch_failed")
	} else {
		user.Plan = plan
	}

	if err := m.persist(ctx, resp.AccessToken, user); err != nil {
		m.mu.Lock()
		m.token, m.user = prevToken, prevUser
		m.mu.Unlock()
		return nil, err
	}

	m.mu.Lock()
	m.user = user
	m.mu.Unlock()

	return user.Clone(), nil
}

// Register creates an account. It never establishes a session.
func (m *Manager) Register(ctx context.Context, req domain.RegisterRequest) (*domain.RegisterResponse, error) {
	m.begin()
	defer m.end()

	return m.backend.Register(ctx, req)
}

// Logout clears the session in memory and in the store. It cannot fail.
func (m *Manager) Logout(ctx context.Context) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.Lock()
	m.token = ""
	m.user = nil
	m.mu.Unlock()

	if err := m.store.Clear(context.WithoutCancel(ctx), m.id); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("sid", m.id).Msg("session_clear_failed")
	}
}

// UpdateUser replaces the session's user and keeps the token. A user
// without a plan keeps the current one.
func (m *Manager) UpdateUser(ctx context.Context, u *domain.User) error {
	if u == nil {
		return errors.New("session: nil user")
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.RLock()
	token, prev := m.token, m.user
	m.mu.RUnlock()

	if token == "" || prev == nil {
		return ErrNotAuthenticated
	}

	next := u.Clone()
	if next.Plan == nil && prev.Plan != nil {
		p := *prev.Plan
		next.Plan = &p
	}

	if err := m.persist(ctx, token, next); err != nil {
		return err
	}

	m.mu.Lock()
	m.user = next
	m.mu.Unlock()
	return nil
}

func (m *Manager) persist(ctx context.Context, token string, u *domain.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	// a browser that went away must not leave memory and store disagreeing
	return m.store.Save(context.WithoutCancel(ctx), m.id, Record{Token: token, User: raw})
}

func (m *Manager) begin() {
	m.mu.Lock()
	m.pending++
	m.mu.Unlock()
}

func (m *Manager) end() {
	m.mu.Lock()
	m.pending--
	m.mu.Unlock()
}

func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.statusLocked()
}

func (m *Manager) statusLocked() Status {
	switch {
	case m.pending > 0:
		return StatusLoading
	case m.token != "" && m.user == nil:
		return StatusLoading
	case m.token != "" && m.user != nil:
		return StatusAuthenticated
	default:
		return StatusUnauthenticated
	}
}

func (m *Manager) IsAuthenticated() bool {
	return m.Status() == StatusAuthenticated
}

// Token implements apiclient.TokenSource.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Manager) User() *domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user.Clone()
}

func (m *Manager) Plan() *domain.Plan {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil || m.user.Plan == nil {
		return nil
	}
	p := *m.user.Plan
	return &p
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Snapshot{Status: m.statusLocked(), User: m.user.Clone()}
	if s.User != nil {
		s.Plan = s.User.Plan
	}
	return s
}

func (m *Manager) Touch() {
	m.lastSeen.Store(time.Now().UnixNano())
}

func (m *Manager) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, m.lastSeen.Load()))
}

func (m *Manager) busy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pending > 0
}
