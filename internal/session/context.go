package session

import "context"

type managerKey struct{}

func WithManager(ctx context.Context, m *Manager) context.Context {
	return context.WithValue(ctx, managerKey{}, m)
}

// FromContext returns the request's session manager, or nil.
func FromContext(ctx context.Context) *Manager {
	m, _ := ctx.Value(managerKey{}).(*Manager)
	return m
}

type renewerKey struct{}

// Renewer moves the request's session to a new id and returns its manager.
type Renewer func(ctx context.Context) (*Manager, error)

func WithRenewer(ctx context.Context, fn Renewer) context.Context {
	return context.WithValue(ctx, renewerKey{}, fn)
}

// Renew calls the request's Renewer. Without one the current manager is
// returned as is.
func Renew(ctx context.Context) (*Manager, error) {
	fn, _ := ctx.Value(renewerKey{}).(Renewer)
	if fn == nil {
		return FromContext(ctx), nil
	}
	return fn(ctx)
}
