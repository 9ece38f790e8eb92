package apiclient

import "context"

// TokenSource supplies the bearer for outgoing calls. The session manager
// implements it, so a token obtained mid-request is used right away.
type TokenSource interface {
	Token() string
}

type tokenSourceKey struct{}

func WithTokenSource(ctx context.Context, ts TokenSource) context.Context {
	return context.WithValue(ctx, tokenSourceKey{}, ts)
}

func TokenFromContext(ctx context.Context) string {
	ts, ok := ctx.Value(tokenSourceKey{}).(TokenSource)
	if !ok || ts == nil {
		return ""
	}
	return ts.Token()
}

// StaticToken is a fixed bearer, used by readiness checks and tests.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }
