package session

import "context"

type contextKey struct{}

// WithSession returns a context carrying the capability bundle.
func WithSession(ctx context.Context, a Actions) context.Context {
	return context.WithValue(ctx, contextKey{}, a)
}

// FromContext returns the bundle stored by WithSession.
func FromContext(ctx context.Context) (Actions, bool) {
	a, ok := ctx.Value(contextKey{}).(Actions)
	return a, ok && a != nil
}
