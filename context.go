package paywall

import "context"

type callerKey struct{}

// WithCaller returns a context carrying the authenticated principal for
// subsequent engine calls. Every mutating engine call compares this
// principal against the stored owner, creator, or admin of the records
// it touches.
func WithCaller(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, callerKey{}, principal)
}

// CallerFromContext extracts the authenticated principal from the
// context, or "" when none is set.
func CallerFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(callerKey{}).(string); ok {
		return v
	}
	return ""
}
