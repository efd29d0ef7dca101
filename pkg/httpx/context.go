package httpx

import "context"

type ctxKey string

// CtxKeyUsername carries the authenticated username through the request
// context once credential verification has passed.
const CtxKeyUsername ctxKey = "username"

// UsernameFromContext returns the authenticated username, or "" when the
// request has not passed authentication.
func UsernameFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUsername).(string); ok {
		return v
	}
	return ""
}

// ContextWithUsername stores the authenticated username in the context.
func ContextWithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, CtxKeyUsername, username)
}
