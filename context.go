package courseauth

import "context"

type contextKey int

const (
	userContextKey contextKey = iota
	clientIPContextKey
)

// WithUser attaches an authenticated identity to the context. The
// middleware package does this on every successful guard; flows and
// handlers read it back with [UserFromContext].
func WithUser(ctx context.Context, user PublicUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the identity attached by [WithUser], if any.
func UserFromContext(ctx context.Context) (PublicUser, bool) {
	u, ok := ctx.Value(userContextKey).(PublicUser)
	return u, ok
}

// WithClientIP records the caller's address for audit events.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey, ip)
}

// ClientIPFromContext returns the address recorded by [WithClientIP].
func ClientIPFromContext(ctx context.Context) (string, bool) {
	ip, ok := ctx.Value(clientIPContextKey).(string)
	return ip, ok
}
