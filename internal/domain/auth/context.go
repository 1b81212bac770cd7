package auth

import "context"

// sessionKey is an unexported context key type to avoid collisions across packages.
// Centralized here so middleware, handlers, and services use the same key.
type sessionKey struct{}

// WithSession returns a child context that carries the given session.
// If session is nil, the original ctx is returned unchanged.
func WithSession(ctx context.Context, session *Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFromContext returns the session from context and a boolean indicating presence.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	if session, ok := ctx.Value(sessionKey{}).(*Session); ok && session != nil {
		return session, true
	}
	return nil, false
}

// ActorName returns the display name of the session carried by ctx, or ""
// for an anonymous request. Audit rows store this as the client name.
func ActorName(ctx context.Context) string {
	session, ok := SessionFromContext(ctx)
	if !ok {
		return ""
	}
	return session.DisplayName()
}

// ActorSource returns the display name as an event attribution pointer,
// nil for an anonymous request.
func ActorSource(ctx context.Context) *string {
	session, ok := SessionFromContext(ctx)
	if !ok {
		return nil
	}
	name := session.DisplayName()
	return &name
}

// IsGuest reports whether the request context is unauthenticated or carries
// a guest session.
func IsGuest(ctx context.Context) bool {
	session, ok := SessionFromContext(ctx)
	if !ok {
		return true
	}
	return session.IsGuest()
}
