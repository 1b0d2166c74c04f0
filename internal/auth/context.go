// ABOUTME: Request-scoped principal binding for tracking identity through handlers
// ABOUTME: Provides WithPrincipal/FromContext for propagating auth info via context

package auth

import (
	"context"
)

// principalKey is the key type for storing a Principal in context.Context.
type principalKey struct{}

// WithPrincipal returns a new context with the authenticated principal
// attached. The binding lives only as long as the request context; it is
// never shared across requests.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext retrieves the Principal from the context, returning nil if
// the request was not authenticated.
func FromContext(ctx context.Context) Principal {
	val := ctx.Value(principalKey{})
	if val == nil {
		return nil
	}
	p, ok := val.(Principal)
	if !ok {
		return nil
	}
	return p
}

// MustFromContext retrieves the Principal from the context, panicking if not
// present. Only for handlers that run strictly behind the auth middleware.
func MustFromContext(ctx context.Context) Principal {
	p := FromContext(ctx)
	if p == nil {
		panic("auth: Principal not found in context")
	}
	return p
}

// UserFromContext returns the bound user principal, or false when the
// request was unauthenticated or authenticated as a system.
func UserFromContext(ctx context.Context) (UserPrincipal, bool) {
	p, ok := FromContext(ctx).(UserPrincipal)
	return p, ok
}

// SystemFromContext returns the bound system principal, or false when the
// request was unauthenticated or authenticated as a user.
func SystemFromContext(ctx context.Context) (SystemPrincipal, bool) {
	p, ok := FromContext(ctx).(SystemPrincipal)
	return p, ok
}
