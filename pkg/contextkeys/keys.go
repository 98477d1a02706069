// Package contextkeys centralizes the context keys shared across the HTTP
// layer and the plugin runtime, with typed accessors so callers never touch
// context.Value directly.
package contextkeys

import "context"

// Key is a private key type so values set here cannot collide with other
// packages
type Key string

const (
	// RequestIDKey carries the per-request correlation ID set by the HTTP
	// middleware
	RequestIDKey Key = "request_id"

	// IdentityKey carries the caller identity used for scope checks
	IdentityKey Key = "identity"
)

// WithRequestID attaches a request correlation ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// RequestID returns the request correlation ID, or "" when unset
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithIdentity attaches the caller identity to the context
func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

// Identity returns the caller identity, or "" when unset
func Identity(ctx context.Context) string {
	if id, ok := ctx.Value(IdentityKey).(string); ok {
		return id
	}
	return ""
}
