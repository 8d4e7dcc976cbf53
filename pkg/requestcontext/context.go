// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Middleware sets them; services read them without
// importing net/http.
package requestcontext

import (
	"context"
	"time"

	"xs2gate/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	requestIDKey   struct{}
	tppIDKey       struct{}
	requestTimeKey struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyTppID       = tppIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// TppID retrieves the calling TPP's authorisation number from the context.
// Returns the zero value when the request carried no TPP certificate data.
func TppID(ctx context.Context) domain.TppID {
	if tppID, ok := ctx.Value(ContextKeyTppID).(domain.TppID); ok {
		return tppID
	}
	return ""
}

// WithTppID injects the calling TPP's identifier into the context.
func WithTppID(ctx context.Context, tppID domain.TppID) context.Context {
	return context.WithValue(ctx, ContextKeyTppID, tppID)
}

// Now retrieves the request-scoped time from context. Falls back to
// time.Now() for non-HTTP contexts (workers, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
