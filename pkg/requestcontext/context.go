// Package requestcontext carries request-scoped values that services need
// without importing net/http: the request id, the pinned request clock, and
// which gate terminal made the call.
//
// Middleware sets them. Service tests set them directly:
//
//	ctx = requestcontext.WithTime(ctx, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
package requestcontext

import (
	"context"
	"time"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	requestTimeKey
	clientKey
)

// Client describes the device behind a request.
type Client struct {
	IP        string
	UserAgent string
	// Terminal is a short label such as "Chrome on Android".
	Terminal string
}

func WithClientMetadata(ctx context.Context, ip, userAgent, terminal string) context.Context {
	return context.WithValue(ctx, clientKey, Client{IP: ip, UserAgent: userAgent, Terminal: terminal})
}

// ClientOf returns the zero Client outside an HTTP request.
func ClientOf(ctx context.Context) Client {
	c, _ := ctx.Value(clientKey).(Client)
	return c
}

func ClientIP(ctx context.Context) string  { return ClientOf(ctx).IP }
func UserAgent(ctx context.Context) string { return ClientOf(ctx).UserAgent }
func Terminal(ctx context.Context) string  { return ClientOf(ctx).Terminal }

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID is empty outside an HTTP request.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithTime pins "now" for everything downstream of ctx.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey, t)
}

// Now returns the pinned request time, or the wall clock when none is set.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey).(time.Time); ok {
		return t
	}
	return time.Now()
}
