package common

import (
	"context"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRequestID contextKey = "request_id"
	ContextKeyFuneralID contextKey = "funeral_id"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestIDFromContext extracts the request ID from context
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// WithFuneralID adds a funeral ID to the context
func WithFuneralID(ctx context.Context, funeralID string) context.Context {
	return context.WithValue(ctx, ContextKeyFuneralID, funeralID)
}

// FuneralIDFromContext extracts the funeral ID from context
func FuneralIDFromContext(ctx context.Context) string {
	if funeralID, ok := ctx.Value(ContextKeyFuneralID).(string); ok {
		return funeralID
	}
	return ""
}
