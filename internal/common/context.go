package common

import (
	"context"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRequestID contextKey = "request_id"
	ContextKeyQuery     contextKey = "query"
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

// WithQuery records the trade name being processed, for log correlation.
func WithQuery(ctx context.Context, query string) context.Context {
	return context.WithValue(ctx, ContextKeyQuery, query)
}

// QueryFromContext extracts the trade name from context
func QueryFromContext(ctx context.Context) string {
	if q, ok := ctx.Value(ContextKeyQuery).(string); ok {
		return q
	}
	return ""
}

// LogAttrs returns the request id and query carried by ctx as slog key/value
// pairs. Unset values are omitted.
func LogAttrs(ctx context.Context) []any {
	var attrs []any
	if id := RequestIDFromContext(ctx); id != "" {
		attrs = append(attrs, "request_id", id)
	}
	if q := QueryFromContext(ctx); q != "" {
		attrs = append(attrs, "query", q)
	}
	return attrs
}
