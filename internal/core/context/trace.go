package context

import (
	"context"

	"stockgrid/internal/core/id"
)

// TraceContext carries per-request correlation identifiers. TraceID
// spans a whole call chain, RequestID identifies one HTTP request, and
// SpanID one unit of work inside it.
type TraceContext struct {
	TraceID   string
	SpanID    string
	RequestID string
}

type traceContextKey struct{}

// WithTrace attaches trace identifiers to the context.
func WithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, trace)
}

// GetTrace returns the TraceContext from context, or nil.
func GetTrace(ctx context.Context) *TraceContext {
	if v, ok := ctx.Value(traceContextKey{}).(*TraceContext); ok {
		return v
	}
	return nil
}

// GetTraceID returns the trace ID, generating one for untraced contexts
// so background jobs still get correlated log lines.
func GetTraceID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil && t.TraceID != "" {
		return t.TraceID
	}
	return id.New().String()
}

// GetRequestID returns the request ID from context or empty string.
func GetRequestID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.RequestID
	}
	return ""
}

// NewTraceContext generates a fresh set of identifiers. UUIDv7, same as
// the entity IDs, so trace IDs sort by time in log storage.
func NewTraceContext() *TraceContext {
	return &TraceContext{
		TraceID:   id.New().String(),
		SpanID:    id.New().String()[:16],
		RequestID: id.New().String(),
	}
}
