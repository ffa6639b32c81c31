package prediction

import "context"

type contextKey string

const requestIDKey contextKey = "request_id"

// WithRequestID attaches the caller's request ID so audit entries can be
// correlated with access logs.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func requestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
