package engine

import "context"

// RequestIDHeader is forwarded on every engine call.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// WithRequestID attaches a console request ID to ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request ID carried by ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
