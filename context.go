package otpauth

import "context"

type contextKey int

const (
	clientIPKey contextKey = iota
	requestIDKey
)

// WithClientIP attaches the caller's IP address to ctx. The Engine adds it
// to rate-limit and failure logs.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// WithRequestID attaches a transport request ID that engine logs carry as
// request_id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the ID set by WithRequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

func clientIPFromContext(ctx context.Context) string {
	return stringValue(ctx, clientIPKey)
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}
