package ctxdata

import (
	"context"
)

type traceIDKey struct{}
type cookieHeaderKey struct{}

var (
	traceIDKeyInstance      = traceIDKey{}
	cookieHeaderKeyInstance = cookieHeaderKey{}
)

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKeyInstance, traceID)
}

func GetTraceID(ctx context.Context) (string, bool) {
	v := ctx.Value(traceIDKeyInstance)
	traceID, ok := v.(string)
	return traceID, ok
}

// WithCookieHeader stores the raw Cookie header of the inbound request so that
// outgoing API calls made on its behalf carry the same credentials.
func WithCookieHeader(ctx context.Context, header string) context.Context {
	return context.WithValue(ctx, cookieHeaderKeyInstance, header)
}

func GetCookieHeader(ctx context.Context) (string, bool) {
	v := ctx.Value(cookieHeaderKeyInstance)
	header, ok := v.(string)
	return header, ok && header != ""
}
