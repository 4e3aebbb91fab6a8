package requestctx

import "context"

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	subjectKey   ctxKey = "subject"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	if value, ok := ctx.Value(requestIDKey).(string); ok {
		return value
	}
	return ""
}

// WithSubject records the authenticated token subject.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey, subject)
}

func GetSubject(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(subjectKey).(string)
	return value, ok && value != ""
}
