package reqctx

import "context"

type ctxKey string

const (
	keyRID ctxKey = "murmur_rid"
	keyUID ctxKey = "murmur_uid"
)

// WithRID stores the request correlation id.
func WithRID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, keyRID, rid)
}

// RID returns the request correlation id if present.
func RID(ctx context.Context) string {
	v, _ := ctx.Value(keyRID).(string)
	return v
}

// WithUID stores the authenticated user id.
func WithUID(ctx context.Context, uid uint64) context.Context {
	return context.WithValue(ctx, keyUID, uid)
}

// UID returns the authenticated user id if present.
func UID(ctx context.Context) uint64 {
	v, _ := ctx.Value(keyUID).(uint64)
	return v
}
