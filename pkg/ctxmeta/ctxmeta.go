// Пакет ctxmeta — метаданные запроса в context.Context (request_id, user_id, trace_id).
// HTTP-слой кладёт их в контекст, логгер достаёт; друг от друга они не зависят.
package ctxmeta

import "context"

type ctxKey string

const (
	// Ключи контекста (неэкспортируемый тип — чтобы избежать коллизий).
	KeyRequestID ctxKey = "request_id"
	KeyUserID    ctxKey = "user_id"
)

// WithRequestID кладёт request_id в контекст (если пусто — ничего не делает).
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withValue(ctx, KeyRequestID, requestID)
}

// RequestIDFromContext достаёт request_id из контекста.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return value(ctx, KeyRequestID)
}

// WithUserID кладёт идентификатор владельца корзины.
func WithUserID(ctx context.Context, userID string) context.Context {
	return withValue(ctx, KeyUserID, userID)
}

// UserIDFromContext достаёт user_id из контекста.
func UserIDFromContext(ctx context.Context) (string, bool) {
	return value(ctx, KeyUserID)
}

func withValue(ctx context.Context, key ctxKey, v string) context.Context {
	if ctx == nil || v == "" {
		return ctx
	}
	return context.WithValue(ctx, key, v)
}

func value(ctx context.Context, key ctxKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
