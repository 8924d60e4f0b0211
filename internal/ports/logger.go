package ports

import "context"

// Logger — логгер слоёв приложения. Метаданные запроса (request_id, user_id, trace_id)
// реализация берёт из ctx сама, поэтому в формат их не передают.
type Logger interface {
	Infof(ctx context.Context, format string, args ...any)
	Warnf(ctx context.Context, format string, args ...any)
	Errorf(ctx context.Context, format string, args ...any)
}
