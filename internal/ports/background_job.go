package ports

import "context"

// BackgroundJob — фоновая задача приложения; Run блокируется до отмены контекста.
type BackgroundJob interface {
	Run(ctx context.Context) error
}

// MessageConsumer — подписка на внешний поток событий (топик каталога).
// Run блокируется до отмены контекста; Close освобождает соединения и безопасен к повторному вызову.
type MessageConsumer interface {
	BackgroundJob
	Close() error
}
