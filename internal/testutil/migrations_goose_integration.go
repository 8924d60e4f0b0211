//go:build integration

package testutil

import (
	"context"
	"time"

	"github.com/Gunvolt24/cartsync/migrations"
)

// ApplyMigrationsGoose — накатить встроенные миграции тем же goose-провайдером,
// что и сервис при AUTO_MIGRATE.
func ApplyMigrationsGoose(dsn string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := migrations.Up(ctx, dsn)
	if err != nil {
		return err
	}
	tcLogger.Printf("migrations applied count=%d", n)
	return nil
}
