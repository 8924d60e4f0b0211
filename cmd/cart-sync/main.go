package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Gunvolt24/cartsync/config"
	"github.com/Gunvolt24/cartsync/internal/app"
	"github.com/Gunvolt24/cartsync/pkg/logger"
)

// CLI: один прогон синхронизации грязных корзин в Postgres (например, из cron или перед деплоем).
// Код выхода 1 — прогон не состоялся или часть пользователей осталась грязной.
func main() {
	timeout := flag.Duration("timeout", 0, "run deadline, overrides CART_SYNC_RUN_TIMEOUT (0 = from config)")
	concurrency := flag.Int("concurrency", 0, "parallel user transactions, overrides CART_SYNC_CONCURRENCY (0 = from config)")
	flag.Parse()

	_ = godotenv.Load(".env.local")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *timeout > 0 {
		cfg.Sync.RunTimeout = *timeout
	}
	if *concurrency > 0 {
		cfg.Sync.Concurrency = *concurrency
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logg, cleanupLogger, err := logger.NewZapLogger(cfg.Logger.IsProd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = cleanupLogger() }()

	reconciler, cleanup, err := app.NewReconciler(ctx, &cfg, logg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup: %v\n", err)
		os.Exit(1)
	}

	summary, err := reconciler.RunOnce(ctx)
	cleanup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "sync: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "sync done users=%d synced=%d failed=%d took=%s\n",
		summary.Total, len(summary.Synced), len(summary.Failed), summary.Duration.Round(time.Millisecond))
	for _, f := range summary.Failed {
		fmt.Fprintf(os.Stdout, "  failed user=%s: %v\n", f.UserID, f.Err)
	}
	if !summary.OK() {
		os.Exit(1)
	}
}
