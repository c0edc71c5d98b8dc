package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/Apurer/pet-community/internal/app/web"
	platformobservability "github.com/Apurer/pet-community/internal/platform/observability"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := web.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, "pet-community-session-purger")
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()
	logger := instruments.Logger

	stores, err := web.OpenStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open record stores", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer stores.Close()
	if stores.Backend != web.BackendPostgres {
		logger.Error("POSTGRES_DSN not set or connection failed; sessions and drafts only persist in postgres")
		os.Exit(1)
	}
	photos, err := web.OpenPhotos(cfg, logger)
	if err != nil {
		logger.Error("failed to prepare uploads", slog.String("error", err.Error()))
		os.Exit(1)
	}
	services := web.NewServices(cfg, stores, photos, instruments)

	sessions, err := services.Users.PurgeExpiredSessions(ctx)
	if err != nil {
		logger.Error("failed to purge sessions", slog.String("error", err.Error()))
		os.Exit(1)
	}
	drafts, err := services.Onboarding.PurgeStale(ctx, cfg.DraftMaxAge())
	if err != nil {
		logger.Error("failed to purge onboarding drafts", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("purge completed", slog.Int64("sessions", sessions), slog.Int64("drafts", drafts))
}
