package web

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	communityserver "github.com/Apurer/pet-community/go"
	accountworkflows "github.com/Apurer/pet-community/internal/domains/accounts/adapters/workflows"
	accountports "github.com/Apurer/pet-community/internal/domains/accounts/ports"
	platformobservability "github.com/Apurer/pet-community/internal/platform/observability"
)

const ServiceName = "pet-community-web"

// Run boots the community web application with observability, record
// stores, and account deletion workflows wired.
func Run(ctx context.Context, cfg Config) error {
	instruments, shutdown, err := platformobservability.Init(ctx, ServiceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	stores, err := OpenStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stores.Close()
	photos, err := OpenPhotos(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to prepare uploads: %w", err)
	}
	services := NewServices(cfg, stores, photos, instruments)

	var deletions accountports.DeletionOrchestrator = accountworkflows.NewInlineDeletionWorkflows(services.Deletion)
	if temporalClient, err := DialTemporal(cfg.Temporal, instruments, "temporal-client"); err != nil {
		logger.Warn("Temporal workflows unavailable, deleting accounts inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		deletions = accountworkflows.NewTemporalDeletionWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.Temporal.Namespace))
	}

	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), otelgin.Middleware(ServiceName))
	router, err := communityserver.NewRouterWithGinEngine(engine, communityserver.Services{
		Users:      services.Users,
		Onboarding: services.Onboarding,
		Pets:       services.Pets,
		Accounts:   services.Accounts(deletions),
		Photos:     photos,
	}, communityserver.Options{
		SessionTTL:   cfg.SessionTTL(),
		CookieSecure: cfg.CookieSecure,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	addr := cfg.Addr()
	logger.Info("community web listening", slog.String("addr", addr), slog.String("backend", stores.Backend))
	if err := router.Run(addr); err != nil {
		logger.Error("community web server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}
