package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/pet-community/internal/app/web"
	platformobservability "github.com/Apurer/pet-community/internal/platform/observability"
	accountactivities "github.com/Apurer/pet-community/internal/platform/temporal/activities/accounts"
	accountworkflows "github.com/Apurer/pet-community/internal/platform/temporal/workflows/accounts"
)

func main() {
	ctx := context.Background()
	const serviceName = "pet-community-worker"
	cfg, err := web.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	stores, err := web.OpenStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open record stores", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer stores.Close()
	if stores.Backend != web.BackendPostgres {
		logger.Warn("worker is running on flat-file tables; deletions only reach a web process sharing the same app root")
	}
	photos, err := web.OpenPhotos(cfg, logger)
	if err != nil {
		logger.Error("failed to prepare uploads", slog.String("error", err.Error()))
		os.Exit(1)
	}
	services := web.NewServices(cfg, stores, photos, instruments)
	activities := accountactivities.NewActivities(services.Deletion)

	temporalClient, err := web.DialTemporal(cfg.Temporal, instruments, "temporal-worker")
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, accountworkflows.AccountDeletionTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(accountworkflows.AccountDeletionWorkflow, workflow.RegisterOptions{Name: accountworkflows.AccountDeletionWorkflowName})
	w.RegisterActivityWithOptions(activities.DeleteUser, activity.RegisterOptions{Name: accountactivities.DeleteUserActivityName})
	w.RegisterActivityWithOptions(activities.DeletePets, activity.RegisterOptions{Name: accountactivities.DeletePetsActivityName})
	w.RegisterActivityWithOptions(activities.RemovePhotos, activity.RegisterOptions{Name: accountactivities.RemovePhotosActivityName})

	logger.Info("worker listening", slog.String("taskQueue", accountworkflows.AccountDeletionTaskQueue), slog.String("namespace", cfg.Temporal.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
