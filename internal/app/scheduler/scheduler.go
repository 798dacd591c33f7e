// Package scheduler собирает процесс периодических задач.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/magabrotheeeer/lms-platform/internal/config"
	"github.com/magabrotheeeer/lms-platform/internal/lib/sl"
	"github.com/magabrotheeeer/lms-platform/internal/metrics"
	"github.com/magabrotheeeer/lms-platform/internal/paymentprovider"
	paymentservice "github.com/magabrotheeeer/lms-platform/internal/services/payment"
	schedulerservice "github.com/magabrotheeeer/lms-platform/internal/services/scheduler"
	"github.com/magabrotheeeer/lms-platform/internal/storage/repository"
)

// App представляет приложение планировщика.
type App struct {
	schedulerService *schedulerservice.SchedulerService
	db               *repository.Storage
	logger           *slog.Logger
}

// New создает новый экземпляр приложения планировщика.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	m := metrics.New(prometheus.NewRegistry())
	sweeper := paymentservice.New(db, paymentprovider.NewClient(cfg.PaymentGateway), cfg.Currency, logger, m)

	return &App{
		schedulerService: schedulerservice.NewSchedulerService(db, sweeper, cfg.Scheduler, logger),
		db:               db,
		logger:           logger,
	}, nil
}

// Run запускает планировщик.
func (a *App) Run(ctx context.Context) error {
	err := a.schedulerService.Run(ctx)

	a.logger.Info("shutting down scheduler service")
	if cerr := a.db.Close(); cerr != nil {
		a.logger.Error("failed to close storage", sl.Err(cerr))
	}
	return err
}
