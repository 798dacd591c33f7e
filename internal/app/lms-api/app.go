package lmsapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/lms-platform/internal/cache"
	"github.com/magabrotheeeer/lms-platform/internal/config"
	"github.com/magabrotheeeer/lms-platform/internal/http/handlers/health"
	"github.com/magabrotheeeer/lms-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/lms-platform/internal/lib/jwt"
	"github.com/magabrotheeeer/lms-platform/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/lms-platform/internal/lib/sl"
	"github.com/magabrotheeeer/lms-platform/internal/metrics"
	"github.com/magabrotheeeer/lms-platform/internal/migrations"
	"github.com/magabrotheeeer/lms-platform/internal/paymentprovider"
	authservice "github.com/magabrotheeeer/lms-platform/internal/services/auth"
	courseservice "github.com/magabrotheeeer/lms-platform/internal/services/course"
	"github.com/magabrotheeeer/lms-platform/internal/services/notifier"
	paymentservice "github.com/magabrotheeeer/lms-platform/internal/services/payment"
	subscriptionservice "github.com/magabrotheeeer/lms-platform/internal/services/subscription"
	usersservice "github.com/magabrotheeeer/lms-platform/internal/services/users"
	"github.com/magabrotheeeer/lms-platform/internal/storage/repository"
)

const (
	shutdownTimeout = 15 * time.Second
	cleanupInterval = time.Minute
)

// App: процесс HTTP API.
type App struct {
	server  *http.Server
	logger  *slog.Logger
	db      *repository.Storage
	cache   *cache.Cache
	conn    *amqp.Connection
	ch      *amqp.Channel
	limiter *middlewarectx.RateLimiter
}

// New подключает хранилище, кеш и очередь, применяет миграции и собирает роутер.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		_ = db.Close()
		_ = cacheRedis.Close()
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = db.Close()
		_ = cacheRedis.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL, cfg.RefreshTokenTTL)
	authService := authservice.NewAuthService(db, jwtMaker, logger)
	notifierService := notifier.New(db, rabbitmq.NewPublisher(ch), cfg.Window, logger, m)
	courseService := courseservice.New(db, cacheRedis, notifierService, logger)
	paymentService := paymentservice.New(db, paymentprovider.NewClient(cfg.PaymentGateway), cfg.Currency, logger, m)
	limiter := middlewarectx.NewRateLimiter(cfg.RPS, cfg.Burst, logger, m)

	router := chi.NewRouter()
	RegisterRoutes(router, Deps{
		Logger:       logger,
		Metrics:      m,
		Limiter:      limiter,
		Auth:         authService,
		Courses:      courseService,
		Payments:     paymentService,
		Subscription: subscriptionservice.New(db, logger, m),
		Users:        usersservice.New(db),
		CheckoutURLs: paymentservice.CheckoutURLs{
			Success: cfg.SuccessURL,
			Cancel:  cfg.CancelURL,
		},
		Health: map[string]health.Pinger{
			"postgres": db,
			"redis":    cacheRedis,
		},
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:  srv,
		logger:  logger,
		db:      db,
		cache:   cacheRedis,
		conn:    conn,
		ch:      ch,
		limiter: limiter,
	}, nil
}

// Run обслуживает запросы до отмены ctx, затем останавливает сервер и закрывает соединения.
func (a *App) Run(ctx context.Context) error {
	go a.cleanupLimiter(ctx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err = a.server.Shutdown(timeoutCtx)
	}
	a.close()
	return err
}

func (a *App) cleanupLimiter(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.limiter.Cleanup()
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close redis", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
