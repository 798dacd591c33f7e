// Package services содержит периодические задачи платформы: деактивацию
// неактивных пользователей и доводку незавершённых оплат.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/magabrotheeeer/lms-platform/internal/config"
	"github.com/magabrotheeeer/lms-platform/internal/lib/sl"
	"github.com/magabrotheeeer/lms-platform/internal/services/payment"
)

// UserRepository описывает контракт деактивации пользователей.
type UserRepository interface {
	DeactivateInactiveUsers(ctx context.Context, before time.Time) (int64, error)
}

// IntentSweeper доводит до конца застрявшие намерения оплаты.
type IntentSweeper interface {
	SweepIntents(ctx context.Context, grace time.Duration) (payment.SweepResult, error)
}

// SchedulerService запускает периодические задачи по cron-расписанию.
type SchedulerService struct {
	users   UserRepository
	sweeper IntentSweeper
	cfg     config.Scheduler
	log     *slog.Logger
	now     func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(users UserRepository, sweeper IntentSweeper, cfg config.Scheduler, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		users:   users,
		sweeper: sweeper,
		cfg:     cfg,
		log:     log,
		now:     time.Now,
	}
}

// DeactivateInactiveUsers снимает признак активности с пользователей,
// не входивших дольше InactivityPeriod.
func (s *SchedulerService) DeactivateInactiveUsers(ctx context.Context) error {
	const op = "services.scheduler.DeactivateInactiveUsers"

	before := s.now().Add(-s.cfg.InactivityPeriod)
	n, err := s.users.DeactivateInactiveUsers(ctx, before)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		s.log.Info("no inactive users found", slog.String("op", op))
		return nil
	}
	s.log.Info("inactive users deactivated", slog.String("op", op), slog.Int64("count", n))
	return nil
}

// SweepIntents запускает проход по застрявшим намерениям оплаты.
func (s *SchedulerService) SweepIntents(ctx context.Context) error {
	const op = "services.scheduler.SweepIntents"

	if _, err := s.sweeper.SweepIntents(ctx, s.cfg.IntentGrace); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Start регистрирует задачи и запускает планировщик. Задача, не успевшая
// завершиться к следующему запуску, пропускает его.
func (s *SchedulerService) Start(ctx context.Context) (*cron.Cron, error) {
	const op = "services.scheduler.Start"

	logger := cronLogger{log: s.log}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	jobs := []struct {
		name string
		spec string
		run  func(context.Context) error
	}{
		{name: "deactivate_inactive_users", spec: s.cfg.DeactivateSpec, run: s.DeactivateInactiveUsers},
		{name: "sweep_payment_intents", spec: s.cfg.IntentSweepSpec, run: s.SweepIntents},
	}
	for _, j := range jobs {
		if _, err := c.AddFunc(j.spec, s.job(ctx, j.name, j.run)); err != nil {
			return nil, fmt.Errorf("%s: job %s: %w", op, j.name, err)
		}
		s.log.Info("job scheduled", slog.String("job", j.name), slog.String("spec", j.spec))
	}

	c.Start()
	return c, nil
}

// Run запускает планировщик и блокируется до отмены ctx, после чего
// дожидается завершения выполняющихся задач.
func (s *SchedulerService) Run(ctx context.Context) error {
	c, err := s.Start(ctx)
	if err != nil {
		return err
	}
	<-ctx.Done()
	<-c.Stop().Done()
	s.log.Info("scheduler stopped")
	return nil
}

func (s *SchedulerService) job(ctx context.Context, name string, run func(context.Context) error) func() {
	return func() {
		jobCtx := ctx
		if s.cfg.JobTimeout > 0 {
			var cancel context.CancelFunc
			jobCtx, cancel = context.WithTimeout(ctx, s.cfg.JobTimeout)
			defer cancel()
		}
		start := s.now()
		if err := run(jobCtx); err != nil {
			s.log.Error("job failed", slog.String("job", name), sl.Err(err))
			return
		}
		s.log.Debug("job finished", slog.String("job", name), slog.Duration("took", time.Since(start)))
	}
}

// cronLogger передаёт сообщения cron в slog.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(keysAndValues, sl.Err(err))...)
}
