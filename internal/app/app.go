package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"ContentForge/internal/briefs"
	"ContentForge/internal/config"
	"ContentForge/internal/feed"
	"ContentForge/internal/generation"
	"ContentForge/internal/infrastructure/scheduler"
	"ContentForge/internal/infrastructure/storage"
	"ContentForge/internal/infrastructure/telegram"
	"ContentForge/internal/logging"
	"ContentForge/internal/ports"
	"ContentForge/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	db     *sql.DB
	runner *usecase.Runner
	logger *slog.Logger
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	jobs := storage.NewJobRepository(db)
	articles := storage.NewArticleRepository(db)

	generator := generation.NewClient(cfg.Generation)
	orchestrator := usecase.NewOrchestrator(usecase.OrchestratorDeps{
		Generator: generator,
		Articles:  articles,
		Jobs:      jobs,
		Briefs:    briefs.NewRegistry(),
		Engine:    cfg.Generation.Model,
		Logger:    baseLogger.With("component", "orchestrator"),
	})

	batch := usecase.NewBatchProcessor(jobs, orchestrator, cfg.Topics,
		baseLogger.With("component", "batch"))

	fetcher := feed.NewFetcher(nil, cfg.Feeds, baseLogger.With("component", "feed"))
	digest := usecase.NewDigestRunner(fetcher, orchestrator,
		baseLogger.With("component", "digest"))

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" {
		notifier = telegram.NewNotifier(
			cfg.Notifications.Telegram.BotToken,
			cfg.Notifications.Telegram.ChatID)
	}

	runner := usecase.NewRunner(usecase.RunnerDeps{
		Driver:     scheduler.NewTickerScheduler(cfg.Scheduler.Interval()),
		Batch:      batch,
		Digest:     digest,
		Jobs:       jobs,
		Notifier:   notifier,
		DigestHour: cfg.Scheduler.DigestHour,
		Location:   cfg.Scheduler.Location(),
		Logger:     baseLogger.With("component", "runner"),
	})

	return &Application{cfg: cfg, db: db, runner: runner, logger: baseLogger}, nil
}

// Run starts the recurring pipeline and blocks until the context is done.
func (a *Application) Run(ctx context.Context) error {
	if err := a.runner.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	a.logger.Info("pipeline started",
		"interval", a.cfg.Scheduler.Interval().String(),
		"digestHour", a.cfg.Scheduler.DigestHour,
		"feeds", len(a.cfg.Feeds))

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.runner.Stop(stopCtx); err != nil {
		a.logger.Warn("scheduler stop failed", "error", err)
	}

	return a.db.Close()
}

// RunOnce executes a single batch cycle and exits; useful for cron-style
// deployments where an external scheduler owns the timer.
func (a *Application) RunOnce(ctx context.Context) error {
	a.runner.RunCycle(ctx, time.Now().In(a.cfg.Scheduler.Location()))
	return a.db.Close()
}
