package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	_ "github.com/lib/pq"

	"github.com/Proton-105/lovemenu-bot/internal/backup"
	"github.com/Proton-105/lovemenu-bot/internal/bot"
	"github.com/Proton-105/lovemenu-bot/internal/bot/handlers"
	"github.com/Proton-105/lovemenu-bot/internal/bot/keyboard"
	"github.com/Proton-105/lovemenu-bot/internal/bot/render"
	"github.com/Proton-105/lovemenu-bot/internal/broadcast"
	"github.com/Proton-105/lovemenu-bot/internal/cart"
	"github.com/Proton-105/lovemenu-bot/internal/catalog"
	"github.com/Proton-105/lovemenu-bot/internal/database"
	"github.com/Proton-105/lovemenu-bot/internal/dateidea"
	"github.com/Proton-105/lovemenu-bot/internal/domain"
	apperrors "github.com/Proton-105/lovemenu-bot/internal/errors"
	"github.com/Proton-105/lovemenu-bot/internal/health"
	"github.com/Proton-105/lovemenu-bot/internal/i18n"
	"github.com/Proton-105/lovemenu-bot/internal/idempotency"
	"github.com/Proton-105/lovemenu-bot/internal/jobs"
	jobhandlers "github.com/Proton-105/lovemenu-bot/internal/jobs/handlers"
	"github.com/Proton-105/lovemenu-bot/internal/ledger"
	"github.com/Proton-105/lovemenu-bot/internal/lifecycle"
	"github.com/Proton-105/lovemenu-bot/internal/mediacache"
	"github.com/Proton-105/lovemenu-bot/internal/middleware"
	"github.com/Proton-105/lovemenu-bot/internal/order"
	"github.com/Proton-105/lovemenu-bot/internal/ratelimit"
	"github.com/Proton-105/lovemenu-bot/internal/repository"
	"github.com/Proton-105/lovemenu-bot/internal/state"
	"github.com/Proton-105/lovemenu-bot/internal/user"
	"github.com/Proton-105/lovemenu-bot/internal/usercache"
	"github.com/Proton-105/lovemenu-bot/pkg/config"
	"github.com/Proton-105/lovemenu-bot/pkg/graceful"
	"github.com/Proton-105/lovemenu-bot/pkg/logger"
	"github.com/Proton-105/lovemenu-bot/pkg/metrics"
	"github.com/Proton-105/lovemenu-bot/pkg/redis"
)

const (
	language          = "uk"
	updateTimeout     = 30 * time.Second
	limiterIdleMaxAge = 10 * time.Minute
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "lovemenu bot: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.AppEnv,
			SampleRate:  cfg.Sentry.SampleRate,
		}); err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	lg, err := logger.New(cfg.Logger, cfg.Sentry.Enabled)
	if err != nil {
		return err
	}
	defer lg.Close()
	log := lg.Logger

	log.Info("starting lovemenu bot",
		slog.String("env", cfg.AppEnv),
		slog.String("mode", cfg.Bot.Mode),
		slog.String("ops_port", cfg.Server.Port),
		slog.String("log_level", cfg.Logger.Level),
	)

	db, err := openDatabase(ctx, cfg.Database, cfg.GetDBConnectionString())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.NewMigrator(db, log).ApplyDir(ctx, cfg.Database.MigrationsDir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	log.Info("database migrations applied")

	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	shutdown := lifecycle.NewShutdown(log)
	background, cancelBackground := context.WithCancel(context.Background())
	defer cancelBackground()

	// Conversation state.
	state.RegisterTransitionRecorder(metrics.RecordStateTransition)
	sessions := state.NewRedisStorage(rdb.Client, log, cfg.Session.TTL)
	fsm := state.NewStateMachine(sessions, log, rdb.Client)
	go state.NewCleaner(sessions, log, cfg.Session.TTL, cfg.Session.CleanupInterval).Run(background)
	go metrics.NewStateCollector(fsm).Run(background)

	// Domain services.
	catalogRepo := repository.NewCatalogRepository(db, log)
	catalogSvc := catalog.NewService(catalogRepo, repository.NewSpecialMenuRepository(db, log), log)
	cartRepo := repository.NewCartRepository(db, log)
	debtRepo := repository.NewDebtRepository(db, log)
	userRepo := repository.NewUserRepository(db, log)
	users := user.NewService(userRepo, usercache.NewCache(rdb.Client, 0), log)

	services := handlers.Services{
		Catalog: catalogSvc,
		Cart:    cart.NewService(cartRepo, catalogSvc, log),
		Orders:  order.NewService(repository.NewOrderRepository(db, log), cartRepo, debtRepo, log),
		Ledger:  ledger.NewService(debtRepo, userRepo, catalogRepo, log),
		Users:   users,
		Ideas:   dateidea.NewPicker(nil),
	}

	// Telegram.
	tb, err := bot.NewTelebot(cfg.Bot, log)
	if err != nil {
		return err
	}

	translations, err := i18n.Load(language)
	if err != nil {
		return fmt.Errorf("load translations: %w", err)
	}
	translator := translations.Translator(language)

	renderer := render.New(tb, mediacache.NewCache(rdb.Client, 0), log)
	renderer.OnUpload(func(ctx context.Context, media domain.Media, fileID string) {
		if err := catalogSvc.AdoptUpload(ctx, media.URL, fileID); err != nil {
			log.WarnContext(ctx, "failed to store uploaded file id", slog.String("url", media.URL), slog.Any("error", err))
		}
	})

	announcer := broadcast.NewAnnouncer(
		catalogSvc,
		users,
		broadcast.New(renderer, apperrors.NewCircuitBreaker(), log),
		renderer,
		keyboard.NewBuilder(log, translator).SpecialMenuOffer,
		log,
	)

	// Background jobs.
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}
	if cfg.Jobs.Enabled {
		queue := jobs.NewManager(redisOpt, log)
		services.Specials = jobs.QueueDispatcher{Manager: queue}

		worker := jobs.NewWorker(redisOpt, cfg.Jobs.Concurrency, log)
		worker.RegisterHandler(jobs.TaskTypeSpecialMenuBroadcast, jobhandlers.NewSpecialMenuHandler(announcer, log))
		worker.RegisterHandler(jobs.TaskTypeBackupCreate,
			jobhandlers.NewBackupHandler(backup.NewService(backup.NewPostgresStore(db), log), cfg.Jobs.BackupDir, log))
		go func() {
			if err := worker.Run(); err != nil {
				log.Error("jobs worker stopped", slog.Any("error", err))
			}
		}()

		scheduler := jobs.NewScheduler(redisOpt, log)
		if err := scheduler.RegisterBackup(cfg.Jobs.BackupCron, cfg.Jobs.BackupDir); err != nil {
			return fmt.Errorf("schedule backup: %w", err)
		}
		scheduler.Run()

		shutdown.Register(lifecycle.PhaseWorkers, "jobs worker", func(context.Context) error { worker.Shutdown(); return nil })
		shutdown.Register(lifecycle.PhaseWorkers, "jobs scheduler", func(context.Context) error { scheduler.Shutdown(); return nil })
		shutdown.Register(lifecycle.PhaseStores, "jobs client", func(context.Context) error { return queue.Close() })
	} else {
		services.Specials = jobhandlers.InlineDispatcher{Announcer: announcer, Log: log}
	}

	acl := newAccess(cfg)
	set := handlers.New(services, handlers.Options{
		FSM:                     fsm,
		Renderer:                renderer,
		Translator:              translator,
		Access:                  acl,
		ConfirmationAnimationID: cfg.Bot.ConfirmationAnimationID,
		Log:                     log,
	})

	// Update pipeline guards.
	var limits *middleware.RateLimitMiddleware
	if cfg.RateLimit.Enabled {
		memory := ratelimit.NewMemoryLimiter(log)
		go ratelimit.NewCleaner(memory, log, time.Minute, limiterIdleMaxAge).Run(background)
		limiter := ratelimit.NewAdaptiveLimiter(ratelimit.NewRedisLimiter(rdb.Client, log), memory, log)
		limits = middleware.NewRateLimitMiddleware(limiter, ratelimit.NewRules(cfg.RateLimit), log)
	}

	b := bot.New(tb, bot.Options{
		Handlers:      set,
		FSM:           fsm,
		Responder:     renderer,
		Users:         users,
		ErrHandler:    apperrors.NewHandler(log, cfg.Sentry.Enabled),
		Idempotency:   idempotency.NewManager(idempotency.NewRedisStore(rdb.Client, log), log),
		RateLimit:     limits,
		UpdateTimeout: updateTimeout,
		Log:           log,
	})

	// Ops endpoints.
	checker := health.NewChecker(log)
	checker.Add("postgres", health.Postgres(db))
	checker.Add("redis", health.Redis(rdb))
	checker.Add("telegram", health.Telegram(tb))
	probes := lifecycle.NewProbes(checker)

	ops := graceful.NewServer(log, &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           newOpsRouter(log, probes),
		ReadHeaderTimeout: 5 * time.Second,
	}, cfg.Server.ShutdownTimeout)
	go func() {
		if err := ops.Serve(background); err != nil {
			log.Error("ops server stopped", slog.Any("error", err))
		}
	}()

	config.Watch(v, func(next *config.Config) {
		acl.Store(next)
		if err := lg.SetLevel(next.Logger.Level); err != nil {
			log.Warn("ignoring log level from reloaded config", slog.Any("error", err))
			return
		}
		log.Info("configuration reloaded", slog.String("log_level", next.Logger.Level), slog.Int("admins", len(next.Admins())))
	}, func(err error) {
		log.Warn("reloaded configuration rejected", slog.Any("error", err))
	})

	shutdown.Register(lifecycle.PhaseIntake, "readiness", func(context.Context) error { probes.Drain(); return nil })
	shutdown.Register(lifecycle.PhaseIntake, "telegram", func(context.Context) error { b.Stop(); return nil })
	shutdown.Register(lifecycle.PhaseWorkers, "background loops", func(context.Context) error { cancelBackground(); return nil })
	shutdown.Register(lifecycle.PhaseStores, "ops server", ops.Shutdown)

	go b.Start()
	log.Info("lovemenu bot is running")

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := shutdown.Execute(shutdownCtx); err != nil {
		log.Error("shutdown finished with errors", slog.Any("error", err))
		return err
	}

	log.Info("lovemenu bot stopped")
	return nil
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
