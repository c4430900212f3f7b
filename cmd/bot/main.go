package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentry "github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	_ "github.com/lib/pq"

	"github.com/sintrade/edubot/internal/bot"
	"github.com/sintrade/edubot/internal/bot/handlers"
	"github.com/sintrade/edubot/internal/bot/keyboard"
	"github.com/sintrade/edubot/internal/content"
	"github.com/sintrade/edubot/internal/database"
	"github.com/sintrade/edubot/internal/generation"
	"github.com/sintrade/edubot/internal/health"
	"github.com/sintrade/edubot/internal/i18n"
	"github.com/sintrade/edubot/internal/jobs"
	jobhandlers "github.com/sintrade/edubot/internal/jobs/handlers"
	"github.com/sintrade/edubot/internal/lifecycle"
	"github.com/sintrade/edubot/internal/middleware"
	"github.com/sintrade/edubot/internal/progress"
	"github.com/sintrade/edubot/internal/ratelimit"
	"github.com/sintrade/edubot/internal/session"
	"github.com/sintrade/edubot/pkg/config"
	"github.com/sintrade/edubot/pkg/graceful"
	"github.com/sintrade/edubot/pkg/logger"
	"github.com/sintrade/edubot/pkg/metrics"
	pkgredis "github.com/sintrade/edubot/pkg/redis"
)

const (
	defaultLanguage = "ar"

	httpReadHeaderTimeout = 5 * time.Second
	httpShutdownTimeout   = 10 * time.Second
	shutdownTimeout       = 15 * time.Second
)

func main() {
	if err := run(); err != nil {
		slog.Error("bot terminated", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, levelVar := logger.New(logger.Options{
		Level:         cfg.Log.Level,
		File:          cfg.Log.File,
		MaxSizeMB:     cfg.Log.MaxSizeMB,
		MaxBackups:    cfg.Log.MaxBackups,
		MaxAgeDays:    cfg.Log.MaxAgeDays,
		SentryEnabled: cfg.Sentry.Enabled,
	})
	slog.SetDefault(log)

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
		}); err != nil {
			return fmt.Errorf("initialize sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	config.Watch(v, cfg.AppEnv,
		func(next *config.Config) {
			levelVar.Set(logger.ParseLevel(next.Log.Level))
			log.Info("configuration reloaded", slog.String("log_level", next.Log.Level))
		},
		func(err error) {
			log.Error("configuration reload rejected", slog.Any("error", err))
		},
	)

	log.Info("starting edubot",
		slog.String("env", cfg.AppEnv),
		slog.String("http_port", cfg.Server.Port),
		slog.String("session_backend", cfg.Session.Backend),
		slog.Bool("dynamic_generation", cfg.AI.Enabled()),
	)

	catalog, err := content.Load()
	if err != nil {
		return fmt.Errorf("load content catalog: %w", err)
	}

	translations, err := i18n.Load(defaultLanguage)
	if err != nil {
		return fmt.Errorf("load translations: %w", err)
	}

	shutdown := lifecycle.NewShutdown(log)

	var rdb *pkgredis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = pkgredis.New(ctx, pkgredis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		shutdown.Register("redis", func(context.Context) error {
			return rdb.Close()
		})
	}

	store, db, err := buildSessionStore(ctx, cfg, rdb, log)
	if err != nil {
		return err
	}
	if db != nil {
		shutdown.Register("database", func(context.Context) error {
			return db.Close()
		})
	}

	var locker session.Locker
	if rdb != nil {
		locker = session.NewRedisLocker(rdb.Client, log)
	} else {
		locker = session.NewMemoryLocker()
	}

	sessions := session.NewManager(store, locker, log)
	gate := progress.NewGate(catalog, log)
	progress.RegisterTransitionRecorder(metrics.RecordProgressTransition)
	generation.RegisterRequestRecorder(metrics.RecordGenerationRequest)

	static := generation.NewStaticProvider(catalog, time.Now().UnixNano())
	var ai *generation.OpenAIClient
	var remote generation.Provider
	if cfg.AI.Enabled() {
		ai, err = generation.NewOpenAIClient(generation.OpenAIConfig{
			APIKey:  cfg.AI.APIKey,
			Model:   cfg.AI.Model,
			BaseURL: cfg.AI.BaseURL,
			SiteURL: cfg.AI.SiteURL,
			AppName: cfg.AI.AppName,
			Timeout: cfg.AI.Timeout,
		}, log)
		if err != nil {
			return fmt.Errorf("initialize generation client: %w", err)
		}
		remote = ai
	}
	provider := generation.NewFallback(remote, static, log)

	rules := ratelimit.NewRules(cfg.RateLimit)
	var rateLimitMw *middleware.RateLimitMiddleware
	if rules.Enabled() {
		var limiter ratelimit.Limiter
		if rdb != nil {
			limiter = ratelimit.NewFallbackLimiter(
				ratelimit.NewRedisLimiter(rdb.Client, log),
				ratelimit.NewMemoryLimiter(log),
				log,
			)
			go ratelimit.NewCleaner(rdb.Client, log, time.Hour).Run(ctx)
		} else {
			limiter = ratelimit.NewMemoryLimiter(log)
		}
		rateLimitMw = middleware.NewRateLimitMiddleware(limiter, rules, translations, log)
	}

	var redisClient *goredis.Client
	if rdb != nil {
		redisClient = rdb.Client
	}

	env := &handlers.Env{
		Sessions: sessions,
		Gate:     gate,
		Provider: provider,
		AI:       ai,
		Catalog:  catalog,
		I18n:     translations,
		Keyboard: keyboard.NewBuilder(log),
		Redis:    redisClient,
		IsAdmin:  cfg.Bot.IsAdmin,
		Log:      log,
	}

	b, err := bot.New(*cfg, log, env, rateLimitMw)
	if err != nil {
		return fmt.Errorf("initialize bot: %w", err)
	}
	shutdown.Register("telegram bot", func(context.Context) error {
		b.Stop()
		return nil
	})

	cleaner := session.NewCleaner(sessions, log, cfg.Session.TTL, cfg.Session.CleanupInterval)
	if cfg.Jobs.Enabled && rdb != nil {
		if err := startJobs(ctx, cfg, catalog, cleaner, rdb.Client, shutdown, log); err != nil {
			return err
		}
	} else {
		// Without a queue the periodic sweep runs in-process.
		go cleaner.Run(ctx)
	}

	go metrics.NewSessionCollector(sessions).Run(ctx)

	checker := health.NewChecker(log)
	if db != nil {
		checker.AddCheck("database", health.NewDBChecker(db))
	}
	if rdb != nil {
		checker.AddCheck("redis", health.NewRedisChecker(rdb.Client))
	}
	checker.AddCheck("telegram", health.NewTelegramChecker(b.Telebot()))
	if ai != nil {
		checker.AddCheck("generation", health.NewGenerationChecker(ai))
	}

	srv := graceful.NewServer(log, &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           logger.Middleware(middleware.New(log)(newHTTPMux(checker, lifecycle.NewProbes(log)))),
		ReadHeaderTimeout: httpReadHeaderTimeout,
	}, httpShutdownTimeout)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.ListenAndServe(ctx)
	}()

	go b.Start()
	log.Info("edubot started")

	select {
	case <-ctx.Done():
	case err := <-srvErr:
		if err != nil {
			log.Error("http server failed", slog.Any("error", err))
		}
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return shutdown.Execute(shutdownCtx)
}

// buildSessionStore picks the profile store for the configured backend. The
// postgres backend also runs pending migrations and returns the database
// handle for health checks and shutdown.
func buildSessionStore(ctx context.Context, cfg *config.Config, rdb *pkgredis.Client, log *slog.Logger) (session.Store, *sql.DB, error) {
	switch cfg.Session.Backend {
	case "postgres":
		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			return nil, nil, fmt.Errorf("ping database: %w", err)
		}
		if err := database.NewMigrator(db, log).ApplyDir(ctx, "migrations"); err != nil {
			return nil, nil, fmt.Errorf("apply migrations: %w", err)
		}
		return session.NewPostgresStore(db, log), db, nil

	case "redis":
		if rdb == nil {
			return nil, nil, fmt.Errorf("session backend %q requires redis.addr", cfg.Session.Backend)
		}
		return session.NewRedisStore(rdb.Client, log, cfg.Session.TTL), nil, nil

	default:
		return session.NewMemoryStore(), nil, nil
	}
}

// startJobs wires the asynq scheduler and worker, and enqueues one immediate
// challenge rotation so the shared daily key exists right after deploy.
func startJobs(
	ctx context.Context,
	cfg *config.Config,
	catalog *content.Catalog,
	cleaner *session.Cleaner,
	redisClient *goredis.Client,
	shutdown *lifecycle.Shutdown,
	log *slog.Logger,
) error {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	scheduler := jobs.NewScheduler(redisOpt, log)
	if err := scheduler.RegisterTasks(); err != nil {
		return fmt.Errorf("register scheduled tasks: %w", err)
	}
	go scheduler.Run()
	shutdown.Register("job scheduler", func(context.Context) error {
		scheduler.Shutdown()
		return nil
	})

	worker := jobs.NewWorker(redisOpt, map[string]int{
		jobs.QueueCritical: 6,
		jobs.QueueDefault:  3,
		jobs.QueueLow:      1,
	}, cfg.Jobs.Concurrency, log)
	worker.RegisterHandler(jobs.TaskTypeSessionCleanup, jobhandlers.NewSessionCleanupHandler(cleaner, log))
	worker.RegisterHandler(jobs.TaskTypeChallengeRotate, jobhandlers.NewChallengeRotateHandler(catalog, redisClient, log))
	go func() {
		if err := worker.Run(); err != nil {
			log.Error("job worker stopped", slog.Any("error", err))
		}
	}()
	shutdown.Register("job worker", func(context.Context) error {
		worker.Shutdown()
		return nil
	})

	manager := jobs.NewManager(redisOpt, log)
	defer func() {
		if err := manager.Close(); err != nil {
			log.Error("failed to close job manager", slog.Any("error", err))
		}
	}()

	rotate, err := jobs.NewChallengeRotateTask(time.Time{})
	if err != nil {
		return fmt.Errorf("build challenge rotation task: %w", err)
	}
	if _, err := manager.Enqueue(ctx, rotate); err != nil {
		log.Error("failed to enqueue initial challenge rotation", slog.Any("error", err))
	}

	return nil
}

func newHTTPMux(checker *health.Checker, probes *lifecycle.Probes) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		results := checker.Check(r.Context())

		status := http.StatusOK
		for _, result := range results {
			if result != "OK" {
				status = http.StatusServiceUnavailable
				break
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(results)
	})

	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		if err := probes.Liveness(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := probes.Readiness(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	return mux
}
