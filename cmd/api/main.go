package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spartan_estimator/internal/adapters/storage"
	"spartan_estimator/internal/chat"
	"spartan_estimator/internal/email"
	"spartan_estimator/internal/estimate/leadclient"
	"spartan_estimator/internal/estimate/session"
	"spartan_estimator/internal/events"
	apphttp "spartan_estimator/internal/http"
	"spartan_estimator/internal/http/router"
	"spartan_estimator/internal/leads"
	leadrepo "spartan_estimator/internal/leads/repository"
	"spartan_estimator/internal/leads/sink"
	"spartan_estimator/internal/notification"
	"spartan_estimator/internal/scheduler"
	"spartan_estimator/migrations"
	"spartan_estimator/platform/config"
	"spartan_estimator/platform/db"
	"spartan_estimator/platform/logger"
	"spartan_estimator/platform/metrics"
	"spartan_estimator/platform/ratelimit"
	"spartan_estimator/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 10 * time.Second
	janitorInterval = time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	appMetrics := metrics.New()
	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	var health apphttp.HealthChecker
	if cfg.IsDatabaseEnabled() {
		pool := connectDatabase(ctx, cfg, log)
		defer pool.Close()
		health = pool

		sink.NewDatabase(leadrepo.New(pool), appMetrics, log).RegisterHandlers(eventBus)
	} else {
		log.Warn("DATABASE_URL not configured; leads are not persisted")
	}

	if cfg.IsMinIOEnabled() {
		storageSvc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		if err := withRetry(ctx, log, "ensure leads bucket", 5, 2*time.Second, func() error {
			return storageSvc.EnsureBucketExists(ctx, cfg.GetMinioBucketLeads())
		}); err != nil {
			log.Error("failed to ensure storage bucket exists", "error", err, "bucket", cfg.GetMinioBucketLeads())
			panic("failed to ensure storage bucket exists: " + err.Error())
		}
		sink.NewArchive(storageSvc, cfg.GetMinioBucketLeads(), appMetrics, log).RegisterHandlers(eventBus)
		log.Info("lead archive enabled", "bucket", cfg.GetMinioBucketLeads())
	}

	if cfg.IsSMTPEnabled() {
		notificationModule := notification.New(email.NewSMTPSender(cfg), cfg, log)
		notificationModule.SetMetrics(appMetrics)
		if queue, closeQueue := initMailQueue(cfg, log); queue != nil {
			defer closeQueue()
			notificationModule.SetQueue(queue)
		}
		notificationModule.RegisterHandlers(eventBus)
	} else {
		log.Warn("SMTP_HOST not configured; lead notifications disabled")
	}

	limiter, closeLimiter := initIntakeLimiter(ctx, cfg, log)
	if closeLimiter != nil {
		defer closeLimiter()
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	leadsModule := leads.NewModule(eventBus, limiter, val, cfg, appMetrics, log)

	leadClient := leadclient.New(cfg.GetLeadEndpointURL(), cfg.GetLeadClientTimeout(), log)
	sessions := session.NewManager(leadClient, cfg.GetChatSessionTTL(), session.Options{
		TypingDelay: cfg.GetChatTypingDelay(),
		Metrics:     appMetrics,
		Logger:      log,
	})
	sessions.StartJanitor(ctx, janitorInterval)
	chatModule := chat.NewModule(sessions, val, cfg, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:  cfg,
		Logger:  log,
		Metrics: appMetrics,
		Health:  health,
		Modules: []apphttp.Module{
			leadsModule,
			chatModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")

		// Chat submissions post to this server, so they settle before it stops.
		sessions.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
	}
	eventBus.Wait()
	log.Info("server stopped")
}

func connectDatabase(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) *pgxpool.Pool {
	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	log.Info("database connection established")

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, pool, migrations.FS)
	}); err != nil {
		pool.Close()
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	return pool
}

// initIntakeLimiter shares counters through Redis when it is configured and
// keeps them in process otherwise.
func initIntakeLimiter(ctx context.Context, cfg *config.Config, log *logger.Logger) (ratelimit.Limiter, func()) {
	limit, window := cfg.GetIntakeRateLimit(), cfg.GetIntakeRateWindow()
	if !cfg.IsRedisEnabled() {
		return ratelimit.NewFixedWindow(limit, window), nil
	}

	client, err := ratelimit.NewRedisClient(cfg.GetRedisURL())
	if err != nil {
		log.Error("invalid REDIS_URL; using in-memory rate limiter", "error", err)
		return ratelimit.NewFixedWindow(limit, window), nil
	}
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable at startup; intake limiter fails open until it recovers", "error", err)
	}
	log.Info("intake rate limiter backed by redis", "limit", limit, "window", window)

	return ratelimit.NewRedis(client, limit, window), func() {
		_ = client.Close()
	}
}

// initMailQueue returns nil when Redis is not configured; emails then go out
// inline from the event handler.
func initMailQueue(cfg config.SchedulerConfig, log *logger.Logger) (scheduler.LeadNotificationQueue, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; lead notifications are sent inline")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize mail queue client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
