// Command server runs the civic issue dashboard API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/civicsync/civic-dashboard/internal/api/dashboard"
	"github.com/civicsync/civic-dashboard/internal/cache"
	"github.com/civicsync/civic-dashboard/internal/config"
	"github.com/civicsync/civic-dashboard/internal/mattermost"
	"github.com/civicsync/civic-dashboard/internal/notify"
	"github.com/civicsync/civic-dashboard/internal/repository"
	"github.com/civicsync/civic-dashboard/internal/seed"
	"github.com/civicsync/civic-dashboard/internal/service/authority"
	"github.com/civicsync/civic-dashboard/internal/service/gamification"
	"github.com/civicsync/civic-dashboard/internal/service/leaderboard"
	"github.com/civicsync/civic-dashboard/internal/service/scheduler"
	"github.com/civicsync/civic-dashboard/internal/service/submission"
	"github.com/civicsync/civic-dashboard/internal/service/voting"
	"github.com/civicsync/civic-dashboard/pkg/logger"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log := logger.Get()

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Server exited with error")
	}
}

// stores bundles the issue and user stores with their optional database handle.
type stores struct {
	issues repository.IssueStore
	users  repository.UserStore
	db     *repository.DB
}

func openStores(cfg *config.Config, log *logger.Logger) (*stores, error) {
	if cfg.Database.Driver == config.DriverMemory {
		log.Info().Msg("Using in-memory issue store")
		return &stores{
			issues: repository.NewMemoryIssueRepository(),
			users:  repository.NewMemoryUserRepository(),
		}, nil
	}

	db, err := repository.NewDB(&cfg.Database, log)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &stores{
		issues: repository.NewIssueRepository(db),
		users:  repository.NewUserRepository(db),
		db:     db,
	}, nil
}

func openCache(ctx context.Context, cfg *config.Config, log *logger.Logger) (cache.Cache, error) {
	if !cfg.Database.Redis.Enabled() {
		log.Info().Msg("Redis not configured, using in-memory cache")
		return cache.NewMemory(), nil
	}
	return cache.NewRedisCache(ctx, &cfg.Database.Redis, log)
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(cfg, log)
	if err != nil {
		return err
	}
	if st.db != nil {
		defer func() { _ = st.db.Close() }()
	}

	kv, err := openCache(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = kv.Close() }()

	if cfg.Database.Seed {
		fixtures, err := seed.Load()
		if err != nil {
			return err
		}
		if err := seed.Apply(fixtures, st.issues, st.users, log.Component("seed")); err != nil {
			return err
		}
	}

	// Notifications: toast feed, log line and (asynchronously) Mattermost.
	mm := mattermost.NewClient(&cfg.Mattermost, log.Component("mattermost"))
	feed := notify.NewFeed(50)
	notifiers := notify.Multi{feed, notify.NewLogNotifier(log.Component("notify"))}
	var async *notify.Async
	if cfg.Mattermost.Enabled {
		async = notify.NewAsync(mm, log.Component("notify"))
		notifiers = append(notifiers, async)
	}

	votingSvc := voting.NewService(
		st.issues,
		voting.NewCacheStore(kv, cfg.Voting.SessionTTLDuration()),
		voting.Rule{ReverseOnSwitch: cfg.Voting.ReverseOnSwitch},
		log.Component("voting"),
	)
	authoritySvc := authority.NewService(st.issues, notifiers, cfg.Authority.Departments, log.Component("authority"))
	submissionSvc := submission.NewService(
		st.issues,
		submission.NewLimiter(kv, cfg.Submission.DailyLimit),
		notifiers,
		&cfg.Submission,
		log.Component("submission"),
	)
	leaderboardSvc := leaderboard.NewService(
		st.users,
		gamification.NewEvaluator(cfg.Gamification.Achievements),
		log.Component("leaderboard"),
	)

	sched := scheduler.NewService(&cfg.Scheduler, st.issues, mm, log.Component("scheduler"))
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	handler := dashboard.NewHandler(dashboard.Dependencies{
		Issues:      st.issues,
		Voting:      votingSvc,
		Authority:   authoritySvc,
		Submission:  submissionSvc,
		Leaderboard: leaderboardSvc,
		Feed:        feed,
	}, log.Component("api"))
	handler.AddHealthCheck("cache", kv.Health)
	if st.db != nil {
		handler.AddHealthCheck("database", func(context.Context) error { return st.db.Health() })
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), dashboard.RequestLogger(log.Component("http")))
	handler.RegisterRoutes(router)
	if cfg.Metrics.Prometheus.Enabled {
		dashboard.RegisterMetrics(router, cfg.Metrics.Prometheus.Path)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Int("port", cfg.Server.Port).
			Str("driver", cfg.Database.Driver).
			Str("environment", cfg.Server.Environment).
			Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("Shutdown signal received")
	}

	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
	if shutdownTimeout <= 0 {
		shutdownTimeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	if async != nil {
		async.Close()
	}

	log.Info().Msg("Server stopped")
	return nil
}
