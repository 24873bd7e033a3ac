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

	"interviewassist/core/internal/config"
	"interviewassist/core/internal/evaluation"
	"interviewassist/core/internal/handlers"
	"interviewassist/core/internal/interview"
	"interviewassist/core/internal/jobs"
	"interviewassist/core/internal/llm"
	_ "interviewassist/core/internal/llm/gemini"
	_ "interviewassist/core/internal/llm/offline"
	"interviewassist/core/internal/metrics"
	appmiddleware "interviewassist/core/internal/middleware"
	"interviewassist/core/internal/prompts"
	"interviewassist/core/internal/questions"
	"interviewassist/core/internal/resilience"
	"interviewassist/core/internal/roster"
	"interviewassist/core/internal/routers"
	"interviewassist/core/internal/store"
	"interviewassist/core/internal/summary"
	"interviewassist/core/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type app struct {
	router   *chi.Mux
	executor *resilience.Executor
	probe    *jobs.AvailabilityProbeJob
	closers  []func() error
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

func registerRoutes(router *chi.Mux, aiHandler *handlers.AIHandler, interviewHandler *handlers.InterviewHandler,
	candidatesHandler *handlers.CandidatesHandler, healthHandler *handlers.HealthHandler) {
	routers.HealthRoutes(router, healthHandler, metrics.Handler())
	routers.AIRoutes(router, aiHandler)
	routers.InterviewRoutes(router, interviewHandler, candidatesHandler)
}

// newSessionStore prefers Redis and falls back to process memory when Redis
// is not configured or unreachable.
func newSessionStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.SessionStore, handlers.Pinger, func() error) {
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, keeping sessions in memory")
		return store.NewMemorySessionStore(cfg.SessionTTL), nil, func() error { return nil }
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	redisStore := store.NewRedisSessionStore(rdb, cfg.SessionTTL)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := redisStore.Ping(pingCtx); err != nil {
		logger.Warn("Redis unavailable, keeping sessions in memory", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		_ = rdb.Close()
		return store.NewMemorySessionStore(cfg.SessionTTL), nil, func() error { return nil }
	}

	logger.Info("Session store connected to Redis", zap.String("addr", cfg.RedisAddr))
	return redisStore, redisStore, rdb.Close
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	// prompt manager
	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize prompt manager: %w", err)
	}

	// AI provider based on configuration
	aiProvider, err := llm.NewProvider(cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize AI provider: %w", err)
	}

	executor := resilience.NewExecutor(aiProvider,
		resilience.NewRateLimiter(cfg.RateLimit, cfg.RateWindow),
		resilience.WithTimeout(cfg.RequestTimeout),
		resilience.WithMaxAttempts(cfg.MaxAttempts),
		resilience.WithRetryDelay(cfg.RetryDelay),
		resilience.WithLogger(logger))

	questionService := questions.NewService(executor, promptManager, logger)
	evaluationService := evaluation.NewService(executor, promptManager, logger)
	summaryGenerator := summary.NewGenerator(executor, promptManager, logger)

	db, err := roster.OpenDatabase(roster.DatabaseConfig{Driver: cfg.DatabaseDriver, DSN: cfg.DatabaseDSN})
	if err != nil {
		return nil, err
	}
	candidates := roster.New(db, logger)

	a := &app{executor: executor}
	a.closers = append(a.closers, func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	sessions, storePinger, closeStore := newSessionStore(ctx, cfg, logger)
	a.closers = append(a.closers, closeStore)

	orchestrator := interview.New(questionService, evaluationService, summaryGenerator, candidates, sessions,
		interview.WithAdvanceDelay(cfg.AdvanceDelay),
		interview.WithLogger(logger))

	dependencies := map[string]handlers.Pinger{"database": candidates}
	if storePinger != nil {
		dependencies["session_store"] = storePinger
	}

	aiHandler := handlers.NewAIHandler(questionService, evaluationService, summaryGenerator, logger)
	interviewHandler := handlers.NewInterviewHandler(orchestrator, logger)
	candidatesHandler := handlers.NewCandidatesHandler(candidates, logger)
	healthHandler := handlers.NewHealthHandler(executor, promptManager, cfg, dependencies)

	a.probe = jobs.NewAvailabilityProbeJob(executor, &jobs.ProbeConfig{
		Schedule: cfg.ProbeSchedule,
		Enabled:  cfg.ProbeEnabled,
		Timeout:  cfg.RequestTimeout * time.Duration(cfg.MaxAttempts+1),
	}, logger)

	router := chi.NewRouter()

	// cors middleware
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.Use(middleware.RequestID, middleware.RealIP, appmiddleware.RequestLogger(logger), middleware.Recoverer,
		metrics.Middleware, middleware.Timeout(2*time.Minute))

	registerRoutes(router, aiHandler, interviewHandler, candidatesHandler, healthHandler)
	a.router = router
	return a, nil
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("Failed to release resources", zap.Error(err))
		}
	}()

	serverAddr := ":" + cfg.Port

	// http server with timeouts; evaluation can take several provider attempts
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      a.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("Interview service starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		// initial probe so readiness is meaningful before the first schedule
		a.probe.RunOnce(ctx)
		if err := a.probe.Start(); err != nil {
			return err
		}
		<-ctx.Done()
		a.probe.Stop()
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		logger.Info("Interview service shutting down...")

		// graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	utils.InitLogger(cfg.LogFile, cfg.Production)
	logger := utils.GetLogger()
	defer logger.Sync()

	logger.Info("Configuration loaded",
		zap.String("provider", cfg.Provider),
		zap.String("database_driver", cfg.DatabaseDriver),
		zap.Bool("redis", cfg.RedisAddr != ""))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Interview service failed", zap.Error(err))
	}
	logger.Info("Interview service exited")
}
