package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"

	"github.com/sjperalta/creditos-api/internal/config"
	"github.com/sjperalta/creditos-api/internal/database"
	"github.com/sjperalta/creditos-api/internal/handlers"
	"github.com/sjperalta/creditos-api/internal/jobs"
	"github.com/sjperalta/creditos-api/internal/localday"
	"github.com/sjperalta/creditos-api/internal/middleware"
	"github.com/sjperalta/creditos-api/internal/repository"
	"github.com/sjperalta/creditos-api/internal/services"
	"github.com/sjperalta/creditos-api/internal/web"
	"github.com/sjperalta/creditos-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	// Business days follow the configured zone
	cal, err := localday.Load(cfg.Timezone)
	if err != nil {
		logger.Error("Failed to load timezone", "timezone", cfg.Timezone, "error", err)
		os.Exit(1)
	}
	logger.Info("Calendar ready", "timezone", cfg.Timezone, "today", localday.Format(cal.Today()))

	repos := repository.NewRepositories(db)
	svcs := services.NewServices(db, repos, cfg, cal)

	if err := svcs.Auth.EnsureOperator(context.Background()); err != nil {
		logger.Error("Failed to seed operator account", "error", err)
		os.Exit(1)
	}

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "max_concurrent", cfg.WorkerCount)
	scheduleJobs(worker, svcs)

	tmpl, err := web.Templates(cal.Location())
	if err != nil {
		logger.Error("Failed to parse templates", "error", err)
		os.Exit(1)
	}

	h := handlers.NewHandlers(db, svcs, worker, cfg)
	router := setupRouter(h, cfg)
	router.SetHTMLTemplate(tmpl)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	worker.Shutdown()
	logger.Info("Background worker stopped")

	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	h.RegisterRoutes(router, cfg.AppSecret)

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services) {
	// Fill settlement rows for days without activity, once at startup and then hourly
	worker.ScheduleEveryImmediate("settlements", time.Hour, func(ctx context.Context) error {
		created, err := svcs.Settlement.EnsureContiguous(ctx)
		if err != nil {
			return err
		}
		if created > 0 {
			logger.Info("[Job] Filled missing settlements", "days", created)
		}
		return nil
	})

	logger.Info("Scheduled recurring jobs")
}
