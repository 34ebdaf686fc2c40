package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"submission-review-service/internal/adapters/primary/http/handlers"
	"submission-review-service/internal/adapters/primary/http/middleware"
	"submission-review-service/internal/adapters/secondary/memory"
	"submission-review-service/internal/adapters/secondary/postgres"
	"submission-review-service/internal/adapters/secondary/smtp"
	"submission-review-service/internal/config"
	"submission-review-service/internal/core/domain"
	output "submission-review-service/internal/core/ports/output"
	"submission-review-service/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// stores bundles the output ports selected by STORE_DRIVER.
type stores struct {
	submissions   output.SubmissionRepository
	events        output.ReviewEventRepository
	notifications output.NotificationRepository
	directory     output.UserDirectory
	ping          func(ctx context.Context) error
	// remember records token identities in a process-local directory.
	remember func(domain.Identity)
	close    func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	var st *stores
	switch cfg.Store.Driver {
	case "memory":
		st = newMemoryStores()
		log.Warn("using in-memory store; data is lost on restart")
	default:
		st, err = newPostgresStores(cfg)
		if err != nil {
			log.Fatalf("init postgres store: %v", err)
		}
	}
	defer st.close()

	// ============================================================================
	// Hexagonal Architecture Wiring
	// ============================================================================

	// Secondary Adapters (Output Ports - Mailer)
	mailer := smtp.NewMailer(&cfg.SMTP)
	if mailer.IsAvailable() {
		log.WithField("host", cfg.SMTP.Host).Info("SMTP mailer initialized")
	} else {
		log.Info("SMTP not configured, notifications stay in-app")
	}

	// Core Services (Application Layer)
	paging := services.Paging{
		DefaultSize: cfg.Review.DefaultPageSize,
		MaxSize:     cfg.Review.MaxPageSize,
	}
	eligibility := services.NewEligibilityResolver(services.NewFirstOpenerPolicy(st.submissions))
	dispatcher := services.NewDispatcher(st.notifications, st.submissions, st.directory, mailer, services.DispatchOptions{
		Timeout:        cfg.Dispatch.Timeout,
		MaxAttempts:    cfg.Dispatch.MaxAttempts,
		InitialBackoff: cfg.Dispatch.InitialBackoff,
		Fanout:         cfg.Dispatch.Fanout,
	})
	reviewSvc := services.NewReviewService(st.submissions, st.events, st.directory, eligibility, dispatcher, cfg.Store.Timeout).
		WithEventRetry(services.RetryPolicy{
			Timeout:        cfg.Store.Timeout,
			MaxAttempts:    cfg.Dispatch.MaxAttempts,
			InitialBackoff: cfg.Dispatch.InitialBackoff,
		})
	querySvc := services.NewQueryService(st.submissions, st.events, st.directory, eligibility, paging, cfg.Store.Timeout)
	submissionSvc := services.NewSubmissionService(st.submissions, dispatcher, paging, cfg.Store.Timeout)
	notificationSvc := services.NewNotificationService(st.notifications, paging, cfg.Store.Timeout)

	// Primary Adapter (HTTP Handlers)
	h := handlers.New(reviewSvc, querySvc, submissionSvc, notificationSvc, paging)

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), gin.Recovery())

	api := router.Group("/api/v1", middleware.Auth(cfg.Auth.JWTSecret))
	if st.remember != nil {
		api.Use(func(c *gin.Context) {
			if id, ok := middleware.GetIdentity(c); ok {
				st.remember(id)
			}
			c.Next()
		})
	}
	h.RegisterRoutes(api)

	// Health check with store ping
	router.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.Store.Timeout)
		defer cancel()
		if err := st.ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "store": cfg.Store.Driver})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
}

func newPostgresStores(cfg *config.Config) (*stores, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.Database.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	log.Info("database connection established")

	if cfg.Database.Migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		log.Info("database schema up to date")
	}

	return &stores{
		submissions:   postgres.NewSubmissionRepository(pool),
		events:        postgres.NewReviewEventRepository(pool),
		notifications: postgres.NewNotificationRepository(pool),
		directory:     postgres.NewUserDirectory(pool),
		ping:          pool.Ping,
		close:         pool.Close,
	}, nil
}

func newMemoryStores() *stores {
	directory := memory.NewDirectory()
	return &stores{
		submissions:   memory.NewSubmissionStore(directory),
		events:        memory.NewEventStore(),
		notifications: memory.NewNotificationStore(),
		directory:     directory,
		ping:          func(context.Context) error { return nil },
		remember: func(id domain.Identity) {
			directory.Ensure(domain.User{ID: id.ID, DisplayName: id.Name, Role: id.Role})
		},
		close: func() {},
	}
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
