// Package main is the entry point for the Mediatiff mediation backend
// server. It provides a REST API for case intake and lifecycle tracking:
// claimants file disputes against an opposite party, proof files are
// archived in blob storage, the opposite party is notified by email with a
// link to the case, and the case moves through a guarded status lifecycle
// up to resolution by a three-member mediation panel.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mediatiff/mediation-server/internal/config"
	"github.com/mediatiff/mediation-server/internal/database"
	"github.com/mediatiff/mediation-server/internal/handlers"
	"github.com/mediatiff/mediation-server/internal/mailer"
	"github.com/mediatiff/mediation-server/internal/middleware"
	"github.com/mediatiff/mediation-server/internal/services"
	"github.com/mediatiff/mediation-server/internal/storage"
	"github.com/mediatiff/mediation-server/internal/store"
)

func main() {
	// Initialize structured logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	sugar := logger.Sugar()

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		sugar.Fatalf("Failed to load config: %v", err)
	}

	sugar.Infow("Starting Mediatiff Mediation Server",
		"port", cfg.Port,
		"env", cfg.Environment,
		"base_url", cfg.PublicBaseURL,
	)

	ctx := context.Background()

	// Apply schema migrations, then open the connection pool
	if err := database.Migrate(ctx, cfg.DatabaseURL); err != nil {
		sugar.Fatalf("Failed to run migrations: %v", err)
	}
	db, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		sugar.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Stores
	userStore := store.NewPostgresUserStore(db)
	caseStore := store.NewPostgresCaseStore(db, userStore)
	panelStore := store.NewPostgresPanelStore(db)

	// Proof archive (S3 / MinIO)
	blobs, err := storage.NewS3Store(ctx, storage.S3Config{
		Endpoint:      cfg.S3Endpoint,
		Region:        cfg.S3Region,
		Bucket:        cfg.S3Bucket,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		PublicBaseURL: cfg.S3PublicBaseURL,
	})
	if err != nil {
		sugar.Fatalf("Failed to initialize blob store: %v", err)
	}
	archive := storage.NewArchive(blobs, sugar)

	// Outbound notification mailer
	mail := mailer.NewResendMailer(cfg.ResendAPIKey, cfg.EmailFrom, sugar)

	// Services
	userSvc := services.NewUserService(userStore, caseStore, sugar)
	caseSvc := services.NewCaseService(caseStore, userStore, mail, cfg.PublicBaseURL, cfg.NotifyTimeout, sugar)
	panelSvc := services.NewPanelService(panelStore, caseStore, userStore, sugar)

	// Handlers
	userHandler := handlers.NewUserHandler(userSvc, sugar)
	caseHandler := handlers.NewCaseHandler(caseSvc, sugar)
	panelHandler := handlers.NewPanelHandler(panelSvc, sugar)
	uploadHandler := handlers.NewUploadHandler(archive, sugar)
	healthHandler := handlers.NewHealthHandler(db, sugar)

	// Rate limiter: shared Redis window when configured, in-memory otherwise
	var limiter middleware.Limiter
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			sugar.Fatalf("Invalid REDIS_URL: %v", err)
		}
		limiter = middleware.NewRedisLimiter(redis.NewClient(opts), cfg.RateLimitRPM)
		sugar.Info("Using Redis rate limiter")
	} else {
		limiter = middleware.NewMemoryLimiter(cfg.RateLimitRPM)
	}

	// Build router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Rate limiting
	r.Use(middleware.RateLimit(limiter, sugar))

	// API Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", healthHandler.Check)
		r.Get("/health/ready", healthHandler.Ready)

		// Party directory
		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.Create)
			r.Get("/", userHandler.List)
			r.Get("/lookup", userHandler.Lookup) // find by email
			r.Get("/{id}", userHandler.Get)
			r.Put("/{id}", userHandler.Update)
			r.With(middleware.RequireAuth(cfg.JWTSecret)).Delete("/{id}", userHandler.Delete)
		})

		// Case lifecycle
		r.Route("/cases", func(r chi.Router) {
			r.Post("/", caseHandler.Create) // create + notify opposite party
			r.Get("/", caseHandler.List)
			r.Get("/{id}", caseHandler.Get)
			r.Put("/{id}", caseHandler.Update) // guarded status transitions
			r.With(middleware.RequireAuth(cfg.JWTSecret)).Delete("/{id}", caseHandler.Delete)
		})

		// Mediation panels
		r.Route("/panels", func(r chi.Router) {
			r.Post("/", panelHandler.Create)
			r.Get("/", panelHandler.List)
		})

		// Proof archive
		r.Post("/upload", uploadHandler.Single)
		r.Post("/upload/batch", uploadHandler.Batch)
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // uploads can be slow
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sugar.Infof("Server listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	sugar.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Fatalf("Forced shutdown: %v", err)
	}

	sugar.Info("Server stopped")
}
