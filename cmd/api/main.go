package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"database/sql"

	"github.com/cardkeeper/cardkeeper/internal/config"
	"github.com/cardkeeper/cardkeeper/internal/handler"
	"github.com/cardkeeper/cardkeeper/internal/integrations/cbr"
	"github.com/cardkeeper/cardkeeper/internal/middleware"
	"github.com/cardkeeper/cardkeeper/internal/repository"
	"github.com/cardkeeper/cardkeeper/internal/service"
	"github.com/cardkeeper/cardkeeper/internal/utils/email"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const reminderSchedule = "0 9 * * *"

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if len(cfg.JWTSecret) < 32 {
		logger.Warnf("JWT_SECRET should be at least 32 characters long, got %d", len(cfg.JWTSecret))
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	if err := repo.Migrate(context.Background()); err != nil {
		logger.Fatalf("Failed to apply schema: %v", err)
	}

	var mailer *email.Sender
	if cfg.SMTPConfigured() {
		mailer = email.NewSender(cfg, logger)
	}
	svc := service.NewService(repo, mailer, logger, cfg)
	ratesClient := cbr.NewClient(cfg, logger)
	h := handler.NewHandler(svc, ratesClient, logger, cfg)

	// Rate limiter: Redis when configured, in-process otherwise
	var limiter middleware.RateLimiter
	if cfg.RedisAddr != "" {
		limiter, err = middleware.NewRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			cfg.RateLimitMax, cfg.RateLimitWindow, logger)
		if err != nil {
			logger.Warnf("Redis rate limiter unavailable, falling back to memory: %v", err)
			limiter = nil
		}
	}
	if limiter == nil {
		limiter = middleware.NewMemoryRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
	}
	defer limiter.Close()

	// Setup router
	r := mux.NewRouter()
	r.HandleFunc("/health", h.Health).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.RateLimit(limiter, logger))
	api.Use(middleware.Sanitize)

	// Public routes
	api.HandleFunc("/auth/register", h.Register).Methods("POST")
	api.HandleFunc("/auth/login", h.Login).Methods("POST")
	api.HandleFunc("/users", h.CreateUser).Methods("POST")
	api.HandleFunc("/users/{id}", h.GetUser).Methods("GET")
	api.HandleFunc("/users/{userId}/cards", h.GetUserCards).Methods("GET")
	api.HandleFunc("/rates/key", h.KeyRate).Methods("GET")

	// Protected routes
	authRouter := api.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.Auth(svc, logger))
	authRouter.HandleFunc("/auth/me", h.Me).Methods("GET")
	authRouter.HandleFunc("/cards", h.CreateCard).Methods("POST")
	authRouter.HandleFunc("/cards", h.ListCards).Methods("GET")
	authRouter.HandleFunc("/cards/{id}", h.GetCard).Methods("GET")
	authRouter.HandleFunc("/cards/{id}", h.UpdateCard).Methods("PUT")
	authRouter.HandleFunc("/cards/{id}", h.DeleteCard).Methods("DELETE")
	authRouter.HandleFunc("/transactions", h.CreateTransaction).Methods("POST")
	authRouter.HandleFunc("/transactions", h.ListTransactions).Methods("GET")
	authRouter.HandleFunc("/transactions/card/{cardId}", h.ListCardTransactions).Methods("GET")
	authRouter.HandleFunc("/transactions/{id}", h.GetTransaction).Methods("GET")
	authRouter.HandleFunc("/transactions/{id}", h.DeleteTransaction).Methods("DELETE")

	// Due date reminder job
	scheduler := cron.New()
	if mailer != nil {
		_, err := scheduler.AddFunc(reminderSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := svc.SendDueReminders(ctx); err != nil {
				logger.Errorf("Reminder job failed: %v", err)
			}
		})
		if err != nil {
			logger.Fatalf("Failed to schedule reminder job: %v", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	// CORS and logging wrap the router itself: mux only runs Use middleware
	// after a route matches, and preflight OPTIONS requests match nothing.
	root := middleware.RequestLogger(logger)(middleware.CORS(cfg.CORSOrigin)(r))

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      root,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received, closing HTTP server and DB connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
}
