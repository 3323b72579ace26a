package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"unichat-backend/internal/config"
	"unichat-backend/internal/email"
	"unichat-backend/internal/httpserver"
	"unichat-backend/internal/security"
	"unichat-backend/internal/store/postgres"
	"unichat-backend/internal/store/sqlite"
	"unichat-backend/internal/ws"
)

// @title           UniChat API
// @version         1.0
// @description     Backend API for the UniChat university social platform.

// @host            localhost:8000
// @BasePath        /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Store
	var repos httpserver.Repos
	switch cfg.DBDriver {
	case "postgres":
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()
		if err := postgres.Migrate(db); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		repos = httpserver.Repos{
			Users:         postgres.NewUserRepo(db),
			DirectMsgs:    postgres.NewDirectMessageRepo(db),
			GroupMsgs:     postgres.NewGroupMessageRepo(db),
			Groups:        postgres.NewGroupRepo(db),
			Notifications: postgres.NewNotificationRepo(db),
		}
	case "sqlite":
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()
		if err := sqlite.Migrate(db); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		repos = httpserver.Repos{
			Users:         sqlite.NewUserRepo(db),
			DirectMsgs:    sqlite.NewDirectMessageRepo(db),
			GroupMsgs:     sqlite.NewGroupMessageRepo(db),
			Groups:        sqlite.NewGroupRepo(db),
			Notifications: sqlite.NewNotificationRepo(db),
		}
	}

	// Security components
	tokenSvc := security.NewTokenService(cfg.JWTSecret, time.Duration(cfg.AccessTokenMinutes)*time.Minute)
	passwordHasher := security.NewPasswordHasher(0)

	// Presence backend
	var presence ws.PresenceRegistry
	switch cfg.PresenceBackend {
	case "redis":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		presence = ws.NewRedisPresence(redis.NewClient(opts))
	default:
		presence = ws.NewMemoryPresence()
	}

	// Email
	var mailer email.Sender = email.LogSender{}
	if cfg.ResendAPIKey != "" {
		mailer = email.NewResendSender(cfg.ResendAPIKey, cfg.FromEmail)
	}

	hub := ws.NewHub()

	router := httpserver.NewRouter(cfg, repos, hub, presence, tokenSvc, passwordHasher, mailer)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting UniChat server on %s\n", cfg.HTTPAddr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
