package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskManagementAPI/internal/auth"
	"taskManagementAPI/internal/config"
	"taskManagementAPI/internal/db"
	grpcserver "taskManagementAPI/internal/grpc"
	httpserver "taskManagementAPI/internal/http"
	"taskManagementAPI/internal/telemetry"
	"taskManagementAPI/repository"
)

func main() {
	// Load configuration
	cfg, err := config.LoadWithDefaults()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	log.Printf("Configuration loaded: %v", cfg)

	shutdownTracing, err := telemetry.Setup(context.Background(), cfg.Telemetry)
	if err != nil {
		log.Fatalf("setup telemetry: %v", err)
	}

	// Open DB
	d, err := db.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer func() {
		if err := d.Close(); err != nil {
			log.Printf("close db: %v", err)
		}
	}()

	users := repository.NewUserRepository(d)

	var sessions auth.SessionStore
	switch cfg.Auth.SessionStore {
	case config.SessionStoreSQLite:
		repo := repository.NewSessionRepository(d)
		n, err := repo.DeleteExpired(context.Background(), time.Now())
		if err != nil {
			log.Fatalf("purge sessions: %v", err)
		}
		log.Printf("Purged %d expired sessions", n)
		sessions = repo
	default:
		sessions = auth.NewMemorySessionStore()
	}

	authority := auth.NewAuthority(users, sessions, auth.Options{
		Secret:       cfg.Auth.SessionSecret,
		TTL:          cfg.Auth.SessionTTL,
		CookieName:   cfg.Auth.CookieName,
		CookieSecure: cfg.Auth.CookieSecure,
		BcryptCost:   cfg.Auth.BcryptCost,
	})
	router := httpserver.NewRouter(&httpserver.Server{
		Users:      users,
		Projects:   repository.NewProjectRepository(d),
		Tasks:      repository.NewTaskRepository(d),
		Auth:       authority,
		BcryptCost: cfg.Auth.BcryptCost,
	}, cfg.HTTP.BasePath)

	shutdownHTTP, err := httpserver.StartHTTP(cfg.HTTP.Address, router)
	if err != nil {
		log.Fatalf("start http: %v", err)
	}
	log.Printf("HTTP server listening on %s%s", cfg.HTTP.Address, cfg.HTTP.BasePath)

	shutdownGRPC := func(context.Context) error { return nil }
	if cfg.GRPC.Address != "" {
		shutdownGRPC, err = grpcserver.StartGRPC(cfg.GRPC.Address, d)
		if err != nil {
			log.Fatalf("start grpc: %v", err)
		}
		log.Printf("gRPC health server listening on %s", cfg.GRPC.Address)
	}

	// Wait for signal
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownHTTP(ctx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	if err := shutdownGRPC(ctx); err != nil {
		log.Printf("grpc shutdown error: %v", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		log.Printf("telemetry shutdown error: %v", err)
	}
}
