package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"promptforge/config"
	"promptforge/db"
	"promptforge/internal/api"
	"promptforge/internal/auth"
	"promptforge/observability"
	"promptforge/repository"
	"promptforge/services"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		observability.Fatal("invalid configuration", "error", err)
	}

	observability.InitLogger(cfg.Production)
	observability.InitMetrics()

	if err := db.Migrate(cfg.Database.URL); err != nil {
		observability.Fatal("failed to run migrations", "error", err)
	}

	ctx := context.Background()

	repo, err := repository.NewRepository(ctx, cfg.Database.URL)
	if err != nil {
		observability.Fatal("failed to connect to database", "error", err)
	}
	defer repo.Close()

	observability.Info("connected to database")

	sessions, err := auth.NewSessionManager(cfg.Database.URL, cfg.Session.Secret, cfg.Production)
	if err != nil {
		observability.Fatal("failed to initialize session store", "error", err)
	}
	defer sessions.Close()

	enhancer := services.NewEnhancer(cfg, repo)
	prefs := services.NewModelPreferences()

	handler := api.NewHandler(cfg, repo, sessions, enhancer, prefs)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Duration(cfg.OpenAI.TimeoutSeconds) * time.Second,
	}

	go func() {
		observability.Info("starting server", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			observability.Fatal("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	observability.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		observability.Fatal("server forced to shutdown", "error", err)
	}

	observability.Info("server stopped")
}
