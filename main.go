package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"counseling-app-server/internal/config"
	"counseling-app-server/internal/database"
	"counseling-app-server/internal/logger"
	"counseling-app-server/internal/middleware"
	"counseling-app-server/internal/notify"
	"counseling-app-server/internal/routes"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	envErr := godotenv.Load()

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	zl, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if envErr != nil {
		zl.Warn("No .env file loaded", zap.Error(envErr))
	}

	if err := run(cfg, zl); err != nil {
		zl.Fatal("Server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connection
	st, err := database.Open(ctx, cfg.Database, zl)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			zl.Error("Error closing database", zap.Error(err))
		}
	}()

	var notifier notify.Notifier = notify.Nop{}
	if cfg.Mailer.Transport != "" {
		mailer, err := notify.NewEmailNotifier(cfg.Mailer.Transport, cfg.Mailer.DefaultFrom, cfg.Mailer.AppURL)
		if err != nil {
			return err
		}
		notifier = mailer
	} else {
		zl.Warn("MAILER_TRANSPORT not set; urgent email alerts are disabled")
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(zl), middleware.Recovery(zl))

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	appointments := routes.SetupRoutes(router, routes.Dependencies{
		Store:    st,
		Config:   cfg,
		Logger:   zl,
		Notifier: notifier,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		zl.Info("Server running", zap.String("port", cfg.Port), zap.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	zl.Info("Shutting down server", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	if err := appointments.Close(shutdownCtx); err != nil {
		zl.Warn("Urgent alerts still in flight at shutdown", zap.Error(err))
	}
	zl.Info("Server stopped")
	return nil
}
