package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/igokul95/splitzer/internal/api"
	"github.com/igokul95/splitzer/internal/auth"
	"github.com/igokul95/splitzer/internal/balance"
	"github.com/igokul95/splitzer/internal/config"
	"github.com/igokul95/splitzer/internal/service"
	"github.com/igokul95/splitzer/internal/storage/sqlite"
	"github.com/igokul95/splitzer/pkg/logging"
	"github.com/igokul95/splitzer/pkg/ocr"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	logging.Setup()
	logger := slog.Default()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("Storage initialized", "database", cfg.Database.Path)

	engine := balance.NewEngine(store, logger)
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenDuration)
	authSvc := service.NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager, logger)

	var scanner *ocr.Client
	if cfg.OCR.ApiUrl != "" {
		scanner = ocr.NewClient(cfg.OCR.ApiUrl, cfg.OCR.ApiKey)
		logger.Info("Receipt scanning enabled", "url", cfg.OCR.ApiUrl)
	}

	handler := api.New(
		authSvc,
		service.NewExpenseService(store, engine, logger),
		service.NewGroupService(store, logger),
		service.NewFriendService(store, logger),
		service.NewActivityService(store, logger),
		scanner,
		jwtManager,
		logger,
	).Handler()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: handler,
	}

	// Serve until interrupted, then drain in-flight requests.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("Shutting down", "timeout", cfg.Server.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Shutdown failed", "error", err)
			os.Exit(1)
		}
	}
	logger.Info("Server stopped")
}
