package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"paketomat/internal/config"
	"paketomat/internal/label"
	"paketomat/internal/portal"
	"paketomat/internal/server"
)

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration
	if err := config.LoadEnvFile(".env"); err != nil {
		return fmt.Errorf("failed to load .env file: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.RequireCredentials(); err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	// Every request shares this session; it is renewed when the portal expires it
	client, err := portal.NewClient(ctx, cfg.PortalConfig(), logger)
	if err != nil {
		return fmt.Errorf("failed to reach portal: %w", err)
	}
	if err := client.Login(ctx, cfg.PortalUsername, cfg.PortalPassword); err != nil {
		return fmt.Errorf("portal login failed: %w", err)
	}
	logger.Info("Logged in to portal", "base_url", cfg.PortalBaseURL, "user", cfg.PortalUsername)

	rasterizer := label.New(cfg.LabelOptions(), logger)
	session := server.NewSession(client).WithRelogin(server.Credentials{
		Username: cfg.PortalUsername,
		Password: cfg.PortalPassword,
	}, logger)
	handlers := server.NewHandlers(session, rasterizer, cfg.EffectiveCacheTTL(), logger)
	defer handlers.Close()

	if cfg.ServerAPIKey == "" {
		logger.Warn("No API key configured, the label service is unauthenticated")
	}

	srv := &http.Server{
		Addr:    cfg.Address(),
		Handler: server.NewRouter(handlers, cfg.ServerAPIKey, logger),

		// Timeouts
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 4*cfg.PortalTimeout + time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Handle server startup and graceful shutdown
	shutdownTimeout := 30 * time.Second
	return server.Run(ctx, srv, shutdownTimeout, logger)
}
