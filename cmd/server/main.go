// Waymark - Real-Time Location Sharing Backend
// Copyright 2026 Waymark Contributors
// SPDX-License-Identifier: MIT
// https://github.com/waymark-app/waymark

// Package main is the entry point for the Waymark server.
//
// Waymark is a small real-time location-sharing backend: users register
// and log in, post geo-tagged markers with photo and video attachments,
// and receive live marker and position updates over a WebSocket push
// channel.
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, optional config.yaml, environment (Koanf v2)
//  2. Document store: BadgerDB at DATABASE_PATH
//  3. Media storage: uploads directory, created if missing
//  4. Push-channel hub: broadcast relay for marker and position events
//  5. HTTP server: REST API, /ws upgrade endpoint, /uploads/ static files
//
// The hub and HTTP server run under a suture supervisor tree and the
// process shuts down gracefully on SIGINT and SIGTERM.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/waymark-app/waymark/internal/api"
	"github.com/waymark-app/waymark/internal/config"
	"github.com/waymark-app/waymark/internal/logging"
	"github.com/waymark-app/waymark/internal/media"
	"github.com/waymark-app/waymark/internal/store"
	"github.com/waymark-app/waymark/internal/supervisor"
	"github.com/waymark-app/waymark/internal/supervisor/services"
	ws "github.com/waymark-app/waymark/internal/websocket"
)

func main() {
	// A local .env is a convenience for development; absence is fine.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logging.Warn().Err(err).Msg("failed to load .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("db_path", cfg.Database.Path).
		Str("media_dir", cfg.Media.Dir).
		Msg("starting waymark")

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open document store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing document store")
		}
	}()

	mediaStorage, err := media.NewStorage(cfg.Media.Dir)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to prepare media directory")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog.
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create supervisor tree")
	}

	hub := ws.NewHub(st)
	tree.AddMessagingService(services.NewWebSocketHubService(hub))

	handler := api.NewHandler(st, cfg, hub, mediaStorage)
	router := api.NewRouter(handler).Setup()

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("http server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("service failed to stop within timeout")
	}

	logging.Info().Msg("waymark stopped gracefully")
}
