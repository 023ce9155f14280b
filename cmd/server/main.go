// Package main is the entry point for the eco-driving telemetry server.
//
// The main package stays minimal — its job is to:
// 1. Set up logging
// 2. Load and validate configuration from the environment
// 3. Create and start the server
//
// All actual logic lives in imported packages (internal/server,
// internal/handler, etc.).
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/ecodriven/internal/config"
	"github.com/sakif/ecodriven/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// The data directory must exist before sqlite can create the file.
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(cfg.DBPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
