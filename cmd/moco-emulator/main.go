// Package main runs a local MOCO API emulator for development and dry runs.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shunichi-ikebuchi/sepa-export/internal/emulator"
)

const (
	defaultPort     = "8080"
	defaultFixtures = "./testdata/moco-fixtures.yaml"
	defaultToken    = "emulator-token"
)

func main() {
	// Setup structured JSON logging.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	port := getEnvOrDefault("PORT", defaultPort)
	fixturesPath := getEnvOrDefault("FIXTURES_PATH", defaultFixtures)
	token := getEnvOrDefault("MOCO_TOKEN", defaultToken)

	fixtures, err := emulator.LoadFixtures(fixturesPath)
	if err != nil {
		slog.Error("failed to load fixtures", "error", err, "path", fixturesPath)
		os.Exit(1)
	}

	slog.Info("fixtures loaded",
		"path", fixturesPath,
		"invoices", len(fixtures.Invoices),
		"projects", len(fixtures.Projects),
		"customers", len(fixtures.Customers),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Mount("/api/v1", emulator.NewServer(fixtures, token).Router())

	addr := fmt.Sprintf(":%s", port)
	slog.Info("starting MOCO API emulator", "addr", addr, "base_url", fmt.Sprintf("http://localhost%s/api/v1", addr))

	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		slog.Info("shutting down server")
		if err := server.Close(); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
