package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/longform-dev/longform/api"
	"github.com/longform-dev/longform/cache"
	"github.com/longform-dev/longform/config"
	"github.com/longform-dev/longform/extractor"
	"github.com/longform-dev/longform/fallback"
	"github.com/longform-dev/longform/proxy"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("longform starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"fallback", cfg.Extract.Fallback,
	)

	// ── 3. Initialise proxy providers ───────────────────────────────
	registry := buildRegistry(cfg)
	if len(registry.Names()) == 0 {
		slog.Warn("no proxy provider has credentials; every fetch will fail",
			"hint", "set LONGFORM_ZYTE_API_KEY or LONGFORM_OXYLABS_USERNAME/PASSWORD")
	} else {
		slog.Info("proxy providers configured", "providers", registry.Names())
	}

	// ── 4. Initialise fallback extractor + pipeline ─────────────────
	fb, err := fallback.New(cfg.Extract.Fallback)
	if err != nil {
		slog.Error("failed to initialise fallback extractor", "error", err)
		os.Exit(1)
	}
	ex := extractor.New(registry, fb)

	// ── 4b. Initialise cache ────────────────────────────────────────
	cc := cache.New(cfg.Cache.MaxEntries)

	// ── 5. Setup router ─────────────────────────────────────────────
	router := api.NewRouter(ex, cfg, cc)

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("longform stopped")
}

// buildRegistry registers every proxy provider that has credentials.
func buildRegistry(cfg *config.Config) *proxy.Registry {
	var providers []proxy.Provider

	if cfg.Oxylabs.Username != "" && cfg.Oxylabs.Password != "" {
		providers = append(providers, proxy.NewOxylabs(
			cfg.Oxylabs.Endpoint,
			cfg.Oxylabs.Username,
			cfg.Oxylabs.Password,
			cfg.Oxylabs.GeoLocation,
			cfg.Oxylabs.Timeout,
		))
	}
	if cfg.Zyte.APIKey != "" {
		providers = append(providers, proxy.NewZyte(
			cfg.Zyte.Endpoint,
			cfg.Zyte.APIKey,
			cfg.Zyte.Timeout,
		))
	}

	return proxy.NewRegistry(providers...)
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
