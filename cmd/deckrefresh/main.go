// ABOUTME: Main entry point for the deck refresh service
// ABOUTME: Wires storage, upstream adapters, the cache client and admin API, then refreshes on a timer

package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deckthumb-cache/api"
	"deckthumb-cache/core/interfaces"
	"deckthumb-cache/core/scheduler"
	"deckthumb-cache/core/workers"
	"deckthumb-cache/deckcache"
	stdhttp "deckthumb-cache/infrastructure/http/standard"
	logruslogger "deckthumb-cache/infrastructure/logger/logrus"
	"deckthumb-cache/infrastructure/upstream"
	"deckthumb-cache/pkg/config"
	"deckthumb-cache/pkg/featureflags"
	"deckthumb-cache/pkg/utils/duration"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	// Load configuration
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := logruslogger.New(logruslogger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: logOutput(cfg.Log),
	})
	logger.Info("Starting deck refresh service", map[string]interface{}{
		"cache_type":    cfg.Cache.Type,
		"refresh_timer": duration.HumanReadable(cfg.Refresh.Interval),
		"deck_api":      cfg.Upstream.DeckBaseURL,
	})

	flags := featureflags.NewEnvManager("FEATURE_")

	cache, closeCache, err := buildCache(cfg.Cache, logger)
	if err != nil {
		log.Fatalf("Failed to create cache: %v", err)
	}
	defer func() {
		if err := closeCache(); err != nil {
			logger.Warn("Failed to close cache", map[string]interface{}{"error": err.Error()})
		}
	}()

	httpClient := stdhttp.NewStandardHTTPClient(cfg.Upstream.Timeout)

	rps := cfg.Upstream.RequestsPerSecond
	if !flags.IsEnabled(context.Background(), featureflags.UpstreamRateLimit) {
		rps = 0
	}
	fetcher := upstream.NewHTTPDeckFetcher(cfg.Upstream.DeckBaseURL, httpClient, rps, cfg.Upstream.Burst)
	generator := upstream.NewRemoteGenerator(cfg.Upstream.RenderURL, httpClient)

	client, err := deckcache.NewClient(
		deckcache.WithCache(cache),
		deckcache.WithKeyPrefix(cfg.Cache.KeyPrefix),
		deckcache.WithLogger(logger),
		deckcache.WithFetcher(fetcher),
		deckcache.WithGenerator(generator),
		deckcache.WithConfigReader(featureflags.NewFlagConfigReader(flags)),
		deckcache.WithYielder(buildYielder(cfg.Refresh)),
		deckcache.WithSchedulerConfig(scheduler.Config{
			BatchSize:           cfg.Refresh.BatchSize,
			MaxConsecutiveSkips: cfg.Refresh.MaxConsecutiveSkips,
			JitterMin:           cfg.Refresh.JitterMin,
			JitterMax:           cfg.Refresh.JitterMax,
		}),
		deckcache.WithTTL(cfg.Refresh.TTL),
		deckcache.WithCooldown(cfg.Refresh.Cooldown),
		deckcache.WithWorkerConfig(workers.WorkerConfig{QueueSize: cfg.Refresh.QueueSize}),
	)
	if err != nil {
		log.Fatalf("Failed to create deck cache client: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var srv *http.Server
	if cfg.Server.Port != "" {
		router := api.NewRouter(client, fetcher, api.APIConfig{
			Logger:     logger,
			RateLimit:  cfg.Server.RateLimit,
			RateWindow: cfg.Server.RateWindow,
		})
		srv = api.NewServer(":"+cfg.Server.Port, router)
		go func() {
			logger.Info("Admin API starting", map[string]interface{}{
				"address": srv.Addr,
			})
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Admin API error", map[string]interface{}{
					"error": err.Error(),
				})
				stop()
			}
		}()
	}

	runRefreshLoop(ctx, client, fetcher, cfg.Refresh.Interval, logger)

	logger.Info("Shutting down deck refresh service...", nil)
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Admin API forced to shutdown", map[string]interface{}{
				"error": err.Error(),
			})
		}
		cancel()
	}
	if err := client.Close(); err != nil {
		logger.Error("Failed to stop refresh worker", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	logger.Info("Deck refresh service stopped", nil)
}

// logOutput returns a rotating file writer when a log file is configured
func logOutput(cfg config.LogConfig) io.Writer {
	if cfg.File == "" {
		return os.Stdout
	}
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    500, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
}

// buildYielder paces regenerations with a token bucket when configured, else a fixed pause
func buildYielder(cfg config.RefreshConfig) interfaces.IdleYielder {
	if cfg.RegenerationsPerSecond > 0 {
		return scheduler.NewRateYielder(cfg.RegenerationsPerSecond, 1)
	}
	return scheduler.NewTimerYielder(cfg.IdleFallback)
}

// runRefreshLoop runs one pass immediately and then every interval until ctx ends
func runRefreshLoop(ctx context.Context, client *deckcache.Client, lister *upstream.HTTPDeckFetcher, interval time.Duration, logger interfaces.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		refreshOnce(ctx, client, lister, logger)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func refreshOnce(ctx context.Context, client *deckcache.Client, lister *upstream.HTTPDeckFetcher, logger interfaces.Logger) {
	decks, err := lister.ListDecks(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logger.Error("Failed to list decks", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return
	}

	res, err := client.Refresh(ctx, decks)
	if err != nil {
		if !deckcache.IsCancelledError(err) {
			logger.Error("Refresh pass failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return
	}
	if res.Disabled {
		logger.Debug("Refresh pass skipped by feature flags", nil)
	}
}
