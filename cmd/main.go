package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/idpscout/internal/adapters/fetch"
	"github.com/okian/idpscout/internal/adapters/http/api"
	"github.com/okian/idpscout/internal/adapters/http/swagger"
	"github.com/okian/idpscout/internal/adapters/mcptools"
	"github.com/okian/idpscout/internal/adapters/provider/espn"
	"github.com/okian/idpscout/internal/adapters/provider/sleeper"
	service "github.com/okian/idpscout/internal/app"
	"github.com/okian/idpscout/internal/config"
	"github.com/okian/idpscout/pkg/logger"
	"github.com/okian/idpscout/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 60 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	redisPingTimeout          = 3 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
	redisKeyPrefix            = "idpscout:"
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// defaults -> optional file -> env
	cfg, err := config.Load()
	if err != nil {
		log.Error(ctx, "failed to load config", logger.Error(err))
		os.Exit(1)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	cache, closeCache, err := newCache(ctx, cfg)
	if err != nil {
		log.Error(ctx, "failed to connect cache", logger.Error(err))
		os.Exit(1)
	}
	defer closeCache()

	svc := newService(cfg, cache, log)
	handler, err := newHandler(cfg, svc)
	if err != nil {
		log.Error(ctx, "failed to register routes", logger.Error(err))
		os.Exit(1)
	}

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("cache", cache.Backend()),
			logger.Int("season", svc.CurrentSeason()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
}

// newCache returns a Redis-backed cache when redis_addr is set, otherwise an
// in-process one. The returned func releases the connection.
func newCache(ctx context.Context, cfg *config.Config) (fetch.Cache, func(), error) {
	if cfg.RedisAddr == "" {
		return fetch.NewMemoryCache(), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
	}
	return fetch.NewRedisCache(client, redisKeyPrefix), func() { _ = client.Close() }, nil
}

// newService wires both upstream clients over a shared cache.
func newService(cfg *config.Config, cache fetch.Cache, log logger.Logger) *service.Service {
	fetcher := func(provider string) *fetch.Client {
		return fetch.NewClient(
			fetch.WithProvider(provider),
			fetch.WithTimeout(cfg.HTTPTimeout()),
			fetch.WithUserAgent(cfg.UserAgent),
			fetch.WithRetry(cfg.RetryAttempts, cfg.RetryBackoff()),
			fetch.WithCache(cache),
			fetch.WithLogger(log),
		)
	}

	stats := espn.New(fetcher("espn"),
		espn.WithBaseURLs(cfg.ESPNCoreURL, cfg.ESPNSiteURL),
		espn.WithLeadersLimit(cfg.LeadersLimit),
		espn.WithStatsTTL(cfg.StatsTTL()),
	)
	platform := sleeper.New(fetcher("sleeper"),
		sleeper.WithBaseURL(cfg.SleeperURL),
		sleeper.WithTTLs(cfg.RegistryTTL(), cfg.LeagueTTL()),
	)

	return service.New(stats, platform,
		service.WithLogger(log),
		service.WithLeaderCategories(cfg.LeaderCategories),
		service.WithConcurrency(cfg.FetchConcurrency),
		service.WithStrictMatching(cfg.StrictMatching),
		service.WithDefaultScoring(cfg.DefaultScoring),
		service.WithMaxResults(cfg.MaxResults),
	)
}

// newHandler registers the API, MCP and docs routes behind the outer
// middleware stack.
func newHandler(cfg *config.Config, svc *service.Service) (http.Handler, error) {
	mux := http.NewServeMux()
	if err := swagger.Register(mux); err != nil {
		return nil, err
	}
	api.NewServer(svc, svc, cfg.MaxResults).Register(mux)
	if cfg.MCPPath != "" {
		mux.Handle(cfg.MCPPath, mcptools.NewHandler(svc, cfg.MaxResults))
	}
	return api.Wrap(mux, cfg.CORSOrigins), nil
}

// startSystemMetricsUpdater refreshes process metrics until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
