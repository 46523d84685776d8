/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the debt engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment), then apply flags
  2. Initialize logger
  3. Initialize SQLite store (migrations run on open)
  4. Initialize summary cache (Redis or in-process LRU)
  5. Create API handler and router
  6. Start the due-soon scheduler
  7. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides PORT)
  -db      SQLite database path (overrides DB_PATH)
           Use ":memory:" for in-memory database

ENVIRONMENT:
  PORT, DB_PATH, REDIS_ADDR, CACHE_TTL, CACHE_SIZE, DUE_SOON_ENABLED,
  DUE_SOON_INTERVAL, LOG_LEVEL, LOG_FORMAT, CORS_ORIGINS. See config/.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close cache and database connections
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/debts.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Use Redis for the summary cache
  REDIS_ADDR=localhost:6379 ./server

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/debt-engine/api"
	"github.com/warp/debt-engine/cache"
	"github.com/warp/debt-engine/config"
	"github.com/warp/debt-engine/debt"
	"github.com/warp/debt-engine/logging"
	"github.com/warp/debt-engine/payoff"
	"github.com/warp/debt-engine/store/sqlite"
)

func main() {
	cfg := config.Load()

	// Flags
	port := flag.String("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	flag.Parse()
	cfg.Port = *port
	cfg.DBPath = *dbPath

	logger := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		JSON:   cfg.LogFormat == "json",
		Output: os.Stdout,
	})
	logging.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", logging.FieldError, err)
		os.Exit(1)
	}

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Error("failed to initialize database", logging.FieldError, err, "path", cfg.DBPath)
		os.Exit(1)
	}
	defer store.Close()

	summaries, closeCache := newSummaryCache(cfg, logger.WithComponent(logging.ComponentCache))
	defer closeCache()

	// Initialize handler
	svc := debt.NewService(store, store, store)
	handler := api.NewHandler(svc, summaries, logger)

	// Create router
	router := api.NewRouter(handler, cfg.CORSOrigins)

	scheduler := api.NewDueSoonScheduler(svc, logger)
	scheduler.CheckInterval = cfg.DueSoonInterval
	scheduler.Enabled = cfg.DueSoonEnabled
	scheduler.Start()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting",
			logging.FieldOperation, logging.OpStartup,
			"addr", "http://localhost:"+cfg.Port,
			"db", cfg.DBPath,
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", logging.FieldError, err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server", logging.FieldOperation, logging.OpShutdown)
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", logging.FieldError, err)
	}

	logger.Info("server stopped")
}

// newSummaryCache picks Redis when configured and reachable, otherwise an
// in-process LRU swept once per TTL.
func newSummaryCache(cfg *config.Config, logger *logging.Logger) (cache.Cache[payoff.Summary], func()) {
	if cfg.RedisAddr != "" {
		r := cache.NewRedis[payoff.Summary](cfg.RedisAddr, cfg.CacheTTL)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		err := r.Ping(ctx)
		if err == nil {
			logger.Info("using redis summary cache", "addr", cfg.RedisAddr)
			return r, func() { r.Close() }
		}
		logger.Warn("redis unreachable, falling back to in-process cache",
			"addr", cfg.RedisAddr,
			logging.FieldError, err,
		)
		r.Close()
	}

	lru := cache.NewLRU[payoff.Summary](cfg.CacheSize, cfg.CacheTTL)
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.CacheTTL)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := lru.CleanExpired(); n > 0 {
					logger.Debug("expired summaries removed", logging.FieldCount, n)
				}
			case <-done:
				return
			}
		}
	}()
	logger.Info("using in-process summary cache", "size", cfg.CacheSize, "ttl", cfg.CacheTTL.String())
	return lru, func() { close(done) }
}
