package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/civicreport/internal/config"
	"github.com/rpggio/civicreport/internal/domain/activity"
	"github.com/rpggio/civicreport/internal/domain/report"
	"github.com/rpggio/civicreport/internal/filestore"
	"github.com/rpggio/civicreport/internal/lifecycle"
	"github.com/rpggio/civicreport/internal/mcp"
	"github.com/rpggio/civicreport/internal/media"
	"github.com/rpggio/civicreport/internal/metrics"
	"github.com/rpggio/civicreport/internal/ratelimit"
	"github.com/rpggio/civicreport/internal/sqlite"
	"github.com/rpggio/civicreport/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	if cfg.Log.Path != "" {
		lf, err := openLogFile(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer lf.Close()
			logWriter = lf
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	var reportRepo report.Repository
	switch cfg.Store.Driver {
	case "file":
		reportRepo = filestore.New(cfg.Store.FilePath, logger)
	default:
		reportRepo = sqlite.NewReportRepository(db)
	}
	activityRepo := sqlite.NewActivityRepository(db)
	m := metrics.New()
	activitySvc := activity.NewService(activityRepo, logger)

	scheduler := report.NoopScheduler
	if cfg.Lifecycle.Enabled {
		sim := lifecycle.New(reportRepo, activitySvc, lifecycle.Config{
			AcknowledgeAfter: cfg.Lifecycle.AcknowledgeAfter,
			ProgressAfter:    cfg.Lifecycle.ProgressAfter,
			ResolveAfter:     cfg.Lifecycle.ResolveAfter,
			Logger:           logger,
			Observer:         m,
		})
		defer sim.Stop()
		scheduler = sim
	}

	reportSvc := report.NewService(reportRepo, scheduler, activitySvc, logger, report.Options{
		CancelOnStatusEdit: cfg.Lifecycle.CancelOnStatusEdit,
		Observer:           m,
	})

	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Reports:  reportSvc,
			Activity: activitySvc,
		},
		TransportMode: cfg.Transport.Mode,
		Logger:        logger,
	})

	if cfg.Transport.Mode == "stdio" {
		runStdioMode(logger, mcpServer)
		return
	}

	store, err := media.New(cfg.Media.Dir, cfg.Media.URLPrefix)
	if err != nil {
		logger.Error("failed to prepare media directory", "error", err)
		os.Exit(1)
	}

	limiter, closeLimiter := newLimiter(logger, cfg.RateLimit)
	defer closeLimiter()

	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)

	router := transport.NewServer(transport.Config{
		Reports:     reportSvc,
		Activity:    activitySvc,
		Media:       store,
		Limiter:     limiter,
		Metrics:     m,
		MCP:         mcpHandler,
		PingMessage: cfg.Server.PingMessage,
		Logger:      logger,
	})

	runHTTPMode(logger, router, cfg.Server.Host, cfg.Server.Port)
}

// newLimiter connects to Redis when configured. Without Redis, submissions
// are not limited.
func newLimiter(logger *slog.Logger, cfg config.RateLimitConfig) (*ratelimit.Limiter, func()) {
	if cfg.RedisURL == "" {
		return nil, func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	counter, err := ratelimit.NewRedisCounter(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warn("redis unavailable, rate limiting disabled", "error", err)
		return nil, func() {}
	}
	logger.Info("rate limiting enabled", "limit", cfg.Limit, "window", cfg.Window)
	return ratelimit.New(counter, cfg.Limit, cfg.Window, nil, logger), func() { _ = counter.Close() }
}

func runStdioMode(logger *slog.Logger, mcpServer *sdkmcp.Server) {
	logger.Info("starting stdio transport")

	transport := &sdkmcp.StdioTransport{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	// Run blocks until stdin closes or context is canceled
	if err := mcpServer.Run(ctx, transport); err != nil {
		logger.Error("stdio server error", "error", err)
	}
}

func runHTTPMode(logger *slog.Logger, handler http.Handler, host string, port int) {
	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
