package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/civicreport/internal/domain/activity"
	"github.com/rpggio/civicreport/internal/domain/report"
)

// ReportService defines report operations needed by MCP.
type ReportService interface {
	Create(ctx context.Context, req report.CreateRequest) (*report.Report, error)
	List(ctx context.Context, q report.Query) ([]report.Report, error)
	Get(ctx context.Context, id string) (*report.Report, error)
	Update(ctx context.Context, req report.UpdateRequest) (*report.Report, error)
	Analytics(ctx context.Context) (report.Analytics, error)
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	ForReport(ctx context.Context, reportID string, limit int) ([]activity.ActivityEntry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Reports  ReportService
	Activity ActivityService
}

// Config contains server configuration.
type Config struct {
	Services      Services
	TransportMode string // "stdio" or "http"
	Version       string
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	version := cfg.Version
	if version == "" {
		version = "0.1.0"
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "civicreport",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Services)

	if cfg.Logger != nil {
		cfg.Logger.Info("mcp server ready", "transport", cfg.TransportMode, "version", version, "tools", len(toolNames))
	}
	return server
}
