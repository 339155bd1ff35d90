package testserver

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/civicreport/internal/domain/activity"
	"github.com/rpggio/civicreport/internal/domain/report"
	"github.com/rpggio/civicreport/internal/lifecycle"
	"github.com/rpggio/civicreport/internal/mcp"
	"github.com/rpggio/civicreport/internal/media"
	"github.com/rpggio/civicreport/internal/metrics"
	"github.com/rpggio/civicreport/internal/ratelimit"
	"github.com/rpggio/civicreport/internal/sqlite"
	"github.com/rpggio/civicreport/internal/transport"
	"github.com/stretchr/testify/require"
)

// Options tweaks the wiring of a TestServer.
type Options struct {
	// Clock enables the lifecycle simulator driven by this clock.
	// When nil, reports stay submitted until edited.
	Clock clockwork.Clock
	// Limiter guards report submissions. Nil disables limiting.
	Limiter            *ratelimit.Limiter
	CancelOnStatusEdit bool
	PingMessage        string
}

type TestServer struct {
	Server    *httptest.Server
	DB        *sqlite.DB
	Reports   *report.Service
	Activity  *activity.Service
	Simulator *lifecycle.Simulator
	Metrics   *metrics.Metrics
	MediaDir  string
}

// New starts the full HTTP surface (REST, media, metrics and MCP) over an
// in-memory database.
func New(t *testing.T, opts Options) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	reportRepo := sqlite.NewReportRepository(db)
	activityRepo := sqlite.NewActivityRepository(db)
	m := metrics.New()
	activitySvc := activity.NewService(activityRepo, nil)

	var (
		scheduler report.Scheduler
		sim       *lifecycle.Simulator
		now       func() time.Time
	)
	if opts.Clock != nil {
		now = opts.Clock.Now
		sim = lifecycle.New(reportRepo, activitySvc, lifecycle.Config{
			Clock:    opts.Clock,
			Observer: m,
		})
		scheduler = sim
	}

	reportSvc := report.NewService(reportRepo, scheduler, activitySvc, nil, report.Options{
		CancelOnStatusEdit: opts.CancelOnStatusEdit,
		Now:                now,
		Observer:           m,
	})

	mediaDir := filepath.Join(t.TempDir(), "uploads")
	store, err := media.New(mediaDir, "/uploads")
	require.NoError(t, err)

	mcpServer := mcp.NewServer(mcp.Config{
		Services:      mcp.Services{Reports: reportSvc, Activity: activitySvc},
		TransportMode: "http",
	})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		nil,
	)

	server := httptest.NewServer(transport.NewServer(transport.Config{
		Reports:     reportSvc,
		Activity:    activitySvc,
		Media:       store,
		Limiter:     opts.Limiter,
		Metrics:     m,
		MCP:         mcpHandler,
		PingMessage: opts.PingMessage,
	}))

	t.Cleanup(func() {
		server.Close()
		if sim != nil {
			sim.Stop()
		}
		_ = db.Close()
	})

	return &TestServer{
		Server:    server,
		DB:        db,
		Reports:   reportSvc,
		Activity:  activitySvc,
		Simulator: sim,
		Metrics:   m,
		MediaDir:  mediaDir,
	}
}

// URL joins path onto the server's base URL.
func (ts *TestServer) URL(path string) string {
	return ts.Server.URL + path
}
