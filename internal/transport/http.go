package transport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rpggio/civicreport/internal/domain/activity"
	"github.com/rpggio/civicreport/internal/domain/report"
	"github.com/rpggio/civicreport/internal/metrics"
	"github.com/rpggio/civicreport/internal/ratelimit"
)

// ReportService is the report use-case surface the HTTP layer depends on.
type ReportService interface {
	Create(ctx context.Context, req report.CreateRequest) (*report.Report, error)
	List(ctx context.Context, q report.Query) ([]report.Report, error)
	Get(ctx context.Context, id string) (*report.Report, error)
	Update(ctx context.Context, req report.UpdateRequest) (*report.Report, error)
	Analytics(ctx context.Context) (report.Analytics, error)
}

// ActivityService lists report history.
type ActivityService interface {
	ForReport(ctx context.Context, reportID string, limit int) ([]activity.ActivityEntry, error)
}

// MediaStore persists uploaded files and returns their URL path.
type MediaStore interface {
	Save(originalName string, r io.Reader) (string, error)
	SaveDataURL(dataURL, base string) (string, error)
	Remove(url string) error
	Dir() string
	URLPrefix() string
}

// Config holds the dependencies of the HTTP server.
type Config struct {
	Reports     ReportService
	Activity    ActivityService
	Media       MediaStore
	Limiter     *ratelimit.Limiter
	Metrics     *metrics.Metrics
	MCP         http.Handler
	PingMessage string
	Logger      *slog.Logger
	// MaxCreateBytes caps a report creation body. Zero means the default.
	MaxCreateBytes int64
}

// Server wires HTTP handlers.
type Server struct {
	reports     ReportService
	activity    ActivityService
	media       MediaStore
	limiter     *ratelimit.Limiter
	metrics     *metrics.Metrics
	pingMessage string
	logger      *slog.Logger
	maxCreate   int64
}

// NewServer creates an HTTP server router with middleware.
func NewServer(cfg Config) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ping := cfg.PingMessage
	if ping == "" {
		ping = "ping"
	}
	maxCreate := cfg.MaxCreateBytes
	if maxCreate <= 0 {
		maxCreate = maxCreateBodyBytes
	}
	srv := &Server{
		reports:     cfg.Reports,
		activity:    cfg.Activity,
		media:       cfg.Media,
		limiter:     cfg.Limiter,
		metrics:     cfg.Metrics,
		pingMessage: ping,
		logger:      logger,
		maxCreate:   maxCreate,
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Get("/health", srv.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", srv.handlePing)
		r.Get("/analytics", srv.handleAnalytics)
		r.Route("/reports", func(r chi.Router) {
			r.Get("/", srv.handleListReports)
			r.Post("/", srv.handleCreateReport)
			r.Get("/{id}", srv.handleGetReport)
			r.Patch("/{id}", srv.handleUpdateReport)
			if cfg.Activity != nil {
				r.Get("/{id}/activity", srv.handleReportActivity)
			}
		})
	})

	if cfg.Media != nil {
		prefix := "/" + strings.Trim(cfg.Media.URLPrefix(), "/")
		r.Handle(prefix+"/*", http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.Media.Dir()))))
	}

	if cfg.MCP != nil {
		r.Handle("/mcp", cfg.MCP)
		r.Handle("/mcp/*", cfg.MCP)
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": s.pingMessage})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	summary, err := s.reports.Analytics(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
