package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/reports/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	srv := httptest.NewServer(r)
	defer srv.Close()

	for _, id := range []string{"a", "b"} {
		resp, err := http.Get(srv.URL + "/api/reports/" + id)
		require.NoError(t, err)
		resp.Body.Close()
	}

	require.Equal(t, 2.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/api/reports/{id}", "404")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.httpRequestsInFlight))
}

func TestDomainCounters(t *testing.T) {
	m := New()
	m.ReportCreated("pothole")
	m.ReportCreated("pothole")
	m.StatusAdvanced("resolved")
	m.RateLimited()

	require.Equal(t, 2.0, testutil.ToFloat64(m.reportsCreatedTotal.WithLabelValues("pothole")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.statusAdvancedTotal.WithLabelValues("resolved")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.rateLimitedTotal))
}

func TestHandler_Exposition(t *testing.T) {
	m := New()
	m.ReportCreated("water")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `civic_reports_created_total{category="water"} 1`)
}
