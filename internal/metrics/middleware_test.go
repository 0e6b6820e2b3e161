package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_RecordsDurationAndCount(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/entries", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{}"))
	})

	req := httptest.NewRequest("GET", "/entries", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != 200 {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	requestsVal := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/entries", "200"))
	if requestsVal < 1 {
		t.Errorf("expected http_requests_total >= 1, got %f", requestsVal)
	}

	durationCount := testutil.CollectAndCount(httpRequestDuration)
	if durationCount == 0 {
		t.Error("expected http_request_duration_seconds to have observations")
	}
}

func TestMiddleware_LabelsByStatus(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())

	r.Get("/found", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/invalid", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	})

	tests := []struct {
		path           string
		expectedStatus string
	}{
		{"/found", "200"},
		{"/missing", "404"},
		{"/invalid", "422"},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			req := httptest.NewRequest("GET", tc.path, http.NoBody)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", tc.path, tc.expectedStatus))
			if val < 1 {
				t.Errorf("expected requests_total for %s with status %s >= 1, got %f", tc.path, tc.expectedStatus, val)
			}
		})
	}
}

func TestMiddleware_RoutePatternLabel(t *testing.T) {
	// Parameterized routes must be labeled by pattern, not raw path,
	// to keep label cardinality bounded.
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/entries/{type}/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, path := range []string{"/entries/bioproject/PRJDB1", "/entries/biosample/SAMD2"} {
		req := httptest.NewRequest("GET", path, http.NoBody)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
	}

	val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/entries/{type}/{id}", "200"))
	if val < 2 {
		t.Errorf("expected both requests under the route pattern label, got %f", val)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "unknown"},
		{"/entries/{type}", "/entries/{type}"},
		{"/health", "/health"},
	}

	for _, tc := range tests {
		result := normalizePath(tc.input)
		if result != tc.expected {
			t.Errorf("normalizePath(%q) = %q, want %q", tc.input, result, tc.expected)
		}
	}
}

func TestStatusWriter_ForwardsFlush(t *testing.T) {
	rr := httptest.NewRecorder()
	ww := &statusWriter{ResponseWriter: rr, status: http.StatusOK}

	if _, ok := interface{}(ww).(http.Flusher); !ok {
		t.Fatal("statusWriter must implement http.Flusher for streaming responses")
	}
	ww.Flush()
	if !rr.Flushed {
		t.Error("Flush must reach the underlying writer")
	}
}
