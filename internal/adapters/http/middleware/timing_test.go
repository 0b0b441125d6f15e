package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campusverse/internal/adapters/http/metrics"
)

// requestSamples returns the observation count per route/status label pair.
func requestSamples(t *testing.T, m *metrics.Metrics) map[string]uint64 {
	t.Helper()
	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	out := map[string]uint64{}
	for _, mf := range families {
		if mf.GetName() != "campusverse_http_request_duration_seconds" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			var route, status, method string
			for _, lp := range metric.GetLabel() {
				switch lp.GetName() {
				case "route":
					route = lp.GetValue()
				case "status":
					status = lp.GetValue()
				case "method":
					method = lp.GetValue()
				}
			}
			out[method+" "+route+" "+status] += metric.GetHistogram().GetSampleCount()
		}
	}
	return out
}

// TestTimingMiddleware_EmitsObservation verifies that a request is observed.
func TestTimingMiddleware_EmitsObservation(t *testing.T) {
	m := metrics.New()
	handler := Timing(m, time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/events", nil))

	if got := requestSamples(t, m)["GET /events 200"]; got != 1 {
		t.Errorf("samples = %d, want 1", got)
	}
}

// TestTimingMiddleware_SkipsStatic verifies static assets are excluded from timing.
func TestTimingMiddleware_SkipsStatic(t *testing.T) {
	m := metrics.New()
	handler := Timing(m, time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/static/style.css", nil))

	if n := len(requestSamples(t, m)); n != 0 {
		t.Errorf("observed %d series, want 0 (static excluded)", n)
	}
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

// TestTimingMiddleware_CapturesStatusCode verifies the status code is captured.
func TestTimingMiddleware_CapturesStatusCode(t *testing.T) {
	m := metrics.New()
	handler := Timing(m, time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/missing", nil))

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
	if got := requestSamples(t, m)["GET other 404"]; got != 1 {
		t.Errorf("samples = %d, want 1 under route other", got)
	}
}

// TestTimingMiddleware_NilMetrics verifies middleware works without metrics.
func TestTimingMiddleware_NilMetrics(t *testing.T) {
	handler := Timing(nil, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

// TestTimingMiddleware_HandlerPanic verifies that a panicking handler does not
// prevent the deferred timing logic from running.
func TestTimingMiddleware_HandlerPanic(t *testing.T) {
	m := metrics.New()
	handler := Timing(m, time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic to propagate, got nil")
		}
		if got := requestSamples(t, m)["GET /contact 200"]; got != 1 {
			t.Errorf("samples = %d, want 1 (defer must run even on panic)", got)
		}
	}()

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/contact", nil))
}

// TestTimingMiddleware_PoolNoStateLeak verifies that statusWriter pool reuse
// does not leak status codes between requests.
func TestTimingMiddleware_PoolNoStateLeak(t *testing.T) {
	m := metrics.New()

	handler500 := Timing(m, time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	handler500.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/about", nil))

	// Second handler does NOT call WriteHeader (implicit 200).
	handler200 := Timing(m, time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	handler200.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/about", nil))

	samples := requestSamples(t, m)
	if samples["GET /about 500"] != 1 || samples["GET /about 200"] != 1 {
		t.Errorf("samples = %v, want one 500 and one 200", samples)
	}
}

func TestRouteLabel(t *testing.T) {
	tests := map[string]string{
		"/":               "/",
		"/events":         "/events",
		"/events/like":    "/events",
		"/api/session":    "/api",
		"/wp-admin/x.php": "other",
		"":                "other",
	}
	for path, want := range tests {
		if got := routeLabel(path); got != want {
			t.Errorf("routeLabel(%q) = %q, want %q", path, got, want)
		}
	}
}
