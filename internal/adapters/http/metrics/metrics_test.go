package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestMetrics_Counters verifies each recorder lands in its collector.
func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.SessionTransition("logged_out", "authenticating")
	m.SessionTransition("logged_out", "authenticating")
	m.ContactSubmitted("stored")
	m.SetActiveSessions(3)

	if got := testutil.ToFloat64(m.sessionTransitions.WithLabelValues("logged_out", "authenticating")); got != 2 {
		t.Errorf("session transitions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.contactMessages.WithLabelValues("stored")); got != 1 {
		t.Errorf("contact messages = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.activeSessions); got != 3 {
		t.Errorf("active sessions = %v, want 3", got)
	}
}

// TestMetrics_Histograms verifies requests and queries are observed.
func TestMetrics_Histograms(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "/events", 200, 15*time.Millisecond)
	m.ObserveQuery("ExecContext", time.Millisecond)

	if n := testutil.CollectAndCount(m.requestDuration); n != 1 {
		t.Errorf("request series = %d, want 1", n)
	}
	if n := testutil.CollectAndCount(m.queryDuration); n != 1 {
		t.Errorf("query series = %d, want 1", n)
	}
}

// TestMetrics_NilIsNoop verifies a nil receiver never panics.
func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("GET", "/", 200, time.Second)
	m.ObserveQuery("op", time.Second)
	m.SessionTransition("a", "b")
	m.SetActiveSessions(1)
	m.ContactSubmitted("invalid")

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("nil handler status = %d, want 404", rr.Code)
	}
}

// TestMetrics_Handler verifies the exposition endpoint includes our namespace.
func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.SessionTransition("authenticating", "logged_in")

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rr.Body)
	if !strings.Contains(string(body), "campusverse_session_transitions_total") {
		t.Error("exposition missing session transition counter")
	}
	if !strings.Contains(string(body), "go_goroutines") {
		t.Error("exposition missing Go runtime collector")
	}
}
