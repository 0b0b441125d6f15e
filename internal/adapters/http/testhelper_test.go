package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"campusverse/internal/adapters/email"
	"campusverse/internal/adapters/http/metrics"
	"campusverse/internal/adapters/http/middleware"
	"campusverse/internal/adapters/storage"
	catalogStore "campusverse/internal/adapters/storage/catalog"
	contactStore "campusverse/internal/adapters/storage/contact"
	preferenceStore "campusverse/internal/adapters/storage/preference"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// manualTimers stands in for time.AfterFunc so tests decide when a login completes.
type manualTimers struct {
	mu      sync.Mutex
	pending []*manualTimer
}

type manualTimer struct {
	owner   *manualTimers
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

func (m *manualTimers) after(_ time.Duration, f func()) middleware.Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{owner: m, fn: f}
	m.pending = append(m.pending, t)
	return t
}

// fireAll runs every timer that was not stopped.
func (m *manualTimers) fireAll() {
	m.mu.Lock()
	var due []func()
	for _, t := range m.pending {
		if !t.stopped {
			t.stopped = true
			due = append(due, t.fn)
		}
	}
	m.pending = nil
	m.mu.Unlock()
	for _, fn := range due {
		fn()
	}
}

// testApp is a running server with a cookie-keeping client that does not follow redirects.
type testApp struct {
	srv      *httptest.Server
	client   *http.Client
	timers   *manualTimers
	contacts contactStore.Store
	prefs    *preferenceStore.SQLiteStore
	metrics  *metrics.Metrics
}

// newTestApp wires the real stores over an in-memory database. mutate may adjust deps.
func newTestApp(t *testing.T, mutate ...func(*Deps)) *testApp {
	t.Helper()
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	catalog, err := catalogStore.NewEmbeddedStore(testNow)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	m := metrics.New()
	timers := &manualTimers{}
	app := &testApp{
		timers:   timers,
		contacts: contactStore.NewSQLiteStore(db),
		prefs:    preferenceStore.NewSQLiteStore(db),
		metrics:  m,
	}
	deps := Deps{
		Sessions: middleware.NewSessionStore(middleware.SessionConfig{
			AfterFunc: timers.after,
			Now:       func() time.Time { return testNow },
			Metrics:   m,
		}),
		Catalog:      catalog,
		Preferences:  app.prefs,
		Contact:      app.contacts,
		Sender:       email.NewNoopSender(),
		Metrics:      m,
		DB:           db,
		SupportEmail: "support@campusverse.edu",
		Now:          func() time.Time { return testNow },
	}
	for _, fn := range mutate {
		fn(&deps)
	}

	s, err := NewServer(deps)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	app.srv = httptest.NewServer(s.Handler())
	t.Cleanup(app.srv.Close)

	jar, _ := cookiejar.New(nil)
	app.client = &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return app
}

func (a *testApp) do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func (a *testApp) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, a.srv.URL+path, nil)
	return a.do(t, req)
}

func (a *testApp) getJSON(t *testing.T, path string, v any) *http.Response {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, a.srv.URL+path, nil)
	req.Header.Set("Accept", "application/json")
	resp, body := a.do(t, req)
	if v != nil {
		if err := json.Unmarshal([]byte(body), v); err != nil {
			t.Fatalf("decode %s: %v (body %q)", path, err, body)
		}
	}
	return resp
}

func (a *testApp) postForm(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	req, _ := http.NewRequest(http.MethodPost, a.srv.URL+path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(t, req)
}

// login signs in and completes the welcome dwell.
func (a *testApp) login(t *testing.T, email string) {
	t.Helper()
	resp, _ := a.postForm(t, "/login", url.Values{"email": {email}, "password": {"anything"}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("login status = %d, want 303", resp.StatusCode)
	}
	a.timers.fireAll()
}

func assertStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("%s %s: status = %d, want %d", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want)
	}
}

func assertRedirect(t *testing.T, resp *http.Response, want string) {
	t.Helper()
	assertStatus(t, resp, http.StatusSeeOther)
	if got := resp.Header.Get("Location"); got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}
}

func assertContains(t *testing.T, body string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(body, want) {
			t.Errorf("body does not contain %q", want)
		}
	}
}

func assertNotContains(t *testing.T, body string, unwanted ...string) {
	t.Helper()
	for _, s := range unwanted {
		if strings.Contains(body, s) {
			t.Errorf("body unexpectedly contains %q", s)
		}
	}
}
