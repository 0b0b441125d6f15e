//go:build browser

package web_test

import (
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	web "campusverse/internal/adapters/http"
	"campusverse/internal/adapters/email"
	"campusverse/internal/adapters/http/middleware"
	"campusverse/internal/adapters/storage"
	catalogStore "campusverse/internal/adapters/storage/catalog"
	contactStore "campusverse/internal/adapters/storage/contact"
	preferenceStore "campusverse/internal/adapters/storage/preference"
)

// browserApp is a server on a real port plus a headless Chromium.
type browserApp struct {
	BaseURL string
	Browser playwright.Browser
}

// newBrowserApp starts the portal with a short welcome dwell and launches Playwright.
func newBrowserApp(t *testing.T) *browserApp {
	t.Helper()
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := storage.MigrateDB(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	catalog, err := catalogStore.NewEmbeddedStore(time.Now())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	srv, err := web.NewServer(web.Deps{
		Sessions:    middleware.NewSessionStore(middleware.SessionConfig{WelcomeDelay: 300 * time.Millisecond}),
		Catalog:     catalog,
		Preferences: preferenceStore.NewSQLiteStore(db),
		Contact:     contactStore.NewSQLiteStore(db),
		Sender:      email.NewNoopSender(),
		DB:          db,
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	httpSrv := &http.Server{Handler: srv.Handler()}
	go httpSrv.Serve(listener)

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}
	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		httpSrv.Close()
		db.Close()
	})
	return &browserApp{BaseURL: "http://" + listener.Addr().String(), Browser: browser}
}

func (a *browserApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

// TestBrowser_LoginShowsWelcomeThenDashboard walks the sign-in flow end to end.
func TestBrowser_LoginShowsWelcomeThenDashboard(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	app := newBrowserApp(t)
	page := app.newPage(t)

	if _, err := page.Goto(app.BaseURL + "/"); err != nil {
		t.Fatalf("goto: %v", err)
	}
	if err := page.WaitForURL(app.BaseURL + "/login"); err != nil {
		t.Fatalf("anonymous visit did not land on /login: %v", err)
	}

	if err := page.Locator("#email").Fill("alex@campus.edu"); err != nil {
		t.Fatalf("fill email: %v", err)
	}
	if err := page.Locator("#password").Fill("anything"); err != nil {
		t.Fatalf("fill password: %v", err)
	}
	if err := page.Locator("#loginBtn").Click(); err != nil {
		t.Fatalf("click: %v", err)
	}

	if err := page.Locator(".welcome-screen").WaitFor(); err != nil {
		t.Fatalf("welcome screen not shown: %v", err)
	}
	if err := page.WaitForURL(app.BaseURL+"/", playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("welcome screen did not move on to the dashboard: %v", err)
	}
	heading, err := page.Locator("h1").First().TextContent()
	if err != nil {
		t.Fatalf("heading: %v", err)
	}
	if heading != "Welcome back, Alex!" {
		t.Errorf("heading = %q", heading)
	}
}

// TestBrowser_EmptyEmailStaysOnLogin tests the inline error.
func TestBrowser_EmptyEmailStaysOnLogin(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	app := newBrowserApp(t)
	page := app.newPage(t)

	if _, err := page.Goto(app.BaseURL + "/login"); err != nil {
		t.Fatalf("goto: %v", err)
	}
	// Bypass the browser's own required-field check to reach the server.
	if _, err := page.Evaluate(`document.querySelector("#loginForm").noValidate = true`); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if err := page.Locator("#loginBtn").Click(); err != nil {
		t.Fatalf("click: %v", err)
	}
	if err := page.GetByText("Please enter your email address").WaitFor(); err != nil {
		t.Errorf("error message not shown: %v", err)
	}
}
