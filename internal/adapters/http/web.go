package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"campusverse/internal/adapters/email"
	"campusverse/internal/adapters/http/metrics"
	"campusverse/internal/adapters/http/middleware"
	"campusverse/internal/application/orchestrators"
	"campusverse/internal/application/projections"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

//go:embed content/about.md
var aboutMarkdown []byte

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// Catalog is the reference data the pages read.
type Catalog interface {
	projections.ListingCatalog
	projections.DashboardCatalog
	orchestrators.ItemLookup
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps holds everything the server needs. Zero-valued optional fields
// (CSRFKey, limiters, Metrics, DB) disable the matching feature.
type Deps struct {
	Sessions     *middleware.SessionStore
	Catalog      Catalog
	Preferences  orchestrators.PreferenceStore
	Contact      orchestrators.ContactStore
	Sender       email.Sender
	Verifier     orchestrators.CredentialVerifier
	LoginLimiter *middleware.RateLimiter
	APILimiter   *middleware.RateLimiter
	Metrics      *metrics.Metrics
	DB           Pinger

	SupportEmail   string
	CSRFKey        []byte
	Secure         bool
	TrustedOrigins []string
	SlowRequest    time.Duration

	Now        func() time.Time
	GenerateID func() string
}

// Server serves the portal.
type Server struct {
	deps   Deps
	pages  map[string]*template.Template
	about  template.HTML
	static fs.FS
}

// pageTemplates are rendered inside layout.html.
var pageTemplates = []string{
	"login.html", "welcome.html", "dashboard.html", "listing.html",
	"about.html", "contact.html", "notfound.html",
}

// NewServer parses templates and renders the about page once.
// PRE: deps.Sessions, deps.Catalog, deps.Preferences, deps.Contact and deps.Sender are set
// POST: returns an error if any embedded template fails to parse
func NewServer(deps Deps) (*Server, error) {
	if deps.Verifier == nil {
		deps.Verifier = orchestrators.AcceptAllVerifier{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.GenerateID == nil {
		deps.GenerateID = uuid.NewString
	}

	s := &Server{deps: deps, pages: make(map[string]*template.Template)}
	for _, name := range pageTemplates {
		tpl, err := template.New("layout.html").Funcs(templateFuncs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		s.pages[name] = tpl
	}

	var buf bytes.Buffer
	if err := mdRenderer.Convert(aboutMarkdown, &buf); err != nil {
		return nil, fmt.Errorf("render about: %w", err)
	}
	s.about = template.HTML(buf.String())

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}
	s.static = static
	return s, nil
}

var templateFuncs = template.FuncMap{
	"query": func(q string) template.URL {
		if q == "" {
			return ""
		}
		return template.URL("?" + q)
	},
}

// routes registers every handler on a fresh mux.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	protect := func(h http.HandlerFunc) http.Handler { return middleware.RequireAuth(h) }

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(s.static)))
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.deps.Metrics != nil {
		mux.Handle("GET /metrics", s.deps.Metrics.Handler())
	}

	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("GET /api/session", s.handleSessionState)

	mux.Handle("GET /{$}", protect(s.handleDashboard))
	for path := range listingKinds {
		mux.Handle("GET /"+path, protect(s.handleListing))
	}
	mux.Handle("POST /{collection}/like", protect(s.handleToggleLike))

	mux.HandleFunc("GET /about", s.handleAbout)
	mux.HandleFunc("GET /contact", s.handleContactPage)
	mux.HandleFunc("POST /contact", s.handleContact)

	mux.HandleFunc("GET /api/preferences", s.handleGetPreferences)
	mux.HandleFunc("PUT /api/preferences", s.handlePutPreferences)
	mux.HandleFunc("POST /preferences/toggle", s.handleTogglePreference)

	mux.HandleFunc("/", s.handleNotFound)
	return mux
}

// Handler wires the routes behind the middleware stack.
// Order, outermost first: Timing -> RateLimit -> SecurityHeaders -> CSRF -> Auth -> Visitor -> mux
func (s *Server) Handler() http.Handler {
	middlewares := []func(http.Handler) http.Handler{
		middleware.Visitor(s.deps.Secure),
		middleware.Auth(s.deps.Sessions),
	}
	if len(s.deps.CSRFKey) > 0 {
		middlewares = append(middlewares, middleware.CSRF(s.deps.CSRFKey, s.deps.Secure, s.deps.TrustedOrigins))
	}
	middlewares = append(middlewares, middleware.SecurityHeaders)
	if s.deps.APILimiter != nil {
		middlewares = append(middlewares, middleware.RateLimit(s.deps.APILimiter))
	}
	middlewares = append(middlewares, middleware.Timing(s.deps.Metrics, s.deps.SlowRequest))
	return middleware.Chain(s.routes(), middlewares...)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.DB != nil {
		if err := s.deps.DB.PingContext(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
