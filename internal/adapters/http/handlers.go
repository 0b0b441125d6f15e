package web

import (
	"bytes"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/csrf"

	"campusverse/internal/adapters/http/middleware"
	"campusverse/internal/application/projections"
	"campusverse/internal/domain/preferences"
	"campusverse/internal/domain/session"
)

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// NavLink is one entry of the top navigation.
type NavLink struct {
	Href  string
	Label string
}

var navLinks = []NavLink{
	{Href: "/", Label: "Home"},
	{Href: "/resources", Label: "Resources"},
	{Href: "/events", Label: "Events"},
	{Href: "/matching", Label: "Match"},
	{Href: "/about", Label: "About"},
	{Href: "/contact", Label: "Contact"},
}

// PanelOption is an accessibility toggle with its current value.
type PanelOption struct {
	preferences.Option
	On bool
}

// Page is the data every template receives; Data holds the page-specific part.
type Page struct {
	Title     string
	Path      string
	Return    string // request URI, posted back by the panel forms
	User      *session.User
	Nav       []NavLink
	Classes   string
	Panel     []PanelOption
	ReadAloud bool
	CSRFField template.HTML
	Data      any
}

// render executes name inside the layout and writes it with status.
// Output is buffered so a template failure still yields a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	tpl, ok := s.pages[name]
	if !ok {
		internalError(w, errUnknownTemplate(name))
		return
	}

	settings, err := projections.QueryGetPreferences(r.Context(),
		projections.GetPreferencesQuery{VisitorID: middleware.VisitorID(r.Context())},
		projections.GetPreferencesDeps{Store: s.deps.Preferences})
	if err != nil {
		slog.Warn("preferences_unavailable", "error", err.Error())
	}

	page := Page{
		Title:     title,
		Path:      r.URL.Path,
		Return:    r.URL.RequestURI(),
		Nav:       navLinks,
		Classes:   strings.Join(settings.CSSClasses(), " "),
		ReadAloud: settings.ReadThisPage,
		CSRFField: csrf.TemplateField(r),
		Data:      data,
	}
	if u, ok := middleware.CurrentUser(r.Context()); ok {
		page.User = &u
	}
	for _, opt := range preferences.Options {
		on, _ := settings.Get(opt.Name)
		page.Panel = append(page.Panel, PanelOption{Option: opt, On: on})
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, page); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

type errUnknownTemplate string

func (e errUnknownTemplate) Error() string { return "unknown template " + string(e) }

// localRedirect returns target if it is a path on this site, else fallback.
func localRedirect(target, fallback string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	return target
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) || strings.HasPrefix(r.URL.Path, "/api/") {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	s.render(w, r, http.StatusNotFound, "notfound.html", "Page not found", nil)
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "about.html", "About", s.about)
}
