package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"campusverse/internal/adapters/http/middleware"
	"campusverse/internal/application/orchestrators"
	"campusverse/internal/application/projections"
	"campusverse/internal/domain/catalog"
)

// listingKinds maps a listing path segment to its collection.
var listingKinds = map[string]catalog.Kind{
	"resources": catalog.KindResource,
	"events":    catalog.KindEvent,
	"matching":  catalog.KindPeer,
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	query := projections.GetDashboardQuery{}
	if u, ok := middleware.CurrentUser(r.Context()); ok {
		query.User = &u
	}
	result, err := projections.QueryGetDashboard(r.Context(), query, projections.GetDashboardDeps{
		Catalog: s.deps.Catalog,
		Now:     s.deps.Now,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	s.render(w, r, http.StatusOK, "dashboard.html", "Home", result)
}

// listingView is the data for listing.html.
type listingView struct {
	projections.GetListingResult
	Path   string
	Return string
}

// handleListing serves /resources, /events and /matching.
func (s *Server) handleListing(w http.ResponseWriter, r *http.Request) {
	segment := strings.TrimPrefix(r.URL.Path, "/")
	kind, ok := listingKinds[segment]
	if !ok {
		s.handleNotFound(w, r)
		return
	}
	token, _ := middleware.GetTokenFromContext(r.Context())

	result, err := projections.QueryGetListing(r.Context(), projections.GetListingQuery{
		Kind:   kind,
		Values: r.URL.Query(),
		Likes:  s.deps.Sessions.Likes(token, kind),
	}, projections.GetListingDeps{Catalog: s.deps.Catalog})
	if err != nil {
		internalError(w, err)
		return
	}
	s.render(w, r, http.StatusOK, "listing.html", result.Title, listingView{
		GetListingResult: result,
		Path:             r.URL.Path,
		Return:           result.State.Values().Encode(),
	})
}

// handleToggleLike handles POST /{collection}/like with form field id.
// Browsers are sent back to the listing with its filter state; JSON clients get the new state.
func (s *Server) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	collection := r.PathValue("collection")
	kind, ok := listingKinds[collection]
	if !ok {
		s.handleNotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	id, err := strconv.Atoi(r.FormValue("id"))
	if err != nil {
		http.Error(w, "Invalid item id", http.StatusBadRequest)
		return
	}
	token, _ := middleware.GetTokenFromContext(r.Context())

	result, err := orchestrators.ExecuteToggleLike(r.Context(), orchestrators.ToggleLikeInput{
		Token:  token,
		Kind:   kind,
		ItemID: id,
	}, orchestrators.ToggleLikeDeps{Sessions: s.deps.Sessions, Catalog: s.deps.Catalog})
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		http.Error(w, "Item not found", http.StatusNotFound)
		return
	case errors.Is(err, middleware.ErrUnknownSession):
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	case err != nil:
		internalError(w, err)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]any{"liked": result.Liked, "count": len(result.Likes)})
		return
	}
	target := "/" + collection
	if q, err := url.ParseQuery(r.FormValue("return")); err == nil && len(q) > 0 {
		target += "?" + q.Encode()
	}
	http.Redirect(w, r, fmt.Sprintf("%s#item-%d", target, id), http.StatusSeeOther)
}
