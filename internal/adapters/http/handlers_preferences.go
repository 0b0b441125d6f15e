package web

import (
	"errors"
	"net/http"

	"campusverse/internal/adapters/http/middleware"
	"campusverse/internal/application/orchestrators"
	"campusverse/internal/application/projections"
	"campusverse/internal/domain/preferences"
)

// handleGetPreferences returns the visitor's settings as the flat JSON object.
func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	settings, err := projections.QueryGetPreferences(r.Context(),
		projections.GetPreferencesQuery{VisitorID: middleware.VisitorID(r.Context())},
		projections.GetPreferencesDeps{Store: s.deps.Preferences})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// handlePutPreferences replaces the whole settings object.
func (s *Server) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	var settings preferences.Settings
	if err := strictDecode(r, &settings); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid settings object"})
		return
	}
	err := orchestrators.ExecuteSavePreferences(r.Context(), orchestrators.SavePreferencesInput{
		VisitorID: middleware.VisitorID(r.Context()),
		Settings:  settings,
	}, orchestrators.PreferencesDeps{Store: s.deps.Preferences})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// handleTogglePreference handles the panel form: POST name=<setting>, return=<path>.
func (s *Server) handleTogglePreference(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	settings, err := orchestrators.ExecuteTogglePreference(r.Context(), orchestrators.TogglePreferenceInput{
		VisitorID: middleware.VisitorID(r.Context()),
		Name:      r.FormValue("name"),
	}, orchestrators.PreferencesDeps{Store: s.deps.Preferences})
	if errors.Is(err, preferences.ErrUnknownSetting) {
		http.Error(w, "Unknown setting", http.StatusBadRequest)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, settings)
		return
	}
	http.Redirect(w, r, localRedirect(r.FormValue("return"), "/"), http.StatusSeeOther)
}
