package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	preferenceStore "campusverse/internal/adapters/storage/preference"
	"campusverse/internal/domain/preferences"
)

// PreferenceStore reads and writes raw per-visitor values.
type PreferenceStore interface {
	Get(ctx context.Context, visitorID, key string) (string, error)
	Put(ctx context.Context, visitorID, key, value string) error
}

// PreferencesDeps holds dependencies for the preference orchestrators.
type PreferencesDeps struct {
	Store PreferenceStore
}

// TogglePreferenceInput names the setting to flip.
type TogglePreferenceInput struct {
	VisitorID string
	Name      string
}

// ExecuteTogglePreference flips one accessibility setting and persists the result.
// PRE: input.Name is one of preferences.Names
// POST: the stored object equals the returned settings
func ExecuteTogglePreference(ctx context.Context, input TogglePreferenceInput, deps PreferencesDeps) (preferences.Settings, error) {
	current, err := loadSettings(ctx, deps.Store, input.VisitorID)
	if err != nil {
		return preferences.Settings{}, err
	}
	next, err := current.Toggle(input.Name)
	if err != nil {
		return preferences.Settings{}, err
	}
	if err := saveSettings(ctx, deps.Store, input.VisitorID, next); err != nil {
		return preferences.Settings{}, err
	}
	return next, nil
}

// SavePreferencesInput replaces the whole settings object.
type SavePreferencesInput struct {
	VisitorID string
	Settings  preferences.Settings
}

// ExecuteSavePreferences persists the full settings object.
// POST: stored value is the flat JSON encoding of input.Settings
func ExecuteSavePreferences(ctx context.Context, input SavePreferencesInput, deps PreferencesDeps) error {
	return saveSettings(ctx, deps.Store, input.VisitorID, input.Settings)
}

// loadSettings treats a missing or unreadable value as defaults.
func loadSettings(ctx context.Context, store PreferenceStore, visitorID string) (preferences.Settings, error) {
	raw, err := store.Get(ctx, visitorID, preferences.StorageKey)
	if errors.Is(err, preferenceStore.ErrNotFound) {
		return preferences.Settings{}, nil
	}
	if err != nil {
		return preferences.Settings{}, fmt.Errorf("load preferences: %w", err)
	}
	s, err := preferences.Decode(raw)
	if err != nil {
		slog.Warn("preferences_reset", "visitor_id", visitorID, "error", err.Error())
		return preferences.Settings{}, nil
	}
	return s, nil
}

func saveSettings(ctx context.Context, store PreferenceStore, visitorID string, s preferences.Settings) error {
	raw, err := s.Encode()
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := store.Put(ctx, visitorID, preferences.StorageKey, raw); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}
