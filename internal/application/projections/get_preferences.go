package projections

import (
	"context"
	"errors"
	"fmt"

	preferenceStore "campusverse/internal/adapters/storage/preference"
	"campusverse/internal/domain/preferences"
)

// PreferenceReader reads raw per-visitor values.
type PreferenceReader interface {
	Get(ctx context.Context, visitorID, key string) (string, error)
}

// GetPreferencesQuery carries query parameters.
type GetPreferencesQuery struct {
	VisitorID string
}

// GetPreferencesDeps holds dependencies for GetPreferences.
type GetPreferencesDeps struct {
	Store PreferenceReader
}

// QueryGetPreferences returns the visitor's accessibility settings.
// POST: a missing or unreadable value yields the defaults (all off)
func QueryGetPreferences(ctx context.Context, query GetPreferencesQuery, deps GetPreferencesDeps) (preferences.Settings, error) {
	if query.VisitorID == "" {
		return preferences.Settings{}, nil
	}
	raw, err := deps.Store.Get(ctx, query.VisitorID, preferences.StorageKey)
	if errors.Is(err, preferenceStore.ErrNotFound) {
		return preferences.Settings{}, nil
	}
	if err != nil {
		return preferences.Settings{}, fmt.Errorf("get preferences: %w", err)
	}
	s, err := preferences.Decode(raw)
	if err != nil {
		return preferences.Settings{}, nil
	}
	return s, nil
}
