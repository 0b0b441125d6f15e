package orchestrators

import (
	"context"
	"errors"
	"testing"

	preferenceStore "campusverse/internal/adapters/storage/preference"
	"campusverse/internal/domain/preferences"
)

// memPreferenceStore is an in-memory PreferenceStore.
type memPreferenceStore struct {
	values map[string]string
	getErr error
}

func newMemPreferenceStore() *memPreferenceStore {
	return &memPreferenceStore{values: make(map[string]string)}
}

func (s *memPreferenceStore) Get(_ context.Context, visitorID, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	v, ok := s.values[visitorID+"/"+key]
	if !ok {
		return "", preferenceStore.ErrNotFound
	}
	return v, nil
}

func (s *memPreferenceStore) Put(_ context.Context, visitorID, key, value string) error {
	s.values[visitorID+"/"+key] = value
	return nil
}

const settingsKey = "v1/" + preferences.StorageKey

// TestExecuteTogglePreference_PersistsEveryChange tests that each toggle writes the full object.
func TestExecuteTogglePreference_PersistsEveryChange(t *testing.T) {
	store := newMemPreferenceStore()
	deps := PreferencesDeps{Store: store}
	ctx := context.Background()

	got, err := ExecuteTogglePreference(ctx, TogglePreferenceInput{VisitorID: "v1", Name: preferences.HighContrast}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.HighContrast {
		t.Error("HighContrast should be on")
	}
	want := `{"readThisPage":false,"highContrast":true,"largerText":false,"dyslexiaFont":false,"underlineLinks":false,"reduceMotion":false}`
	if store.values[settingsKey] != want {
		t.Errorf("stored = %s\nwant     %s", store.values[settingsKey], want)
	}

	got, _ = ExecuteTogglePreference(ctx, TogglePreferenceInput{VisitorID: "v1", Name: preferences.HighContrast}, deps)
	if got.HighContrast {
		t.Error("second toggle should switch HighContrast off again")
	}
}

// TestExecuteTogglePreference_UnknownName tests that unknown settings are rejected and nothing is written.
func TestExecuteTogglePreference_UnknownName(t *testing.T) {
	store := newMemPreferenceStore()
	_, err := ExecuteTogglePreference(context.Background(), TogglePreferenceInput{VisitorID: "v1", Name: "nightMode"}, PreferencesDeps{Store: store})
	if !errors.Is(err, preferences.ErrUnknownSetting) {
		t.Fatalf("err = %v, want ErrUnknownSetting", err)
	}
	if len(store.values) != 0 {
		t.Error("rejected toggle must not write")
	}
}

// TestExecuteTogglePreference_CorruptValueResets tests that an unreadable value is treated as defaults.
func TestExecuteTogglePreference_CorruptValueResets(t *testing.T) {
	store := newMemPreferenceStore()
	store.values[settingsKey] = "{not json"

	got, err := ExecuteTogglePreference(context.Background(), TogglePreferenceInput{VisitorID: "v1", Name: preferences.ReduceMotion}, PreferencesDeps{Store: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != (preferences.Settings{ReduceMotion: true}) {
		t.Errorf("settings = %+v", got)
	}
}

// TestExecuteTogglePreference_StoreError tests that storage failures propagate.
func TestExecuteTogglePreference_StoreError(t *testing.T) {
	store := newMemPreferenceStore()
	store.getErr = errors.New("disk full")
	if _, err := ExecuteTogglePreference(context.Background(), TogglePreferenceInput{VisitorID: "v1", Name: preferences.LargerText}, PreferencesDeps{Store: store}); err == nil {
		t.Error("expected error")
	}
}

// TestExecuteSavePreferences tests replacing the whole object.
func TestExecuteSavePreferences(t *testing.T) {
	store := newMemPreferenceStore()
	err := ExecuteSavePreferences(context.Background(), SavePreferencesInput{
		VisitorID: "v1",
		Settings:  preferences.Settings{DyslexiaFont: true, UnderlineLinks: true},
	}, PreferencesDeps{Store: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, _ := preferences.Decode(store.values[settingsKey])
	if !s.DyslexiaFont || !s.UnderlineLinks || s.HighContrast {
		t.Errorf("stored settings = %+v", s)
	}
}
