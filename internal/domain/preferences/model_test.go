package preferences_test

import (
	"errors"
	"slices"
	"testing"

	"campusverse/internal/domain/preferences"
)

// TestSettings_Toggle flips one field and leaves the original untouched.
func TestSettings_Toggle(t *testing.T) {
	for _, name := range preferences.Names {
		t.Run(name, func(t *testing.T) {
			var orig preferences.Settings
			got, err := orig.Toggle(name)
			if err != nil {
				t.Fatalf("Toggle(%q): %v", name, err)
			}
			on, _ := got.Get(name)
			if !on {
				t.Errorf("%s should be on after toggle", name)
			}
			if orig != (preferences.Settings{}) {
				t.Error("Toggle mutated the receiver")
			}
			back, _ := got.Toggle(name)
			if back != orig {
				t.Error("double toggle should restore the original")
			}
		})
	}
}

func TestSettings_ToggleUnknown(t *testing.T) {
	_, err := preferences.Settings{}.Toggle("bigCursor")
	if !errors.Is(err, preferences.ErrUnknownSetting) {
		t.Errorf("err = %v, want ErrUnknownSetting", err)
	}
}

// TestDecode_EncodeRoundTrip checks the flat JSON shape of the stored value.
func TestDecode_EncodeRoundTrip(t *testing.T) {
	s := preferences.Settings{HighContrast: true, ReduceMotion: true}
	raw, err := s.Encode()
	if err != nil {
		t.Fatal(err)
	}
	want := `{"readThisPage":false,"highContrast":true,"largerText":false,"dyslexiaFont":false,"underlineLinks":false,"reduceMotion":true}`
	if raw != want {
		t.Errorf("Encode() = %s, want %s", raw, want)
	}
	got, err := preferences.Decode(raw)
	if err != nil {
		t.Fatal(err)
	}
	if got != s {
		t.Errorf("Decode() = %+v, want %+v", got, s)
	}
}

func TestDecode_EmptyAndInvalid(t *testing.T) {
	got, err := preferences.Decode("")
	if err != nil || got != (preferences.Settings{}) {
		t.Errorf("Decode(\"\") = %+v, %v; want defaults", got, err)
	}
	if _, err := preferences.Decode("{not json"); err == nil {
		t.Error("expected error for malformed value")
	}
}

func TestSettings_CSSClasses(t *testing.T) {
	s := preferences.Settings{ReadThisPage: true, LargerText: true, UnderlineLinks: true}
	got := s.CSSClasses()
	want := []string{"accessibility-large-text", "accessibility-underline-links"}
	if !slices.Equal(got, want) {
		t.Errorf("CSSClasses() = %v, want %v", got, want)
	}
}

// TestOptions_MatchNames keeps the panel in step with the settings object.
func TestOptions_MatchNames(t *testing.T) {
	if len(preferences.Options) != len(preferences.Names) {
		t.Fatalf("%d options for %d names", len(preferences.Options), len(preferences.Names))
	}
	for i, opt := range preferences.Options {
		if opt.Name != preferences.Names[i] {
			t.Errorf("Options[%d] = %q, want %q", i, opt.Name, preferences.Names[i])
		}
		if _, err := (preferences.Settings{}).Get(opt.Name); err != nil {
			t.Errorf("option %q has no field: %v", opt.Name, err)
		}
	}
}
