package preferences

import (
	"encoding/json"
	"errors"
	"fmt"
)

// StorageKey is the key under which the settings object is persisted.
const StorageKey = "accessibility-settings"

// Setting names, matching the JSON keys.
const (
	ReadThisPage   = "readThisPage"
	HighContrast   = "highContrast"
	LargerText     = "largerText"
	DyslexiaFont   = "dyslexiaFont"
	UnderlineLinks = "underlineLinks"
	ReduceMotion   = "reduceMotion"
)

// Names lists every setting in panel order.
var Names = []string{ReadThisPage, HighContrast, LargerText, DyslexiaFont, UnderlineLinks, ReduceMotion}

// Option describes one setting in the accessibility panel.
type Option struct {
	Name        string
	Label       string
	Description string
}

// Options lists the panel entries in Names order.
var Options = []Option{
	{Name: ReadThisPage, Label: "Read This Page", Description: "Text-to-speech for page content"},
	{Name: HighContrast, Label: "High Contrast", Description: "Increase color contrast for better visibility"},
	{Name: LargerText, Label: "Larger Text", Description: "Increase font size across the site"},
	{Name: DyslexiaFont, Label: "Dyslexia-Friendly Font", Description: "Use a dyslexia-friendly font for better readability"},
	{Name: UnderlineLinks, Label: "Underline Links", Description: "Add underlines to all clickable links"},
	{Name: ReduceMotion, Label: "Reduce Motion", Description: "Minimize animations and transitions"},
}

// ErrUnknownSetting is returned when toggling a name not in Names.
var ErrUnknownSetting = errors.New("unknown accessibility setting")

// Settings is the flat object of accessibility toggles. The zero value is the default.
type Settings struct {
	ReadThisPage   bool `json:"readThisPage"`
	HighContrast   bool `json:"highContrast"`
	LargerText     bool `json:"largerText"`
	DyslexiaFont   bool `json:"dyslexiaFont"`
	UnderlineLinks bool `json:"underlineLinks"`
	ReduceMotion   bool `json:"reduceMotion"`
}

// Decode parses a stored value. Empty input yields defaults.
func Decode(raw string) (Settings, error) {
	var s Settings
	if raw == "" {
		return s, nil
	}
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Settings{}, fmt.Errorf("decode %s: %w", StorageKey, err)
	}
	return s, nil
}

// Encode serialises the settings for storage.
func (s Settings) Encode() (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Toggle returns a copy of s with the named setting flipped.
// PRE: name is one of Names
// POST: exactly one field differs from s
func (s Settings) Toggle(name string) (Settings, error) {
	p, err := s.field(name)
	if err != nil {
		return s, err
	}
	*p = !*p
	return s, nil
}

// Get returns the value of the named setting.
func (s Settings) Get(name string) (bool, error) {
	p, err := s.field(name)
	if err != nil {
		return false, err
	}
	return *p, nil
}

// CSSClasses returns the root element classes for the enabled visual settings.
// ReadThisPage is a client-side speech feature and has no class.
func (s Settings) CSSClasses() []string {
	var classes []string
	if s.HighContrast {
		classes = append(classes, "accessibility-high-contrast")
	}
	if s.LargerText {
		classes = append(classes, "accessibility-large-text")
	}
	if s.DyslexiaFont {
		classes = append(classes, "accessibility-dyslexia-font")
	}
	if s.UnderlineLinks {
		classes = append(classes, "accessibility-underline-links")
	}
	if s.ReduceMotion {
		classes = append(classes, "accessibility-reduce-motion")
	}
	return classes
}

// field operates on the receiver copy, so Toggle never mutates the caller's value.
func (s *Settings) field(name string) (*bool, error) {
	switch name {
	case ReadThisPage:
		return &s.ReadThisPage, nil
	case HighContrast:
		return &s.HighContrast, nil
	case LargerText:
		return &s.LargerText, nil
	case DyslexiaFont:
		return &s.DyslexiaFont, nil
	case UnderlineLinks:
		return &s.UnderlineLinks, nil
	case ReduceMotion:
		return &s.ReduceMotion, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSetting, name)
}
