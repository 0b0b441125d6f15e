package catalog

import (
	"errors"
	"strings"
	"time"
)

// Kind names a listable collection.
type Kind string

// Collection kinds served by the listing pages.
const (
	KindEvent    Kind = "events"
	KindResource Kind = "resources"
	KindPeer     Kind = "peers"
)

// Kinds lists every collection in display order.
var Kinds = []Kind{KindEvent, KindResource, KindPeer}

// AllCategories is the category value that matches every item.
const AllCategories = "All"

// Domain errors
var (
	ErrInvalidID     = errors.New("item id must be positive")
	ErrEmptyTitle    = errors.New("item title cannot be empty")
	ErrEmptyCategory = errors.New("item category cannot be empty")
	ErrUnknownKind   = errors.New("unknown collection kind")
	ErrNotFound      = errors.New("item not found")
)

// Metrics carries the popularity figures the listing sorts on.
// Attendance is attendees for events, downloads for resources and
// connections for peers.
type Metrics struct {
	Views      int
	Rating     float64
	Attendance int
}

// Item is an immutable record in a collection.
type Item struct {
	ID          int
	Kind        Kind
	Title       string
	Description string
	Category    string
	Date        time.Time
	Time        string // display time, e.g. "18:00"
	Location    string // venue, file format or department
	Host        string // organizer, author or batch
	Club        string
	ImageRef    string
	Metrics     Metrics
}

// Validate checks if the Item has valid data.
// PRE: Item struct is populated
// POST: Returns nil if valid, error otherwise
func (i Item) Validate() error {
	if i.ID <= 0 {
		return ErrInvalidID
	}
	if strings.TrimSpace(i.Title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(i.Category) == "" {
		return ErrEmptyCategory
	}
	if !IsValidKind(i.Kind) {
		return ErrUnknownKind
	}
	return nil
}

// Collection groups a kind's items with its category vocabulary.
type Collection struct {
	Kind        Kind
	Title       string
	Subtitle    string
	AllLabel    string // label shown for AllCategories, e.g. "All Events"
	Categories  []string
	DefaultSort string
	Items       []Item
}

// HasCategory reports whether c names category (AllCategories always matches).
func (c Collection) HasCategory(category string) bool {
	if category == AllCategories {
		return true
	}
	for _, cat := range c.Categories {
		if cat == category {
			return true
		}
	}
	return false
}

// IsValidKind reports whether k is a known collection kind.
func IsValidKind(k Kind) bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Stat is a headline figure shown on the dashboard.
type Stat struct {
	Label string
	Value int
}
