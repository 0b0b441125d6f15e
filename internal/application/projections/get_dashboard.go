package projections

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"campusverse/internal/domain/activity"
	"campusverse/internal/domain/catalog"
	"campusverse/internal/domain/session"
)

// FallbackFirstName greets a user whose profile has no name.
const FallbackFirstName = "Student"

// DashboardCatalog supplies the home page reference data.
type DashboardCatalog interface {
	Activity(ctx context.Context) ([]activity.Item, error)
	Stats(ctx context.Context) ([]catalog.Stat, error)
}

// GetDashboardQuery carries query parameters.
type GetDashboardQuery struct {
	User *session.User
}

// StatTile is one headline figure, already formatted.
type StatTile struct {
	Label string
	Value string
}

// QuickAction links to a listing page.
type QuickAction struct {
	Title       string
	Description string
	Href        string
}

// QuickActions are the home page shortcuts in display order.
var QuickActions = []QuickAction{
	{Title: "Find Resources", Description: "Browse study materials and notes", Href: "/resources"},
	{Title: "Browse Events", Description: "Discover campus events and activities", Href: "/events"},
	{Title: "Find Peers", Description: "Connect with fellow students", Href: "/matching"},
}

// FeedEntry is an activity item flattened for display.
type FeedEntry struct {
	Type      string
	Headline  string
	Byline    string
	When      string // relative, e.g. "2 hours ago"
	Views     int    // resources only
	Downloads int    // resources only
	EventDate string // events only
}

// GetDashboardResult carries the query result.
type GetDashboardResult struct {
	FirstName    string
	Stats        []StatTile
	QuickActions []QuickAction
	Feed         []FeedEntry
}

// GetDashboardDeps holds dependencies for GetDashboard.
type GetDashboardDeps struct {
	Catalog DashboardCatalog
	Now     func() time.Time
}

// QueryGetDashboard assembles the home page.
// PRE: deps.Catalog is set
// POST: FirstName is never empty; Feed preserves catalog order
func QueryGetDashboard(ctx context.Context, query GetDashboardQuery, deps GetDashboardDeps) (GetDashboardResult, error) {
	stats, err := deps.Catalog.Stats(ctx)
	if err != nil {
		return GetDashboardResult{}, fmt.Errorf("dashboard stats: %w", err)
	}
	items, err := deps.Catalog.Activity(ctx)
	if err != nil {
		return GetDashboardResult{}, fmt.Errorf("dashboard activity: %w", err)
	}

	res := GetDashboardResult{
		FirstName:    FallbackFirstName,
		QuickActions: QuickActions,
	}
	if query.User != nil {
		if first := query.User.FirstName(); first != "" {
			res.FirstName = first
		}
	}
	for _, s := range stats {
		res.Stats = append(res.Stats, StatTile{Label: s.Label, Value: humanize.Comma(int64(s.Value))})
	}
	now := deps.Now()
	for _, it := range items {
		res.Feed = append(res.Feed, feedEntry(it, now))
	}
	return res, nil
}

// feedEntry flattens one activity item.
func feedEntry(item activity.Item, now time.Time) FeedEntry {
	e := FeedEntry{
		Type:     item.Type(),
		Headline: item.Headline(),
		Byline:   activity.Byline(item),
		When:     humanize.RelTime(item.OccurredAt(), now, "ago", "from now"),
	}
	switch a := item.(type) {
	case activity.ResourceActivity:
		e.Views = a.Views
		e.Downloads = a.Downloads
	case activity.EventActivity:
		e.EventDate = a.EventDate.Format("Jan 2, 2006")
	case activity.StudentActivity:
	}
	return e
}
