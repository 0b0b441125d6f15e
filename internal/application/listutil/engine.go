package listutil

import (
	"cmp"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"campusverse/internal/domain/catalog"
)

// SortKey selects a listing order.
type SortKey string

// Sort keys. SortNone keeps collection order and is what any unrecognised key becomes.
const (
	SortNone      SortKey = ""
	SortNewest    SortKey = "newest"
	SortPopular   SortKey = "popular"
	SortRating    SortKey = "rating"
	SortAttendees SortKey = "attendees"
)

// SortOption pairs a sort key with its label.
type SortOption struct {
	Key   SortKey
	Label string
}

// SortOptions lists the selectable orders in display order.
var SortOptions = []SortOption{
	{Key: SortNewest, Label: "Newest"},
	{Key: SortPopular, Label: "Most Popular"},
	{Key: SortRating, Label: "Highest Rated"},
	{Key: SortAttendees, Label: "Most Attended"},
}

// comparators are all descending; ties return 0 so the stable sort keeps collection order.
var comparators = map[SortKey]func(a, b catalog.Item) int{
	SortNewest:    func(a, b catalog.Item) int { return b.Date.Compare(a.Date) },
	SortPopular:   func(a, b catalog.Item) int { return cmp.Compare(b.Metrics.Views, a.Metrics.Views) },
	SortRating:    func(a, b catalog.Item) int { return cmp.Compare(b.Metrics.Rating, a.Metrics.Rating) },
	SortAttendees: func(a, b catalog.Item) int { return cmp.Compare(b.Metrics.Attendance, a.Metrics.Attendance) },
}

// ParseSortKey returns the key named by s, or SortNone when s names no comparator.
func ParseSortKey(s string) SortKey {
	k := SortKey(s)
	if _, ok := comparators[k]; ok {
		return k
	}
	return SortNone
}

// ViewMode selects card layout.
type ViewMode string

// View modes.
const (
	ViewGrid ViewMode = "grid"
	ViewList ViewMode = "list"
)

// FilterState is the per-request view state of a listing page.
type FilterState struct {
	Search   string
	Category string // catalog.AllCategories matches every item
	Sort     SortKey
	View     ViewMode
	Page     int
	PerPage  int
}

// ParseFilterState extracts listing state from URL query values.
// PRE: categories is the collection's vocabulary, defaultSort a key with a comparator
// POST: Category is "All" or one of categories; View is grid or list; Sort is known
func ParseFilterState(q url.Values, categories []string, defaultSort SortKey) FilterState {
	pp := ParsePageParams(q)
	fs := FilterState{
		Search:   strings.TrimSpace(q.Get("q")),
		Category: catalog.AllCategories,
		Sort:     defaultSort,
		View:     ViewGrid,
		Page:     pp.Page,
		PerPage:  pp.PerPage,
	}
	if c := q.Get("category"); slices.Contains(categories, c) {
		fs.Category = c
	}
	if s := q.Get("sort"); s != "" {
		if k := ParseSortKey(s); k != SortNone {
			fs.Sort = k
		}
	}
	if ViewMode(q.Get("view")) == ViewList {
		fs.View = ViewList
	}
	return fs
}

// Values encodes the state back into query values, omitting defaults.
func (f FilterState) Values() url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set("q", f.Search)
	}
	if f.Category != "" && f.Category != catalog.AllCategories {
		q.Set("category", f.Category)
	}
	if f.Sort != SortNone {
		q.Set("sort", string(f.Sort))
	}
	if f.View == ViewList {
		q.Set("view", string(ViewList))
	}
	if f.Page > 1 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PerPage != 0 && f.PerPage != DefaultPerPage {
		q.Set("per_page", strconv.Itoa(f.PerPage))
	}
	return q
}

// With returns the encoded query string of f with one parameter replaced.
// Changing anything but the page resets to the first page.
func (f FilterState) With(key, value string) string {
	q := f.Values()
	if key != "page" {
		q.Del("page")
	}
	if value == "" {
		q.Del(key)
	} else {
		q.Set(key, value)
	}
	return q.Encode()
}

// Filter returns the items in category whose title, description or category
// contains query, case-insensitively.
// POST: result is a fresh slice in collection order; items is not modified
func Filter(items []catalog.Item, query, category string) []catalog.Item {
	needle := strings.ToLower(strings.TrimSpace(query))
	out := make([]catalog.Item, 0, len(items))
	for _, it := range items {
		if category != "" && category != catalog.AllCategories && it.Category != category {
			continue
		}
		if needle != "" && !matches(it, needle) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func matches(it catalog.Item, needle string) bool {
	return strings.Contains(strings.ToLower(it.Title), needle) ||
		strings.Contains(strings.ToLower(it.Description), needle) ||
		strings.Contains(strings.ToLower(it.Category), needle)
}

// Sort returns a stably sorted copy of items.
// INVARIANT: Sort(Sort(s, k), k) equals Sort(s, k)
func Sort(items []catalog.Item, key SortKey) []catalog.Item {
	out := slices.Clone(items)
	if cmpFn, ok := comparators[key]; ok {
		slices.SortStableFunc(out, cmpFn)
	}
	return out
}

// View is the render-ready result of a listing request.
type View struct {
	Items    []catalog.Item // current page only
	Total    int            // matches across all pages
	Empty    bool
	PageInfo PageInfo
}

// Derive filters, sorts and paginates items for state.
// POST: items is not modified
func Derive(items []catalog.Item, state FilterState) View {
	matched := Sort(Filter(items, state.Search, state.Category), state.Sort)
	pi := NewPageInfo(state.Page, state.PerPage, len(matched))
	end := pi.EndRow()
	var page []catalog.Item
	if len(matched) > 0 {
		page = matched[pi.Offset():end]
	}
	return View{
		Items:    page,
		Total:    len(matched),
		Empty:    len(matched) == 0,
		PageInfo: pi,
	}
}
