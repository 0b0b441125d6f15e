package projections

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"campusverse/internal/application/listutil"
	"campusverse/internal/domain/catalog"
)

// ListingCatalog supplies a collection.
type ListingCatalog interface {
	Collection(ctx context.Context, kind catalog.Kind) (catalog.Collection, error)
}

// GetListingQuery carries query parameters.
type GetListingQuery struct {
	Kind   catalog.Kind
	Values url.Values
	Likes  listutil.LikeSet
}

// Card is one listed item with its per-session state.
type Card struct {
	catalog.Item
	Liked     bool
	DateLabel string
	Rating    string
}

// Option is a selectable filter value with the link that selects it.
type Option struct {
	Value    string
	Label    string
	Selected bool
	Query    string
}

// GetListingResult carries the query result.
type GetListingResult struct {
	Kind       catalog.Kind
	Title      string
	Subtitle   string
	State      listutil.FilterState
	Categories []Option
	Sorts      []Option
	PerPage    []Option
	View       listutil.View
	Cards      []Card
	LikedCount int
}

// GetListingDeps holds dependencies for GetListing.
type GetListingDeps struct {
	Catalog ListingCatalog
}

// QueryGetListing derives the visible page of a collection from the query string.
// PRE: query.Kind is one of catalog.Kinds
// POST: the collection is not modified; Cards follow View.Items order
func QueryGetListing(ctx context.Context, query GetListingQuery, deps GetListingDeps) (GetListingResult, error) {
	c, err := deps.Catalog.Collection(ctx, query.Kind)
	if err != nil {
		return GetListingResult{}, fmt.Errorf("listing %s: %w", query.Kind, err)
	}
	state := listutil.ParseFilterState(query.Values, c.Categories, listutil.ParseSortKey(c.DefaultSort))
	view := listutil.Derive(c.Items, state)

	res := GetListingResult{
		Kind:       c.Kind,
		Title:      c.Title,
		Subtitle:   c.Subtitle,
		State:      state,
		View:       view,
		LikedCount: len(query.Likes),
	}

	res.Categories = append(res.Categories, Option{
		Value:    catalog.AllCategories,
		Label:    c.AllLabel,
		Selected: state.Category == catalog.AllCategories,
		Query:    state.With("category", ""),
	})
	for _, cat := range c.Categories {
		res.Categories = append(res.Categories, Option{
			Value:    cat,
			Label:    cat,
			Selected: state.Category == cat,
			Query:    state.With("category", cat),
		})
	}
	for _, opt := range listutil.SortOptions {
		res.Sorts = append(res.Sorts, Option{
			Value:    string(opt.Key),
			Label:    opt.Label,
			Selected: state.Sort == opt.Key,
			Query:    state.With("sort", string(opt.Key)),
		})
	}
	for _, n := range listutil.PerPageOptions {
		v := strconv.Itoa(n)
		res.PerPage = append(res.PerPage, Option{
			Value:    v,
			Label:    v,
			Selected: view.PageInfo.PerPage == n,
			Query:    state.With("per_page", v),
		})
	}
	for _, it := range view.Items {
		res.Cards = append(res.Cards, Card{
			Item:      it,
			Liked:     query.Likes.Has(it.ID),
			DateLabel: it.Date.Format("Jan 2, 2006"),
			Rating:    strconv.FormatFloat(it.Metrics.Rating, 'f', 1, 64),
		})
	}
	return res, nil
}
