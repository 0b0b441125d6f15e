package orchestrators

import (
	"context"
	"fmt"

	"campusverse/internal/application/listutil"
	"campusverse/internal/domain/catalog"
)

// LikeSessions is the session store surface needed to toggle likes.
type LikeSessions interface {
	ToggleLike(token string, kind catalog.Kind, id int) (listutil.LikeSet, error)
}

// ItemLookup resolves catalog items.
type ItemLookup interface {
	GetByID(ctx context.Context, kind catalog.Kind, id int) (catalog.Item, error)
}

// ToggleLikeInput carries input for the toggle-like orchestrator.
type ToggleLikeInput struct {
	Token  string
	Kind   catalog.Kind
	ItemID int
}

// ToggleLikeResult reports the item's new state.
type ToggleLikeResult struct {
	Liked bool
	Likes listutil.LikeSet
}

// ToggleLikeDeps holds dependencies for ToggleLike.
type ToggleLikeDeps struct {
	Sessions LikeSessions
	Catalog  ItemLookup
}

// ExecuteToggleLike flips an item in the session's like-set for its collection.
// PRE: session is LoggedIn
// POST: returns catalog.ErrNotFound for ids outside the collection
func ExecuteToggleLike(ctx context.Context, input ToggleLikeInput, deps ToggleLikeDeps) (ToggleLikeResult, error) {
	if _, err := deps.Catalog.GetByID(ctx, input.Kind, input.ItemID); err != nil {
		return ToggleLikeResult{}, fmt.Errorf("toggle like %s/%d: %w", input.Kind, input.ItemID, err)
	}
	likes, err := deps.Sessions.ToggleLike(input.Token, input.Kind, input.ItemID)
	if err != nil {
		return ToggleLikeResult{}, err
	}
	return ToggleLikeResult{Liked: likes.Has(input.ItemID), Likes: likes}, nil
}
