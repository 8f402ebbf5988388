package marketplace

import (
	"context"

	"github.com/threadswap/storefront/internal/querycache"
)

// Queries serves listing reads through the shared cache.
type Queries struct {
	api   *API
	cache *querycache.Orchestrator
}

func NewQueries(a *API, cache *querycache.Orchestrator) *Queries {
	return &Queries{api: a, cache: cache}
}

// List returns one page of listings for f. Invalid filters are rejected
// before the cache is consulted.
func (q *Queries) List(ctx context.Context, f Filter) (Page, error) {
	if err := f.Validate(); err != nil {
		return Page{}, err
	}
	return querycache.Query(ctx, q.cache, ListKey(f), func(ctx context.Context) (Page, error) {
		return q.api.List(ctx, f)
	})
}

// Search is List with the search view's fixed status and page size.
func (q *Queries) Search(ctx context.Context, f Filter) (Page, error) {
	return q.List(ctx, SearchFilter(f))
}

func (q *Queries) Detail(ctx context.Context, id string) (Listing, error) {
	return querycache.Query(ctx, q.cache, DetailKey(id), func(ctx context.Context) (Listing, error) {
		return q.api.Get(ctx, id)
	})
}

func (q *Queries) ByUser(ctx context.Context, userID string, f Filter) (Page, error) {
	if err := f.Validate(); err != nil {
		return Page{}, err
	}
	return querycache.Query(ctx, q.cache, UserListingsKey(userID, f), func(ctx context.Context) (Page, error) {
		return q.api.ByUser(ctx, userID, f)
	})
}

// WatchList points sub at the listing page for f. Results arrive through
// the subscription's callback, and stale pages for earlier filters are
// dropped.
func (q *Queries) WatchList(ctx context.Context, sub *querycache.Subscription, f Filter) {
	sub.Watch(ctx, ListKey(f), func(ctx context.Context) (any, error) {
		return q.api.List(ctx, f)
	})
}
