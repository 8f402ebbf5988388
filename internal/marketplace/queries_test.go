package marketplace

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadswap/storefront/internal/querycache"
)

func TestQueries_WatchList_deliversOnlyLatestFilter(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	ctx := context.Background()

	shoes := make(chan struct{})
	fx.backend.mu.Lock()
	fx.backend.hold = map[string]chan struct{}{string(CategoryShoes): shoes}
	fx.backend.mu.Unlock()

	results := make(chan querycache.Result, 4)
	sub := fx.cache.Subscribe(func(r querycache.Result) { results <- r })
	defer sub.Close()

	fx.queries.WatchList(ctx, sub, Filter{}.WithCategory(CategoryShoes))
	require.Eventually(t, func() bool { return fx.backend.count("GET /listings") == 1 }, time.Second, 5*time.Millisecond)

	fx.queries.WatchList(ctx, sub, Filter{}.WithCategory(CategoryBags))

	select {
	case r := <-results:
		require.NoError(t, r.Err)
		page, ok := r.Data.(Page)
		require.True(t, ok)
		require.Len(t, page.Items, 1)
		assert.Equal(t, CategoryBags, page.Items[0].Category)
	case <-time.After(2 * time.Second):
		t.Fatal("no result for the latest filter")
	}

	// The earlier page still lands in the cache but is not delivered.
	close(shoes)
	require.Eventually(t, func() bool {
		r, ok := fx.cache.Peek(ListKey(Filter{}.WithCategory(CategoryShoes)))
		return ok && r.Status == querycache.StatusSuccess
	}, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, results)
}
