package marketplace

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeQuery_emitsNonDefaultsInFixedOrder(t *testing.T) {
	t.Parallel()

	f := Filter{}.
		WithPage(2).
		WithSortOrder(SortAsc).
		WithSortBy(SortByPrice).
		WithCategory(CategoryShoes)

	assert.Equal(t, "category=SHOES&sortBy=price&sortOrder=asc&page=2", EncodeQuery(f))
}

func TestEncodeQuery_allDefaultsIsEmpty(t *testing.T) {
	t.Parallel()

	f := Filter{}.WithSortBy(SortByCreatedAt).WithSortOrder(SortDesc).WithPage(1)
	assert.Equal(t, "", EncodeQuery(f))
}

func TestEncodeQuery_fields(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		f    Filter
		want string
	}{
		{name: "search is q", f: Filter{}.WithSearch("red coat"), want: "q=red+coat"},
		{name: "empty strings skipped", f: Filter{}.WithSearch("").WithBrand(""), want: ""},
		{name: "shortest number form", f: Filter{}.WithMinPrice(10).WithMaxPrice(49.5), want: "minPrice=10&maxPrice=49.5"},
		{name: "zero price kept", f: Filter{}.WithMinPrice(0), want: "minPrice=0"},
		{name: "status and limit", f: SearchFilter(Filter{}), want: "status=ACTIVE&limit=20"},
		{name: "free-form size", f: Filter{}.WithSize("W32 L34").WithColor("navy"), want: "size=W32+L34&color=navy"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, EncodeQuery(tc.f))
		})
	}
}

func TestDecodeQuery_invalidNumberIsDropped(t *testing.T) {
	t.Parallel()

	f := DecodeQuery("minPrice=abc")
	assert.Nil(t, f.MinPrice)
	assert.True(t, f.Equal(Filter{}))
}

func TestDecodeQuery_dropsOutOfDomainValues(t *testing.T) {
	t.Parallel()

	f := DecodeQuery("?category=HATS&condition=MINT&minPrice=NaN&maxPrice=-4&sortBy=created_at&sortOrder=up&page=0&limit=x&status=LOST&unknown=1")
	assert.True(t, f.Equal(Filter{}), "got %+v", f)
}

func TestDecodeQuery_parsesEverything(t *testing.T) {
	t.Parallel()

	f := DecodeQuery("q=denim&category=BOTTOMS&condition=GOOD&size=M&brand=Levi%27s&color=blue&minPrice=5&maxPrice=80.25&status=ACTIVE&sortBy=title&sortOrder=asc&page=3&limit=10")

	want := Filter{}.
		WithSearch("denim").
		WithCategory(CategoryBottoms).
		WithCondition(ConditionGood).
		WithSize("M").
		WithBrand("Levi's").
		WithColor("blue").
		WithMinPrice(5).
		WithMaxPrice(80.25).
		WithStatus(StatusActive).
		WithSortBy(SortByTitle).
		WithSortOrder(SortAsc).
		WithPage(3).
		WithLimit(10)
	assert.True(t, want.Equal(f), "got %+v", f)
}

func TestCodec_roundTrip(t *testing.T) {
	t.Parallel()

	filters := []Filter{
		{},
		Filter{}.WithCategory(CategoryShoes).WithSortBy(SortByPrice).WithSortOrder(SortAsc).WithPage(2),
		Filter{}.WithSortBy(SortByCreatedAt).WithSortOrder(SortDesc).WithPage(1),
		Filter{}.WithSearch("vintage & retro").WithBrand("A+B").WithMinPrice(0.1).WithMaxPrice(1e6),
		Filter{}.WithSearch("").WithColor("").WithLimit(50),
		SearchFilter(Filter{}.WithCondition(ConditionNewWithTags).WithSize("XL")),
	}
	for _, c := range Categories {
		filters = append(filters, Filter{}.WithCategory(c))
	}

	for _, f := range filters {
		got := DecodeQuery(EncodeQuery(f))
		assert.True(t, got.Equal(f.WithoutDefaults()), "query %q decoded to %+v", EncodeQuery(f), got)
	}
}

func TestFilter_withDoesNotMutate(t *testing.T) {
	t.Parallel()

	base := Filter{}.WithBrand("Nike")
	changed := base.WithBrand("Adidas").Without(FieldBrand).WithPage(4)

	require.NotNil(t, base.Brand)
	assert.Equal(t, "Nike", *base.Brand)
	assert.Nil(t, base.Page)
	assert.Nil(t, changed.Brand)
}

func TestAPIParams(t *testing.T) {
	t.Parallel()

	f := Filter{}.WithSearch("boots").WithSortBy(SortByCreatedAt).WithPage(1)
	got := APIParams(f)

	assert.Equal(t, url.Values{
		"search": {"boots"},
		"sortBy": {"createdAt"},
		"page":   {"1"},
	}, got)
}

func TestSearchFilter_overridesStatusAndLimit(t *testing.T) {
	t.Parallel()

	f := SearchFilter(Filter{}.WithStatus(StatusSold).WithLimit(100))
	require.NotNil(t, f.Status)
	require.NotNil(t, f.Limit)
	assert.Equal(t, StatusActive, *f.Status)
	assert.Equal(t, SearchPageSize, *f.Limit)
}

func TestListKey_constructionOrderDoesNotMatter(t *testing.T) {
	t.Parallel()

	a := Filter{}.WithCategory(CategoryBags).WithMinPrice(20).WithSortBy(SortByPrice)
	b := Filter{}.WithSortBy(SortByPrice).WithMinPrice(20).WithCategory(CategoryBags)

	assert.Equal(t, ListKey(a), ListKey(b))
	assert.NotEqual(t, ListKey(a), UserListingsKey("u1", a))
	assert.Equal(t, KindList, ListKey(a).Kind)
}

func TestListKey_explicitEmptyIsNotUnset(t *testing.T) {
	t.Parallel()

	unset := Filter{}.WithCategory(CategoryBags)
	empty := unset.WithBrand("")

	assert.NotEqual(t, ListKey(unset), ListKey(empty))
	assert.NotEqual(t, UserListingsKey("u1", unset), UserListingsKey("u1", empty))
	assert.Equal(t, ListKey(empty), ListKey(Filter{}.WithBrand("").WithCategory(CategoryBags)))

	// The backend and the shareable URL still never see the empty value.
	assert.Equal(t, APIParams(unset), APIParams(empty))
	assert.Equal(t, EncodeQuery(unset), EncodeQuery(empty))
}
