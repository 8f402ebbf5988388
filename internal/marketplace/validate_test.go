package marketplace

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadswap/storefront/internal/api"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

func validCreate() CreateRequest {
	return CreateRequest{
		Title:       "Denim jacket",
		Description: "Lightly worn denim jacket, size M.",
		Price:       45,
		Category:    CategoryOuterwear,
		Size:        "M",
		Condition:   ConditionGood,
		Images:      []Upload{{FileName: "front.png", Data: pngBytes}},
	}
}

func TestCreateRequest_Validate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		mutate    func(r *CreateRequest)
		wantField string
	}{
		{name: "valid", mutate: func(r *CreateRequest) {}},
		{name: "short title", mutate: func(r *CreateRequest) { r.Title = "ab" }, wantField: "title"},
		{name: "short description", mutate: func(r *CreateRequest) { r.Description = "too short" }, wantField: "description"},
		{name: "zero price", mutate: func(r *CreateRequest) { r.Price = 0 }, wantField: "price"},
		{name: "price over cap", mutate: func(r *CreateRequest) { r.Price = 100000.01 }, wantField: "price"},
		{name: "unknown category", mutate: func(r *CreateRequest) { r.Category = "HATS" }, wantField: "category"},
		{name: "unknown condition", mutate: func(r *CreateRequest) { r.Condition = "MINT" }, wantField: "condition"},
		{name: "size outside scale", mutate: func(r *CreateRequest) { r.Size = "4XL" }, wantField: "size"},
		{name: "long brand", mutate: func(r *CreateRequest) { r.Brand = strings.Repeat("b", 51) }, wantField: "brand"},
		{name: "long color", mutate: func(r *CreateRequest) { r.Color = strings.Repeat("c", 31) }, wantField: "color"},
		{name: "starts as draft", mutate: func(r *CreateRequest) { st := StatusDraft; r.Status = &st }},
		{name: "cannot start sold", mutate: func(r *CreateRequest) { st := StatusSold; r.Status = &st }, wantField: "status"},
		{name: "cannot start removed", mutate: func(r *CreateRequest) { st := StatusRemoved; r.Status = &st }, wantField: "status"},
		{name: "no images", mutate: func(r *CreateRequest) { r.Images = nil }, wantField: "images"},
		{name: "too many images", mutate: func(r *CreateRequest) {
			for len(r.Images) < 9 {
				r.Images = append(r.Images, Upload{FileName: "x.png", Data: pngBytes})
			}
		}, wantField: "images"},
		{name: "not an image", mutate: func(r *CreateRequest) {
			r.Images = []Upload{{FileName: "photo.png", Data: []byte("plain text pretending to be a photo")}}
		}, wantField: "images"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r := validCreate()
			tc.mutate(&r)
			err := r.Validate()
			if tc.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var verr *api.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.wantField, verr.Field)
			assert.NotEmpty(t, verr.Msg)
		})
	}
}

func TestUpdateRequest_Validate_onlyPresentFields(t *testing.T) {
	t.Parallel()

	assert.NoError(t, UpdateRequest{}.Validate())

	short := "ab"
	err := UpdateRequest{Title: &short}.Validate()
	var verr *api.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)

	size := "XXS"
	assert.NoError(t, UpdateRequest{Size: &size}.Validate())
}

func TestFilter_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Filter{}.Validate())
	assert.NoError(t, Filter{}.WithMinPrice(10).WithMaxPrice(10).Validate())

	cases := []struct {
		name  string
		f     Filter
		field Field
	}{
		{name: "min above max", f: Filter{}.WithMinPrice(50).WithMaxPrice(10), field: FieldMinPrice},
		{name: "negative max", f: Filter{}.WithMaxPrice(-1), field: FieldMaxPrice},
		{name: "page zero", f: Filter{}.WithPage(0), field: FieldPage},
		{name: "negative limit", f: Filter{}.WithLimit(-5), field: FieldLimit},
		{name: "bad category", f: Filter{}.WithCategory("HATS"), field: FieldCategory},
	}
	for _, tc := range cases {
		err := tc.f.Validate()
		var verr *api.ValidationError
		if assert.ErrorAs(t, err, &verr, tc.name) {
			assert.Equal(t, string(tc.field), verr.Field, tc.name)
		}
	}
}

func TestFilter_ActiveCount(t *testing.T) {
	t.Parallel()

	f := Filter{}.WithSearch("x").WithSortBy(SortByPrice).WithCategory(CategoryTops).WithMinPrice(1)
	assert.Equal(t, 2, f.ActiveCount())
	assert.True(t, f.HasUserFilters())
	assert.False(t, Filter{}.WithPage(3).HasUserFilters())
}

func TestListing_PriceAndImages(t *testing.T) {
	t.Parallel()

	signed := "https://cdn.example/signed.jpg"
	l := Listing{
		ID:    "l1",
		Price: "12.50",
		Images: []Image{
			{Key: "listings/a.jpg", URL: &signed},
			{Key: "listings/b.jpg"},
			{},
		},
	}

	v, err := l.PriceValue()
	require.NoError(t, err)
	assert.Equal(t, 12.5, v)

	assert.Equal(t, []string{signed, "https://bucket.example/listings/b.jpg"}, l.ImageURLs("https://bucket.example/"))

	cover, ok := l.CoverURL("")
	assert.True(t, ok)
	assert.Equal(t, signed, cover)

	_, err = Listing{ID: "l2", Price: "free"}.PriceValue()
	assert.Error(t, err)
}
