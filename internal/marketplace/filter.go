package marketplace

import (
	"github.com/threadswap/storefront/internal/api"
)

// Field names a Filter field by its query-string parameter.
type Field string

const (
	FieldSearch    Field = "q"
	FieldCategory  Field = "category"
	FieldCondition Field = "condition"
	FieldSize      Field = "size"
	FieldBrand     Field = "brand"
	FieldColor     Field = "color"
	FieldMinPrice  Field = "minPrice"
	FieldMaxPrice  Field = "maxPrice"
	FieldStatus    Field = "status"
	FieldSortBy    Field = "sortBy"
	FieldSortOrder Field = "sortOrder"
	FieldPage      Field = "page"
	FieldLimit     Field = "limit"
)

// Filter is the set of constraints for a listing query. A nil field is
// unset, which is different from any explicit value including "" and 0.
//
// Filters are values: the With and Without methods return modified copies
// and never touch the receiver's pointees.
type Filter struct {
	Search    *string
	Category  *Category
	Condition *Condition
	Size      *string
	Brand     *string
	Color     *string
	MinPrice  *float64
	MaxPrice  *float64
	Status    *Status
	SortBy    *SortField
	SortOrder *SortOrder
	Page      *int
	Limit     *int
}

func ptr[T any](v T) *T { return &v }

func (f Filter) WithSearch(q string) Filter { f.Search = ptr(q); return f }
func (f Filter) WithCategory(c Category) Filter { f.Category = ptr(c); return f }
func (f Filter) WithCondition(c Condition) Filter { f.Condition = ptr(c); return f }
func (f Filter) WithSize(s string) Filter { f.Size = ptr(s); return f }
func (f Filter) WithBrand(b string) Filter { f.Brand = ptr(b); return f }
func (f Filter) WithColor(c string) Filter { f.Color = ptr(c); return f }
func (f Filter) WithMinPrice(p float64) Filter { f.MinPrice = ptr(p); return f }
func (f Filter) WithMaxPrice(p float64) Filter { f.MaxPrice = ptr(p); return f }
func (f Filter) WithStatus(s Status) Filter { f.Status = ptr(s); return f }
func (f Filter) WithSortBy(s SortField) Filter { f.SortBy = ptr(s); return f }
func (f Filter) WithSortOrder(o SortOrder) Filter { f.SortOrder = ptr(o); return f }
func (f Filter) WithPage(p int) Filter { f.Page = ptr(p); return f }
func (f Filter) WithLimit(l int) Filter { f.Limit = ptr(l); return f }

// Without returns a copy with field unset.
func (f Filter) Without(field Field) Filter {
	switch field {
	case FieldSearch:
		f.Search = nil
	case FieldCategory:
		f.Category = nil
	case FieldCondition:
		f.Condition = nil
	case FieldSize:
		f.Size = nil
	case FieldBrand:
		f.Brand = nil
	case FieldColor:
		f.Color = nil
	case FieldMinPrice:
		f.MinPrice = nil
	case FieldMaxPrice:
		f.MaxPrice = nil
	case FieldStatus:
		f.Status = nil
	case FieldSortBy:
		f.SortBy = nil
	case FieldSortOrder:
		f.SortOrder = nil
	case FieldPage:
		f.Page = nil
	case FieldLimit:
		f.Limit = nil
	}
	return f
}

func eq[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Equal reports whether both filters set the same fields to the same values.
func (f Filter) Equal(g Filter) bool {
	return eq(f.Search, g.Search) &&
		eq(f.Category, g.Category) &&
		eq(f.Condition, g.Condition) &&
		eq(f.Size, g.Size) &&
		eq(f.Brand, g.Brand) &&
		eq(f.Color, g.Color) &&
		eq(f.MinPrice, g.MinPrice) &&
		eq(f.MaxPrice, g.MaxPrice) &&
		eq(f.Status, g.Status) &&
		eq(f.SortBy, g.SortBy) &&
		eq(f.SortOrder, g.SortOrder) &&
		eq(f.Page, g.Page) &&
		eq(f.Limit, g.Limit)
}

// Validate rejects filters the backend would answer with a confusing or
// empty result.
func (f Filter) Validate() error {
	if f.MinPrice != nil && *f.MinPrice < 0 {
		return &api.ValidationError{Field: string(FieldMinPrice), Msg: "must not be negative"}
	}
	if f.MaxPrice != nil && *f.MaxPrice < 0 {
		return &api.ValidationError{Field: string(FieldMaxPrice), Msg: "must not be negative"}
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return &api.ValidationError{Field: string(FieldMinPrice), Msg: "must not exceed maxPrice"}
	}
	if f.Page != nil && *f.Page < 1 {
		return &api.ValidationError{Field: string(FieldPage), Msg: "must be positive"}
	}
	if f.Limit != nil && *f.Limit < 1 {
		return &api.ValidationError{Field: string(FieldLimit), Msg: "must be positive"}
	}
	if f.Category != nil && !f.Category.Valid() {
		return &api.ValidationError{Field: string(FieldCategory), Msg: "unknown category"}
	}
	if f.Condition != nil && !f.Condition.Valid() {
		return &api.ValidationError{Field: string(FieldCondition), Msg: "unknown condition"}
	}
	if f.Status != nil && !f.Status.Valid() {
		return &api.ValidationError{Field: string(FieldStatus), Msg: "unknown status"}
	}
	return nil
}

// ActiveCount is the number of user-facing narrowing filters set. Search
// text, sorting and paging are not counted.
func (f Filter) ActiveCount() int {
	n := 0
	for _, set := range []bool{
		f.Category != nil,
		f.Condition != nil,
		f.Size != nil,
		f.Brand != nil,
		f.MinPrice != nil,
		f.MaxPrice != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

func (f Filter) HasUserFilters() bool { return f.ActiveCount() > 0 }
