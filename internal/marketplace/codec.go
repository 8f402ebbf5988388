package marketplace

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// SearchPageSize is the page size the search view always requests.
const SearchPageSize = 20

type param struct {
	name  string
	value string
}

// params lists the set fields of f in emission order. Empty strings and
// out-of-domain numbers are skipped. When dropDefaults is set, fields equal
// to their documented default are skipped too.
func params(f Filter, dropDefaults bool) []param {
	var out []param
	str := func(name Field, v *string) {
		if v != nil && *v != "" {
			out = append(out, param{string(name), *v})
		}
	}
	price := func(name Field, v *float64) {
		if v != nil && validPrice(*v) {
			out = append(out, param{string(name), formatNumber(*v)})
		}
	}

	str(FieldSearch, f.Search)
	if f.Category != nil && f.Category.Valid() {
		out = append(out, param{string(FieldCategory), string(*f.Category)})
	}
	if f.Condition != nil && f.Condition.Valid() {
		out = append(out, param{string(FieldCondition), string(*f.Condition)})
	}
	str(FieldSize, f.Size)
	str(FieldBrand, f.Brand)
	str(FieldColor, f.Color)
	price(FieldMinPrice, f.MinPrice)
	price(FieldMaxPrice, f.MaxPrice)
	if f.Status != nil && f.Status.Valid() {
		out = append(out, param{string(FieldStatus), string(*f.Status)})
	}
	if f.SortBy != nil && !(dropDefaults && *f.SortBy == DefaultSortField) {
		if _, err := ParseSortField(string(*f.SortBy)); err == nil {
			out = append(out, param{string(FieldSortBy), string(*f.SortBy)})
		}
	}
	if f.SortOrder != nil && !(dropDefaults && *f.SortOrder == DefaultSortOrder) {
		if _, err := ParseSortOrder(string(*f.SortOrder)); err == nil {
			out = append(out, param{string(FieldSortOrder), string(*f.SortOrder)})
		}
	}
	if f.Page != nil && *f.Page > 0 && !(dropDefaults && *f.Page == 1) {
		out = append(out, param{string(FieldPage), strconv.Itoa(*f.Page)})
	}
	if f.Limit != nil && *f.Limit > 0 {
		out = append(out, param{string(FieldLimit), strconv.Itoa(*f.Limit)})
	}
	return out
}

// EncodeQuery renders f as a shareable query string without the leading
// "?". Defaults (sortBy=createdAt, sortOrder=desc, page=1) are never
// emitted, so an all-default filter encodes to "".
func EncodeQuery(f Filter) string {
	var b strings.Builder
	for i, p := range params(f, true) {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.value))
	}
	return b.String()
}

// DecodeQuery parses a query string, with or without the leading "?".
// Unknown keys and invalid values are dropped.
func DecodeQuery(raw string) Filter {
	// ParseQuery keeps every pair it could decode alongside the error.
	values, _ := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	return DecodeValues(values)
}

// DecodeValues builds a Filter from already-parsed query values. Only the
// first value of each key is read.
func DecodeValues(values url.Values) Filter {
	var f Filter
	get := func(name Field) string { return values.Get(string(name)) }

	if v := get(FieldSearch); v != "" {
		f = f.WithSearch(v)
	}
	if c, err := ParseCategory(get(FieldCategory)); err == nil {
		f = f.WithCategory(c)
	}
	if c, err := ParseCondition(get(FieldCondition)); err == nil {
		f = f.WithCondition(c)
	}
	if v := get(FieldSize); v != "" {
		f = f.WithSize(v)
	}
	if v := get(FieldBrand); v != "" {
		f = f.WithBrand(v)
	}
	if v := get(FieldColor); v != "" {
		f = f.WithColor(v)
	}
	if p, ok := parsePrice(get(FieldMinPrice)); ok {
		f = f.WithMinPrice(p)
	}
	if p, ok := parsePrice(get(FieldMaxPrice)); ok {
		f = f.WithMaxPrice(p)
	}
	if s, err := ParseStatus(get(FieldStatus)); err == nil {
		f = f.WithStatus(s)
	}
	if s, err := ParseSortField(get(FieldSortBy)); err == nil {
		f = f.WithSortBy(s)
	}
	if o, err := ParseSortOrder(get(FieldSortOrder)); err == nil {
		f = f.WithSortOrder(o)
	}
	if n, ok := parsePositive(get(FieldPage)); ok {
		f = f.WithPage(n)
	}
	if n, ok := parsePositive(get(FieldLimit)); ok {
		f = f.WithLimit(n)
	}
	return f
}

// WithoutDefaults drops every field EncodeQuery would not emit.
func (f Filter) WithoutDefaults() Filter {
	for _, s := range []struct {
		field Field
		v     *string
	}{
		{FieldSearch, f.Search},
		{FieldSize, f.Size},
		{FieldBrand, f.Brand},
		{FieldColor, f.Color},
	} {
		if s.v != nil && *s.v == "" {
			f = f.Without(s.field)
		}
	}
	if f.SortBy != nil && *f.SortBy == DefaultSortField {
		f = f.Without(FieldSortBy)
	}
	if f.SortOrder != nil && *f.SortOrder == DefaultSortOrder {
		f = f.Without(FieldSortOrder)
	}
	if f.Page != nil && *f.Page == 1 {
		f = f.Without(FieldPage)
	}
	return f
}

// APIParams renders f as backend query parameters. Unlike EncodeQuery it
// keeps explicitly set defaults, and the search text goes out as "search".
func APIParams(f Filter) url.Values {
	values := url.Values{}
	for _, p := range params(f, false) {
		name := p.name
		if name == string(FieldSearch) {
			name = "search"
		}
		values.Set(name, p.value)
	}
	return values
}

// SearchFilter is the filter the search view sends: only active listings,
// one fixed-size page at a time.
func SearchFilter(f Filter) Filter {
	return f.WithStatus(StatusActive).WithLimit(SearchPageSize)
}

func validPrice(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

func parsePrice(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !validPrice(v) {
		return 0, false
	}
	return v, true
}

func parsePositive(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
