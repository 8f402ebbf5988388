package querycache

import (
	"net/url"
	"sort"
	"strings"
)

// Kind is the resource family a key belongs to. Invalidation by kind is
// coarse: it hits every key of that kind whatever its params.
type Kind string

// Key addresses one cached query or resource.
type Key struct {
	Kind   Kind
	ID     string
	Params string
}

// NewKey builds a key whose params are normalized: field names and values
// are sorted before stringifying, so two equal param sets built in a
// different order produce the same key.
func NewKey(kind Kind, id string, params url.Values) Key {
	return Key{Kind: kind, ID: id, Params: canonical(params)}
}

func canonical(params url.Values) string {
	if len(params) == 0 {
		return ""
	}
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, k := range names {
		vals := append([]string(nil), params[k]...)
		sort.Strings(vals)
		for _, v := range vals {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}

// String renders kind[/id][?params].
func (k Key) String() string {
	var b strings.Builder
	b.WriteString(string(k.Kind))
	if k.ID != "" {
		b.WriteByte('/')
		b.WriteString(k.ID)
	}
	if k.Params != "" {
		b.WriteByte('?')
		b.WriteString(k.Params)
	}
	return b.String()
}
