package marketplace

import (
	"net/url"

	"github.com/threadswap/storefront/internal/querycache"
)

const (
	KindList         querycache.Kind = "listing-list"
	KindDetail       querycache.Kind = "listing-detail"
	KindUserListings querycache.Kind = "user-listings"
)

// ListKey addresses one page of listing search results.
func ListKey(f Filter) querycache.Key {
	return querycache.NewKey(KindList, "", keyParams(f))
}

func DetailKey(id string) querycache.Key {
	return querycache.NewKey(KindDetail, id, nil)
}

func UserListingsKey(userID string, f Filter) querycache.Key {
	return querycache.NewKey(KindUserListings, userID, keyParams(f))
}

// keyParams is APIParams plus the text fields set explicitly to "", so an
// explicit empty value never shares a key with an unset field.
func keyParams(f Filter) url.Values {
	values := APIParams(f)
	for _, s := range []struct {
		name string
		v    *string
	}{
		{"search", f.Search},
		{string(FieldSize), f.Size},
		{string(FieldBrand), f.Brand},
		{string(FieldColor), f.Color},
	} {
		if s.v != nil && *s.v == "" {
			values.Set(s.name, "")
		}
	}
	return values
}
