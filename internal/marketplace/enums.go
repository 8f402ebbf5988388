package marketplace

import "fmt"

// Category values mirror the listing category enum on the backend.
type Category string

const (
	CategoryTops        Category = "TOPS"
	CategoryBottoms     Category = "BOTTOMS"
	CategoryDresses     Category = "DRESSES"
	CategoryOuterwear   Category = "OUTERWEAR"
	CategoryShoes       Category = "SHOES"
	CategoryAccessories Category = "ACCESSORIES"
	CategoryBags        Category = "BAGS"
	CategoryJewelry     Category = "JEWELRY"
	CategoryOther       Category = "OTHER"
)

// Categories is every category in display order.
var Categories = []Category{
	CategoryTops, CategoryBottoms, CategoryDresses, CategoryOuterwear, CategoryShoes,
	CategoryAccessories, CategoryBags, CategoryJewelry, CategoryOther,
}

// ParseCategory converts a raw string to a Category, returning an error for
// unknown values.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

func (c Category) Valid() bool {
	return c.Label() != ""
}

// Label is the human-readable name, empty for unknown values.
func (c Category) Label() string {
	switch c {
	case CategoryTops:
		return "Tops"
	case CategoryBottoms:
		return "Bottoms"
	case CategoryDresses:
		return "Dresses"
	case CategoryOuterwear:
		return "Outerwear"
	case CategoryShoes:
		return "Shoes"
	case CategoryAccessories:
		return "Accessories"
	case CategoryBags:
		return "Bags"
	case CategoryJewelry:
		return "Jewelry"
	case CategoryOther:
		return "Other"
	}
	return ""
}

// Condition describes item wear.
type Condition string

const (
	ConditionNewWithTags    Condition = "NEW_WITH_TAGS"
	ConditionNewWithoutTags Condition = "NEW_WITHOUT_TAGS"
	ConditionExcellent      Condition = "EXCELLENT"
	ConditionGood           Condition = "GOOD"
	ConditionFair           Condition = "FAIR"
)

var Conditions = []Condition{
	ConditionNewWithTags, ConditionNewWithoutTags, ConditionExcellent, ConditionGood, ConditionFair,
}

func ParseCondition(s string) (Condition, error) {
	c := Condition(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown condition %q", s)
	}
	return c, nil
}

func (c Condition) Valid() bool {
	return c.Label() != ""
}

func (c Condition) Label() string {
	switch c {
	case ConditionNewWithTags:
		return "New with tags"
	case ConditionNewWithoutTags:
		return "New without tags"
	case ConditionExcellent:
		return "Excellent"
	case ConditionGood:
		return "Good"
	case ConditionFair:
		return "Fair"
	}
	return ""
}

func (c Condition) Description() string {
	switch c {
	case ConditionNewWithTags:
		return "Brand new, never worn, original tags attached"
	case ConditionNewWithoutTags:
		return "Never worn but tags removed"
	case ConditionExcellent:
		return "Worn once or twice, no visible flaws"
	case ConditionGood:
		return "Light signs of wear, fully functional"
	case ConditionFair:
		return "Visible wear but still wearable"
	}
	return ""
}

// Status is the listing lifecycle state. See transitions.go.
type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusActive   Status = "ACTIVE"
	StatusSold     Status = "SOLD"
	StatusArchived Status = "ARCHIVED"
	StatusRemoved  Status = "REMOVED"
)

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusDraft, StatusActive, StatusSold, StatusArchived, StatusRemoved:
		return st, nil
	}
	return "", fmt.Errorf("unknown listing status %q", s)
}

func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// SortField is the listing sort column. The zero value is not valid; use
// DefaultSortField.
type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByPrice     SortField = "price"
	SortByTitle     SortField = "title"

	DefaultSortField = SortByCreatedAt
)

func ParseSortField(s string) (SortField, error) {
	f := SortField(s)
	switch f {
	case SortByCreatedAt, SortByPrice, SortByTitle:
		return f, nil
	}
	return "", fmt.Errorf("unknown sort field %q", s)
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"

	DefaultSortOrder = SortDesc
)

func ParseSortOrder(s string) (SortOrder, error) {
	o := SortOrder(s)
	switch o {
	case SortAsc, SortDesc:
		return o, nil
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

// Sizes is the size scale offered when creating a listing. Filters accept
// any size string.
var Sizes = []string{"XXS", "XS", "S", "M", "L", "XL", "XXL", "3XL"}
