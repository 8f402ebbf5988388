package user

import (
	"time"

	"github.com/threadswap/storefront/internal/api"
)

type Avatar struct {
	Key string  `json:"key"`
	URL *string `json:"url"`
}

type Socials struct {
	Instagram string `json:"instagram,omitempty" validate:"max=30"`
	Website   string `json:"website,omitempty" validate:"weburl"`
}

type Stats struct {
	ListingsCount int     `json:"listingsCount"`
	SalesCount    int     `json:"salesCount"`
	AvgRating     float64 `json:"avgRating"`
	RatingCount   int     `json:"ratingCount"`
}

// Profile is the public view of a user.
type Profile struct {
	ID          string    `json:"id"`
	DisplayName *string   `json:"displayName"`
	Username    *string   `json:"username"`
	Bio         *string   `json:"bio"`
	Avatar      *Avatar   `json:"avatar"`
	Socials     *Socials  `json:"socials"`
	Stats       Stats     `json:"stats"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AvatarURL resolves the avatar the same way listing images are resolved.
func (p Profile) AvatarURL(baseURL string) (string, bool) {
	if p.Avatar == nil {
		return "", false
	}
	return api.AssetURL(p.Avatar.URL, p.Avatar.Key, baseURL)
}

// PatchRequest edits a profile. Nil fields are left alone; an empty string
// clears the field.
type PatchRequest struct {
	DisplayName *string  `json:"displayName,omitempty" validate:"omitempty,max=50"`
	Username    *string  `json:"username,omitempty" validate:"omitempty,username"`
	Bio         *string  `json:"bio,omitempty" validate:"omitempty,max=300"`
	Socials     *Socials `json:"socials,omitempty"`
}

type profileResponse struct {
	OK      bool    `json:"ok"`
	Profile Profile `json:"profile"`
}

type avatarResponse struct {
	OK     bool   `json:"ok"`
	Avatar Avatar `json:"avatar"`
}
