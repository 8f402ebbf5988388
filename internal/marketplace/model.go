package marketplace

import (
	"fmt"
	"strconv"
	"time"

	"github.com/threadswap/storefront/internal/api"
)

// Image is one listing photo. Order within a listing is significant; the
// first image is the cover.
type Image struct {
	Key string  `json:"key"`
	URL *string `json:"url"`
}

// Resolve returns the display URL for the image.
func (i Image) Resolve(baseURL string) (string, bool) {
	return api.AssetURL(i.URL, i.Key, baseURL)
}

// Seller is the snapshot of the seller embedded in a listing.
type Seller struct {
	ID          string    `json:"id"`
	Username    *string   `json:"username"`
	DisplayName *string   `json:"displayName"`
	AvatarURL   *string   `json:"avatarUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Listing is a sellable item as returned by the backend.
type Listing struct {
	ID          string    `json:"id"`
	SellerID    string    `json:"sellerId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       string    `json:"price"` // decimal string, see PriceValue
	Currency    string    `json:"currency"`
	Category    Category  `json:"category"`
	Size        string    `json:"size"`
	Brand       *string   `json:"brand"`
	Condition   Condition `json:"condition"`
	Color       *string   `json:"color"`
	Status      Status    `json:"status"`
	Images      []Image   `json:"images"`
	ViewCount   int       `json:"viewCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Seller      Seller    `json:"seller"`
}

// PriceValue parses the decimal price for display arithmetic.
func (l Listing) PriceValue() (float64, error) {
	v, err := strconv.ParseFloat(l.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("listing %s: parse price %q: %w", l.ID, l.Price, err)
	}
	return v, nil
}

// ImageURLs resolves every image that has a usable URL, preserving order.
func (l Listing) ImageURLs(baseURL string) []string {
	urls := make([]string, 0, len(l.Images))
	for _, img := range l.Images {
		if u, ok := img.Resolve(baseURL); ok {
			urls = append(urls, u)
		}
	}
	return urls
}

// CoverURL is the first resolvable image, if any.
func (l Listing) CoverURL(baseURL string) (string, bool) {
	if len(l.Images) == 0 {
		return "", false
	}
	return l.Images[0].Resolve(baseURL)
}

type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// Page is one page of listings.
type Page struct {
	OK         bool       `json:"ok"`
	Items      []Listing  `json:"items"`
	Pagination Pagination `json:"pagination"`
}

type itemResponse struct {
	OK   bool    `json:"ok"`
	Item Listing `json:"item"`
}

type listingResponse struct {
	OK      bool    `json:"ok"`
	Message string  `json:"message"`
	Listing Listing `json:"listing"`
}

type messageResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Upload is one image file attached to a new listing.
type Upload struct {
	FileName string
	Data     []byte
}

// CreateRequest is the payload of a new listing.
type CreateRequest struct {
	Title       string    `json:"title" validate:"required,min=3,max=100"`
	Description string    `json:"description" validate:"required,min=10,max=2000"`
	Price       float64   `json:"price" validate:"gt=0,lte=100000"`
	Category    Category  `json:"category" validate:"category"`
	Size        string    `json:"size" validate:"required,listingsize"`
	Brand       string    `json:"brand,omitempty" validate:"max=50"`
	Condition   Condition `json:"condition" validate:"condition"`
	Color       string    `json:"color,omitempty" validate:"max=30"`
	Status      *Status   `json:"status,omitempty" validate:"omitempty,initialstatus"`
	Images      []Upload  `json:"-" validate:"min=1,max=8,dive"`
}

// UpdateRequest patches a listing. Nil fields are left untouched.
type UpdateRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=3,max=100"`
	Description *string    `json:"description,omitempty" validate:"omitempty,min=10,max=2000"`
	Price       *float64   `json:"price,omitempty" validate:"omitempty,gt=0,lte=100000"`
	Category    *Category  `json:"category,omitempty" validate:"omitempty,category"`
	Size        *string    `json:"size,omitempty" validate:"omitempty,listingsize"`
	Brand       *string    `json:"brand,omitempty" validate:"omitempty,max=50"`
	Condition   *Condition `json:"condition,omitempty" validate:"omitempty,condition"`
	Color       *string    `json:"color,omitempty" validate:"omitempty,max=30"`
	Status      *Status    `json:"status,omitempty" validate:"omitempty,status"`
}

type statusRequest struct {
	Status Status `json:"status"`
}
