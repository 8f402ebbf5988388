package marketplace

import (
	"context"
	"net/url"

	"github.com/threadswap/storefront/internal/api"
	"github.com/threadswap/storefront/internal/upload"
)

// Backend is the part of *api.Client the listing endpoints use.
type Backend interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Patch(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
	PostMultipart(ctx context.Context, path string, form *api.Form, out any) error
}

// API calls the listing endpoints. It does no caching; see Queries and
// Coordinator.
type API struct {
	b Backend
}

func NewAPI(b Backend) *API {
	return &API{b: b}
}

func listingPath(id string) string {
	return "/listings/" + url.PathEscape(id)
}

// List calls GET /listings.
func (a *API) List(ctx context.Context, f Filter) (Page, error) {
	if err := f.Validate(); err != nil {
		return Page{}, err
	}
	var page Page
	if err := a.b.Get(ctx, "/listings", APIParams(f), &page); err != nil {
		return Page{}, err
	}
	return page, nil
}

// Get calls GET /listings/:id.
func (a *API) Get(ctx context.Context, id string) (Listing, error) {
	if id == "" {
		return Listing{}, &api.ValidationError{Field: "id", Msg: "is required"}
	}
	var res itemResponse
	if err := a.b.Get(ctx, listingPath(id), nil, &res); err != nil {
		return Listing{}, err
	}
	return res.Item, nil
}

// ByUser calls GET /users/:userId/listings.
func (a *API) ByUser(ctx context.Context, userID string, f Filter) (Page, error) {
	if userID == "" {
		return Page{}, &api.ValidationError{Field: "userId", Msg: "is required"}
	}
	if err := f.Validate(); err != nil {
		return Page{}, err
	}
	var page Page
	if err := a.b.Get(ctx, "/users/"+url.PathEscape(userID)+"/listings", APIParams(f), &page); err != nil {
		return Page{}, err
	}
	return page, nil
}

// Create validates req and posts it as multipart/form-data with one
// "images" part per upload.
func (a *API) Create(ctx context.Context, req CreateRequest) (Listing, error) {
	if err := req.Validate(); err != nil {
		return Listing{}, err
	}

	form := api.NewForm().
		Field("title", req.Title).
		Field("description", req.Description).
		Field("price", formatNumber(req.Price)).
		Field("category", string(req.Category)).
		Field("size", req.Size).
		Field("condition", string(req.Condition))
	if req.Brand != "" {
		form.Field("brand", req.Brand)
	}
	if req.Color != "" {
		form.Field("color", req.Color)
	}
	if req.Status != nil {
		form.Field("status", string(*req.Status))
	}
	for _, img := range req.Images {
		ct, err := upload.DetectImage(img.Data)
		if err != nil {
			return Listing{}, &api.ValidationError{Field: "images", Msg: err.Error()}
		}
		form.File("images", img.FileName, ct, img.Data)
	}

	var res listingResponse
	if err := a.b.PostMultipart(ctx, "/listings", form, &res); err != nil {
		return Listing{}, err
	}
	return res.Listing, nil
}

// Update calls PATCH /listings/:id.
func (a *API) Update(ctx context.Context, id string, req UpdateRequest) (Listing, error) {
	if err := req.Validate(); err != nil {
		return Listing{}, err
	}
	var res listingResponse
	if err := a.b.Patch(ctx, listingPath(id), req, &res); err != nil {
		return Listing{}, err
	}
	return res.Listing, nil
}

// UpdateStatus calls PATCH /listings/:id/status.
func (a *API) UpdateStatus(ctx context.Context, id string, status Status) (Listing, error) {
	var res listingResponse
	if err := a.b.Patch(ctx, listingPath(id)+"/status", statusRequest{Status: status}, &res); err != nil {
		return Listing{}, err
	}
	return res.Listing, nil
}

// Delete calls DELETE /listings/:id.
func (a *API) Delete(ctx context.Context, id string) error {
	var res messageResponse
	return a.b.Delete(ctx, listingPath(id), &res)
}
