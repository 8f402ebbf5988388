package marketplace

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/threadswap/storefront/internal/api"
	"github.com/threadswap/storefront/internal/upload"
	"github.com/threadswap/storefront/internal/utils"
)

// Handler exposes listing reads and writes to the local UI.
type Handler struct {
	queries   *Queries
	coord     *Coordinator
	assetBase string
}

func NewHandler(q *Queries, coord *Coordinator, assetBase string) *Handler {
	return &Handler{queries: q, coord: coord, assetBase: assetBase}
}

// Register mounts the routes. Writes go through requireSession.
func (h *Handler) Register(e *echo.Echo, requireSession echo.MiddlewareFunc) {
	e.GET("/listings", h.List)
	e.GET("/search", h.Search)
	e.GET("/listings/:id", h.Detail)
	e.GET("/users/:id/listings", h.ByUser)

	e.POST("/listings", h.Create, requireSession)
	e.PATCH("/listings/:id", h.Update, requireSession)
	e.PATCH("/listings/:id/status", h.UpdateStatus, requireSession)
	e.DELETE("/listings/:id", h.Delete, requireSession)
	e.GET("/listings/:id/actions", h.Actions, requireSession)
}

// listingView adds resolved image URLs to a listing.
type listingView struct {
	Listing
	ImageURLs []string `json:"imageUrls"`
}

func (h *Handler) view(l Listing) listingView {
	return listingView{Listing: l, ImageURLs: l.ImageURLs(h.assetBase)}
}

func (h *Handler) pageResponse(c echo.Context, f Filter, page Page) error {
	items := make([]listingView, 0, len(page.Items))
	for _, l := range page.Items {
		items = append(items, h.view(l))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":         items,
		"pagination":    page.Pagination,
		"query":         EncodeQuery(f),
		"activeFilters": f.ActiveCount(),
	})
}

// List returns listings matching the query string filter.
func (h *Handler) List(c echo.Context) error {
	f := DecodeValues(c.QueryParams())
	page, err := h.queries.List(c.Request().Context(), f)
	if err != nil {
		return utils.JSONError(c, err)
	}
	return h.pageResponse(c, f, page)
}

// Search returns active listings, one fixed-size page at a time. The
// returned query is the canonical shareable form of the user's filter.
func (h *Handler) Search(c echo.Context) error {
	f := DecodeValues(c.QueryParams())
	page, err := h.queries.Search(c.Request().Context(), f)
	if err != nil {
		return utils.JSONError(c, err)
	}
	return h.pageResponse(c, f, page)
}

func (h *Handler) Detail(c echo.Context) error {
	l, err := h.queries.Detail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return utils.JSONError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": h.view(l)})
}

func (h *Handler) ByUser(c echo.Context) error {
	f := DecodeValues(c.QueryParams())
	page, err := h.queries.ByUser(c.Request().Context(), c.Param("id"), f)
	if err != nil {
		return utils.JSONError(c, err)
	}
	return h.pageResponse(c, f, page)
}

// Create accepts the listing form as multipart/form-data with one or more
// "images" files.
func (h *Handler) Create(c echo.Context) error {
	req := CreateRequest{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Category:    Category(c.FormValue("category")),
		Size:        c.FormValue("size"),
		Brand:       c.FormValue("brand"),
		Condition:   Condition(c.FormValue("condition")),
		Color:       c.FormValue("color"),
	}
	price, err := strconv.ParseFloat(c.FormValue("price"), 64)
	if err != nil {
		return utils.JSONError(c, &api.ValidationError{Field: "price", Msg: "enter a valid price"})
	}
	req.Price = price
	if s := c.FormValue("status"); s != "" {
		st := Status(s)
		req.Status = &st
	}

	form, err := c.MultipartForm()
	if err != nil {
		return utils.JSONError(c, &api.ValidationError{Field: "images", Msg: "at least 1 photo is required"})
	}
	for _, fh := range form.File["images"] {
		f, err := fh.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot open uploaded file"})
		}
		data, err := io.ReadAll(io.LimitReader(f, upload.MaxImageSize+1))
		_ = f.Close()
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot read uploaded file"})
		}
		req.Images = append(req.Images, Upload{FileName: fh.Filename, Data: data})
	}

	l, err := h.coord.Create(c.Request().Context(), req)
	if err != nil {
		return utils.JSONError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "listing created", "listing": h.view(l)})
}

func (h *Handler) Update(c echo.Context) error {
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	l, err := h.coord.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return utils.JSONError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "listing updated", "listing": h.view(l)})
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	l, err := h.coord.UpdateStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return utils.JSONError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "status updated", "listing": h.view(l)})
}

func (h *Handler) Delete(c echo.Context) error {
	if err := h.coord.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return utils.JSONError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "listing deleted"})
}

// Actions lists the quick actions for a listing given its current status.
func (h *Handler) Actions(c echo.Context) error {
	l, err := h.queries.Detail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return utils.JSONError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": l.Status, "actions": AvailableActions(l.Status)})
}
