package user

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/threadswap/storefront/internal/upload"
	"github.com/threadswap/storefront/internal/utils"
)

// ownProfile rejects edits to anyone else's profile.
func ownProfile(c echo.Context) (string, bool) {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" || uid != c.Param("id") {
		return "", false
	}
	return uid, true
}

// PATCH /users/:id
func (h *Handler) UpdateProfile(c echo.Context) error {
	uid, ok := ownProfile(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you can only edit your own profile"})
	}

	var req PatchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	p, err := h.profiles.Update(c.Request().Context(), uid, req)
	if err != nil {
		return utils.JSONError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "profile updated", "profile": p})
}

// POST /users/:id/avatar
func (h *Handler) UploadAvatar(c echo.Context) error {
	uid, ok := ownProfile(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you can only edit your own profile"})
	}

	fh, err := c.FormFile("avatar")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "avatar file is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot open uploaded file"})
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, upload.MaxImageSize+1))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot read uploaded file"})
	}

	avatar, err := h.profiles.UploadAvatar(c.Request().Context(), uid, fh.Filename, data)
	if err != nil {
		return utils.JSONError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"avatar": avatar})
}
