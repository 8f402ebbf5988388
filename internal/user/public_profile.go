package user

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/threadswap/storefront/internal/utils"
)

// Handler exposes profiles to the local UI.
type Handler struct {
	profiles  *Profiles
	assetBase string
}

func NewHandler(p *Profiles, assetBase string) *Handler {
	return &Handler{profiles: p, assetBase: assetBase}
}

// Register mounts the profile routes. Edits go through requireSession.
func (h *Handler) Register(e *echo.Echo, requireSession echo.MiddlewareFunc) {
	e.GET("/users/:id", h.GetPublicProfile)
	e.PATCH("/users/:id", h.UpdateProfile, requireSession)
	e.POST("/users/:id/avatar", h.UploadAvatar, requireSession)
}

// GET /users/:id
func (h *Handler) GetPublicProfile(c echo.Context) error {
	userID := c.Param("id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing user id"})
	}

	p, err := h.profiles.Get(c.Request().Context(), userID)
	if err != nil {
		return utils.JSONError(c, err)
	}

	avatarURL, _ := p.AvatarURL(h.assetBase)
	return c.JSON(http.StatusOK, echo.Map{
		"profile":   p,
		"avatarUrl": avatarURL,
	})
}
