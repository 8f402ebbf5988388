package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/threadswap/storefront/internal/utils"
)

// Handler exposes the session to the local UI.
type Handler struct {
	svc     *Service
	session *Session
}

func NewHandler(svc *Service, session *Session) *Handler {
	return &Handler{svc: svc, session: session}
}

// Register mounts the auth routes on g.
func (h *Handler) Register(g *echo.Group) {
	g.POST("/login", h.Login)
	g.POST("/register", h.Signup)
	g.POST("/logout", h.Logout)
	g.GET("/me", h.Me)
}

// ===== Login =====
func (h *Handler) Login(c echo.Context) error {
	req := new(LoginRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	user, err := h.svc.Login(c.Request().Context(), *req)
	if err != nil {
		return utils.JSONError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

// ===== Signup =====
func (h *Handler) Signup(c echo.Context) error {
	req := new(RegisterRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	user, err := h.svc.Register(c.Request().Context(), *req)
	if err != nil {
		return utils.JSONError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"user": user})
}

func (h *Handler) Logout(c echo.Context) error {
	if err := h.session.Logout(c.Request().Context()); err != nil {
		c.Logger().Errorf("logout: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not clear session"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Me returns the signed-in user.
func (h *Handler) Me(c echo.Context) error {
	user, ok := h.session.User()
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not signed in"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user, "authenticated": true})
}
