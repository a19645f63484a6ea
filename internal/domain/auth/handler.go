package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	platformauth "github.com/medinsight/medinsight/internal/platform/auth"
)

// Handler exposes login, logout, and session restore.
type Handler struct {
	svc *Service
}

// NewHandler creates a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the public routes on the auth group and the session
// routes behind the session middleware.
func (h *Handler) Register(g *echo.Group) {
	g.POST("/login", h.login)
	g.POST("/logout", h.logout)
	g.GET("/me", h.me, platformauth.RequireSession())
}

func (h *Handler) login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Requête invalide"})
	}

	resp, err := h.svc.Login(c.Request().Context(), &req)
	if err != nil {
		var authErr *Error
		if errors.As(err, &authErr) {
			return c.JSON(authErr.Status, map[string]string{"error": authErr.Message})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Erreur interne du serveur"})
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) logout(c echo.Context) error {
	token := platformauth.TokenFromContext(c)
	if err := h.svc.Logout(c.Request().Context(), token); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Erreur interne du serveur"})
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// me returns the session user so a reloaded tab can restore its state
// without a fresh login.
func (h *Handler) me(c echo.Context) error {
	sess := platformauth.CurrentSession(c)
	return c.JSON(http.StatusOK, UserPayload{
		ID:       sess.User.ID,
		Sub:      sess.User.Sub,
		Username: sess.User.Username,
		Email:    sess.User.Email,
		Role:     sess.User.Role,
	})
}
