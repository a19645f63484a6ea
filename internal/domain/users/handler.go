package users

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medinsight/medinsight/internal/platform/auth"
	"github.com/medinsight/medinsight/internal/platform/keycloak"
	"github.com/medinsight/medinsight/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the user administration routes. Everything here is
// ADMIN territory; MANAGER can read but not change roles.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(keycloak.RoleManager, keycloak.RoleAdmin))
	read.GET("/users", h.List)
	read.GET("/users/:id", h.Get)

	write := api.Group("", auth.RequireRole(keycloak.RoleAdmin))
	write.POST("/users/change-role", h.ChangeRole)
}

func (h *Handler) List(c echo.Context) error {
	list, err := h.svc.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Service indisponible"})
	}

	// Keycloak has no offset cursor for realm users, so the page is cut
	// from the full directory listing.
	p := pagination.FromContext(c)
	total := len(list)
	start := p.Offset
	if start > total {
		start = total
	}
	end := start + p.Limit
	if end > total {
		end = total
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(list[start:end], total, p.Limit, p.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	u, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, keycloak.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Utilisateur introuvable"})
		}
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Service indisponible"})
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) ChangeRole(c echo.Context) error {
	var req ChangeRoleRequest
	if err := c.Bind(&req); err != nil || req.UserID == "" || req.Role == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Requête invalide"})
	}
	if err := h.svc.ChangeRole(c.Request().Context(), &req); err != nil {
		if errors.Is(err, ErrRoleUnknown) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Rôle introuvable"})
		}
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Service indisponible"})
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
