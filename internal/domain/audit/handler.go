package audit

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/medinsight/medinsight/internal/platform/auth"
	"github.com/medinsight/medinsight/internal/platform/gateway"
	"github.com/medinsight/medinsight/internal/platform/keycloak"
	"github.com/medinsight/medinsight/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the audit routes, security-officer territory.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole(keycloak.RoleSecurityOfficer))
	g.GET("/audit", h.List)
	g.GET("/audit/user/:userId", h.ByUser)
	g.GET("/audit/action/:action", h.ByAction)
}

func (h *Handler) List(c echo.Context) error {
	list, err := h.svc.List(c.Request().Context(), auth.TokenFromContext(c), pagination.FromContext(c))
	if err != nil {
		return gateway.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) ByUser(c echo.Context) error {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Identifiant invalide"})
	}
	list, err := h.svc.ByUser(c.Request().Context(), auth.TokenFromContext(c), userID)
	if err != nil {
		return gateway.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) ByAction(c echo.Context) error {
	list, err := h.svc.ByAction(c.Request().Context(), auth.TokenFromContext(c), c.Param("action"))
	if err != nil {
		return gateway.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}
