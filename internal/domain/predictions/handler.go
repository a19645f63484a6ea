package predictions

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medinsight/medinsight/internal/platform/auth"
	"github.com/medinsight/medinsight/internal/platform/gateway"
	"github.com/medinsight/medinsight/internal/platform/keycloak"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the prediction routes for clinical and management
// staff.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole(keycloak.RoleMedecin, keycloak.RoleManager))
	g.POST("/predictions", h.NoShow)
	g.GET("/predictions/bed-occupancy", h.BedOccupancy)
	g.GET("/predictions/relapse-risk", h.RelapseRisk)
}

func (h *Handler) NoShow(c echo.Context) error {
	var req NoShowRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Requête invalide"})
	}
	resp, err := h.svc.NoShow(c.Request().Context(), auth.TokenFromContext(c), &req)
	if err != nil {
		return gateway.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) BedOccupancy(c echo.Context) error {
	doc, err := h.svc.BedOccupancy(c.Request().Context(), auth.TokenFromContext(c))
	if err != nil {
		return gateway.WriteError(c, err)
	}
	return c.JSONBlob(http.StatusOK, doc)
}

func (h *Handler) RelapseRisk(c echo.Context) error {
	doc, err := h.svc.RelapseRisk(c.Request().Context(), auth.TokenFromContext(c))
	if err != nil {
		return gateway.WriteError(c, err)
	}
	return c.JSONBlob(http.StatusOK, doc)
}
