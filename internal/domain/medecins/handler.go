package medecins

import (
	"net/http"
	"strconv"

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

// RegisterRoutes mounts the physician routes. The directory is readable by
// any logged-in user (patients pick a physician when booking); updates are
// management territory.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireSession())
	read.GET("/medecins", h.List)
	read.GET("/medecins/:id", h.Get)
	read.GET("/medecins/user/:userId", h.GetByUser)
	read.GET("/medecins/:id/planning", h.Planning)

	write := api.Group("", auth.RequireRole(keycloak.RoleManager))
	write.PUT("/medecins/:id", h.Update)
}

func pathID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	return id, err == nil
}

func (h *Handler) List(c echo.Context) error {
	list, err := h.svc.List(c.Request().Context(), auth.TokenFromContext(c))
	if err != nil {
		return gateway.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Identifiant invalide"})
	}
	m, err := h.svc.Get(c.Request().Context(), auth.TokenFromContext(c), id)
	if err != nil {
		return gateway.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) GetByUser(c echo.Context) error {
	userID, ok := pathID(c, "userId")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Identifiant invalide"})
	}
	m, err := h.svc.GetByUser(c.Request().Context(), auth.TokenFromContext(c), userID)
	if err != nil {
		return gateway.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) Planning(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Identifiant invalide"})
	}
	slots, err := h.svc.Planning(c.Request().Context(), auth.TokenFromContext(c), id)
	if err != nil {
		return gateway.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, slots)
}

func (h *Handler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Identifiant invalide"})
	}
	var m Medecin
	if err := c.Bind(&m); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Requête invalide"})
	}
	updated, err := h.svc.Update(c.Request().Context(), auth.TokenFromContext(c), id, &m)
	if err != nil {
		return gateway.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}
