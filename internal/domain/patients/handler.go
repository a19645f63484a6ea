package patients

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

// RegisterRoutes mounts the patient routes. Clinical and management staff
// can browse all patients; a patient can only reach their own record via
// the by-user lookup.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	staff := api.Group("", auth.RequireRole(keycloak.RoleMedecin, keycloak.RoleManager))
	staff.GET("/patients", h.List)
	staff.GET("/patients/:id", h.Get)
	staff.POST("/patients", h.Create)
	staff.PUT("/patients/:id", h.Update)
	staff.DELETE("/patients/:id", h.Delete)

	self := api.Group("", auth.RequireSession())
	self.GET("/patients/user/:userId", h.GetByUser)
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
	p, err := h.svc.Get(c.Request().Context(), auth.TokenFromContext(c), id)
	if err != nil {
		return gateway.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) GetByUser(c echo.Context) error {
	userID, ok := pathID(c, "userId")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Identifiant invalide"})
	}
	// A patient may only look up their own record.
	sess := auth.CurrentSession(c)
	if sess.User.Role == keycloak.RolePatient && sess.User.ID != userID {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Accès refusé"})
	}
	p, err := h.svc.GetByUser(c.Request().Context(), auth.TokenFromContext(c), userID)
	if err != nil {
		return gateway.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Create(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Requête invalide"})
	}
	created, err := h.svc.Create(c.Request().Context(), auth.TokenFromContext(c), &p)
	if err != nil {
		return gateway.WriteError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Identifiant invalide"})
	}
	var p Patient
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Requête invalide"})
	}
	updated, err := h.svc.Update(c.Request().Context(), auth.TokenFromContext(c), id, &p)
	if err != nil {
		return gateway.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Identifiant invalide"})
	}
	if err := h.svc.Delete(c.Request().Context(), auth.TokenFromContext(c), id); err != nil {
		return gateway.WriteError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
