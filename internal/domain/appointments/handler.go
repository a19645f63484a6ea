package appointments

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

// RegisterRoutes mounts the appointment routes. Patients book and browse
// their own appointments; staff manage the full calendar and statuses.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	any := api.Group("", auth.RequireSession())
	any.POST("/appointments", h.Create)
	any.GET("/appointments/patient/:patientId", h.ByPatient)
	any.GET("/appointments/medecin/:medecinId", h.ByMedecin)
	any.GET("/appointments/:id", h.Get)

	staff := api.Group("", auth.RequireRole(keycloak.RoleMedecin, keycloak.RoleManager))
	staff.GET("/appointments", h.List)
	staff.PUT("/appointments/:id", h.Update)
	staff.PUT("/appointments/:id/status", h.UpdateStatus)
	staff.DELETE("/appointments/:id", h.Delete)
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
	a, err := h.svc.Get(c.Request().Context(), auth.TokenFromContext(c), id)
	if err != nil {
		return gateway.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ByPatient(c echo.Context) error {
	patientID, ok := pathID(c, "patientId")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Identifiant invalide"})
	}
	list, err := h.svc.ByPatient(c.Request().Context(), auth.TokenFromContext(c), patientID)
	if err != nil {
		return gateway.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) ByMedecin(c echo.Context) error {
	medecinID, ok := pathID(c, "medecinId")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Identifiant invalide"})
	}
	list, err := h.svc.ByMedecin(c.Request().Context(), auth.TokenFromContext(c), medecinID)
	if err != nil {
		return gateway.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) Create(c echo.Context) error {
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Requête invalide"})
	}
	if a.PatientID == 0 || a.MedecinID == 0 || a.StartAt == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Patient, médecin et horaire requis"})
	}
	created, err := h.svc.Create(c.Request().Context(), auth.TokenFromContext(c), &a)
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
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Requête invalide"})
	}
	updated, err := h.svc.Update(c.Request().Context(), auth.TokenFromContext(c), id, &a)
	if err != nil {
		return gateway.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Identifiant invalide"})
	}
	var upd StatusUpdate
	if err := c.Bind(&upd); err != nil || !ValidStatus(upd.Status) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Statut invalide"})
	}
	updated, err := h.svc.UpdateStatus(c.Request().Context(), auth.TokenFromContext(c), id, upd.Status)
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
