package dossiers

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

// RegisterRoutes mounts the medical-record routes. Reading a record is
// open to clinical staff and to the patient (self lookup goes through the
// by-patient route); writing is physician territory.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(keycloak.RoleMedecin, keycloak.RolePatient))
	read.GET("/dossiers/:id", h.Get)
	read.GET("/dossiers/patient/:patientId", h.ByPatient)
	read.GET("/prescriptions/dossier/:dossierId", h.Prescriptions)

	medecin := api.Group("", auth.RequireRole(keycloak.RoleMedecin))
	medecin.GET("/dossiers", h.List)
	medecin.PUT("/dossiers/:id", h.Update)
	medecin.POST("/prescriptions", h.CreatePrescription)
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
	d, err := h.svc.Get(c.Request().Context(), auth.TokenFromContext(c), id)
	if err != nil {
		return gateway.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ByPatient(c echo.Context) error {
	patientID, ok := pathID(c, "patientId")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Identifiant invalide"})
	}
	d, err := h.svc.ByPatient(c.Request().Context(), auth.TokenFromContext(c), patientID)
	if err != nil {
		return gateway.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Identifiant invalide"})
	}
	var d Dossier
	if err := c.Bind(&d); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Requête invalide"})
	}
	updated, err := h.svc.Update(c.Request().Context(), auth.TokenFromContext(c), id, &d)
	if err != nil {
		return gateway.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) Prescriptions(c echo.Context) error {
	dossierID, ok := pathID(c, "dossierId")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Identifiant invalide"})
	}
	list, err := h.svc.Prescriptions(c.Request().Context(), auth.TokenFromContext(c), dossierID)
	if err != nil {
		return gateway.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) CreatePrescription(c echo.Context) error {
	var p Prescription
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Requête invalide"})
	}
	if p.DossierID == 0 || len(p.Medications) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Dossier et médicaments requis"})
	}
	created, err := h.svc.CreatePrescription(c.Request().Context(), auth.TokenFromContext(c), &p)
	if err != nil {
		return gateway.WriteError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}
