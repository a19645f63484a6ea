package notifications

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

// RegisterRoutes mounts the notification routes. Users manage their own
// feed; sending email is reserved to staff roles.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	own := api.Group("", auth.RequireSession())
	own.GET("/notifications/user/:userId", h.ByUser)
	own.PUT("/notifications/:id/read", h.MarkRead)
	own.PUT("/notifications/user/:userId/read-all", h.MarkAllRead)
	own.DELETE("/notifications/:id", h.Delete)

	staff := api.Group("", auth.RequireRole(keycloak.RoleMedecin, keycloak.RoleManager))
	staff.POST("/notifications/email", h.SendEmail)
}

func pathID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	return id, err == nil
}

// ownUserID enforces that a non-staff caller only touches their own feed.
func ownUserID(c echo.Context, userID int64) bool {
	sess := auth.CurrentSession(c)
	switch sess.User.Role {
	case keycloak.RolePatient, keycloak.RoleMedecin:
		return sess.User.ID == userID
	}
	return true
}

func (h *Handler) ByUser(c echo.Context) error {
	userID, ok := pathID(c, "userId")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Identifiant invalide"})
	}
	if !ownUserID(c, userID) {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Accès refusé"})
	}
	list, err := h.svc.ByUser(c.Request().Context(), auth.TokenFromContext(c), userID)
	if err != nil {
		return gateway.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) MarkRead(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Identifiant invalide"})
	}
	if err := h.svc.MarkRead(c.Request().Context(), auth.TokenFromContext(c), id); err != nil {
		return gateway.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) MarkAllRead(c echo.Context) error {
	userID, ok := pathID(c, "userId")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Identifiant invalide"})
	}
	if !ownUserID(c, userID) {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Accès refusé"})
	}
	if err := h.svc.MarkAllRead(c.Request().Context(), auth.TokenFromContext(c), userID); err != nil {
		return gateway.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
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

func (h *Handler) SendEmail(c echo.Context) error {
	var req EmailRequest
	if err := c.Bind(&req); err != nil || req.To == "" || req.Subject == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Destinataire et sujet requis"})
	}
	if err := h.svc.SendEmail(c.Request().Context(), auth.TokenFromContext(c), &req); err != nil {
		return gateway.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
