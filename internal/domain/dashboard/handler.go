package dashboard

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medinsight/medinsight/internal/platform/auth"
	"github.com/medinsight/medinsight/internal/platform/gateway"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the aggregate endpoint; every role has a dashboard.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/dashboard", h.Get, auth.RequireSession())
}

func (h *Handler) Get(c echo.Context) error {
	sess := auth.CurrentSession(c)
	dash, err := h.svc.Build(c.Request().Context(), auth.TokenFromContext(c), sess.User)
	if err != nil {
		return gateway.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, dash)
}
