package registration

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler exposes the registration flow over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler creates a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the routes on the auth group.
func (h *Handler) Register(g *echo.Group) {
	g.POST("/register", h.register)
}

// response is the success body. Role is absent when role provisioning
// degraded; Provisioning lists any degraded stages so the client can tell a
// partial sign-up from a full one.
type response struct {
	Success      bool     `json:"success"`
	Message      string   `json:"message"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	Role         string   `json:"role,omitempty"`
	Provisioning []string `json:"provisioning,omitempty"`
}

func (h *Handler) register(c echo.Context) error {
	var req Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Requête invalide"})
	}

	result, err := h.svc.Register(c.Request().Context(), &req)
	if err != nil {
		var regErr *Error
		if errors.As(err, &regErr) {
			return c.JSON(regErr.Status, map[string]string{"error": regErr.Message})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Erreur interne du serveur"})
	}

	return c.JSON(http.StatusOK, response{
		Success:      true,
		Message:      "Compte créé avec succès",
		Username:     result.Username,
		Email:        result.Email,
		Role:         result.Role,
		Provisioning: result.Degraded,
	})
}
