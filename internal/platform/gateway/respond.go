package gateway

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// WriteError maps a client error onto the HTTP response. An upstream 401
// means the session is gone everywhere, so the body carries the login
// redirect the browser should follow.
func WriteError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error":    "Session expirée",
			"redirect": "/connexion",
		})
	case errors.Is(err, ErrForbidden):
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Accès refusé"})
	case errors.Is(err, ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Ressource introuvable"})
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Service indisponible"})
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Erreur interne du serveur"})
}
