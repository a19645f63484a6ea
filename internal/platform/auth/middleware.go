package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medinsight/medinsight/internal/platform/keycloak"
	"github.com/medinsight/medinsight/internal/platform/session"
)

const (
	sessionContextKey = "auth_session"
	tokenContextKey   = "auth_token"
)

// MiddlewareConfig wires the session middleware.
type MiddlewareConfig struct {
	Store    session.Store
	Verifier *Verifier
	Logger   zerolog.Logger
}

// Middleware resolves the caller's session from the bearer token. The token
// signature is verified first; only then is the store consulted. Requests
// without a usable session continue with no session attached, and the role
// guard decides whether that matters for the route.
func Middleware(cfg MiddlewareConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request())
			if token == "" {
				return next(c)
			}
			c.Set(tokenContextKey, token)

			claims, err := cfg.Verifier.Verify(token)
			if err != nil {
				cfg.Logger.Debug().Err(err).Msg("token verification failed")
				return next(c)
			}

			sess, err := cfg.Store.Get(c.Request().Context(), token)
			if err != nil {
				cfg.Logger.Error().Err(err).Msg("session lookup failed")
				return next(c)
			}
			if sess == nil {
				// Valid token but no stored session: the token came from a
				// direct grant or another instance with a memory store.
				// Rebuild the session from the claims so the guard still works.
				sess = &session.Session{
					Token: token,
					User: session.User{
						Sub:      claims.Subject,
						Username: claims.PreferredUsername,
						Email:    claims.Email,
						Role:     PickRole(claims.RealmAccess.Roles),
					},
				}
			}
			c.Set(sessionContextKey, sess)
			return next(c)
		}
	}
}

// CurrentSession returns the caller's session, or nil when unauthenticated.
func CurrentSession(c echo.Context) *session.Session {
	s, _ := c.Get(sessionContextKey).(*session.Session)
	return s
}

// TokenFromContext returns the raw bearer token of the request, verified or
// not. Proxy handlers forward it upstream.
func TokenFromContext(c echo.Context) string {
	t, _ := c.Get(tokenContextKey).(string)
	return t
}

// RequireRole guards a route group. Unauthenticated callers get 401 with a
// login redirect; authenticated callers with the wrong role are sent to
// their own dashboard with 303, never to an error page. ADMIN passes every
// guard.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := CurrentSession(c)
			if sess == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error":    "Non authentifié",
					"redirect": LoginPath,
				})
			}
			role := sess.User.Role
			if role == keycloak.RoleAdmin || allowed[role] {
				return next(c)
			}
			return c.Redirect(http.StatusSeeOther, DashboardPath(role))
		}
	}
}

// RequireSession guards routes any logged-in role may use.
func RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CurrentSession(c) == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error":    "Non authentifié",
					"redirect": LoginPath,
				})
			}
			return next(c)
		}
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
