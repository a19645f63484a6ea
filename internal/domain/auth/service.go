package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	platformauth "github.com/medinsight/medinsight/internal/platform/auth"
	"github.com/medinsight/medinsight/internal/platform/keycloak"
	"github.com/medinsight/medinsight/internal/platform/session"
)

// Service performs the credential grant and bookkeeping around sessions.
type Service struct {
	kc     *keycloak.Client
	store  session.Store
	logger zerolog.Logger
}

// NewService creates a Service.
func NewService(kc *keycloak.Client, store session.Store, logger zerolog.Logger) *Service {
	return &Service{kc: kc, store: store, logger: logger}
}

// NumericIDFromSub hashes the identity provider's UUID into the positive
// 32-bit integer the clinical services use as the user's numeric ID. The
// hash must stay stable forever; records downstream are keyed on it.
func NumericIDFromSub(sub string) int64 {
	var h int32
	for i := 0; i < len(sub); i++ {
		h = h<<5 - h + int32(sub[i])
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}

// Login exchanges credentials for tokens, resolves the user's identity and
// role, and records the session.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, &Error{Status: http.StatusBadRequest, Message: "Identifiants requis"}
	}

	tok, err := s.kc.Login(ctx, req.Username, req.Password)
	if err != nil {
		var se *keycloak.StatusError
		if errors.As(err, &se) {
			msg := se.Body
			if msg == "" {
				msg = "Invalid credentials"
			}
			return nil, &Error{Status: se.Status, Message: msg, Err: err}
		}
		return nil, &Error{Status: http.StatusInternalServerError, Message: "Erreur interne du serveur", Err: err}
	}

	user := UserPayload{Username: req.Username}

	info, err := s.kc.UserInfo(ctx, tok.AccessToken)
	if err != nil {
		// The token is valid; only the ID mapping is lost. Same tolerance
		// as the rest of the provisioning chain.
		s.logger.Warn().Err(err).Str("username", req.Username).Msg("userinfo fetch failed")
	} else {
		user.Sub = info.Sub
		user.Email = info.Email
		user.ID = NumericIDFromSub(info.Sub)
	}

	user.Role = s.roleFromToken(tok.AccessToken)

	sess := &session.Session{
		Token:        tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		User: session.User{
			ID:       user.ID,
			Sub:      user.Sub,
			Username: user.Username,
			Email:    user.Email,
			Role:     user.Role,
		},
	}
	if err := s.store.Set(ctx, sess); err != nil {
		s.logger.Error().Err(err).Msg("session store failed")
	}

	s.logger.Info().Str("username", req.Username).Str("role", user.Role).Msg("login succeeded")
	return &LoginResponse{
		Token:        tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		User:         user,
	}, nil
}

// roleFromToken reads realm_access.roles out of the freshly issued token.
// The token came straight from the identity provider over this request, so
// no signature check is needed here.
func (s *Service) roleFromToken(accessToken string) string {
	claims := &platformauth.Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		s.logger.Warn().Err(err).Msg("could not parse access token claims")
		return keycloak.RolePatient
	}
	return platformauth.PickRole(claims.RealmAccess.Roles)
}

// Logout drops the session for the given token. Unknown tokens are fine.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.store.Clear(ctx, token)
}
