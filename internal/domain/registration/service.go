package registration

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/medinsight/medinsight/internal/platform/gateway"
	"github.com/medinsight/medinsight/internal/platform/keycloak"
)

// Adresse is the postal address sub-object of a patient profile.
type Adresse struct {
	Rue        string `json:"rue"`
	Ville      string `json:"ville"`
	CodePostal string `json:"codePostal"`
	Pays       string `json:"pays"`
}

// ProfilePayload is the patient record sent to the patient service. The
// identity provider's user ID travels along as the foreign reference.
type ProfilePayload struct {
	Nom              string  `json:"nom"`
	Prenom           string  `json:"prenom"`
	Email            string  `json:"email"`
	DateNaissance    string  `json:"dateNaissance"`
	Gender           string  `json:"gender"`
	Telephone        string  `json:"telephone"`
	EmergencyContact string  `json:"emergencyContact"`
	Adresse          Adresse `json:"adresse"`
	KeycloakUserID   string  `json:"keycloakUserId"`
}

// ProfileCreator persists the patient profile record.
type ProfileCreator interface {
	CreateProfile(ctx context.Context, p *ProfilePayload) error
}

// gatewayProfiles creates profiles through the patient service. Profile
// creation happens before the user has a token, so the call is anonymous.
type gatewayProfiles struct {
	client *gateway.Client
}

// NewGatewayProfiles returns a ProfileCreator backed by the patient service.
func NewGatewayProfiles(client *gateway.Client) ProfileCreator {
	return &gatewayProfiles{client: client}
}

func (g *gatewayProfiles) CreateProfile(ctx context.Context, p *ProfilePayload) error {
	return g.client.PostJSON(ctx, "", "/api/patients", p, nil)
}

// Service runs the registration flow.
type Service struct {
	kc       *keycloak.Client
	profiles ProfileCreator
	logger   zerolog.Logger
}

// NewService creates a Service.
func NewService(kc *keycloak.Client, profiles ProfileCreator, logger zerolog.Logger) *Service {
	return &Service{kc: kc, profiles: profiles, logger: logger}
}

// Register runs the flow end to end. Failures before the account can be
// identified return *Error; failures after that point degrade the Result
// instead, and the account is never rolled back.
func (s *Service) Register(ctx context.Context, req *Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, &Error{Status: http.StatusBadRequest, Message: err.Error(), Err: err}
	}

	log := s.logger.With().Str("username", req.Username).Logger()
	log.Info().Msg("registration started")

	adminToken, err := s.kc.AdminToken(ctx)
	if err != nil {
		return nil, &Error{
			Status:  http.StatusInternalServerError,
			Message: "Failed to authenticate with identity provider",
			Err:     err,
		}
	}

	rep := &keycloak.UserRepresentation{
		Username:      req.Username,
		Email:         req.Email,
		FirstName:     req.Prenom,
		LastName:      req.Nom,
		Enabled:       true,
		EmailVerified: true,
		Credentials: []keycloak.Credential{{
			Type:      "password",
			Value:     req.Password,
			Temporary: false,
		}},
		Attributes: map[string][]string{
			"dateNaissance":    {req.DateNaissance},
			"gender":           {req.Gender},
			"telephone":        {req.Telephone},
			"emergencyContact": {req.EmergencyContact},
			"rue":              {req.Rue},
			"ville":            {req.Ville},
			"codePostal":       {req.CodePostal},
			"pays":             {req.Pays},
		},
	}

	if err := s.kc.CreateUser(ctx, adminToken, rep); err != nil {
		if errors.Is(err, keycloak.ErrConflict) {
			return nil, &Error{
				Status:  http.StatusConflict,
				Message: "Un utilisateur avec cet email existe déjà",
				Err:     err,
			}
		}
		status := http.StatusInternalServerError
		var se *keycloak.StatusError
		if errors.As(err, &se) {
			status = se.Status
		}
		return nil, &Error{Status: status, Message: "Échec de création du compte", Err: err}
	}

	// The create endpoint returns no body; the generated ID has to be
	// looked up by username. Losing it here leaves an account that cannot
	// be provisioned, which is a hard failure.
	user, err := s.kc.FindUserByUsername(ctx, adminToken, req.Username)
	if err != nil {
		return nil, &Error{
			Status:  http.StatusInternalServerError,
			Message: "Utilisateur créé mais attribution du rôle échouée",
			Err:     err,
		}
	}

	result := &Result{
		Username:       req.Username,
		Email:          req.Email,
		KeycloakUserID: user.ID,
	}

	role, err := s.kc.GetRealmRole(ctx, adminToken, keycloak.RolePatient)
	if err != nil {
		// Account exists but has no role; the flow stops here and the user
		// can still log in once an operator repairs the realm.
		log.Warn().Err(err).Str("stage", StageRoleLookup).Msg("registration degraded")
		result.Degraded = append(result.Degraded, StageRoleLookup)
		return result, nil
	}

	result.Role = keycloak.RolePatient

	if err := s.kc.AssignRealmRoles(ctx, adminToken, user.ID, []keycloak.Role{*role}); err != nil {
		log.Warn().Err(err).Str("stage", StageRoleAssign).Msg("registration degraded")
		result.Degraded = append(result.Degraded, StageRoleAssign)
	}

	profile := &ProfilePayload{
		Nom:              req.Nom,
		Prenom:           req.Prenom,
		Email:            req.Email,
		DateNaissance:    req.DateNaissance,
		Gender:           req.Gender,
		Telephone:        req.Telephone,
		EmergencyContact: req.EmergencyContact,
		Adresse: Adresse{
			Rue:        req.Rue,
			Ville:      req.Ville,
			CodePostal: req.CodePostal,
			Pays:       req.Pays,
		},
		KeycloakUserID: user.ID,
	}
	if err := s.profiles.CreateProfile(ctx, profile); err != nil {
		log.Warn().Err(err).Str("stage", StageProfileCreate).Msg("registration degraded")
		result.Degraded = append(result.Degraded, StageProfileCreate)
	}

	if result.Full() {
		log.Info().Str("keycloak_user_id", user.ID).Msg("registration completed")
	}
	return result, nil
}
