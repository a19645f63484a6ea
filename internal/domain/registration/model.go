// Package registration implements the patient sign-up flow: account
// creation in the identity provider, PATIENT role assignment, and the
// patient profile record in the patient service. The flow deliberately has
// no rollback; once the account exists, later steps degrade instead of
// failing the whole request.
package registration

import (
	"fmt"
	"strings"
)

// Request is the registration form as submitted by the browser.
type Request struct {
	Username         string `json:"username"`
	Nom              string `json:"nom"`
	Prenom           string `json:"prenom"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	DateNaissance    string `json:"dateNaissance"`
	Gender           string `json:"gender"`
	Telephone        string `json:"telephone"`
	EmergencyContact string `json:"emergencyContact"`
	Rue              string `json:"rue"`
	Ville            string `json:"ville"`
	CodePostal       string `json:"codePostal"`
	Pays             string `json:"pays"`
}

// Validate checks the fields the flow cannot proceed without.
func (r *Request) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Username) == "" {
		missing = append(missing, "username")
	}
	if strings.TrimSpace(r.Email) == "" {
		missing = append(missing, "email")
	}
	if r.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("champs obligatoires manquants: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Stages at which the flow can degrade after the account exists. A degraded
// stage still yields a successful registration response.
const (
	StageRoleLookup    = "role-lookup"
	StageRoleAssign    = "role-assign"
	StageProfileCreate = "profile-create"
)

// Result is the outcome of a registration that created an account.
type Result struct {
	Username       string
	Email          string
	Role           string
	KeycloakUserID string

	// Degraded lists the stages that failed after account creation, in
	// flow order. Empty means the flow completed fully.
	Degraded []string
}

// Full reports whether every stage succeeded.
func (r *Result) Full() bool { return len(r.Degraded) == 0 }

// Error is a hard registration failure: nothing usable was created, or the
// account exists but cannot be identified. Status and Message map directly
// onto the HTTP response.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("registration: %s: %v", e.Message, e.Err)
	}
	return "registration: " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }
