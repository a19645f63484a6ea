// Package auth implements login and logout against the identity provider
// and maintains the server-side session record.
package auth

import "fmt"

// LoginRequest is the credential form posted by the browser.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserPayload is the user object of a login response. ID is a numeric hash
// of the identity provider's UUID; downstream services key on it.
type UserPayload struct {
	ID       int64  `json:"id"`
	Sub      string `json:"sub"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"`
	User         UserPayload `json:"user"`
}

// Error is a login failure with its HTTP mapping.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Message, e.Err)
	}
	return "auth: " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }
