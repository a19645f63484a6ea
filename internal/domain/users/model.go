// Package users gives administrators a view of realm accounts and the
// ability to move a user between application roles.
package users

// User is a realm account together with its application role.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Nom      string `json:"nom"`
	Prenom   string `json:"prenom"`
	Enabled  bool   `json:"enabled"`
	Role     string `json:"role"`
}

// ChangeRoleRequest moves a user to a new application role.
type ChangeRoleRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}
