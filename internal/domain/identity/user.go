// Package identity holds the signed-in admin and the session that carries
// the API token.
package identity

import "encoding/json"

// User is the admin account returned by the login endpoint
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// Credentials is the login form
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Registration is the sign-up form
type Registration struct {
	Name                 string `json:"name" validate:"required,max=100"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// EncodeUser serializes u for the key-value store
func EncodeUser(u User) (string, error) {
	b, err := json.Marshal(u)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeUser parses a stored user
func DecodeUser(s string) (User, error) {
	var u User
	err := json.Unmarshal([]byte(s), &u)
	return u, err
}
