package models

import "github.com/golang-jwt/jwt/v5"

// Claims defines the structure of the JWT claims. The subject claim carries
// the profile id issued by the auth provider.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the authenticated profile id.
func (c *Claims) UserID() string {
	return c.Subject
}
