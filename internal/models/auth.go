package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload embedded in every session token. The role
// and status claims are a snapshot from issuance time; the middleware
// re-fetches the user row on every request, so they are informational only.
type SessionClaims struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	Role   Role   `json:"role"`
	Status Status `json:"status"`
	jwt.RegisteredClaims
}
