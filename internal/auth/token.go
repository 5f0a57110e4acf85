package auth

import (
	"fmt"
	"time"

	"github.com/elibrary/backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenManager handles session token generation and validation
type TokenManager struct {
	secret              string
	loginTokenExpiry    time.Duration
	registerTokenExpiry time.Duration
}

// NewTokenManager creates a new TokenManager
func NewTokenManager(secret string, loginExpiry, registerExpiry time.Duration) *TokenManager {
	return &TokenManager{
		secret:              secret,
		loginTokenExpiry:    loginExpiry,
		registerTokenExpiry: registerExpiry,
	}
}

// GenerateLoginToken creates a short-lived session token for a login
func (tm *TokenManager) GenerateLoginToken(user *models.User) (string, error) {
	return tm.generate(user, tm.loginTokenExpiry)
}

// GenerateRegistrationToken creates the long-lived session token issued at
// registration. Registration doubles as an implicit login; the window is
// deliberately much longer than a login token's.
func (tm *TokenManager) GenerateRegistrationToken(user *models.User) (string, error) {
	return tm.generate(user, tm.registerTokenExpiry)
}

func (tm *TokenManager) generate(user *models.User, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &models.SessionClaims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
		Status: user.Status,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(tm.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken verifies a token's signature and expiry and returns its claims
func (tm *TokenManager) ValidateToken(tokenString string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tm.secret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, models.ErrUnauthorized
	}

	// The userId claim identifies which row to re-check; it must be a
	// positive integer or the token is unusable.
	if claims.UserID <= 0 {
		return nil, fmt.Errorf("invalid token: malformed userId claim")
	}

	return claims, nil
}
