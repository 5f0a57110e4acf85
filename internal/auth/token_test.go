package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/elibrary/backend/internal/models"
)

const testSecret = "test-secret-32-characters-long!"

func testUser() *models.User {
	return &models.User{
		ID:     42,
		Email:  "alice@x.com",
		Name:   "Alice",
		Role:   models.RoleAdmin,
		Status: models.StatusActive,
	}
}

func TestGenerateLoginToken_ClaimsMatchUser(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour, 365*24*time.Hour)

	tokenString, err := tm.GenerateLoginToken(testUser())
	if err != nil {
		t.Fatalf("GenerateLoginToken failed: %v", err)
	}

	claims, err := tm.ValidateToken(tokenString)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("UserID: got %d, want 42", claims.UserID)
	}
	if claims.Email != "alice@x.com" {
		t.Errorf("Email: got %q", claims.Email)
	}
	if claims.Role != models.RoleAdmin {
		t.Errorf("Role: got %q, want ADMIN", claims.Role)
	}
	if claims.Status != models.StatusActive {
		t.Errorf("Status: got %q, want ACTIVE", claims.Status)
	}
	if claims.ID == "" {
		t.Error("expected a non-empty jti claim")
	}
}

func TestTokenExpiryWindows(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour, 365*24*time.Hour)
	user := testUser()

	loginToken, err := tm.GenerateLoginToken(user)
	if err != nil {
		t.Fatalf("GenerateLoginToken failed: %v", err)
	}
	registerToken, err := tm.GenerateRegistrationToken(user)
	if err != nil {
		t.Fatalf("GenerateRegistrationToken failed: %v", err)
	}

	loginClaims, err := tm.ValidateToken(loginToken)
	if err != nil {
		t.Fatalf("ValidateToken(login) failed: %v", err)
	}
	registerClaims, err := tm.ValidateToken(registerToken)
	if err != nil {
		t.Fatalf("ValidateToken(register) failed: %v", err)
	}

	loginWindow := loginClaims.ExpiresAt.Sub(loginClaims.IssuedAt.Time)
	registerWindow := registerClaims.ExpiresAt.Sub(registerClaims.IssuedAt.Time)

	if loginWindow != time.Hour {
		t.Errorf("login token window: got %v, want 1h", loginWindow)
	}
	if registerWindow != 365*24*time.Hour {
		t.Errorf("registration token window: got %v, want 8760h", registerWindow)
	}
}

func TestValidateToken_Expired(t *testing.T) {
	tm := NewTokenManager(testSecret, -time.Minute, 365*24*time.Hour)

	tokenString, err := tm.GenerateLoginToken(testUser())
	if err != nil {
		t.Fatalf("GenerateLoginToken failed: %v", err)
	}

	if _, err := tm.ValidateToken(tokenString); err == nil {
		t.Error("expected expired token to fail validation")
	}
}

func TestValidateToken_TamperedSignature(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour, 365*24*time.Hour)

	tokenString, err := tm.GenerateLoginToken(testUser())
	if err != nil {
		t.Fatalf("GenerateLoginToken failed: %v", err)
	}

	// Flip a character of the payload segment
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %d segments", len(parts))
	}
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	if _, err := tm.ValidateToken(tampered); err == nil {
		t.Error("expected tampered token to fail validation")
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour, 365*24*time.Hour)
	other := NewTokenManager("another-secret-32-characters!!!!", time.Hour, 365*24*time.Hour)

	tokenString, err := tm.GenerateLoginToken(testUser())
	if err != nil {
		t.Fatalf("GenerateLoginToken failed: %v", err)
	}

	if _, err := other.ValidateToken(tokenString); err == nil {
		t.Error("expected token signed with a different secret to fail validation")
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour, 365*24*time.Hour)

	if _, err := tm.ValidateToken("not-a-token"); err == nil {
		t.Error("expected garbage string to fail validation")
	}
}
