package handlers_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elibrary/backend/internal/handlers"
	"github.com/elibrary/backend/internal/models"
	"github.com/elibrary/backend/internal/services"
)

type authResponseBody struct {
	Message string                 `json:"message"`
	Token   string                 `json:"token"`
	User    *services.UserResponse `json:"user"`
}

func TestRegister_Success(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		RegisterFunc: func(ctx context.Context, name, email, password string, requestedRole models.Role) (*services.AuthResponse, error) {
			// Email casing is preserved; identity is exact as stored
			assert.Equal(t, "Alice@Example.com", email)
			assert.Equal(t, models.RoleUser, requestedRole)
			return &services.AuthResponse{
				Token: "token_123",
				User: &services.UserResponse{
					ID:     1,
					Name:   name,
					Email:  email,
					Role:   models.RoleUser,
					Status: models.StatusActive,
				},
			}, nil
		},
	}

	handler := handlers.NewAuthHandler(mockAuth, nil)
	req := handlers.NewTestRequest(t, "POST", "/api/auth/register", handlers.RegisterRequest{
		Name:     "Alice",
		Email:    "Alice@Example.com",
		Password: "password123",
	})

	w := httptest.NewRecorder()
	handler.Register(w, req)

	var resp authResponseBody
	handlers.AssertJSONResponse(t, w, 201, &resp)
	assert.Equal(t, "token_123", resp.Token)
	assert.Equal(t, "Alice@Example.com", resp.User.Email)
	assert.NotEmpty(t, resp.Message)
}

func TestRegister_AdminRoleForwarded(t *testing.T) {
	var gotRole models.Role
	mockAuth := &handlers.MockAuthService{
		RegisterFunc: func(ctx context.Context, name, email, password string, requestedRole models.Role) (*services.AuthResponse, error) {
			gotRole = requestedRole
			return &services.AuthResponse{
				Token: "token_123",
				User:  &services.UserResponse{ID: 2, Email: email, Role: models.RoleUser, Status: models.StatusPending},
			}, nil
		},
	}

	handler := handlers.NewAuthHandler(mockAuth, nil)
	req := handlers.NewTestRequest(t, "POST", "/api/auth/register", handlers.RegisterRequest{
		Email:    "bob@example.com",
		Password: "password123",
		Role:     "ADMIN",
	})

	w := httptest.NewRecorder()
	handler.Register(w, req)

	assert.Equal(t, 201, w.Code)
	assert.Equal(t, models.RoleAdmin, gotRole)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		RegisterFunc: func(ctx context.Context, name, email, password string, requestedRole models.Role) (*services.AuthResponse, error) {
			return nil, models.ErrConflict
		},
	}

	handler := handlers.NewAuthHandler(mockAuth, nil)
	req := handlers.NewTestRequest(t, "POST", "/api/auth/register", handlers.RegisterRequest{
		Email:    "taken@example.com",
		Password: "password123",
	})

	w := httptest.NewRecorder()
	handler.Register(w, req)

	handlers.AssertErrorResponse(t, w, 409, "conflict")
}

func TestRegister_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		req  handlers.RegisterRequest
	}{
		{"missing email", handlers.RegisterRequest{Password: "password123"}},
		{"malformed email", handlers.RegisterRequest{Email: "not-an-email", Password: "password123"}},
		{"short password", handlers.RegisterRequest{Email: "a@b.com", Password: "short"}},
		{"unknown role", handlers.RegisterRequest{Email: "a@b.com", Password: "password123", Role: "SUPERUSER"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			mockAuth := &handlers.MockAuthService{
				RegisterFunc: func(ctx context.Context, name, email, password string, requestedRole models.Role) (*services.AuthResponse, error) {
					called = true
					return nil, nil
				},
			}

			handler := handlers.NewAuthHandler(mockAuth, nil)
			req := handlers.NewTestRequest(t, "POST", "/api/auth/register", tc.req)

			w := httptest.NewRecorder()
			handler.Register(w, req)

			assert.Equal(t, 400, w.Code)
			assert.False(t, called, "service should not be reached on validation failure")
		})
	}
}

func TestRegister_InvalidBody(t *testing.T) {
	handler := handlers.NewAuthHandler(&handlers.MockAuthService{}, nil)
	req := handlers.NewTestRequest(t, "POST", "/api/auth/register", nil)

	w := httptest.NewRecorder()
	handler.Register(w, req)

	handlers.AssertErrorResponse(t, w, 400, "bad_request")
}

func TestLogin_Success(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		LoginFunc: func(ctx context.Context, email, password, ipAddress, userAgent string) (*services.AuthResponse, error) {
			assert.Equal(t, "alice@example.com", email)
			return &services.AuthResponse{
				Token: "token_456",
				User:  &services.UserResponse{ID: 1, Email: email, Role: models.RoleAdmin, Status: models.StatusActive},
			}, nil
		},
	}

	handler := handlers.NewAuthHandler(mockAuth, nil)
	req := handlers.NewTestRequest(t, "POST", "/api/auth/login", handlers.LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	var resp authResponseBody
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, "token_456", resp.Token)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		LoginFunc: func(ctx context.Context, email, password, ipAddress, userAgent string) (*services.AuthResponse, error) {
			return nil, models.ErrUnauthorized
		},
	}

	handler := handlers.NewAuthHandler(mockAuth, nil)
	req := handlers.NewTestRequest(t, "POST", "/api/auth/login", handlers.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrongpassword",
	})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	handlers.AssertErrorResponse(t, w, 401, "unauthorized")
}

func TestLogin_BlockedAccount(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		LoginFunc: func(ctx context.Context, email, password, ipAddress, userAgent string) (*services.AuthResponse, error) {
			return nil, models.ErrAccountBlocked
		},
	}

	handler := handlers.NewAuthHandler(mockAuth, nil)
	req := handlers.NewTestRequest(t, "POST", "/api/auth/login", handlers.LoginRequest{
		Email:    "blocked@example.com",
		Password: "password123",
	})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	handlers.AssertErrorResponse(t, w, 403, "forbidden")
}

func TestLogin_PendingAccount(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		LoginFunc: func(ctx context.Context, email, password, ipAddress, userAgent string) (*services.AuthResponse, error) {
			return nil, models.ErrAccountPending
		},
	}

	handler := handlers.NewAuthHandler(mockAuth, nil)
	req := handlers.NewTestRequest(t, "POST", "/api/auth/login", handlers.LoginRequest{
		Email:    "pending@example.com",
		Password: "password123",
	})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	handlers.AssertErrorResponse(t, w, 403, "forbidden")
}

func TestLogin_MissingPassword(t *testing.T) {
	handler := handlers.NewAuthHandler(&handlers.MockAuthService{}, nil)
	req := handlers.NewTestRequest(t, "POST", "/api/auth/login", handlers.LoginRequest{
		Email: "alice@example.com",
	})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	assert.Equal(t, 400, w.Code)
}
