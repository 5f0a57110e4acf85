package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/elibrary/backend/internal/models"
	"github.com/elibrary/backend/internal/services"
	pkghttp "github.com/elibrary/backend/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Register(ctx context.Context, name, email, password string, requestedRole models.Role) (*services.AuthResponse, error)
	Login(ctx context.Context, email, password, ipAddress, userAgent string) (*services.AuthResponse, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service  AuthServiceInterface
	ipConfig *pkghttp.IPConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, ipConfig *pkghttp.IPConfig) *AuthHandler {
	return &AuthHandler{
		service:  service,
		ipConfig: ipConfig,
	}
}

// Request DTOs

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Name     string `json:"name" validate:"omitempty,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=USER ADMIN"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// messageAuthResponse wraps an auth result with a human-readable message
type messageAuthResponse struct {
	Message string                 `json:"message"`
	Token   string                 `json:"token"`
	User    *services.UserResponse `json:"user"`
}

// Register handles user registration. A successful registration also logs
// the user in: the response carries a session token alongside the created
// user projection.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if fieldErrors := ValidateRequest(req); fieldErrors != nil {
		pkghttp.WriteValidationError(w, fieldErrors)
		return
	}

	// Email is matched exactly as stored; only surrounding whitespace is dropped
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)

	requestedRole := models.RoleUser
	if req.Role != "" {
		requestedRole = models.Role(req.Role)
	}

	authResp, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password, requestedRole)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "A user with this email already exists")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, err.Error())
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, messageAuthResponse{
		Message: "Registration successful",
		Token:   authResp.Token,
		User:    authResp.User,
	})
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if fieldErrors := ValidateRequest(req); fieldErrors != nil {
		pkghttp.WriteValidationError(w, fieldErrors)
		return
	}

	req.Email = strings.TrimSpace(req.Email)

	// IP address and User-Agent feed the audit log
	ipAddress := pkghttp.ExtractClientIP(r, h.ipConfig)
	userAgent := r.Header.Get("User-Agent")

	authResp, err := h.service.Login(r.Context(), req.Email, req.Password, ipAddress, userAgent)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrAccountBlocked):
			pkghttp.WriteForbidden(w, "Your account has been blocked. Contact an administrator.")
		case errors.Is(err, models.ErrAccountPending):
			pkghttp.WriteForbidden(w, "Your admin request is pending approval")
		case errors.Is(err, models.ErrUnauthorized):
			pkghttp.WriteUnauthorized(w, "Invalid email or password")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, messageAuthResponse{
		Message: "Login successful",
		Token:   authResp.Token,
		User:    authResp.User,
	})
}
