package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/elibrary/backend/internal/auth"
	"github.com/elibrary/backend/internal/models"
	"github.com/elibrary/backend/internal/services"
	pkghttp "github.com/elibrary/backend/pkg/http"
)

// UserServiceInterface defines the interface for user administration logic
type UserServiceInterface interface {
	ListUsers(ctx context.Context) ([]*services.UserResponse, error)
	UpdateStatus(ctx context.Context, actorID, userID int64, status models.Status) (*services.UserResponse, error)
	ListPendingAdminRequests(ctx context.Context) ([]*services.UserResponse, error)
	ApproveAdminRequest(ctx context.Context, actorID, userID int64) (*services.UserResponse, error)
	RejectAdminRequest(ctx context.Context, actorID, userID int64) (*services.UserResponse, error)
}

// UserHandler handles user administration HTTP requests
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// UpdateStatusRequest represents the request body for a status change
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ACTIVE BLOCKED PENDING_ADMIN_APPROVAL REJECTED"`
}

// ListUsersResponse represents a list of users
type ListUsersResponse struct {
	Users []*services.UserResponse `json:"users"`
	Total int                      `json:"total"`
}

// ListUsers returns all users, newest first
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, ListUsersResponse{
		Users: users,
		Total: len(users),
	})
}

// UpdateStatus sets a user's account status
func (h *UserHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if fieldErrors := ValidateRequest(req); fieldErrors != nil {
		pkghttp.WriteValidationError(w, fieldErrors)
		return
	}

	actor := auth.GetUserFromContext(r)
	if actor == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	user, err := h.service.UpdateStatus(r.Context(), actor.ID, userID, models.Status(req.Status))
	if err != nil {
		writeUserServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, user)
}

// ListAdminRequests returns users awaiting an admin-role decision
func (h *UserHandler) ListAdminRequests(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListPendingAdminRequests(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, ListUsersResponse{
		Users: users,
		Total: len(users),
	})
}

// ApproveAdminRequest grants the requested admin role
func (h *UserHandler) ApproveAdminRequest(w http.ResponseWriter, r *http.Request) {
	h.decideAdminRequest(w, r, true)
}

// RejectAdminRequest declines the requested admin role
func (h *UserHandler) RejectAdminRequest(w http.ResponseWriter, r *http.Request) {
	h.decideAdminRequest(w, r, false)
}

func (h *UserHandler) decideAdminRequest(w http.ResponseWriter, r *http.Request, approve bool) {
	userID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	actor := auth.GetUserFromContext(r)
	if actor == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var (
		user *services.UserResponse
		err  error
	)
	if approve {
		user, err = h.service.ApproveAdminRequest(r.Context(), actor.ID, userID)
	} else {
		user, err = h.service.RejectAdminRequest(r.Context(), actor.ID, userID)
	}
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "No pending admin request for this user")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	message := "Admin request rejected"
	if approve {
		message = "Admin request approved"
	}
	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": message,
		"user":    user,
	})
}

func writeUserServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "User not found")
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, err.Error())
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}

// parseIDParam extracts and validates the {id} route parameter
func parseIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		pkghttp.WriteBadRequest(w, "Invalid ID")
		return 0, false
	}
	return id, true
}
