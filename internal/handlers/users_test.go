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

func adminActor() *models.User {
	return &models.User{
		ID:     1,
		Email:  "admin@example.com",
		Role:   models.RoleAdmin,
		Status: models.StatusActive,
	}
}

func TestListUsers(t *testing.T) {
	mockSvc := &handlers.MockUserService{
		ListUsersFunc: func(ctx context.Context) ([]*services.UserResponse, error) {
			return []*services.UserResponse{
				{ID: 2, Email: "bob@example.com", Role: models.RoleUser, Status: models.StatusActive},
				{ID: 1, Email: "admin@example.com", Role: models.RoleAdmin, Status: models.StatusActive},
			}, nil
		},
	}

	handler := handlers.NewUserHandler(mockSvc)
	req := handlers.NewTestRequest(t, "GET", "/api/users", nil)

	w := httptest.NewRecorder()
	handler.ListUsers(w, req)

	var resp handlers.ListUsersResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, 2, resp.Total)
	assert.Len(t, resp.Users, 2)
}

func TestUpdateStatus_Block(t *testing.T) {
	var gotActorID, gotUserID int64
	var gotStatus models.Status
	mockSvc := &handlers.MockUserService{
		UpdateStatusFunc: func(ctx context.Context, actorID, userID int64, status models.Status) (*services.UserResponse, error) {
			gotActorID, gotUserID, gotStatus = actorID, userID, status
			return &services.UserResponse{ID: userID, Status: status}, nil
		},
	}

	handler := handlers.NewUserHandler(mockSvc)
	req := handlers.NewTestRequest(t, "PUT", "/api/users/2/status", handlers.UpdateStatusRequest{Status: "BLOCKED"})
	req = handlers.WithURLParam(req, "id", "2")
	req = handlers.WithUserContext(req, adminActor())

	w := httptest.NewRecorder()
	handler.UpdateStatus(w, req)

	var resp services.UserResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, int64(1), gotActorID)
	assert.Equal(t, int64(2), gotUserID)
	assert.Equal(t, models.StatusBlocked, gotStatus)
}

func TestUpdateStatus_InvalidStatusValue(t *testing.T) {
	called := false
	mockSvc := &handlers.MockUserService{
		UpdateStatusFunc: func(ctx context.Context, actorID, userID int64, status models.Status) (*services.UserResponse, error) {
			called = true
			return nil, nil
		},
	}

	handler := handlers.NewUserHandler(mockSvc)
	req := handlers.NewTestRequest(t, "PUT", "/api/users/2/status", handlers.UpdateStatusRequest{Status: "SUSPENDED"})
	req = handlers.WithURLParam(req, "id", "2")
	req = handlers.WithUserContext(req, adminActor())

	w := httptest.NewRecorder()
	handler.UpdateStatus(w, req)

	assert.Equal(t, 400, w.Code)
	assert.False(t, called)
}

func TestUpdateStatus_BadID(t *testing.T) {
	handler := handlers.NewUserHandler(&handlers.MockUserService{})
	req := handlers.NewTestRequest(t, "PUT", "/api/users/abc/status", handlers.UpdateStatusRequest{Status: "BLOCKED"})
	req = handlers.WithURLParam(req, "id", "abc")
	req = handlers.WithUserContext(req, adminActor())

	w := httptest.NewRecorder()
	handler.UpdateStatus(w, req)

	handlers.AssertErrorResponse(t, w, 400, "bad_request")
}

func TestUpdateStatus_UserNotFound(t *testing.T) {
	mockSvc := &handlers.MockUserService{
		UpdateStatusFunc: func(ctx context.Context, actorID, userID int64, status models.Status) (*services.UserResponse, error) {
			return nil, models.ErrNotFound
		},
	}

	handler := handlers.NewUserHandler(mockSvc)
	req := handlers.NewTestRequest(t, "PUT", "/api/users/99/status", handlers.UpdateStatusRequest{Status: "BLOCKED"})
	req = handlers.WithURLParam(req, "id", "99")
	req = handlers.WithUserContext(req, adminActor())

	w := httptest.NewRecorder()
	handler.UpdateStatus(w, req)

	handlers.AssertErrorResponse(t, w, 404, "not_found")
}

func TestListAdminRequests(t *testing.T) {
	mockSvc := &handlers.MockUserService{
		ListPendingAdminRequestsFunc: func(ctx context.Context) ([]*services.UserResponse, error) {
			return []*services.UserResponse{
				{ID: 3, Email: "carol@example.com", Role: models.RoleUser, Status: models.StatusPending},
			}, nil
		},
	}

	handler := handlers.NewUserHandler(mockSvc)
	req := handlers.NewTestRequest(t, "GET", "/api/users/admin-requests", nil)

	w := httptest.NewRecorder()
	handler.ListAdminRequests(w, req)

	var resp handlers.ListUsersResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, models.StatusPending, resp.Users[0].Status)
}

func TestApproveAdminRequest(t *testing.T) {
	mockSvc := &handlers.MockUserService{
		ApproveAdminRequestFunc: func(ctx context.Context, actorID, userID int64) (*services.UserResponse, error) {
			assert.Equal(t, int64(1), actorID)
			assert.Equal(t, int64(3), userID)
			return &services.UserResponse{ID: userID, Role: models.RoleAdmin, Status: models.StatusActive}, nil
		},
	}

	handler := handlers.NewUserHandler(mockSvc)
	req := handlers.NewTestRequest(t, "PUT", "/api/users/admin-requests/3/approve", nil)
	req = handlers.WithURLParam(req, "id", "3")
	req = handlers.WithUserContext(req, adminActor())

	w := httptest.NewRecorder()
	handler.ApproveAdminRequest(w, req)

	assert.Equal(t, 200, w.Code)
}

func TestRejectAdminRequest_NotPending(t *testing.T) {
	mockSvc := &handlers.MockUserService{
		RejectAdminRequestFunc: func(ctx context.Context, actorID, userID int64) (*services.UserResponse, error) {
			return nil, models.ErrNotFound
		},
	}

	handler := handlers.NewUserHandler(mockSvc)
	req := handlers.NewTestRequest(t, "PUT", "/api/users/admin-requests/2/reject", nil)
	req = handlers.WithURLParam(req, "id", "2")
	req = handlers.WithUserContext(req, adminActor())

	w := httptest.NewRecorder()
	handler.RejectAdminRequest(w, req)

	handlers.AssertErrorResponse(t, w, 404, "not_found")
}

func TestDecideAdminRequest_NoActor(t *testing.T) {
	handler := handlers.NewUserHandler(&handlers.MockUserService{})
	req := handlers.NewTestRequest(t, "PUT", "/api/users/admin-requests/3/approve", nil)
	req = handlers.WithURLParam(req, "id", "3")

	w := httptest.NewRecorder()
	handler.ApproveAdminRequest(w, req)

	handlers.AssertErrorResponse(t, w, 401, "unauthorized")
}
