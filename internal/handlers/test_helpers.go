package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/elibrary/backend/internal/auth"
	"github.com/elibrary/backend/internal/models"
	"github.com/elibrary/backend/internal/services"
	pkghttp "github.com/elibrary/backend/pkg/http"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithUserContext injects an authenticated user into the request context
func WithUserContext(req *http.Request, user *models.User) *http.Request {
	ctx := context.WithValue(req.Context(), auth.UserContextKey, user)
	return req.WithContext(ctx)
}

// WithURLParam injects a chi route parameter into the request context
func WithURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	return req.WithContext(ctx)
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	RegisterFunc func(ctx context.Context, name, email, password string, requestedRole models.Role) (*services.AuthResponse, error)
	LoginFunc    func(ctx context.Context, email, password, ipAddress, userAgent string) (*services.AuthResponse, error)
}

func (m *MockAuthService) Register(ctx context.Context, name, email, password string, requestedRole models.Role) (*services.AuthResponse, error) {
	if m.RegisterFunc == nil {
		return nil, models.ErrConflict
	}
	return m.RegisterFunc(ctx, name, email, password, requestedRole)
}

func (m *MockAuthService) Login(ctx context.Context, email, password, ipAddress, userAgent string) (*services.AuthResponse, error) {
	if m.LoginFunc == nil {
		return nil, models.ErrUnauthorized
	}
	return m.LoginFunc(ctx, email, password, ipAddress, userAgent)
}

// MockUserService implements UserServiceInterface for testing
type MockUserService struct {
	ListUsersFunc                func(ctx context.Context) ([]*services.UserResponse, error)
	UpdateStatusFunc             func(ctx context.Context, actorID, userID int64, status models.Status) (*services.UserResponse, error)
	ListPendingAdminRequestsFunc func(ctx context.Context) ([]*services.UserResponse, error)
	ApproveAdminRequestFunc      func(ctx context.Context, actorID, userID int64) (*services.UserResponse, error)
	RejectAdminRequestFunc       func(ctx context.Context, actorID, userID int64) (*services.UserResponse, error)
}

func (m *MockUserService) ListUsers(ctx context.Context) ([]*services.UserResponse, error) {
	if m.ListUsersFunc == nil {
		return []*services.UserResponse{}, nil
	}
	return m.ListUsersFunc(ctx)
}

func (m *MockUserService) UpdateStatus(ctx context.Context, actorID, userID int64, status models.Status) (*services.UserResponse, error) {
	if m.UpdateStatusFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.UpdateStatusFunc(ctx, actorID, userID, status)
}

func (m *MockUserService) ListPendingAdminRequests(ctx context.Context) ([]*services.UserResponse, error) {
	if m.ListPendingAdminRequestsFunc == nil {
		return []*services.UserResponse{}, nil
	}
	return m.ListPendingAdminRequestsFunc(ctx)
}

func (m *MockUserService) ApproveAdminRequest(ctx context.Context, actorID, userID int64) (*services.UserResponse, error) {
	if m.ApproveAdminRequestFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.ApproveAdminRequestFunc(ctx, actorID, userID)
}

func (m *MockUserService) RejectAdminRequest(ctx context.Context, actorID, userID int64) (*services.UserResponse, error) {
	if m.RejectAdminRequestFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.RejectAdminRequestFunc(ctx, actorID, userID)
}

// MockBookService implements BookServiceInterface for testing
type MockBookService struct {
	ListBooksFunc       func(ctx context.Context) ([]*services.BookResponse, error)
	GetBookFunc         func(ctx context.Context, id int64) (*services.BookResponse, error)
	CreateBookFunc      func(ctx context.Context, input *services.BookInput, cover, pdf *services.Upload) (*services.BookResponse, error)
	UpdateBookFunc      func(ctx context.Context, id int64, input *services.BookInput, cover, pdf *services.Upload) (*services.BookResponse, error)
	DeleteBookFunc      func(ctx context.Context, id int64) error
	ResolveDownloadFunc func(ctx context.Context, id int64) (string, string, error)
}

func (m *MockBookService) ListBooks(ctx context.Context) ([]*services.BookResponse, error) {
	if m.ListBooksFunc == nil {
		return []*services.BookResponse{}, nil
	}
	return m.ListBooksFunc(ctx)
}

func (m *MockBookService) GetBook(ctx context.Context, id int64) (*services.BookResponse, error) {
	if m.GetBookFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetBookFunc(ctx, id)
}

func (m *MockBookService) CreateBook(ctx context.Context, input *services.BookInput, cover, pdf *services.Upload) (*services.BookResponse, error) {
	if m.CreateBookFunc == nil {
		return nil, models.ErrBadRequest
	}
	return m.CreateBookFunc(ctx, input, cover, pdf)
}

func (m *MockBookService) UpdateBook(ctx context.Context, id int64, input *services.BookInput, cover, pdf *services.Upload) (*services.BookResponse, error) {
	if m.UpdateBookFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.UpdateBookFunc(ctx, id, input, cover, pdf)
}

func (m *MockBookService) DeleteBook(ctx context.Context, id int64) error {
	if m.DeleteBookFunc == nil {
		return models.ErrNotFound
	}
	return m.DeleteBookFunc(ctx, id)
}

func (m *MockBookService) ResolveDownload(ctx context.Context, id int64) (string, string, error) {
	if m.ResolveDownloadFunc == nil {
		return "", "", models.ErrNotFound
	}
	return m.ResolveDownloadFunc(ctx, id)
}
