package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/elibrary/backend/internal/auth"
	"github.com/elibrary/backend/internal/database"
	"github.com/elibrary/backend/internal/handlers"
	middlewareCustom "github.com/elibrary/backend/internal/middleware"
	"github.com/elibrary/backend/internal/models"
	"github.com/elibrary/backend/internal/repositories"
	"github.com/elibrary/backend/internal/routes"
	"github.com/elibrary/backend/internal/services"
	"github.com/elibrary/backend/internal/storage"
	pkglogger "github.com/elibrary/backend/pkg/logger"
)

const testJWTSecret = "test-secret-32-characters-long-for-testing"

// CapturedNotification records an outbound email trigger
type CapturedNotification struct {
	Kind     string // "admin_request" or "decision"
	Email    string
	Approved bool
}

// CaptureEmailService records notifications for test assertions
type CaptureEmailService struct {
	mu            sync.Mutex
	Notifications []CapturedNotification
}

func (c *CaptureEmailService) NotifyAdminRequest(ctx context.Context, user *models.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Notifications = append(c.Notifications, CapturedNotification{
		Kind:  "admin_request",
		Email: user.Email,
	})
	return nil
}

func (c *CaptureEmailService) NotifyAdminDecision(ctx context.Context, user *models.User, approved bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Notifications = append(c.Notifications, CapturedNotification{
		Kind:     "decision",
		Email:    user.Email,
		Approved: approved,
	})
	return nil
}

// Last returns the most recent notification, or nil
func (c *CaptureEmailService) Last() *CapturedNotification {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.Notifications) == 0 {
		return nil
	}
	return &c.Notifications[len(c.Notifications)-1]
}

// TestServer wraps httptest.Server with the full dependency graph
type TestServer struct {
	Server       *httptest.Server
	DB           *database.DB
	EmailService *CaptureEmailService
	UploadDir    string
}

// NewTestServer wires the complete HTTP stack against a real database with
// a capturing email service and a throwaway upload directory.
func NewTestServer(db *database.DB, uploadDir string) (*TestServer, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	userRepo := repositories.NewUserRepository(db)
	bookRepo := repositories.NewBookRepository(db)

	fileStore, err := storage.NewLocalStore(uploadDir, logger)
	if err != nil {
		return nil, err
	}

	tokenManager := auth.NewTokenManager(testJWTSecret, 1*time.Hour, 365*24*time.Hour)
	auditLogger := pkglogger.NewAuditLogger(logger)
	emailService := &CaptureEmailService{}

	authService := services.NewAuthService(userRepo, tokenManager, emailService, logger, auditLogger)
	userService := services.NewUserService(userRepo, emailService, logger, auditLogger)
	bookService := services.NewBookService(bookRepo, fileStore, logger)

	authHandler := handlers.NewAuthHandler(authService, nil)
	userHandler := handlers.NewUserHandler(userService)
	bookHandler := handlers.NewBookHandler(bookService, 50<<20)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: "test"}))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(r, authHandler, userHandler, bookHandler, tokenManager, userRepo, uploadDir)

	return &TestServer{
		Server:       httptest.NewServer(r),
		DB:           db,
		EmailService: emailService,
		UploadDir:    uploadDir,
	}, nil
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	if ts.Server != nil {
		ts.Server.Close()
	}
}

// Request makes an HTTP request to the test server
func (ts *TestServer) Request(method, path string, body interface{}, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return http.DefaultClient.Do(req)
}

// RequestWithAuth makes an authenticated HTTP request with a bearer token
func (ts *TestServer) RequestWithAuth(method, path, token string, body interface{}) (*http.Response, error) {
	return ts.Request(method, path, body, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

// ParseJSONResponse parses a JSON response body into the target struct
func ParseJSONResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}

func int64Str(id int64) string {
	return strconv.FormatInt(id, 10)
}
