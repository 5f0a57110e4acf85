package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/elibrary/backend/internal/auth"
	"github.com/elibrary/backend/internal/models"
	pkgauth "github.com/elibrary/backend/pkg/auth"
	pkglogger "github.com/elibrary/backend/pkg/logger"
)

// UserRepository defines the interface for user persistence operations
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	ListByStatus(ctx context.Context, status models.Status) ([]*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	UpdateStatus(ctx context.Context, id int64, status models.Status) (*models.User, error)
	ApproveAdminRequest(ctx context.Context, id int64) (*models.User, error)
	RejectAdminRequest(ctx context.Context, id int64) (*models.User, error)
}

// AuthService handles registration and login business logic
type AuthService struct {
	repo        UserRepository
	tm          *auth.TokenManager
	email       EmailService
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewAuthService creates a new AuthService
func NewAuthService(repo UserRepository, tm *auth.TokenManager, email EmailService, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AuthService {
	return &AuthService{
		repo:        repo,
		tm:          tm,
		email:       email,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// UserResponse represents a user in the HTTP response
type UserResponse struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Role      models.Role   `json:"role"`
	Status    models.Status `json:"status"`
	CreatedAt string        `json:"createdAt"`
}

// AuthResponse represents the response from auth operations
type AuthResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// Register creates a new user account and issues a long-lived session
// token: registration doubles as an implicit login.
//
// Role and status are computed per policy: the first user ever created is
// promoted to an active admin regardless of the requested role (the
// repository makes that decision atomic with the insert); any later ADMIN
// request is stored as USER with PENDING_ADMIN_APPROVAL until an existing
// admin approves it.
func (s *AuthService) Register(ctx context.Context, name, email, password string, requestedRole models.Role) (*AuthResponse, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)

	if !requestedRole.Valid() {
		return nil, models.ErrBadRequest
	}

	// The length policy belongs to registration itself, not just the
	// transport-level request validation.
	if err := pkgauth.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrBadRequest, err.Error())
	}

	// Early duplicate check for a clean conflict message; the unique
	// constraint still backstops concurrent registrations.
	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		s.logger.Info("registration failed: user already exists")
		return nil, models.ErrConflict
	}
	if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check if user exists", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	hashedPassword, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	// Non-bootstrap role/status; the repository promotes the first row
	finalRole := models.RoleUser
	finalStatus := models.StatusActive
	if requestedRole == models.RoleAdmin {
		finalStatus = models.StatusPending
	}

	user := &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: hashedPassword,
		Role:         finalRole,
		Status:       finalStatus,
	}

	createdUser, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			s.logger.Info("registration failed: user already exists")
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	token, err := s.tm.GenerateRegistrationToken(createdUser)
	if err != nil {
		s.logger.Error("failed to generate session token",
			slog.Int64("user_id", createdUser.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user registered",
		slog.Int64("user_id", createdUser.ID),
		slog.String("role", string(createdUser.Role)),
		slog.String("status", string(createdUser.Status)))
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "register_success",
		UserID:    createdUser.ID,
		Success:   true,
	})

	if createdUser.Status == models.StatusPending {
		s.notifyAdminRequest(createdUser)
	}

	return &AuthResponse{
		Token: token,
		User:  userModelToResponse(createdUser),
	}, nil
}

// Login authenticates a user and returns a short-lived session token.
//
// Status is checked before the password so a blocked account never learns
// whether its password was correct; unknown email and wrong password share
// one generic error so account existence is not leaked. REJECTED users may
// still log in: rejection reverts them to a regular user, it does not lock
// them out.
func (s *AuthService) Login(ctx context.Context, email, password, ipAddress, userAgent string) (*AuthResponse, error) {
	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("login failed: invalid credentials")
			s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
				EventType:     "login_failed",
				Email:         pkglogger.SanitizedEmail(email),
				IPAddress:     ipAddress,
				UserAgent:     userAgent,
				FailureReason: "invalid_credentials",
				Success:       false,
			})
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := validateAccountState(user); err != nil {
		s.logger.Info("login blocked due to account state",
			slog.Int64("user_id", user.ID),
			slog.String("status", string(user.Status)))
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			UserID:        user.ID,
			Email:         pkglogger.SanitizedEmail(user.Email),
			IPAddress:     ipAddress,
			UserAgent:     userAgent,
			FailureReason: "account_state",
			Success:       false,
		})
		return nil, err
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.Info("login failed: invalid credentials")
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			UserID:        user.ID,
			Email:         pkglogger.SanitizedEmail(user.Email),
			IPAddress:     ipAddress,
			UserAgent:     userAgent,
			FailureReason: "invalid_credentials",
			Success:       false,
		})
		return nil, models.ErrUnauthorized
	}

	token, err := s.tm.GenerateLoginToken(user)
	if err != nil {
		s.logger.Error("failed to generate session token",
			slog.Int64("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user logged in", slog.Int64("user_id", user.ID))
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login_success",
		UserID:    user.ID,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		Success:   true,
	})

	return &AuthResponse{
		Token: token,
		User:  userModelToResponse(user),
	}, nil
}

// notifyAdminRequest fires the best-effort outbound notification for a new
// pending admin request. Detached from the request context so a client
// disconnect does not cancel the send.
func (s *AuthService) notifyAdminRequest(user *models.User) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.email.NotifyAdminRequest(ctx, user); err != nil {
			s.logger.Warn("failed to send admin-request notification",
				slog.Int64("user_id", user.ID), slog.Any("error", err))
		}
	}()
}

// validateAccountState checks whether the account's status permits login
func validateAccountState(user *models.User) error {
	switch user.Status {
	case models.StatusBlocked:
		return models.ErrAccountBlocked
	case models.StatusPending:
		return models.ErrAccountPending
	case models.StatusActive, models.StatusRejected:
		// REJECTED only revokes the admin request, not the account
		return nil
	default:
		return models.ErrInternalServer
	}
}

// userModelToResponse converts a user model to a response DTO. The password
// hash never leaves the service layer.
func userModelToResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Status:    user.Status,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}
