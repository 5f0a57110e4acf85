package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/elibrary/backend/internal/models"
	pkglogger "github.com/elibrary/backend/pkg/logger"
)

// UserService handles user administration: listing, status changes and the
// admin request lifecycle. Every operation here sits behind the ADMIN role
// gate at the routing layer.
type UserService struct {
	repo        UserRepository
	email       EmailService
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewUserService creates a new UserService
func NewUserService(repo UserRepository, email EmailService, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *UserService {
	return &UserService{
		repo:        repo,
		email:       email,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// ListUsers returns all users, newest first.
func (s *UserService) ListUsers(ctx context.Context) ([]*UserResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return usersToResponses(users), nil
}

// UpdateStatus sets a user's status directly (the block/unblock toggle).
func (s *UserService) UpdateStatus(ctx context.Context, actorID, userID int64, status models.Status) (*UserResponse, error) {
	if !status.Valid() {
		return nil, models.ErrBadRequest
	}

	user, err := s.repo.UpdateStatus(ctx, userID, status)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to update user status",
			slog.Int64("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user status updated",
		slog.Int64("user_id", userID),
		slog.String("status", string(status)))
	s.auditLogger.LogAccountAction("status_updated", userID, actorID)

	return userModelToResponse(user), nil
}

// ListPendingAdminRequests returns users awaiting admin approval, oldest first.
func (s *UserService) ListPendingAdminRequests(ctx context.Context) ([]*UserResponse, error) {
	users, err := s.repo.ListByStatus(ctx, models.StatusPending)
	if err != nil {
		s.logger.Error("failed to list pending admin requests", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return usersToResponses(users), nil
}

// ApproveAdminRequest promotes a pending user to an active admin. Valid
// only while the user is PENDING_ADMIN_APPROVAL; anything else is NotFound.
func (s *UserService) ApproveAdminRequest(ctx context.Context, actorID, userID int64) (*UserResponse, error) {
	user, err := s.repo.ApproveAdminRequest(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to approve admin request",
			slog.Int64("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("admin request approved", slog.Int64("user_id", userID))
	s.auditLogger.LogAccountAction("admin_request_approved", userID, actorID)
	s.notifyDecision(user, true)

	return userModelToResponse(user), nil
}

// RejectAdminRequest reverts a pending user to a rejected regular user.
func (s *UserService) RejectAdminRequest(ctx context.Context, actorID, userID int64) (*UserResponse, error) {
	user, err := s.repo.RejectAdminRequest(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to reject admin request",
			slog.Int64("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("admin request rejected", slog.Int64("user_id", userID))
	s.auditLogger.LogAccountAction("admin_request_rejected", userID, actorID)
	s.notifyDecision(user, false)

	return userModelToResponse(user), nil
}

func (s *UserService) notifyDecision(user *models.User, approved bool) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.email.NotifyAdminDecision(ctx, user, approved); err != nil {
			s.logger.Warn("failed to send admin-decision notification",
				slog.Int64("user_id", user.ID), slog.Any("error", err))
		}
	}()
}

func usersToResponses(users []*models.User) []*UserResponse {
	responses := make([]*UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, userModelToResponse(user))
	}
	return responses
}
