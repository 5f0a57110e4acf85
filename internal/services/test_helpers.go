package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/elibrary/backend/internal/models"
	pkgauth "github.com/elibrary/backend/pkg/auth"
	pkglogger "github.com/elibrary/backend/pkg/logger"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIDFunc             func(ctx context.Context, id int64) (*models.User, error)
	GetByEmailFunc          func(ctx context.Context, email string) (*models.User, error)
	ListFunc                func(ctx context.Context) ([]*models.User, error)
	ListByStatusFunc        func(ctx context.Context, status models.Status) ([]*models.User, error)
	CreateFunc              func(ctx context.Context, user *models.User) (*models.User, error)
	UpdateStatusFunc        func(ctx context.Context, id int64, status models.Status) (*models.User, error)
	ApproveAdminRequestFunc func(ctx context.Context, id int64) (*models.User, error)
	RejectAdminRequestFunc  func(ctx context.Context, id int64) (*models.User, error)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) List(ctx context.Context) ([]*models.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.User{}, nil
}

func (m *MockUserRepository) ListByStatus(ctx context.Context, status models.Status) ([]*models.User, error) {
	if m.ListByStatusFunc != nil {
		return m.ListByStatusFunc(ctx, status)
	}
	return []*models.User{}, nil
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) UpdateStatus(ctx context.Context, id int64, status models.Status) (*models.User, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) ApproveAdminRequest(ctx context.Context, id int64) (*models.User, error) {
	if m.ApproveAdminRequestFunc != nil {
		return m.ApproveAdminRequestFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) RejectAdminRequest(ctx context.Context, id int64) (*models.User, error) {
	if m.RejectAdminRequestFunc != nil {
		return m.RejectAdminRequestFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

// MockBookRepository implements BookRepository for testing
type MockBookRepository struct {
	GetByIDFunc      func(ctx context.Context, id int64) (*models.Book, error)
	ListFunc         func(ctx context.Context) ([]*models.Book, error)
	CreateFunc       func(ctx context.Context, book *models.Book) (*models.Book, error)
	UpdateFunc       func(ctx context.Context, id int64, book *models.Book) (*models.Book, error)
	DeleteFunc       func(ctx context.Context, id int64) error
	ListFileURLsFunc func(ctx context.Context) ([]string, error)
}

func (m *MockBookRepository) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockBookRepository) List(ctx context.Context) ([]*models.Book, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.Book{}, nil
}

func (m *MockBookRepository) Create(ctx context.Context, book *models.Book) (*models.Book, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, book)
	}
	return nil, models.ErrInternalServer
}

func (m *MockBookRepository) Update(ctx context.Context, id int64, book *models.Book) (*models.Book, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, book)
	}
	return nil, models.ErrInternalServer
}

func (m *MockBookRepository) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockBookRepository) ListFileURLs(ctx context.Context) ([]string, error) {
	if m.ListFileURLsFunc != nil {
		return m.ListFileURLsFunc(ctx)
	}
	return []string{}, nil
}

// MockFileStore implements FileStore for testing
type MockFileStore struct {
	SaveCoverFunc    func(src io.Reader, originalName string) (string, error)
	SaveBookFileFunc func(src io.Reader, originalName string) (string, error)
	DeleteFunc       func(url string)
	AbsPathFunc      func(url string) (string, error)
	ExistsFunc       func(url string) bool

	Deleted []string
}

func (m *MockFileStore) SaveCover(src io.Reader, originalName string) (string, error) {
	if m.SaveCoverFunc != nil {
		return m.SaveCoverFunc(src, originalName)
	}
	return "/uploads/covers/coverImage-test.jpg", nil
}

func (m *MockFileStore) SaveBookFile(src io.Reader, originalName string) (string, error) {
	if m.SaveBookFileFunc != nil {
		return m.SaveBookFileFunc(src, originalName)
	}
	return "/uploads/pdfs/bookFile-test.pdf", nil
}

func (m *MockFileStore) Delete(url string) {
	m.Deleted = append(m.Deleted, url)
	if m.DeleteFunc != nil {
		m.DeleteFunc(url)
	}
}

func (m *MockFileStore) AbsPath(url string) (string, error) {
	if m.AbsPathFunc != nil {
		return m.AbsPathFunc(url)
	}
	return "/tmp" + url, nil
}

func (m *MockFileStore) Exists(url string) bool {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(url)
	}
	return true
}

// MockEmailService implements EmailService for testing
type MockEmailService struct {
	NotifyAdminRequestFunc  func(ctx context.Context, user *models.User) error
	NotifyAdminDecisionFunc func(ctx context.Context, user *models.User, approved bool) error
}

func (m *MockEmailService) NotifyAdminRequest(ctx context.Context, user *models.User) error {
	if m.NotifyAdminRequestFunc != nil {
		return m.NotifyAdminRequestFunc(ctx, user)
	}
	return nil
}

func (m *MockEmailService) NotifyAdminDecision(ctx context.Context, user *models.User, approved bool) error {
	if m.NotifyAdminDecisionFunc != nil {
		return m.NotifyAdminDecisionFunc(ctx, user, approved)
	}
	return nil
}

// NewTestUser builds an active regular user with a real bcrypt hash
func NewTestUser(id int64, email, password string) *models.User {
	hash, _ := pkgauth.HashPassword(password)
	now := time.Now()
	return &models.User{
		ID:           id,
		Email:        email,
		Name:         "Test User",
		PasswordHash: hash,
		Role:         models.RoleUser,
		Status:       models.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func newTestAuditLogger() *pkglogger.AuditLogger {
	return pkglogger.NewAuditLogger(slog.Default())
}
