package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/elibrary/backend/internal/database"
	"github.com/elibrary/backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{pool: db.Pool}
}

// rowScanner interface for scanning user rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User

	err := scanner.Scan(
		&user.ID, &user.Email, &user.Name, &user.PasswordHash,
		&user.Role, &user.Status,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &user, nil
}

func scanUserRows(rows pgx.Rows) ([]*models.User, error) {
	defer rows.Close()

	users := make([]*models.User, 0)

	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT id, email, name, password_hash, role, status, created_at, updated_at
		FROM users WHERE id = $1
	`

	return scanUserRow(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, name, password_hash, role, status, created_at, updated_at
		FROM users WHERE email = $1
	`

	return scanUserRow(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	query := `
		SELECT id, email, name, password_hash, role, status, created_at, updated_at
		FROM users ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}

	return scanUserRows(rows)
}

func (r *UserRepository) ListByStatus(ctx context.Context, status models.Status) ([]*models.User, error) {
	query := `
		SELECT id, email, name, password_hash, role, status, created_at, updated_at
		FROM users WHERE status = $1 ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to query users by status: %w", err)
	}

	return scanUserRows(rows)
}

// Create persists a new user. The caller supplies the role and status for
// the non-bootstrap case; the statement itself promotes the very first row
// to ADMIN/ACTIVE so the bootstrap decision commits atomically with the
// insert rather than as a count-then-create race.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	now := time.Now()

	query := `
		INSERT INTO users (email, name, password_hash, role, status, created_at, updated_at)
		SELECT $1, $2, $3,
			CASE WHEN NOT EXISTS (SELECT 1 FROM users) THEN 'ADMIN' ELSE $4 END,
			CASE WHEN NOT EXISTS (SELECT 1 FROM users) THEN 'ACTIVE' ELSE $5 END,
			$6, $6
		RETURNING id, email, name, password_hash, role, status, created_at, updated_at
	`

	return scanUserRow(r.pool.QueryRow(ctx, query,
		user.Email, user.Name, user.PasswordHash,
		user.Role, user.Status, now,
	))
}

func (r *UserRepository) UpdateStatus(ctx context.Context, id int64, status models.Status) (*models.User, error) {
	query := `
		UPDATE users SET status = $2, updated_at = $3
		WHERE id = $1
		RETURNING id, email, name, password_hash, role, status, created_at, updated_at
	`

	return scanUserRow(r.pool.QueryRow(ctx, query, id, status, time.Now()))
}

// ApproveAdminRequest promotes a pending user to an active admin. The
// status predicate makes the transition conditional: a user not currently
// pending yields no rows, mapped to ErrNotFound.
func (r *UserRepository) ApproveAdminRequest(ctx context.Context, id int64) (*models.User, error) {
	query := `
		UPDATE users SET role = 'ADMIN', status = 'ACTIVE', updated_at = $2
		WHERE id = $1 AND status = 'PENDING_ADMIN_APPROVAL'
		RETURNING id, email, name, password_hash, role, status, created_at, updated_at
	`

	return scanUserRow(r.pool.QueryRow(ctx, query, id, time.Now()))
}

// RejectAdminRequest reverts a pending user to a rejected regular user.
func (r *UserRepository) RejectAdminRequest(ctx context.Context, id int64) (*models.User, error) {
	query := `
		UPDATE users SET role = 'USER', status = 'REJECTED', updated_at = $2
		WHERE id = $1 AND status = 'PENDING_ADMIN_APPROVAL'
		RETURNING id, email, name, password_hash, role, status, created_at, updated_at
	`

	return scanUserRow(r.pool.QueryRow(ctx, query, id, time.Now()))
}
