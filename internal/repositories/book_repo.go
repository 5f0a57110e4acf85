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

type BookRepository struct {
	pool *pgxpool.Pool
}

func NewBookRepository(db *database.DB) *BookRepository {
	return &BookRepository{pool: db.Pool}
}

const bookColumns = `id, title, author, description, category, pages, price, isbn,
	is_premium, cover_image_url, file_url, publication_date, created_at, updated_at`

func scanBookRow(scanner rowScanner) (*models.Book, error) {
	var book models.Book

	err := scanner.Scan(
		&book.ID, &book.Title, &book.Author, &book.Description, &book.Category,
		&book.Pages, &book.Price, &book.ISBN,
		&book.IsPremium, &book.CoverImageURL, &book.FileURL, &book.PublicationDate,
		&book.CreatedAt, &book.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &book, nil
}

func scanBookRows(rows pgx.Rows) ([]*models.Book, error) {
	defer rows.Close()

	books := make([]*models.Book, 0)

	for rows.Next() {
		book, err := scanBookRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return books, nil
}

func (r *BookRepository) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	return scanBookRow(r.pool.QueryRow(ctx, query, id))
}

func (r *BookRepository) List(ctx context.Context) ([]*models.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}

	return scanBookRows(rows)
}

func (r *BookRepository) Create(ctx context.Context, book *models.Book) (*models.Book, error) {
	now := time.Now()

	query := `
		INSERT INTO books (title, author, description, category, pages, price, isbn,
			is_premium, cover_image_url, file_url, publication_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
		RETURNING ` + bookColumns

	return scanBookRow(r.pool.QueryRow(ctx, query,
		book.Title, book.Author, book.Description, book.Category,
		book.Pages, book.Price, book.ISBN,
		book.IsPremium, book.CoverImageURL, book.FileURL, book.PublicationDate,
		now,
	))
}

func (r *BookRepository) Update(ctx context.Context, id int64, book *models.Book) (*models.Book, error) {
	query := `
		UPDATE books SET title = $2, author = $3, description = $4, category = $5,
			pages = $6, price = $7, isbn = $8, is_premium = $9,
			cover_image_url = $10, file_url = $11, updated_at = $12
		WHERE id = $1
		RETURNING ` + bookColumns

	return scanBookRow(r.pool.QueryRow(ctx, query,
		id, book.Title, book.Author, book.Description, book.Category,
		book.Pages, book.Price, book.ISBN, book.IsPremium,
		book.CoverImageURL, book.FileURL, time.Now(),
	))
}

func (r *BookRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// ListFileURLs returns every cover and file URL currently referenced by a
// book. Used by the upload janitor to spot orphaned files.
func (r *BookRepository) ListFileURLs(ctx context.Context) ([]string, error) {
	query := `
		SELECT cover_image_url FROM books
		UNION
		SELECT file_url FROM books WHERE file_url IS NOT NULL
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query file urls: %w", err)
	}
	defer rows.Close()

	urls := make([]string, 0)
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan file url: %w", err)
		}
		urls = append(urls, url)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return urls, nil
}
