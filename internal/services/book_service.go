package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/elibrary/backend/internal/models"
)

// BookRepository defines the interface for book persistence operations
type BookRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Book, error)
	List(ctx context.Context) ([]*models.Book, error)
	Create(ctx context.Context, book *models.Book) (*models.Book, error)
	Update(ctx context.Context, id int64, book *models.Book) (*models.Book, error)
	Delete(ctx context.Context, id int64) error
	ListFileURLs(ctx context.Context) ([]string, error)
}

// FileStore abstracts the upload storage used for covers and book PDFs
type FileStore interface {
	SaveCover(src io.Reader, originalName string) (string, error)
	SaveBookFile(src io.Reader, originalName string) (string, error)
	Delete(url string)
	AbsPath(url string) (string, error)
	Exists(url string) bool
}

// Upload is a received multipart file
type Upload struct {
	Reader   io.Reader
	Filename string
}

// BookInput carries the validated scalar fields of a create/update request
type BookInput struct {
	Title       string
	Author      string
	Description string
	Category    string
	Pages       int
	Price       float64
	ISBN        string
	IsPremium   bool
}

// BookResponse represents a book in the HTTP response
type BookResponse struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	Description     string  `json:"description"`
	Category        string  `json:"category"`
	Pages           int     `json:"pages"`
	Price           float64 `json:"price"`
	ISBN            *string `json:"isbn"`
	IsPremium       bool    `json:"is_premium"`
	CoverImageURL   string  `json:"cover_image_url"`
	FileURL         *string `json:"file_url"`
	PublicationDate string  `json:"publication_date"`
	CreatedAt       string  `json:"createdAt"`
}

// BookService handles catalog business logic
type BookService struct {
	repo   BookRepository
	files  FileStore
	logger *slog.Logger
}

// NewBookService creates a new BookService
func NewBookService(repo BookRepository, files FileStore, logger *slog.Logger) *BookService {
	return &BookService{
		repo:   repo,
		files:  files,
		logger: logger,
	}
}

// ListBooks returns all books, newest first.
func (s *BookService) ListBooks(ctx context.Context) ([]*BookResponse, error) {
	books, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list books", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	responses := make([]*BookResponse, 0, len(books))
	for _, book := range books {
		responses = append(responses, bookModelToResponse(book))
	}
	return responses, nil
}

// GetBook returns a single book by id.
func (s *BookService) GetBook(ctx context.Context, id int64) (*BookResponse, error) {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get book", slog.Int64("book_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return bookModelToResponse(book), nil
}

// CreateBook stores the uploaded files and persists a new book. A cover is
// always required; a PDF is required for free books (premium books may add
// theirs later, behind the purchase flow).
func (s *BookService) CreateBook(ctx context.Context, input *BookInput, cover, pdf *Upload) (*BookResponse, error) {
	if cover == nil {
		return nil, fmt.Errorf("%w: cover image is required", models.ErrBadRequest)
	}
	if !input.IsPremium && pdf == nil {
		return nil, fmt.Errorf("%w: book file (PDF) is required for free books", models.ErrBadRequest)
	}

	coverURL, err := s.files.SaveCover(cover.Reader, cover.Filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrBadRequest, err.Error())
	}

	var fileURL *string
	if pdf != nil {
		url, err := s.files.SaveBookFile(pdf.Reader, pdf.Filename)
		if err != nil {
			s.files.Delete(coverURL)
			return nil, fmt.Errorf("%w: %s", models.ErrBadRequest, err.Error())
		}
		fileURL = &url
	}

	book := inputToModel(input)
	book.CoverImageURL = coverURL
	book.FileURL = fileURL
	book.PublicationDate = time.Now().UTC().Format("2006-01-02")

	createdBook, err := s.repo.Create(ctx, book)
	if err != nil {
		s.files.Delete(coverURL)
		if fileURL != nil {
			s.files.Delete(*fileURL)
		}
		s.logger.Error("failed to create book", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("book created",
		slog.Int64("book_id", createdBook.ID),
		slog.String("title", createdBook.Title))

	return bookModelToResponse(createdBook), nil
}

// UpdateBook replaces the book's fields and optionally its files. A newly
// uploaded cover or PDF supersedes (and deletes) the old one; marking a
// book premium without uploading a PDF drops its existing file.
func (s *BookService) UpdateBook(ctx context.Context, id int64, input *BookInput, cover, pdf *Upload) (*BookResponse, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get book", slog.Int64("book_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	coverURL := existing.CoverImageURL
	if cover != nil {
		url, err := s.files.SaveCover(cover.Reader, cover.Filename)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", models.ErrBadRequest, err.Error())
		}
		s.files.Delete(existing.CoverImageURL)
		coverURL = url
	}

	fileURL := existing.FileURL
	switch {
	case pdf != nil:
		url, err := s.files.SaveBookFile(pdf.Reader, pdf.Filename)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", models.ErrBadRequest, err.Error())
		}
		if existing.FileURL != nil {
			s.files.Delete(*existing.FileURL)
		}
		fileURL = &url
	case !input.IsPremium:
		if existing.FileURL == nil {
			return nil, fmt.Errorf("%w: book file (PDF) is required for free books", models.ErrBadRequest)
		}
	case input.IsPremium && existing.FileURL != nil:
		s.files.Delete(*existing.FileURL)
		fileURL = nil
	}

	book := inputToModel(input)
	book.CoverImageURL = coverURL
	book.FileURL = fileURL

	updatedBook, err := s.repo.Update(ctx, id, book)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to update book", slog.Int64("book_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("book updated", slog.Int64("book_id", id))

	return bookModelToResponse(updatedBook), nil
}

// DeleteBook removes the book and its stored files.
func (s *BookService) DeleteBook(ctx context.Context, id int64) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to get book", slog.Int64("book_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete book", slog.Int64("book_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.files.Delete(existing.CoverImageURL)
	if existing.FileURL != nil {
		s.files.Delete(*existing.FileURL)
	}

	s.logger.Info("book deleted", slog.Int64("book_id", id))
	return nil
}

// ResolveDownload checks download entitlement and resolves the file on
// disk. Premium books stop here with ErrPurchaseRequired: the purchase
// flow is an outbound stub, not implemented.
func (s *BookService) ResolveDownload(ctx context.Context, id int64) (filePath, downloadName string, err error) {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", "", models.ErrNotFound
		}
		s.logger.Error("failed to get book", slog.Int64("book_id", id), slog.Any("error", err))
		return "", "", models.ErrInternalServer
	}

	if !book.Downloadable() {
		return "", "", models.ErrNotFound
	}

	if book.IsPremium {
		return "", "", models.ErrPurchaseRequired
	}

	path, err := s.files.AbsPath(*book.FileURL)
	if err != nil || !s.files.Exists(*book.FileURL) {
		s.logger.Error("book file missing on disk",
			slog.Int64("book_id", id), slog.String("file_url", *book.FileURL))
		return "", "", models.ErrNotFound
	}

	return path, book.Title + filepath.Ext(path), nil
}

func inputToModel(input *BookInput) *models.Book {
	book := &models.Book{
		Title:       input.Title,
		Author:      input.Author,
		Description: input.Description,
		Category:    input.Category,
		Pages:       input.Pages,
		Price:       input.Price,
		IsPremium:   input.IsPremium,
	}
	if input.ISBN != "" {
		isbn := input.ISBN
		book.ISBN = &isbn
	}
	return book
}

func bookModelToResponse(book *models.Book) *BookResponse {
	return &BookResponse{
		ID:              book.ID,
		Title:           book.Title,
		Author:          book.Author,
		Description:     book.Description,
		Category:        book.Category,
		Pages:           book.Pages,
		Price:           book.Price,
		ISBN:            book.ISBN,
		IsPremium:       book.IsPremium,
		CoverImageURL:   book.CoverImageURL,
		FileURL:         book.FileURL,
		PublicationDate: book.PublicationDate,
		CreatedAt:       book.CreatedAt.Format(time.RFC3339),
	}
}
