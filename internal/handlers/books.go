package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/elibrary/backend/internal/models"
	"github.com/elibrary/backend/internal/services"
	pkghttp "github.com/elibrary/backend/pkg/http"
)

// BookServiceInterface defines the interface for catalog business logic
type BookServiceInterface interface {
	ListBooks(ctx context.Context) ([]*services.BookResponse, error)
	GetBook(ctx context.Context, id int64) (*services.BookResponse, error)
	CreateBook(ctx context.Context, input *services.BookInput, cover, pdf *services.Upload) (*services.BookResponse, error)
	UpdateBook(ctx context.Context, id int64, input *services.BookInput, cover, pdf *services.Upload) (*services.BookResponse, error)
	DeleteBook(ctx context.Context, id int64) error
	ResolveDownload(ctx context.Context, id int64) (filePath, downloadName string, err error)
}

// BookHandler handles catalog HTTP requests
type BookHandler struct {
	service        BookServiceInterface
	maxUploadBytes int64
}

// NewBookHandler creates a new BookHandler
func NewBookHandler(service BookServiceInterface, maxUploadBytes int64) *BookHandler {
	return &BookHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

// bookForm carries the validated multipart form fields for create/update
type bookForm struct {
	Title       string  `validate:"required,min=1,max=255"`
	Author      string  `validate:"required,min=1,max=255"`
	Description string  `validate:"required,min=10"`
	Category    string  `validate:"required,min=1,max=100"`
	Pages       int     `validate:"required,gt=0"`
	Price       float64 `validate:"gte=0"`
	ISBN        string  `validate:"omitempty,isbn"`
	IsPremium   bool
}

// ListBooks returns the full catalog, newest first
func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.ListBooks(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to retrieve books")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, books)
}

// GetBook returns a single book by ID
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	book, err := h.service.GetBook(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Book not found")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to retrieve book")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, book)
}

// CreateBook creates a book from a multipart form. The form carries the
// scalar fields plus a coverImage file and, for free books, a bookFile PDF.
func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	form, cover, pdf, ok := h.parseBookForm(w, r)
	if !ok {
		return
	}
	defer closeUploads(cover, pdf)

	book, err := h.service.CreateBook(r.Context(), formToInput(form), cover, pdf)
	if err != nil {
		writeBookServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, book)
}

// UpdateBook replaces a book's fields and optionally its files
func (h *BookHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	form, cover, pdf, ok := h.parseBookForm(w, r)
	if !ok {
		return
	}
	defer closeUploads(cover, pdf)

	book, err := h.service.UpdateBook(r.Context(), id, formToInput(form), cover, pdf)
	if err != nil {
		writeBookServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, book)
}

// DeleteBook removes a book and its stored files
func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteBook(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Book not found")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to delete book")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Book deleted successfully",
	})
}

// DownloadBook streams the book's PDF as an attachment. Premium books are
// refused until a purchase flow exists.
func (h *BookHandler) DownloadBook(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	filePath, downloadName, err := h.service.ResolveDownload(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrPurchaseRequired):
			pkghttp.WriteForbidden(w, "This is a premium book. Please purchase it to download.")
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Book file not found or not available for download")
		default:
			pkghttp.WriteInternalError(w, "Could not download the book")
		}
		return
	}

	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", downloadName))
	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, filePath)
}

// parseBookForm reads the multipart body, validates the scalar fields and
// extracts the optional coverImage/bookFile parts. It writes the error
// response itself when parsing fails.
func (h *BookHandler) parseBookForm(w http.ResponseWriter, r *http.Request) (*bookForm, *services.Upload, *services.Upload, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			pkghttp.WriteError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "Upload exceeds the size limit")
			return nil, nil, nil, false
		}
		pkghttp.WriteBadRequest(w, "Invalid multipart form")
		return nil, nil, nil, false
	}

	form := &bookForm{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Author:      strings.TrimSpace(r.FormValue("author")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Category:    strings.TrimSpace(r.FormValue("category")),
		ISBN:        strings.TrimSpace(r.FormValue("isbn")),
		IsPremium:   r.FormValue("is_premium") == "true",
	}

	var fieldErrors []pkghttp.FieldError
	pages, err := strconv.Atoi(r.FormValue("pages"))
	if err != nil {
		fieldErrors = append(fieldErrors, pkghttp.FieldError{Field: "pages", Message: "must be a whole number"})
	}
	form.Pages = pages

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil {
		fieldErrors = append(fieldErrors, pkghttp.FieldError{Field: "price", Message: "must be a number"})
	}
	form.Price = price

	fieldErrors = append(fieldErrors, ValidateRequest(form)...)
	if len(fieldErrors) > 0 {
		pkghttp.WriteValidationError(w, fieldErrors)
		return nil, nil, nil, false
	}

	return form, openFormUpload(r, "coverImage"), openFormUpload(r, "bookFile"), true
}

// openFormUpload returns the named file part as an upload, or nil if absent
func openFormUpload(r *http.Request, field string) *services.Upload {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil
	}
	return &services.Upload{Reader: file, Filename: header.Filename}
}

func closeUploads(uploads ...*services.Upload) {
	for _, u := range uploads {
		if u == nil {
			continue
		}
		if closer, ok := u.Reader.(io.Closer); ok {
			closer.Close()
		}
	}
}

func formToInput(form *bookForm) *services.BookInput {
	return &services.BookInput{
		Title:       form.Title,
		Author:      form.Author,
		Description: form.Description,
		Category:    form.Category,
		Pages:       form.Pages,
		Price:       form.Price,
		ISBN:        form.ISBN,
		IsPremium:   form.IsPremium,
	}
}

func writeBookServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Book not found")
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, err.Error())
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}
