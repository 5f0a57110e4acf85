package storage

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	coversSubdir = "covers"
	pdfsSubdir   = "pdfs"

	// URLPrefix is the public path under which stored files are served.
	URLPrefix = "/uploads"
)

var coverExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// LocalStore persists uploaded book covers and PDFs on local disk and maps
// them to stable /uploads/... URLs.
type LocalStore struct {
	baseDir string
	logger  *slog.Logger
}

func NewLocalStore(baseDir string, logger *slog.Logger) (*LocalStore, error) {
	for _, sub := range []string{coversSubdir, pdfsSubdir} {
		dir := filepath.Join(baseDir, sub)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create upload dir %s: %w", dir, err)
		}
	}

	return &LocalStore{baseDir: baseDir, logger: logger}, nil
}

func (s *LocalStore) BaseDir() string {
	return s.baseDir
}

// SaveCover stores an uploaded cover image and returns its public URL.
// Only common image extensions are accepted.
func (s *LocalStore) SaveCover(src io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !coverExtensions[ext] {
		return "", fmt.Errorf("only image files (jpg, jpeg, png, gif) are allowed for cover image")
	}
	return s.save(src, coversSubdir, "coverImage", ext)
}

// SaveBookFile stores an uploaded book PDF and returns its public URL.
func (s *LocalStore) SaveBookFile(src io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext != ".pdf" {
		return "", fmt.Errorf("only PDF files are allowed for book file")
	}
	return s.save(src, pdfsSubdir, "bookFile", ext)
}

func (s *LocalStore) save(src io.Reader, subdir, prefix, ext string) (string, error) {
	filename := prefix + "-" + uuid.New().String() + ext
	fullPath := filepath.Join(s.baseDir, subdir, filename)

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	return path.Join(URLPrefix, subdir, filename), nil
}

// Delete removes the file behind a stored URL. External http(s) URLs (e.g.
// seeded stock covers) are never touched, and deletion of an already-gone
// file is not an error.
func (s *LocalStore) Delete(url string) {
	if url == "" || strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return
	}

	fullPath, err := s.AbsPath(url)
	if err != nil {
		s.logger.Warn("refusing to delete suspicious upload path", slog.String("url", url))
		return
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to delete upload file",
			slog.String("path", fullPath),
			slog.Any("error", err))
		return
	}

	s.logger.Info("deleted upload file", slog.String("path", fullPath))
}

// AbsPath resolves a stored /uploads/... URL to an absolute filesystem
// path, rejecting anything that escapes the upload dir.
func (s *LocalStore) AbsPath(url string) (string, error) {
	rel, ok := strings.CutPrefix(url, URLPrefix+"/")
	if !ok {
		return "", fmt.Errorf("not an upload url: %s", url)
	}

	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("upload url escapes storage root: %s", url)
	}

	return filepath.Join(s.baseDir, cleaned), nil
}

// Exists reports whether the file behind a stored URL is present on disk.
func (s *LocalStore) Exists(url string) bool {
	fullPath, err := s.AbsPath(url)
	if err != nil {
		return false
	}
	_, err = os.Stat(fullPath)
	return err == nil
}
