package storage

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir(), slog.Default())
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}
	return store
}

func TestNewLocalStore_CreatesSubdirs(t *testing.T) {
	store := newTestStore(t)

	for _, sub := range []string{"covers", "pdfs"} {
		info, err := os.Stat(filepath.Join(store.BaseDir(), sub))
		if err != nil || !info.IsDir() {
			t.Errorf("expected %s subdir to exist", sub)
		}
	}
}

func TestSaveCover(t *testing.T) {
	store := newTestStore(t)

	url, err := store.SaveCover(strings.NewReader("fake image bytes"), "cover.PNG")
	if err != nil {
		t.Fatalf("SaveCover failed: %v", err)
	}

	if !strings.HasPrefix(url, "/uploads/covers/coverImage-") {
		t.Errorf("unexpected url shape: %s", url)
	}
	if !strings.HasSuffix(url, ".png") {
		t.Errorf("expected lowercased extension, got %s", url)
	}
	if !store.Exists(url) {
		t.Error("saved cover should exist on disk")
	}
}

func TestSaveCover_RejectsNonImage(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.SaveCover(strings.NewReader("x"), "malware.exe"); err == nil {
		t.Error("expected non-image extension to be rejected")
	}
}

func TestSaveBookFile(t *testing.T) {
	store := newTestStore(t)

	url, err := store.SaveBookFile(strings.NewReader("%PDF-1.4"), "book.pdf")
	if err != nil {
		t.Fatalf("SaveBookFile failed: %v", err)
	}

	if !strings.HasPrefix(url, "/uploads/pdfs/bookFile-") {
		t.Errorf("unexpected url shape: %s", url)
	}
}

func TestSaveBookFile_RejectsNonPDF(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.SaveBookFile(strings.NewReader("x"), "book.epub"); err == nil {
		t.Error("expected non-pdf extension to be rejected")
	}
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)

	url, err := store.SaveCover(strings.NewReader("bytes"), "cover.jpg")
	if err != nil {
		t.Fatalf("SaveCover failed: %v", err)
	}

	store.Delete(url)
	if store.Exists(url) {
		t.Error("expected file to be gone after Delete")
	}

	// Deleting again must not panic or error
	store.Delete(url)
}

func TestDelete_SkipsExternalURLs(t *testing.T) {
	store := newTestStore(t)
	// Must be a no-op, not an attempt to resolve a local path
	store.Delete("https://images.unsplash.com/photo-123")
	store.Delete("")
}

func TestAbsPath_RejectsTraversal(t *testing.T) {
	store := newTestStore(t)

	for _, url := range []string{
		"/uploads/../etc/passwd",
		"/uploads/covers/../../secret",
		"/etc/passwd",
	} {
		if p, err := store.AbsPath(url); err == nil && !strings.HasPrefix(p, store.BaseDir()) {
			t.Errorf("expected %q to be rejected, resolved to %q", url, p)
		}
	}
}

func TestExists_UnknownURL(t *testing.T) {
	store := newTestStore(t)

	if store.Exists("/uploads/pdfs/bookFile-missing.pdf") {
		t.Error("missing file should not exist")
	}
	if store.Exists("https://example.com/x.pdf") {
		t.Error("external url should not be considered stored")
	}
}
