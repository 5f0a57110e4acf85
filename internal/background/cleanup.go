package background

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/elibrary/backend/internal/storage"
)

// FileURLLister reports every upload URL still referenced by the catalog.
type FileURLLister interface {
	ListFileURLs(ctx context.Context) ([]string, error)
}

// CleanupManager periodically removes upload files that no book references
// anymore. Files appear unreferenced mid-upload too, so only files older
// than minAge are eligible.
type CleanupManager struct {
	books    FileURLLister
	store    *storage.LocalStore
	logger   *slog.Logger
	interval time.Duration
	minAge   time.Duration
	stopCh   chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(
	books FileURLLister,
	store *storage.LocalStore,
	logger *slog.Logger,
	interval, minAge time.Duration,
) *CleanupManager {
	return &CleanupManager{
		books:    books,
		store:    store,
		logger:   logger,
		interval: interval,
		minAge:   minAge,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

// runCleanup deletes stale unreferenced files under the upload directory
func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	urls, err := cm.books.ListFileURLs(cleanupCtx)
	if err != nil {
		cm.logger.Error("failed to list referenced upload files", slog.Any("error", err))
		return
	}

	referenced := make(map[string]struct{}, len(urls))
	for _, url := range urls {
		referenced[url] = struct{}{}
	}

	removed := cm.sweep(referenced)
	if removed > 0 {
		cm.logger.Info("orphaned upload cleanup completed", slog.Int("files_removed", removed))
	}
}

func (cm *CleanupManager) sweep(referenced map[string]struct{}) int {
	removed := 0
	cutoff := time.Now().Add(-cm.minAge)
	baseDir := cm.store.BaseDir()

	filepath.WalkDir(baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(baseDir, path)
		if err != nil {
			return nil
		}
		url := storage.URLPrefix + "/" + strings.ReplaceAll(rel, string(filepath.Separator), "/")
		if _, ok := referenced[url]; ok {
			return nil
		}

		info, err := d.Info()
		if err != nil || info.ModTime().After(cutoff) {
			return nil
		}

		if err := os.Remove(path); err != nil {
			cm.logger.Error("failed to remove orphaned file",
				slog.String("path", path), slog.Any("error", err))
			return nil
		}
		cm.logger.Info("removed orphaned upload", slog.String("url", url))
		removed++
		return nil
	})

	return removed
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
