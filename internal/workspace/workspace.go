// Package workspace owns the temporary state a restore run leaves on disk
// and guarantees it is removed again, whatever the outcome of the run.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Workspace is the scratch area for a single restore run. The directory
// itself is only created on first use, so runs that never stage anything
// leave no trace. Additional paths produced by the run (such as archive
// extraction directories) can be registered for removal via Track.
type Workspace struct {
	dir     string
	created bool
	tracked []string
	logger  *zap.Logger
}

// New prepares a workspace under root without touching the filesystem.
// Callers must defer Release immediately so cleanup is registered before
// any step that can fail.
func New(root string, logger *zap.Logger) *Workspace {
	if root == "" {
		root = filepath.Join(os.TempDir(), "siteport")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workspace{
		dir:    filepath.Join(root, "restore-"+uuid.New().String()),
		logger: logger,
	}
}

// Dir returns the workspace directory, creating it on first call.
func (w *Workspace) Dir() (string, error) {
	if !w.created {
		if err := os.MkdirAll(w.dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create workspace %s: %w", w.dir, err)
		}
		w.created = true
	}
	return w.dir, nil
}

// Track registers a path outside the workspace directory for removal
// when the workspace is released.
func (w *Workspace) Track(path string) {
	if path == "" {
		return
	}
	w.tracked = append(w.tracked, path)
}

// Release removes all tracked paths and the workspace directory.
// Failures are logged and never escalated so they cannot mask the
// outcome of the restore itself.
func (w *Workspace) Release() {
	for _, path := range w.tracked {
		if err := os.RemoveAll(path); err != nil {
			w.logger.Warn("failed to remove tracked path",
				zap.String("path", path),
				zap.Error(err))
		}
	}
	w.tracked = nil

	if !w.created {
		return
	}
	if err := os.RemoveAll(w.dir); err != nil {
		w.logger.Warn("failed to remove workspace",
			zap.String("dir", w.dir),
			zap.Error(err))
		return
	}
	w.created = false
}
