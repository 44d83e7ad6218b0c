// Package staging prepares the local files of one publish operation before
// they are copied to the destination.
package staging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	apperrors "github.com/technomancy/scpaste/internal/errors"
	"github.com/technomancy/scpaste/internal/logfields"
)

// Session is the staging directory of a single publish operation. Each
// session gets a unique directory so concurrent pastes never collide.
type Session struct {
	dir string
}

// New creates a fresh staging directory under baseDir, or the system temp
// directory when baseDir is empty.
func New(baseDir string) (*Session, error) {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	dir := filepath.Join(baseDir, fmt.Sprintf("scpaste-%s", uuid.NewString()))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, apperrors.StagingFailed("create staging directory", err)
	}
	slog.Debug("created staging directory", logfields.Path(dir))
	return &Session{dir: dir}, nil
}

// Dir returns the session directory.
func (s *Session) Dir() string {
	return s.dir
}

// WriteFile stages content under a local name and returns its absolute
// path. Local names are chosen by the caller and are independent of the
// published remote names.
func (s *Session) WriteFile(name string, data []byte) (string, error) {
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", apperrors.StagingFailed("stage "+name, err)
	}
	return path, nil
}

// Cleanup removes the staging directory and everything in it.
func (s *Session) Cleanup() error {
	if s.dir == "" {
		return nil
	}
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("failed to clean staging directory: %w", err)
	}
	slog.Debug("cleaned staging directory", logfields.Path(s.dir))
	s.dir = ""
	return nil
}
