package knowledge

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DefaultSourcePath returns the standard knowledgeC.db location for the
// current user. Callers inject the path explicitly; nothing in this package
// reads it ambiently.
func DefaultSourcePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "Library", "Application Support", "Knowledge", "knowledgeC.db")
}

// Snapshot is a private copy of the source database plus its WAL and SHM
// companions, taken so queries never contend with the live writer.
type Snapshot struct {
	dir string

	// DBPath points at the copied primary file inside the snapshot dir.
	DBPath string
}

// CopySnapshot copies srcPath and any "-wal"/"-shm" siblings into a fresh
// temp directory. The caller owns the snapshot and must Close it on every
// exit path. Failures are classified: ErrNotFound when the primary file is
// absent, ErrPermissionDenied when it is unreadable.
func CopySnapshot(srcPath string) (*Snapshot, error) {
	if _, err := os.Stat(srcPath); err != nil {
		return nil, classifyAccessError(srcPath, err)
	}

	dir, err := os.MkdirTemp("", "screenwatch-snapshot-")
	if err != nil {
		return nil, fmt.Errorf("knowledge: create snapshot dir: %w", err)
	}

	dst := filepath.Join(dir, filepath.Base(srcPath))
	if err := copyFile(srcPath, dst); err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}

	for _, suffix := range []string{"-wal", "-shm"} {
		sibling := srcPath + suffix
		if _, statErr := os.Stat(sibling); statErr != nil {
			continue
		}
		if err := copyFile(sibling, dst+suffix); err != nil {
			_ = os.RemoveAll(dir)
			return nil, err
		}
	}

	return &Snapshot{dir: dir, DBPath: dst}, nil
}

// Close removes the snapshot directory. Best effort: partial removal is not
// an error worth surfacing to callers mid-cleanup.
func (s *Snapshot) Close() error {
	if s == nil || s.dir == "" {
		return nil
	}
	err := os.RemoveAll(s.dir)
	s.dir = ""
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("knowledge: remove snapshot dir: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return classifyAccessError(src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("knowledge: create snapshot file %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("knowledge: copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("knowledge: flush snapshot file %s: %w", dst, err)
	}
	return nil
}

func classifyAccessError(path string, err error) error {
	switch {
	case os.IsNotExist(err):
		return fmt.Errorf("knowledge: %w: %s", ErrNotFound, path)
	case os.IsPermission(err):
		return fmt.Errorf("knowledge: %w: %s", ErrPermissionDenied, path)
	default:
		return fmt.Errorf("knowledge: access %s: %w", path, err)
	}
}
