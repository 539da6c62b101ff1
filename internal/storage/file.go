package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const fallbackDirName = "student_profiles"

// FileStore keeps one JSON document per session in a directory.
type FileStore struct {
	dir    string
	logger *zap.Logger
}

// NewFileStore prepares dir, falling back to a directory under the OS temp dir when dir is not writable.
func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir == "" {
		dir = fallbackDirName
	}

	if err := ensureWritable(dir); err != nil {
		fallback := filepath.Join(os.TempDir(), fallbackDirName)
		logger.Warn("profiles directory is not writable, using temp dir",
			zap.String("dir", dir),
			zap.String("fallback", fallback),
			zap.Error(err),
		)
		if err := ensureWritable(fallback); err != nil {
			return nil, fmt.Errorf("preparing profiles directory %q: %w", fallback, err)
		}
		dir = fallback
	}

	return &FileStore{dir: dir, logger: logger}, nil
}

func ensureWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return err
	}
	name := probe.Name()
	probe.Close()
	return os.Remove(name)
}

// Dir returns the directory documents are written to.
func (s *FileStore) Dir() string {
	return s.dir
}

// Path returns the document path for a session.
func (s *FileStore) Path(sessionID string) string {
	return filepath.Join(s.dir, FileName(sessionID))
}

// FileName is the document file name for a session.
func FileName(sessionID string) string {
	return "student_profile_" + sessionID + ".json"
}

// Save writes the document atomically through a temp file and rename.
func (s *FileStore) Save(_ context.Context, doc *Document) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "student_profile_*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}

	path := s.Path(doc.SessionInfo.SessionID)
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s to %s: %w", tmpName, path, err)
	}

	s.logger.Debug("session document saved", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}

func (s *FileStore) Load(_ context.Context, sessionID string) (*Document, error) {
	data, err := os.ReadFile(s.Path(sessionID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return Decode(data)
}

func (s *FileStore) Delete(_ context.Context, sessionID string) error {
	path := s.Path(sessionID)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
