package examples

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// FileStore persists the corpus as a JSON array.
//
// A missing file loads as an empty corpus. A file that is not a JSON array of
// examples is logged and also loads as empty, so a corrupted corpus never
// blocks translation; the next save overwrites it.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore returns a JSON store at path.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{path: path, logger: logger}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load implements Store.
func (s *FileStore) Load(ctx context.Context) ([]Example, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Example{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var examples []Example
	if err := json.Unmarshal(data, &examples); err != nil {
		s.logger.Warn("ignoring unreadable examples file",
			zap.String("path", s.path), zap.Error(err))
		return []Example{}, nil
	}
	if examples == nil {
		examples = []Example{}
	}
	return examples, nil
}

// Save implements Store. The file is replaced atomically through a temporary
// file in the same directory.
func (s *FileStore) Save(ctx context.Context, examples []Example) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if examples == nil {
		examples = []Example{}
	}
	data, err := json.MarshalIndent(examples, "", "  ")
	if err != nil {
		return fmt.Errorf("encode examples: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".examples-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write examples: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write examples: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

// Close implements Store.
func (s *FileStore) Close() error { return nil }
