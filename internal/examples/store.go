package examples

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Store loads and saves the whole corpus.
type Store interface {
	Load(ctx context.Context) ([]Example, error)
	Save(ctx context.Context, examples []Example) error
	Close() error
}

// Compile-time interface compliance checks.
var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*FileStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)

// Open returns the store for path: SQLite for .db, .sqlite and .sqlite3
// files, a JSON file otherwise.
func Open(path string, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if IsSQLitePath(path) {
		return OpenSQLite(path)
	}
	return NewFileStore(path, logger), nil
}

// IsSQLitePath reports whether path names a SQLite database by extension.
func IsSQLitePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// MemoryStore keeps the corpus in memory only.
type MemoryStore struct {
	mu       sync.Mutex
	examples []Example
}

// NewMemoryStore returns a store seeded with a copy of initial.
func NewMemoryStore(initial ...Example) *MemoryStore {
	return &MemoryStore{examples: slices.Clone(initial)}
}

// Load implements Store.
func (m *MemoryStore) Load(context.Context) ([]Example, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.examples), nil
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, examples []Example) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.examples = slices.Clone(examples)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error { return nil }
