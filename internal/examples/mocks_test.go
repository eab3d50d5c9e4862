package examples_test

import (
	"context"
	"errors"
	"sync"

	"github.com/alnah/go-formalize/internal/examples"
)

var errDiskFull = errors.New("disk full")

// failingStore wraps a MemoryStore and fails Save on demand.
type failingStore struct {
	*examples.MemoryStore

	mu       sync.Mutex
	failSave bool
	saves    int
}

func newFailingStore(initial ...examples.Example) *failingStore {
	return &failingStore{MemoryStore: examples.NewMemoryStore(initial...)}
}

func (f *failingStore) setFail(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSave = v
}

func (f *failingStore) Save(ctx context.Context, exs []examples.Example) error {
	f.mu.Lock()
	f.saves++
	fail := f.failSave
	f.mu.Unlock()
	if fail {
		return errDiskFull
	}
	return f.MemoryStore.Save(ctx, exs)
}
