package examples

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/alnah/go-formalize/internal/align"
)

// Collection is the in-memory example corpus, persisted through a Store.
// Every mutation is saved before it becomes visible; when the save fails the
// previous contents are kept. Safe for concurrent use.
type Collection struct {
	mu     sync.RWMutex
	items  []Example
	store  Store
	logger *zap.Logger
}

// CollectionOption configures a Collection.
type CollectionOption func(*Collection)

// WithLogger sets the logger used for persistence events.
func WithLogger(l *zap.Logger) CollectionOption {
	return func(c *Collection) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCollection loads the corpus from store.
func NewCollection(ctx context.Context, store Store, opts ...CollectionOption) (*Collection, error) {
	c := &Collection{
		store:  store,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.Reload(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload replaces the in-memory corpus with the store contents.
func (c *Collection) Reload(ctx context.Context) error {
	items, err := c.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load examples: %w", err)
	}
	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
	c.logger.Debug("examples loaded", zap.Int("count", len(items)))
	return nil
}

// All returns a copy of the corpus in order.
func (c *Collection) All() []Example {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

// Len returns the number of examples.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Get returns the example at index.
func (c *Collection) Get(index int) (Example, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if index < 0 || index >= len(c.items) {
		return Example{}, fmt.Errorf("index %d: %w", index, ErrIndexOutOfRange)
	}
	return c.items[index], nil
}

// Add appends a validated example.
func (c *Collection) Add(ctx context.Context, ex Example) error {
	ex, err := New(ex.Cantonese, ex.TraditionalChinese)
	if err != nil {
		return err
	}
	return c.mutate(ctx, func(items []Example) ([]Example, error) {
		return append(items, ex), nil
	})
}

// AddPair promotes one translated pair to an example.
// Returns ErrPlaceholderPair if the pair has no real translation.
func (c *Collection) AddPair(ctx context.Context, p align.Pair) error {
	ex, err := FromPair(p)
	if err != nil {
		return err
	}
	return c.mutate(ctx, func(items []Example) ([]Example, error) {
		return append(items, ex), nil
	})
}

// AddPairs promotes every pair holding a real translation, in order, and
// returns how many were added. Placeholder pairs are skipped. When pairs is
// non-empty but none qualifies, ErrPlaceholderPair is returned.
func (c *Collection) AddPairs(ctx context.Context, pairs align.Pairs) (int, error) {
	var add []Example
	for _, p := range pairs {
		ex, err := FromPair(p)
		if err != nil {
			continue
		}
		add = append(add, ex)
	}
	if len(add) == 0 {
		if len(pairs) == 0 {
			return 0, nil
		}
		return 0, ErrPlaceholderPair
	}
	err := c.mutate(ctx, func(items []Example) ([]Example, error) {
		return append(items, add...), nil
	})
	if err != nil {
		return 0, err
	}
	return len(add), nil
}

// Update replaces the example at index.
func (c *Collection) Update(ctx context.Context, index int, ex Example) error {
	ex, err := New(ex.Cantonese, ex.TraditionalChinese)
	if err != nil {
		return err
	}
	return c.mutate(ctx, func(items []Example) ([]Example, error) {
		if index < 0 || index >= len(items) {
			return nil, fmt.Errorf("index %d: %w", index, ErrIndexOutOfRange)
		}
		items[index] = ex
		return items, nil
	})
}

// Delete removes the example at index.
func (c *Collection) Delete(ctx context.Context, index int) error {
	return c.mutate(ctx, func(items []Example) ([]Example, error) {
		if index < 0 || index >= len(items) {
			return nil, fmt.Errorf("index %d: %w", index, ErrIndexOutOfRange)
		}
		return slices.Delete(items, index, index+1), nil
	})
}

// Clear removes every example.
func (c *Collection) Clear(ctx context.Context) error {
	return c.mutate(ctx, func([]Example) ([]Example, error) {
		return []Example{}, nil
	})
}

// Replace swaps the whole corpus, as a CSV import does.
// Every example is validated first; nothing changes if one is invalid.
func (c *Collection) Replace(ctx context.Context, exs []Example) error {
	next := make([]Example, 0, len(exs))
	for i, ex := range exs {
		valid, err := New(ex.Cantonese, ex.TraditionalChinese)
		if err != nil {
			return fmt.Errorf("example %d: %w", i, err)
		}
		next = append(next, valid)
	}
	return c.mutate(ctx, func([]Example) ([]Example, error) {
		return next, nil
	})
}

// Append adds several validated examples at the end.
func (c *Collection) Append(ctx context.Context, exs []Example) error {
	add := make([]Example, 0, len(exs))
	for i, ex := range exs {
		valid, err := New(ex.Cantonese, ex.TraditionalChinese)
		if err != nil {
			return fmt.Errorf("example %d: %w", i, err)
		}
		add = append(add, valid)
	}
	return c.mutate(ctx, func(items []Example) ([]Example, error) {
		return append(items, add...), nil
	})
}

// mutate applies fn to a copy of the corpus, saves the result, and only then
// publishes it.
func (c *Collection) mutate(ctx context.Context, fn func([]Example) ([]Example, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fn(slices.Clone(c.items))
	if err != nil {
		return err
	}
	if err := c.store.Save(ctx, next); err != nil {
		c.logger.Warn("examples not saved", zap.Error(err))
		return fmt.Errorf("save examples: %w", err)
	}
	c.items = next
	c.logger.Debug("examples saved", zap.Int("count", len(next)))
	return nil
}
