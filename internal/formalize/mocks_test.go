package formalize_test

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/alnah/go-formalize/internal/examples"
)

// mockTranslator records calls and answers through fn.
// A nil fn echoes the prompt back, which keeps every marker.
type mockTranslator struct {
	fn func(ctx context.Context, prompt string) (string, error)

	mu       sync.Mutex
	prompts  []string
	examples [][]examples.Example

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (m *mockTranslator) Translate(ctx context.Context, prompt string, exs []examples.Example) (string, error) {
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		cur := m.maxInFlight.Load()
		if n <= cur || m.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}

	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.examples = append(m.examples, exs)
	m.mu.Unlock()

	if m.fn != nil {
		return m.fn(ctx, prompt)
	}
	return prompt, nil
}

func (m *mockTranslator) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}
