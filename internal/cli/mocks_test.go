package cli

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/alnah/go-formalize/internal/config"
	"github.com/alnah/go-formalize/internal/examples"
	"github.com/alnah/go-formalize/internal/translate"
)

// ---------------------------------------------------------------------------
// Mock ConfigLoader
// ---------------------------------------------------------------------------

type mockConfigLoader struct {
	LoadFunc func() (config.Config, error)

	mu        sync.Mutex
	loadCalls int
}

func (m *mockConfigLoader) Load() (config.Config, error) {
	m.mu.Lock()
	m.loadCalls++
	m.mu.Unlock()

	if m.LoadFunc != nil {
		return m.LoadFunc()
	}
	return config.Config{}, nil
}

func (m *mockConfigLoader) LoadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadCalls
}

// ---------------------------------------------------------------------------
// Mock TranslatorFactory + Translator
// ---------------------------------------------------------------------------

type translatorCall struct {
	Provider translate.Provider
	APIKey   string
	Options  int
}

type mockTranslatorFactory struct {
	NewTranslatorFunc func(p translate.Provider, apiKey string) (translate.Translator, error)

	mu         sync.Mutex
	calls      []translatorCall
	translator *mockTranslator
}

func (m *mockTranslatorFactory) NewTranslator(_ context.Context, p translate.Provider, apiKey string, opts ...translate.Option) (translate.Translator, error) {
	m.mu.Lock()
	m.calls = append(m.calls, translatorCall{Provider: p, APIKey: apiKey, Options: len(opts)})
	m.mu.Unlock()

	if m.NewTranslatorFunc != nil {
		return m.NewTranslatorFunc(p, apiKey)
	}
	if m.translator == nil {
		m.translator = &mockTranslator{}
	}
	return m.translator, nil
}

func (m *mockTranslatorFactory) Calls() []translatorCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]translatorCall(nil), m.calls...)
}

// mockTranslator echoes the marked prompt unless TranslateFunc is set.
type mockTranslator struct {
	TranslateFunc func(ctx context.Context, prompt string, exs []examples.Example) (string, error)

	mu       sync.Mutex
	prompts  []string
	examples [][]examples.Example
}

func (m *mockTranslator) Translate(ctx context.Context, prompt string, exs []examples.Example) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.examples = append(m.examples, exs)
	m.mu.Unlock()

	if m.TranslateFunc != nil {
		return m.TranslateFunc(ctx, prompt, exs)
	}
	return prompt, nil
}

func (m *mockTranslator) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// ---------------------------------------------------------------------------
// Mock StoreOpener
// ---------------------------------------------------------------------------

// mockStoreOpener hands out one shared MemoryStore and records the paths.
type mockStoreOpener struct {
	OpenFunc func(path string) (examples.Store, error)

	mu    sync.Mutex
	store *examples.MemoryStore
	paths []string
}

func newMockStoreOpener(initial ...examples.Example) *mockStoreOpener {
	return &mockStoreOpener{store: examples.NewMemoryStore(initial...)}
}

func (m *mockStoreOpener) Open(path string, _ *zap.Logger) (examples.Store, error) {
	m.mu.Lock()
	m.paths = append(m.paths, path)
	m.mu.Unlock()

	if m.OpenFunc != nil {
		return m.OpenFunc(path)
	}
	return m.store, nil
}

func (m *mockStoreOpener) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.paths...)
}

// Saved returns the store contents.
func (m *mockStoreOpener) Saved() []examples.Example {
	exs, _ := m.store.Load(context.Background())
	return exs
}
