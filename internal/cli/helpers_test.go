package cli

import (
	"bytes"
	"io"
	"net"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/alnah/go-formalize/internal/examples"
	"github.com/alnah/go-formalize/internal/translate"
)

// ---------------------------------------------------------------------------
// syncBuffer - thread-safe bytes.Buffer for concurrent test output
// ---------------------------------------------------------------------------

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Compile-time check that syncBuffer implements io.Writer.
var _ io.Writer = (*syncBuffer)(nil)

// ---------------------------------------------------------------------------
// testMocks - convenience struct for grouping all mocks
// ---------------------------------------------------------------------------

type testMocks struct {
	configLoader *mockConfigLoader
	translator   *mockTranslatorFactory
	stores       *mockStoreOpener
	stdout       *syncBuffer
	stderr       *syncBuffer
}

// testEnvOptions configures a test environment.
type testEnvOptions struct {
	stdin    io.Reader
	getenv   func(string) string
	examples []examples.Example
	listen   func(network, address string) (net.Listener, error)
}

// testEnvOption configures testEnv.
type testEnvOption func(*testEnvOptions)

func withStdin(s string) testEnvOption {
	return func(o *testEnvOptions) { o.stdin = strings.NewReader(s) }
}

func withGetenv(fn func(string) string) testEnvOption {
	return func(o *testEnvOptions) { o.getenv = fn }
}

func withExamples(exs ...examples.Example) testEnvOption {
	return func(o *testEnvOptions) { o.examples = exs }
}

func withListener(ln net.Listener) testEnvOption {
	return func(o *testEnvOptions) {
		o.listen = func(string, string) (net.Listener, error) { return ln, nil }
	}
}

// testEnv creates a test Env with all dependencies mocked.
// Returns the Env and the mocks for assertions.
func testEnv(opts ...testEnvOption) (*Env, *testMocks) {
	options := &testEnvOptions{
		stdin:  strings.NewReader(""),
		getenv: defaultTestEnv,
	}
	for _, opt := range opts {
		opt(options)
	}

	mocks := &testMocks{
		configLoader: &mockConfigLoader{},
		translator:   &mockTranslatorFactory{},
		stores:       newMockStoreOpener(options.examples...),
		stdout:       &syncBuffer{},
		stderr:       &syncBuffer{},
	}

	env := &Env{
		Stdin:             options.stdin,
		Stdout:            mocks.stdout,
		Stderr:            mocks.stderr,
		Getenv:            options.getenv,
		Logger:            zap.NewNop(),
		ConfigLoader:      mocks.configLoader,
		TranslatorFactory: mocks.translator,
		StoreOpener:       mocks.stores,
		Listen:            options.listen,
	}
	if env.Listen == nil {
		env.Listen = net.Listen
	}

	return env, mocks
}

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// staticEnv returns a getenv function that returns values from the given map.
func staticEnv(env map[string]string) func(string) string {
	return func(key string) string {
		return env[key]
	}
}

// defaultTestEnv returns API keys for every provider.
func defaultTestEnv(key string) string {
	switch key {
	case translate.EnvGeminiAPIKey:
		return "test-gemini-key"
	case translate.EnvOpenAIAPIKey:
		return "test-openai-key"
	case translate.EnvDeepSeekAPIKey:
		return "test-deepseek-key"
	default:
		return ""
	}
}

var sampleExample = examples.Example{Cantonese: "食咗飯未？", TraditionalChinese: "用膳了嗎？"}
