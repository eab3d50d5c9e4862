package cli

import (
	"context"
	"io"
	"net"
	"os"

	"go.uber.org/zap"

	"github.com/alnah/go-formalize/internal/config"
	"github.com/alnah/go-formalize/internal/examples"
	"github.com/alnah/go-formalize/internal/translate"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have sensible defaults via DefaultEnv(). Tests can override
// specific fields using the With* options or by creating a custom Env.
//
// Env must not be nil when passed to command functions. Use DefaultEnv()
// or NewEnv() to create a valid instance.
type Env struct {
	// I/O and environment
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string
	Logger *zap.Logger

	// Factories for domain objects
	ConfigLoader      ConfigLoader
	TranslatorFactory TranslatorFactory
	StoreOpener       StoreOpener
	Listen            func(network, address string) (net.Listener, error)
}

// ConfigLoader loads and provides access to configuration.
type ConfigLoader interface {
	Load() (config.Config, error)
}

// TranslatorFactory creates provider translators.
type TranslatorFactory interface {
	NewTranslator(ctx context.Context, p translate.Provider, apiKey string, opts ...translate.Option) (translate.Translator, error)
}

// StoreOpener opens the example corpus store at a path.
type StoreOpener interface {
	Open(path string, logger *zap.Logger) (examples.Store, error)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdin sets the stdin reader.
func WithStdin(r io.Reader) EnvOption {
	return func(e *Env) {
		e.Stdin = r
	}
}

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *zap.Logger) EnvOption {
	return func(e *Env) {
		if l != nil {
			e.Logger = l
		}
	}
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) {
		e.ConfigLoader = l
	}
}

// WithTranslatorFactory sets the translator factory.
func WithTranslatorFactory(f TranslatorFactory) EnvOption {
	return func(e *Env) {
		e.TranslatorFactory = f
	}
}

// WithStoreOpener sets the store opener.
func WithStoreOpener(o StoreOpener) EnvOption {
	return func(e *Env) {
		e.StoreOpener = o
	}
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdin:             os.Stdin,
		Stdout:            os.Stdout,
		Stderr:            os.Stderr,
		Getenv:            os.Getenv,
		Logger:            zap.NewNop(),
		ConfigLoader:      &defaultConfigLoader{},
		TranslatorFactory: &defaultTranslatorFactory{},
		StoreOpener:       &defaultStoreOpener{},
		Listen:            net.Listen,
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) {
	return config.Load()
}

// defaultTranslatorFactory implements TranslatorFactory using the translate package.
type defaultTranslatorFactory struct{}

func (defaultTranslatorFactory) NewTranslator(ctx context.Context, p translate.Provider, apiKey string, opts ...translate.Option) (translate.Translator, error) {
	return translate.New(ctx, p, apiKey, opts...)
}

// defaultStoreOpener implements StoreOpener using the examples package.
type defaultStoreOpener struct{}

func (defaultStoreOpener) Open(path string, logger *zap.Logger) (examples.Store, error) {
	return examples.Open(path, logger)
}

// Compile-time interface verification.
var (
	_ ConfigLoader      = (*defaultConfigLoader)(nil)
	_ TranslatorFactory = (*defaultTranslatorFactory)(nil)
	_ StoreOpener       = (*defaultStoreOpener)(nil)
)
