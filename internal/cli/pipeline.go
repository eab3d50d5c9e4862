package cli

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/alnah/go-formalize/internal/config"
	"github.com/alnah/go-formalize/internal/examples"
	"github.com/alnah/go-formalize/internal/formalize"
	"github.com/alnah/go-formalize/internal/template"
	"github.com/alnah/go-formalize/internal/translate"
)

// pipelineOptions are the flags shared by translate and serve.
type pipelineOptions struct {
	provider    string
	model       string
	chunk       int
	concurrency int
	retries     int
	promptFile  string
}

// validate checks numeric ranges at the CLI boundary.
func (o pipelineOptions) validate() error {
	if o.chunk < 0 {
		return fmt.Errorf("--chunk must be >= 0, got %d: %w", o.chunk, ErrInvalidFlag)
	}
	if o.concurrency < 1 || o.concurrency > formalize.MaxConcurrency {
		return fmt.Errorf("--concurrency must be between 1 and %d, got %d: %w",
			formalize.MaxConcurrency, o.concurrency, ErrInvalidFlag)
	}
	if o.retries < 0 {
		return fmt.Errorf("--retries must be >= 0, got %d: %w", o.retries, ErrInvalidFlag)
	}
	return nil
}

// loadConfig loads the config file, warning instead of failing.
func loadConfig(env *Env) config.Config {
	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to load config: %v\n", err)
	}
	return cfg
}

// openCollection opens the corpus at the flag path, the configured path, or
// the default data location. The returned close function releases the store.
func openCollection(ctx context.Context, env *Env, flagPath, configured string) (*examples.Collection, string, func(), error) {
	p := flagPath
	if p == "" {
		p = configured
	}
	p, err := config.ResolveExamplesPath(p)
	if err != nil {
		return nil, "", nil, err
	}

	store, err := env.StoreOpener.Open(p, env.Logger)
	if err != nil {
		return nil, "", nil, err
	}
	closeFn := func() {
		if err := store.Close(); err != nil {
			env.Logger.Warn("close examples store", zap.Error(err))
		}
	}

	coll, err := examples.NewCollection(ctx, store, examples.WithLogger(env.Logger))
	if err != nil {
		closeFn()
		return nil, "", nil, err
	}
	return coll, p, closeFn, nil
}

// newService builds the translator for the resolved provider and wraps it in
// a formalize.Service. progress may be nil.
func newService(ctx context.Context, env *Env, cfg config.Config, opts pipelineOptions, progress io.Writer) (*formalize.Service, translate.Provider, error) {
	provider, err := resolveProvider(opts.provider, cfg.Provider)
	if err != nil {
		return nil, "", err
	}
	apiKey, err := resolveAPIKey(env, provider)
	if err != nil {
		return nil, "", err
	}

	promptFile := opts.promptFile
	if promptFile == "" {
		promptFile = config.ExpandPath(cfg.PromptFile)
	}
	prompt, err := template.Load(promptFile)
	if err != nil {
		return nil, "", err
	}

	model := opts.model
	if model == "" {
		model = cfg.Model
	}

	trOpts := []translate.Option{
		translate.WithMaxRetries(opts.retries),
		translate.WithPrompt(prompt),
		translate.WithLogger(env.Logger),
	}
	if model != "" {
		trOpts = append(trOpts, translate.WithModel(model))
	}

	tr, err := env.TranslatorFactory.NewTranslator(ctx, provider, apiKey, trOpts...)
	if err != nil {
		return nil, "", err
	}

	svcOpts := []formalize.Option{
		formalize.WithMaxUnitsPerRequest(opts.chunk),
		formalize.WithConcurrency(opts.concurrency),
		formalize.WithLogger(env.Logger),
	}
	if progress != nil {
		svcOpts = append(svcOpts, formalize.WithProgress(progressCallback(progress)))
	}
	return formalize.New(tr, svcOpts...), provider, nil
}
