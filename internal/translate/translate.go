// Package translate calls a large-language-model provider to turn marked
// verbal Cantonese into marked formal Traditional Chinese.
//
// Every provider error is classified into an internal/apierr sentinel at
// this boundary. Translators never retry unless WithMaxRetries is set.
package translate

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-formalize/internal/apierr"
	"github.com/alnah/go-formalize/internal/examples"
	"github.com/alnah/go-formalize/internal/template"
)

// Translator sends marked text and the style corpus to a model and returns
// the model's marked response, trimmed. Blank text returns "" without a call.
type Translator interface {
	Translate(ctx context.Context, markedText string, exs []examples.Example) (string, error)
}

// Defaults shared by every provider.
const (
	defaultTemperature = 0.3
	defaultMaxRetries  = 0
	defaultBaseDelay   = 1 * time.Second
	defaultMaxDelay    = 30 * time.Second
	defaultTimeout     = 2 * time.Minute
)

// settings holds the options common to all translators.
type settings struct {
	model       string
	temperature float32
	maxRetries  int
	baseDelay   time.Duration
	maxDelay    time.Duration
	timeout     time.Duration
	baseURL     string
	prompt      *template.Builder
	logger      *zap.Logger
}

func newSettings(model string, opts []Option) settings {
	s := settings{
		model:       model,
		temperature: defaultTemperature,
		maxRetries:  defaultMaxRetries,
		baseDelay:   defaultBaseDelay,
		maxDelay:    defaultMaxDelay,
		timeout:     defaultTimeout,
		prompt:      template.Default(),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Option configures a translator.
type Option func(*settings)

// WithModel sets the model name. Empty keeps the provider default.
func WithModel(model string) Option {
	return func(s *settings) {
		if model != "" {
			s.model = model
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) Option {
	return func(s *settings) {
		if t >= 0 {
			s.temperature = t
		}
	}
}

// WithMaxRetries sets the number of retries for rate limits, timeouts and
// transport errors. Zero, the default, means a single attempt.
func WithMaxRetries(n int) Option {
	return func(s *settings) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

// WithRetryDelays sets the base and max delays for exponential backoff.
func WithRetryDelays(base, max time.Duration) Option {
	return func(s *settings) {
		if base > 0 {
			s.baseDelay = base
		}
		if max > 0 {
			s.maxDelay = max
		}
	}
}

// WithTimeout bounds each provider call.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithBaseURL points an OpenAI-compatible translator at another endpoint
// (a proxy, or a test server). Ignored by Gemini.
func WithBaseURL(url string) Option {
	return func(s *settings) {
		s.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithPrompt sets the prompt builder.
func WithPrompt(b *template.Builder) Option {
	return func(s *settings) {
		if b != nil {
			s.prompt = b
		}
	}
}

// WithLogger sets the logger for call diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// call runs one prompt through fn with the configured timeout, retries and
// logging. fn must return classified errors.
func (s settings) call(ctx context.Context, provider string, fn func(ctx context.Context) (string, error)) (string, error) {
	backoff := apierr.Backoff{
		Retries: s.maxRetries,
		Base:    s.baseDelay,
		Max:     s.maxDelay,
		OnRetry: func(retry int, delay time.Duration, err error) {
			s.logger.Info("retrying translation",
				zap.String("provider", provider),
				zap.Int("retry", retry),
				zap.Duration("delay", delay),
				zap.Error(err))
		},
	}

	start := time.Now()
	out, err := apierr.Do(ctx, backoff, func(ctx context.Context) (string, error) {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		return fn(callCtx)
	})

	s.logger.Debug("translation call",
		zap.String("provider", provider),
		zap.String("model", s.model),
		zap.Duration("latency", time.Since(start)),
		zap.Int("response_bytes", len(out)),
		zap.Error(err))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
