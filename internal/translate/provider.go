package translate

import (
	"context"
	"fmt"
	"strings"
)

// Provider names a translation backend.
type Provider string

// Supported providers.
const (
	Gemini   Provider = "gemini"
	OpenAI   Provider = "openai"
	DeepSeek Provider = "deepseek"
)

// DefaultProvider is used when no provider is configured.
const DefaultProvider = Gemini

// Environment variables holding provider API keys.
const (
	EnvGeminiAPIKey   = "GEMINI_API_KEY"
	EnvLegacyAPIKey   = "API_KEY"
	EnvOpenAIAPIKey   = "OPENAI_API_KEY"
	EnvDeepSeekAPIKey = "DEEPSEEK_API_KEY"
)

// Providers returns the supported provider names in display order.
func Providers() []Provider {
	return []Provider{Gemini, OpenAI, DeepSeek}
}

// ParseProvider validates a provider name, case-insensitively.
// An empty name selects DefaultProvider.
func ParseProvider(s string) (Provider, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultProvider, nil
	}
	for _, p := range Providers() {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%q (expected gemini, openai or deepseek): %w", s, ErrUnknownProvider)
}

// EnvKeys returns the environment variables checked for the provider's API
// key, in priority order.
func (p Provider) EnvKeys() []string {
	switch p {
	case Gemini:
		return []string{EnvGeminiAPIKey, EnvLegacyAPIKey}
	case OpenAI:
		return []string{EnvOpenAIAPIKey}
	case DeepSeek:
		return []string{EnvDeepSeekAPIKey}
	}
	return nil
}

// APIKey returns the first non-empty API key for the provider.
func (p Provider) APIKey(getenv func(string) string) string {
	for _, k := range p.EnvKeys() {
		if v := strings.TrimSpace(getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

// New returns the translator for p.
// Returns apierr.ErrNotConfigured if apiKey is empty.
func New(ctx context.Context, p Provider, apiKey string, opts ...Option) (Translator, error) {
	var (
		t   Translator
		err error
	)
	switch p {
	case Gemini:
		t, err = NewGemini(ctx, apiKey, opts...)
	case OpenAI:
		t, err = NewOpenAI(apiKey, opts...)
	case DeepSeek:
		t, err = NewDeepSeek(apiKey, opts...)
	default:
		return nil, fmt.Errorf("%q: %w", p, ErrUnknownProvider)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}
