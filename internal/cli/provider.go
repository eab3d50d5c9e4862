package cli

import (
	"fmt"

	"github.com/alnah/go-formalize/internal/apierr"
	"github.com/alnah/go-formalize/internal/translate"
)

// resolveProvider picks the provider: flag first, then config (which already
// folds in FORMALIZE_PROVIDER), then the default.
func resolveProvider(flag, configured string) (translate.Provider, error) {
	name := flag
	if name == "" {
		name = configured
	}
	return translate.ParseProvider(name)
}

// resolveAPIKey returns the provider API key from the environment.
// Returns apierr.ErrNotConfigured with a hint naming the variable to set.
func resolveAPIKey(env *Env, p translate.Provider) (string, error) {
	if key := p.APIKey(env.Getenv); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("%w: no API key for %s (set it with: export %s=...)",
		apierr.ErrNotConfigured, p, p.EnvKeys()[0])
}
