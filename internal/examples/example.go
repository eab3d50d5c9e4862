// Package examples holds the user-curated corpus of style examples that guide
// translation. The corpus is an explicit state object (Collection) backed by
// an injected Store; nothing here is process-global.
package examples

import (
	"fmt"
	"strings"

	"github.com/alnah/go-formalize/internal/align"
)

// Example is one verbal Cantonese sentence and its formal Traditional Chinese
// rendering. JSON field names match the corpus files written by earlier
// versions of the tool.
type Example struct {
	Cantonese          string `json:"cantonese"`
	TraditionalChinese string `json:"traditionalChinese"`
}

// New returns a validated example with both sides trimmed.
func New(cantonese, traditionalChinese string) (Example, error) {
	ex := Example{
		Cantonese:          strings.TrimSpace(cantonese),
		TraditionalChinese: strings.TrimSpace(traditionalChinese),
	}
	if err := ex.Validate(); err != nil {
		return Example{}, err
	}
	return ex, nil
}

// Validate returns ErrInvalidExample if either side is blank.
func (e Example) Validate() error {
	if strings.TrimSpace(e.Cantonese) == "" || strings.TrimSpace(e.TraditionalChinese) == "" {
		return ErrInvalidExample
	}
	return nil
}

// FromPair converts a translated pair into an example.
// Returns ErrPlaceholderPair if the pair has no real translation.
func FromPair(p align.Pair) (Example, error) {
	if !p.HasTranslation() {
		return Example{}, fmt.Errorf("pair %q: %w", p.ID, ErrPlaceholderPair)
	}
	ex, err := New(p.Original, p.Translated)
	if err != nil {
		return Example{}, fmt.Errorf("pair %q: %w", p.ID, err)
	}
	return ex, nil
}
