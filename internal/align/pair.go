package align

import (
	"fmt"
	"strings"
)

// Pair is one input sentence and its translation.
// ID is assigned at decode time and never changes; Translated may be edited.
type Pair struct {
	ID         string `json:"id"`
	Original   string `json:"original"`
	Translated string `json:"translated"`
}

// HasTranslation reports whether the pair holds a real translation rather than
// Placeholder.
func (p Pair) HasTranslation() bool {
	return p.Translated != Placeholder
}

// Pairs is the ordered result of a decode.
type Pairs []Pair

// Find returns the pair with the given ID.
func (ps Pairs) Find(id string) (Pair, bool) {
	for _, p := range ps {
		if p.ID == id {
			return p, true
		}
	}
	return Pair{}, false
}

// Edit replaces the translation of the pair with the given ID in place.
// Returns ErrPairNotFound if no pair matches.
func (ps Pairs) Edit(id, translated string) error {
	for i := range ps {
		if ps[i].ID == id {
			ps[i].Translated = translated
			return nil
		}
	}
	return fmt.Errorf("pair %q: %w", id, ErrPairNotFound)
}

// Translated returns the pairs that hold a real translation, in order.
func (ps Pairs) Translated() Pairs {
	var out Pairs
	for _, p := range ps {
		if p.HasTranslation() {
			out = append(out, p)
		}
	}
	return out
}

// JoinedText returns the full translation for copying: translated pairs joined
// by one space. With no pairs at all, it falls back to raw with the markers
// stripped.
func (ps Pairs) JoinedText(raw string) string {
	if len(ps) == 0 {
		return StripMarkers(raw)
	}
	parts := make([]string, 0, len(ps))
	for _, p := range ps.Translated() {
		parts = append(parts, p.Translated)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// Clone returns a copy that can be edited independently.
func (ps Pairs) Clone() Pairs {
	if ps == nil {
		return nil
	}
	out := make(Pairs, len(ps))
	copy(out, ps)
	return out
}
