// Package align implements the sentence-marker protocol used to map a model's
// translation back onto the input sentences.
//
// Each unit is prefixed with a positional marker ([S:1], [S:2], ...) before it
// is sent to the model. The model is asked to start every translated segment
// with the marker of the sentence it translates, repeating a marker when one
// sentence becomes several. Decode groups the response by marker and produces
// exactly one Pair per input unit, in input order.
package align

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alnah/go-formalize/internal/segment"
)

// Placeholder is the translation of a unit whose marker is absent from the
// response.
const Placeholder = "[No translation found for this segment]"

// markerPattern matches a marker and captures its number.
var markerPattern = regexp.MustCompile(`\[S:(\d+)\]`)

// stripPattern matches a marker and the whitespace after it.
var stripPattern = regexp.MustCompile(`\[S:\d+\]\s*`)

// Marker returns the marker token for a 1-indexed position.
func Marker(position int) string {
	return "[S:" + strconv.Itoa(position) + "]"
}

// MarkedUnit is a unit tagged with its marker for one translation request.
type MarkedUnit struct {
	segment.Unit
	Marker string
}

// Prepare validates and segments text for translation.
// Returns ErrNothingToTranslate if text is blank. If segmentation yields no
// units for non-blank text, the whole trimmed text becomes the only unit.
func Prepare(text string) ([]segment.Unit, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrNothingToTranslate
	}
	units := segment.Split(trimmed)
	if len(units) == 0 {
		units = []segment.Unit{{Position: 1, Text: trimmed}}
	}
	return units, nil
}

// Encode tags units with markers by position and builds the prompt text.
// Markers follow slice order, not Unit.Position, so any slice of units is
// numbered 1..n. Zero units yield an empty prompt.
func Encode(units []segment.Unit) ([]MarkedUnit, string) {
	marked := make([]MarkedUnit, len(units))
	for i, u := range units {
		u.Position = i + 1
		marked[i] = MarkedUnit{Unit: u, Marker: Marker(i + 1)}
	}
	return marked, PromptText(marked)
}

// PromptText joins marked units as "<marker> <text>" separated by one space.
func PromptText(marked []MarkedUnit) string {
	var b strings.Builder
	for i, m := range marked {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(m.Marker)
		b.WriteByte(' ')
		b.WriteString(m.Text)
	}
	return b.String()
}

// StripMarkers removes every marker, and the whitespace following it, from s.
func StripMarkers(s string) string {
	return strings.TrimSpace(stripPattern.ReplaceAllString(s, ""))
}

// IDFunc returns the identifier of the pair at index i of a decode call.
type IDFunc func(i int) string

// DecodeOption configures Decode.
type DecodeOption func(*decodeConfig)

type decodeConfig struct {
	newID IDFunc
}

// WithIDFunc sets the pair identifier generator.
func WithIDFunc(fn IDFunc) DecodeOption {
	return func(c *decodeConfig) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// TimeIDs returns an IDFunc deriving identifiers from now and the pair index.
// A random suffix keeps identifiers unique across decode calls made within the
// same millisecond.
func TimeIDs(now time.Time) IDFunc {
	prefix := fmt.Sprintf("%d", now.UnixMilli())
	batch := uuid.NewString()[:8]
	return func(i int) string {
		return fmt.Sprintf("%s-%d-%s", prefix, i, batch)
	}
}

// Segments groups the response text by marker position.
// Text runs from a marker to the next marker or the end of the response and is
// trimmed; empty runs are not recorded. Numbers with a leading zero are not
// canonical markers and are skipped, as are numbers that do not fit an int.
func Segments(response string) map[int][]string {
	groups := make(map[int][]string)
	locs := markerPattern.FindAllStringSubmatchIndex(response, -1)
	for i, loc := range locs {
		end := len(response)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}

		digits := response[loc[2]:loc[3]]
		if len(digits) > 1 && digits[0] == '0' {
			continue
		}
		pos, err := strconv.Atoi(digits)
		if err != nil {
			continue
		}

		text := strings.TrimSpace(response[loc[1]:end])
		if text == "" {
			continue
		}
		groups[pos] = append(groups[pos], text)
	}
	return groups
}

// Decode maps a marked response onto the marked units.
// The result has one pair per unit, in unit order. Segments sharing a marker
// are joined with a single space; units without segments get Placeholder.
// Markers that match no unit are ignored. Decode never fails.
func Decode(response string, marked []MarkedUnit, opts ...DecodeOption) Pairs {
	cfg := decodeConfig{newID: TimeIDs(time.Now())}
	for _, opt := range opts {
		opt(&cfg)
	}

	groups := Segments(response)
	pairs := make(Pairs, len(marked))
	for i, m := range marked {
		translated := Placeholder
		if parts := groups[markerPosition(m)]; len(parts) > 0 {
			translated = strings.Join(parts, " ")
		}
		pairs[i] = Pair{
			ID:         cfg.newID(i),
			Original:   m.Text,
			Translated: translated,
		}
	}
	return pairs
}

// markerPosition returns the number carried by the unit's marker, falling back
// to the unit position when the marker is not canonical.
func markerPosition(m MarkedUnit) int {
	if sub := markerPattern.FindStringSubmatch(m.Marker); sub != nil {
		if n, err := strconv.Atoi(sub[1]); err == nil {
			return n
		}
	}
	return m.Position
}
