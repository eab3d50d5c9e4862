package align

import (
	"time"

	"github.com/alnah/go-formalize/internal/segment"
)

// Batch is an encoded translation request: the marked units and the prompt
// text sent to the model. Offset is the index of Units[0] in the batch it was
// sliced from, so pair identifiers stay distinct across chunks.
type Batch struct {
	Units  []MarkedUnit
	Prompt string
	Offset int
}

// Codec turns units into a prompt and a model response back into pairs.
// MarkerCodec is the text-marker protocol; another protocol (e.g. a JSON
// response schema) can replace it without touching the segmenter.
type Codec interface {
	Encode(units []segment.Unit) Batch
	Decode(b Batch, response string) Pairs
}

// Compile-time interface compliance check.
var _ Codec = MarkerCodec{}

// MarkerCodec implements Codec with [S:n] markers.
type MarkerCodec struct {
	// IDs generates pair identifiers. Nil uses TimeIDs at decode time.
	IDs IDFunc
}

// Encode implements Codec.
func (c MarkerCodec) Encode(units []segment.Unit) Batch {
	marked, prompt := Encode(units)
	return Batch{Units: marked, Prompt: prompt}
}

// Decode implements Codec. Only markers of b's own units are matched.
func (c MarkerCodec) Decode(b Batch, response string) Pairs {
	ids := c.IDs
	if ids == nil {
		ids = TimeIDs(time.Now())
	}
	return Decode(response, b.Units, WithIDFunc(func(i int) string {
		return ids(b.Offset + i)
	}))
}

// Slice returns a batch holding units[from:to] with its own prompt text.
// Markers keep their global numbering so the chunk responses can be decoded
// together.
func (b Batch) Slice(from, to int) Batch {
	units := b.Units[from:to]
	return Batch{Units: units, Prompt: PromptText(units), Offset: b.Offset + from}
}
