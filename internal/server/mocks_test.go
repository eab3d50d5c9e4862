package server_test

import (
	"context"

	"github.com/alnah/go-formalize/internal/align"
	"github.com/alnah/go-formalize/internal/examples"
	"github.com/alnah/go-formalize/internal/formalize"
)

// mockTranslator answers through fn, or echoes every sentence when fn is nil.
type mockTranslator struct {
	fn func(ctx context.Context, text string, exs []examples.Example) (formalize.Result, error)
}

func (m *mockTranslator) Translate(ctx context.Context, text string, exs []examples.Example) (formalize.Result, error) {
	if m.fn != nil {
		return m.fn(ctx, text, exs)
	}
	return echo(text), nil
}

// echo translates each sentence to itself with a "formal:" prefix.
func echo(text string) formalize.Result {
	units, err := align.Prepare(text)
	if err != nil {
		return formalize.Result{}
	}
	codec := align.MarkerCodec{IDs: func(i int) string { return string(rune('a' + i)) }}
	batch := codec.Encode(units)

	raw := ""
	for _, m := range batch.Units {
		raw += m.Marker + " formal:" + m.Text + " "
	}
	return formalize.Result{Units: units, Raw: raw, Pairs: codec.Decode(batch, raw)}
}
