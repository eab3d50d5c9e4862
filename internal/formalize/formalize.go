// Package formalize runs the translation pipeline: segment the input, encode
// it with sentence markers, translate, and decode the response into
// sentence pairs.
//
// Long inputs can be split into several requests that run concurrently.
// Markers keep their global numbering across requests; each response is
// decoded against its own chunk and the pairs are concatenated in order.
package formalize

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-formalize/internal/align"
	"github.com/alnah/go-formalize/internal/examples"
	"github.com/alnah/go-formalize/internal/segment"
	"github.com/alnah/go-formalize/internal/translate"
)

// Defaults.
const (
	// DefaultConcurrency bounds parallel requests when input is chunked.
	DefaultConcurrency = 3

	// MaxConcurrency caps WithConcurrency.
	MaxConcurrency = 10
)

// Result is the outcome of one translation.
type Result struct {
	// Units is the segmented input.
	Units []segment.Unit
	// Raw is the model output, chunk responses joined by newlines.
	Raw string
	// Pairs has one entry per unit, in input order.
	Pairs align.Pairs
	// Requests is the number of provider calls made.
	Requests int
}

// Service translates text through a Translator.
// Safe for concurrent use.
type Service struct {
	translator  translate.Translator
	codec       align.Codec
	maxUnits    int
	concurrency int
	onProgress  func(done, total int)
	logger      *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithMaxUnitsPerRequest splits inputs longer than n units into several
// requests. Zero, the default, sends everything in one request.
func WithMaxUnitsPerRequest(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxUnits = n
		}
	}
}

// WithConcurrency sets how many chunk requests may run at once (1..MaxConcurrency).
func WithConcurrency(n int) Option {
	return func(s *Service) {
		s.concurrency = min(max(n, 1), MaxConcurrency)
	}
}

// WithProgress sets a callback invoked after each request completes, with the
// number of completed requests and the total. Calls are serialized.
func WithProgress(fn func(done, total int)) Option {
	return func(s *Service) {
		s.onProgress = fn
	}
}

// WithCodec replaces the marker codec.
func WithCodec(c align.Codec) Option {
	return func(s *Service) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns a Service using t.
func New(t translate.Translator, opts ...Option) *Service {
	s := &Service{
		translator:  t,
		codec:       align.MarkerCodec{},
		concurrency: DefaultConcurrency,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Translate segments text, translates it with exs as style examples, and
// aligns the response to the input sentences.
// Returns align.ErrNothingToTranslate for blank text, before any request.
// Translator errors are returned unchanged, with chunk context when the
// input was split.
func (s *Service) Translate(ctx context.Context, text string, exs []examples.Example) (Result, error) {
	units, err := align.Prepare(text)
	if err != nil {
		return Result{}, err
	}

	batch := s.codec.Encode(units)
	chunks := split(batch, s.maxUnits)
	start := time.Now()

	responses, err := s.translateChunks(ctx, chunks, exs)
	if err != nil {
		return Result{}, err
	}

	// Each response is decoded against its own chunk so text a model left
	// unmarked never spills into a neighbouring chunk's last sentence.
	pairs := make(align.Pairs, 0, len(units))
	for i, chunk := range chunks {
		pairs = append(pairs, s.codec.Decode(chunk, responses[i])...)
	}
	raw := strings.Join(responses, "\n")

	missing := len(pairs) - len(pairs.Translated())
	s.logger.Info("translated",
		zap.Int("units", len(units)),
		zap.Int("requests", len(chunks)),
		zap.Int("missing", missing),
		zap.Duration("elapsed", time.Since(start)))

	return Result{
		Units:    units,
		Raw:      raw,
		Pairs:    pairs,
		Requests: len(chunks),
	}, nil
}

// translateChunks runs one request per chunk and returns responses in
// chunk order. The first failure cancels the remaining requests.
func (s *Service) translateChunks(ctx context.Context, chunks []align.Batch, exs []examples.Example) ([]string, error) {
	total := len(chunks)
	if total == 1 {
		out, err := s.translator.Translate(ctx, chunks[0].Prompt, exs)
		if err != nil {
			return nil, err
		}
		s.progress(1, total)
		return []string{out}, nil
	}

	responses := make([]string, total)
	var (
		mu   sync.Mutex
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := s.translator.Translate(gctx, chunk.Prompt, exs)
			if err != nil {
				return fmt.Errorf("request %d/%d: %w", i+1, total, err)
			}
			responses[i] = out

			mu.Lock()
			done++
			s.progress(done, total)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return responses, nil
}

func (s *Service) progress(done, total int) {
	if s.onProgress != nil {
		s.onProgress(done, total)
	}
}

// split cuts batch into consecutive chunks of at most size units.
// size <= 0 or a batch that already fits yields the batch itself.
func split(batch align.Batch, size int) []align.Batch {
	n := len(batch.Units)
	if size <= 0 || n <= size {
		return []align.Batch{batch}
	}
	chunks := make([]align.Batch, 0, (n+size-1)/size)
	for from := 0; from < n; from += size {
		chunks = append(chunks, batch.Slice(from, min(from+size, n)))
	}
	return chunks
}
