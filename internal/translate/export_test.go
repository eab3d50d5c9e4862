package translate

import (
	"context"

	"google.golang.org/genai"
)

// Exports for testing. These allow black-box tests to inject dependencies
// without modifying the public API.

// GenerateFunc adapts a function to contentGenerator.
type GenerateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

func (f GenerateFunc) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return f(ctx, model, contents, config)
}

// NewGeminiWithGenerator returns a GeminiTranslator that calls gen instead of
// the network. A nil gen yields an unconfigured translator.
func NewGeminiWithGenerator(gen GenerateFunc, opts ...Option) *GeminiTranslator {
	t := &GeminiTranslator{settings: newSettings(defaultGeminiModel, opts)}
	if gen != nil {
		t.models = gen
	}
	return t
}

// Function exports for unit testing internal logic.
var (
	ClassifyChatError   = classifyChatError
	ClassifyGeminiError = classifyGeminiError
)
