package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/alnah/go-formalize/internal/apierr"
	"github.com/alnah/go-formalize/internal/examples"
)

const defaultGeminiModel = "gemini-2.5-flash"

// contentGenerator is the part of genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Compile-time interface compliance check.
var _ Translator = (*GeminiTranslator)(nil)

// GeminiTranslator translates through the Gemini API.
type GeminiTranslator struct {
	models contentGenerator
	settings
}

// NewGemini returns a translator backed by Gemini.
// Returns apierr.ErrNotConfigured if apiKey is empty.
func NewGemini(ctx context.Context, apiKey string, opts ...Option) (*GeminiTranslator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini API key not set: %w", apierr.ErrNotConfigured)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiTranslator{
		models:   client.Models,
		settings: newSettings(defaultGeminiModel, opts),
	}, nil
}

// Provider returns the provider name.
func (t *GeminiTranslator) Provider() string {
	return string(Gemini)
}

// Model returns the model name.
func (t *GeminiTranslator) Model() string {
	return t.model
}

// Translate implements Translator.
func (t *GeminiTranslator) Translate(ctx context.Context, markedText string, exs []examples.Example) (string, error) {
	if strings.TrimSpace(markedText) == "" {
		return "", nil
	}
	if t.models == nil {
		return "", fmt.Errorf("gemini client not initialized: %w", apierr.ErrNotConfigured)
	}
	prompt, err := t.prompt.Build(markedText, exs)
	if err != nil {
		return "", err
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(t.temperature),
	}
	return t.call(ctx, string(Gemini), func(ctx context.Context) (string, error) {
		resp, err := t.models.GenerateContent(ctx, t.model, genai.Text(prompt), cfg)
		if err != nil {
			return "", classifyGeminiError(err)
		}
		if resp == nil {
			return "", fmt.Errorf("gemini returned no response: %w", apierr.ErrTransport)
		}
		return resp.Text(), nil
	})
}

// classifyGeminiError maps genai errors to apierr sentinels.
func classifyGeminiError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("gemini request timed out: %w", apierr.ErrTimeout)
	}

	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		apiErr = *apiErrPtr
	default:
		return classifyGeminiMessage(err.Error(), err)
	}

	msg := apiErr.Message
	if msg == "" {
		msg = apiErr.Status
	}
	if isInvalidKeyMessage(msg) {
		return fmt.Errorf("gemini: API key is invalid or not authorized: %w", apierr.ErrAuthFailed)
	}
	switch apiErr.Code {
	case http.StatusTooManyRequests:
		if strings.Contains(strings.ToLower(msg), "quota") {
			return fmt.Errorf("gemini: %s: %w", msg, apierr.ErrQuotaExceeded)
		}
		return fmt.Errorf("gemini: %s: %w", msg, apierr.ErrRateLimit)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("gemini: %s: %w", msg, apierr.ErrAuthFailed)
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return fmt.Errorf("gemini: %s: %w", msg, apierr.ErrTimeout)
	}
	if apiErr.Code >= 400 && apiErr.Code < 500 {
		return fmt.Errorf("gemini: %s: %w: %w", msg, apierr.ErrBadRequest, apierr.ErrTransport)
	}
	return fmt.Errorf("gemini: HTTP %d: %s: %w", apiErr.Code, msg, apierr.ErrTransport)
}

// classifyGeminiMessage classifies untyped errors by their text.
func classifyGeminiMessage(msg string, err error) error {
	switch {
	case isInvalidKeyMessage(msg):
		return fmt.Errorf("gemini: API key is invalid or not authorized: %w", apierr.ErrAuthFailed)
	case strings.Contains(strings.ToLower(msg), "quota"):
		return fmt.Errorf("gemini: %v: %w", err, apierr.ErrQuotaExceeded)
	}
	return fmt.Errorf("gemini: %v: %w", err, apierr.ErrTransport)
}

func isInvalidKeyMessage(msg string) bool {
	return strings.Contains(msg, "API key not valid") || strings.Contains(msg, "API_KEY_INVALID")
}
