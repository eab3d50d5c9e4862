package translate

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/go-formalize/internal/apierr"
	"github.com/alnah/go-formalize/internal/examples"
)

// OpenAI-compatible provider defaults.
const (
	defaultOpenAIModel     = "gpt-4o-mini"
	defaultDeepSeekModel   = "deepseek-chat"
	defaultDeepSeekBaseURL = "https://api.deepseek.com/v1"
)

// chatCompleter is the part of *openai.Client used here.
// Tests inject mocks through it.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Compile-time interface compliance check.
var _ Translator = (*ChatTranslator)(nil)

// ChatTranslator translates through an OpenAI-compatible chat completion API.
// It serves both OpenAI and DeepSeek.
type ChatTranslator struct {
	provider string
	client   chatCompleter
	settings
}

// NewOpenAI returns a translator backed by OpenAI.
// Returns apierr.ErrNotConfigured if apiKey is empty.
func NewOpenAI(apiKey string, opts ...Option) (*ChatTranslator, error) {
	return newChat(string(OpenAI), apiKey, defaultOpenAIModel, "", opts)
}

// NewDeepSeek returns a translator backed by DeepSeek's OpenAI-compatible API.
// Returns apierr.ErrNotConfigured if apiKey is empty.
func NewDeepSeek(apiKey string, opts ...Option) (*ChatTranslator, error) {
	return newChat(string(DeepSeek), apiKey, defaultDeepSeekModel, defaultDeepSeekBaseURL, opts)
}

func newChat(provider, apiKey, model, baseURL string, opts []Option) (*ChatTranslator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%s API key not set: %w", provider, apierr.ErrNotConfigured)
	}
	s := newSettings(model, opts)
	cfg := openai.DefaultConfig(apiKey)
	switch {
	case s.baseURL != "":
		cfg.BaseURL = s.baseURL
	case baseURL != "":
		cfg.BaseURL = baseURL
	}
	return &ChatTranslator{
		provider: provider,
		client:   openai.NewClientWithConfig(cfg),
		settings: s,
	}, nil
}

// Provider returns the provider name.
func (t *ChatTranslator) Provider() string {
	return t.provider
}

// Model returns the model name.
func (t *ChatTranslator) Model() string {
	return t.model
}

// Translate implements Translator.
func (t *ChatTranslator) Translate(ctx context.Context, markedText string, exs []examples.Example) (string, error) {
	if strings.TrimSpace(markedText) == "" {
		return "", nil
	}
	if t.client == nil {
		return "", fmt.Errorf("%s client not initialized: %w", t.provider, apierr.ErrNotConfigured)
	}
	prompt, err := t.prompt.Build(markedText, exs)
	if err != nil {
		return "", err
	}

	req := openai.ChatCompletionRequest{
		Model:       t.model,
		Temperature: t.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	return t.call(ctx, t.provider, func(ctx context.Context) (string, error) {
		resp, err := t.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", classifyChatError(t.provider, err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("%s returned no choices: %w", t.provider, apierr.ErrTransport)
		}
		return resp.Choices[0].Message.Content, nil
	})
}

// classifyChatError maps go-openai errors to apierr sentinels.
func classifyChatError(provider string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s request timed out: %w", provider, apierr.ErrTimeout)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(provider, apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := string(reqErr.Body)
		if msg == "" && reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return classifyStatus(provider, reqErr.HTTPStatusCode, msg)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%s: %v: %w", provider, err, apierr.ErrTimeout)
	}
	return fmt.Errorf("%s: %v: %w", provider, err, apierr.ErrTransport)
}

// classifyStatus maps an HTTP status and provider message to a sentinel.
func classifyStatus(provider string, status int, msg string) error {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		msg = http.StatusText(status)
	}
	lower := strings.ToLower(msg)

	switch status {
	case http.StatusTooManyRequests:
		if strings.Contains(lower, "quota") || strings.Contains(lower, "billing") ||
			strings.Contains(lower, "insufficient") {
			return fmt.Errorf("%s: %s: %w", provider, msg, apierr.ErrQuotaExceeded)
		}
		return fmt.Errorf("%s: %s: %w", provider, msg, apierr.ErrRateLimit)
	case http.StatusPaymentRequired:
		return fmt.Errorf("%s: %s: %w", provider, msg, apierr.ErrQuotaExceeded)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s: %s: %w", provider, msg, apierr.ErrAuthFailed)
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return fmt.Errorf("%s: %s: %w", provider, msg, apierr.ErrTimeout)
	}
	if status >= 400 && status < 500 {
		return fmt.Errorf("%s: %s: %w: %w", provider, msg, apierr.ErrBadRequest, apierr.ErrTransport)
	}
	return fmt.Errorf("%s: HTTP %d: %s: %w", provider, status, msg, apierr.ErrTransport)
}
