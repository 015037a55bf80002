package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	// defaultMaxTokens bounds the reply budget; channel lines are short.
	defaultMaxTokens = 150

	// samplingTemperature is fixed for persona replies.
	samplingTemperature = 0.8
)

// OpenAIProvider calls an OpenAI-compatible chat completion endpoint.
// A custom base URL supports compatible providers (Together.ai, etc.).
type OpenAIProvider struct {
	client    openai.Client
	model     string
	maxTokens int64
}

// NewOpenAIProvider creates a provider for the given credential, endpoint
// and model. An empty baseURL uses the library default.
func NewOpenAIProvider(apiKey, baseURL, model string) *OpenAIProvider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIProvider{
		client:    openai.NewClient(opts...),
		model:     model,
		maxTokens: defaultMaxTokens,
	}
}

// Complete sends one system+user exchange and returns the trimmed reply text.
func (p *OpenAIProvider) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		MaxTokens:   openai.Int(p.maxTokens),
		Temperature: openai.Float(samplingTemperature),
	})
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion response has no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("completion response is empty")
	}
	return text, nil
}

var _ Completer = (*OpenAIProvider)(nil)
