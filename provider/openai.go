package provider

import (
	"context"
	"errors"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Mistral serves an OpenAI-compatible chat completions API.
const mistralBaseURL = "https://api.mistral.ai/v1/"

// openAIClient implements Client with the official openai-go SDK (chat completions).
// It also backs Mistral through the compatible endpoint.
type openAIClient struct {
	provider Kind
	model    string
	client   openai.Client
}

func newOpenAIClient(cfg ClientOptions) (Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("api key missing")
	}
	if cfg.Model == "" {
		return nil, errors.New("model is required")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	baseURL := cfg.BaseURL
	if baseURL == "" && cfg.Provider == Mistral {
		baseURL = mistralBaseURL
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	return &openAIClient{
		provider: cfg.Provider,
		model:    cfg.Model,
		client:   openai.NewClient(opts...),
	}, nil
}

func (o *openAIClient) Complete(ctx context.Context, req Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxOutput > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxOutput))
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", &MalformedResponseError{Provider: o.provider, Field: "choices"}
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", &MalformedResponseError{Provider: o.provider, Field: "choices.0.message.content"}
	}
	return content, nil
}
