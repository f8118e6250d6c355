package provider

import (
	"context"
	"errors"
	"net/http"
)

const (
	anthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
	// The messages API requires max_tokens.
	anthropicDefaultMaxTokens = 4096
)

// anthropicClient calls the Messages API; text lives at content[0].text.
type anthropicClient struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

func newAnthropicClient(cfg ClientOptions) (Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("api key missing")
	}
	return &anthropicClient{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: baseURLOr(cfg.BaseURL, anthropicBaseURL),
		http:    cfg.HTTPClient,
	}, nil
}

func (a *anthropicClient) Complete(ctx context.Context, req Request) (string, error) {
	maxTokens := req.MaxOutput
	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}
	body, err := buildBody(
		field{"model", a.model},
		field{"max_tokens", maxTokens},
		field{"temperature", req.Temperature},
		field{"messages", []map[string]string{{"role": "user", "content": req.Prompt}}},
	)
	if err != nil {
		return "", err
	}

	data, err := postJSON(ctx, a.http, Anthropic, a.baseURL+"/v1/messages", map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": anthropicVersion,
	}, body)
	if err != nil {
		return "", err
	}
	return extractText(Anthropic, data, "content.0.text")
}
