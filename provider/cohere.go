package provider

import (
	"context"
	"errors"
	"net/http"
)

const cohereBaseURL = "https://api.cohere.ai"

// cohereClient calls the generate endpoint; text lives at generations[0].text.
type cohereClient struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

func newCohereClient(cfg ClientOptions) (Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("api key missing")
	}
	return &cohereClient{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: baseURLOr(cfg.BaseURL, cohereBaseURL),
		http:    cfg.HTTPClient,
	}, nil
}

func (c *cohereClient) Complete(ctx context.Context, req Request) (string, error) {
	fields := []field{
		{"model", c.model},
		{"prompt", req.Prompt},
		{"temperature", req.Temperature},
	}
	if req.MaxOutput > 0 {
		fields = append(fields, field{"max_tokens", req.MaxOutput})
	}
	body, err := buildBody(fields...)
	if err != nil {
		return "", err
	}

	data, err := postJSON(ctx, c.http, Cohere, c.baseURL+"/v1/generate", map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	}, body)
	if err != nil {
		return "", err
	}
	return extractText(Cohere, data, "generations.0.text")
}
