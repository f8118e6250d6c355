package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com"

// geminiClient calls generateContent; text lives at candidates[0].content.parts[0].text.
type geminiClient struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

func newGeminiClient(cfg ClientOptions) (Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("api key missing")
	}
	return &geminiClient{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: baseURLOr(cfg.BaseURL, geminiBaseURL),
		http:    cfg.HTTPClient,
	}, nil
}

func (g *geminiClient) Complete(ctx context.Context, req Request) (string, error) {
	fields := []field{
		{"contents", []map[string]any{{
			"role":  "user",
			"parts": []map[string]string{{"text": req.Prompt}},
		}}},
		{"generationConfig.temperature", req.Temperature},
	}
	if req.MaxOutput > 0 {
		fields = append(fields, field{"generationConfig.maxOutputTokens", req.MaxOutput})
	}
	body, err := buildBody(fields...)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
	data, err := postJSON(ctx, g.http, Google, endpoint, map[string]string{
		"x-goog-api-key": g.apiKey,
	}, body)
	if err != nil {
		return "", err
	}
	return extractText(Google, data, "candidates.0.content.parts.0.text")
}
