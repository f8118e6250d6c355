package provider

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// field is one top-level or nested request body value.
type field struct {
	path  string
	value any
}

func buildBody(fields ...field) ([]byte, error) {
	body := []byte(`{}`)
	var err error
	for _, f := range fields {
		body, err = sjson.SetBytes(body, f.path, f.value)
		if err != nil {
			return nil, err
		}
	}
	return body, nil
}

func postJSON(ctx context.Context, client *http.Client, id Kind, url string, headers map[string]string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, httpError(id, resp.StatusCode, errorMessage(data))
	}
	if !gjson.ValidBytes(data) {
		return nil, &MalformedResponseError{Provider: id, Field: "body"}
	}
	return data, nil
}

// extractText pulls the generated text from path, e.g. "content.0.text".
func extractText(id Kind, body []byte, path string) (string, error) {
	r := gjson.GetBytes(body, path)
	if !r.Exists() || r.Type != gjson.String || strings.TrimSpace(r.String()) == "" {
		return "", &MalformedResponseError{Provider: id, Field: path}
	}
	return r.String(), nil
}

func errorMessage(body []byte) string {
	for _, path := range []string{"error.message", "message", "error"} {
		if r := gjson.GetBytes(body, path); r.Type == gjson.String && r.String() != "" {
			return r.String()
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

func baseURLOr(configured, fallback string) string {
	if configured == "" {
		return fallback
	}
	return strings.TrimRight(configured, "/")
}
