package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focus_group_generator/config"
	"focus_group_generator/generator"
	"focus_group_generator/provider"
)

var (
	googleKey    = "AIza" + strings.Repeat("c", 35)
	anthropicKey = "sk-ant-" + strings.Repeat("b", 40)
)

const mumbaiStudy = `{
  "participants": 8, "male": 4, "female": 4,
  "age_range": "25-40", "demographics": "Urban professionals",
  "topic": "Electric Vehicle Adoption",
  "objective": "Understand purchase barriers",
  "duration": 60, "location": "Mumbai, India",
  "discussion_type": "offline",
  "languages": ["hindi", "English"]
}`

type fakeClient struct {
	mu      sync.Mutex
	text    string
	err     error
	prompts []string
}

func (f *fakeClient) Complete(_ context.Context, req provider.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, req.Prompt)
	return f.text, f.err
}

func (f *fakeClient) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

func newTestServer(t *testing.T, clients map[provider.Kind]*fakeClient) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts := []provider.Option{provider.WithLogger(logger)}
	for id, c := range clients {
		opts = append(opts, provider.WithFactory(id, func(provider.ClientOptions) (provider.Client, error) {
			return c, nil
		}))
	}
	srv, err := New(config.Default(), provider.NewGateway(opts...), nil, logger)
	require.NoError(t, err)
	return srv.Routes()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func createSession(t *testing.T, h http.Handler, extra string) generator.SessionView {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/sessions", `{"study": `+mumbaiStudy+extra+`}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[generator.SessionView](t, rec)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, provider.NewGateway(), nil, nil)
	assert.Error(t, err)
	_, err = New(config.Default(), nil, nil, nil)
	assert.Error(t, err)
}

func TestProviders(t *testing.T) {
	h := newTestServer(t, nil)
	rec := do(t, h, http.MethodGet, "/api/providers", "")
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[[]providerView](t, rec)
	require.Len(t, got, 5)
	assert.Equal(t, provider.OpenAI, got[0].ID)
	assert.Equal(t, 3500, got[0].RateLimit.RequestsPerMinute)
	assert.True(t, got[2].BestForIndic)
}

func TestRecommend(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(t, h, http.MethodPost, "/api/recommend", `{"languages": ["Hindi", "English"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[recommendResp](t, rec)
	assert.Equal(t, provider.Google, got.Recommended)
	require.Len(t, got.Coverage, 5)
	assert.Equal(t, coverage{Provider: provider.OpenAI, Supported: 2, Total: 2}, got.Coverage[0])

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/recommend", `{"languages": []}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/recommend", `{"langs": ["French"]}`).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodGet, "/api/recommend", "").Code)
}

func TestSessionFlow(t *testing.T) {
	google := &fakeClient{text: "MODERATOR: Welcome everyone, please begin.\nP1: I think the price is high yaar.\nMODERATOR: Thank you all."}
	h := newTestServer(t, map[provider.Kind]*fakeClient{provider.Google: google})

	view := createSession(t, h, "")
	assert.NotEmpty(t, view.ID)
	assert.Equal(t, provider.Google, view.Recommended)
	assert.Equal(t, []string{"Hindi", "English"}, view.Study.Languages)
	assert.Contains(t, view.Prompt, "CULTURAL CONTEXT FOR MUMBAI, INDIA:")

	rec := do(t, h, http.MethodGet, "/api/sessions/"+view.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/sessions/"+view.ID+"/prompt", `{"prompt": "reviewed prompt"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "reviewed prompt", decode[generator.SessionView](t, rec).Prompt)

	rec = do(t, h, http.MethodPost, "/api/sessions/"+view.ID+"/generate", `{"api_key": "`+googleKey+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[generateResp](t, rec)

	assert.Equal(t, "reviewed prompt", google.lastPrompt())
	assert.Equal(t, provider.SourceProvider, got.Source)
	assert.Equal(t, provider.Google, got.Provider)
	assert.Equal(t, "gemini-pro", got.Model)
	assert.Contains(t, got.Transcript, "[00:00] MODERATOR: Welcome everyone")
	assert.Contains(t, got.HTML, "<h1>FOCUS GROUP DISCUSSION TRANSCRIPT</h1>")
	assert.Contains(t, got.HTML, "<strong>[00:00]</strong> MODERATOR: Welcome everyone")
	assert.Equal(t, 8, got.Report.Total)

	rec = do(t, h, http.MethodGet, "/api/sessions/"+view.ID, "")
	final := decode[generator.SessionView](t, rec)
	require.NotNil(t, final.Output)
	assert.Len(t, final.History, 3)
}

func TestSessionCreate_PinnedProvider(t *testing.T) {
	anthropic := &fakeClient{text: "MODERATOR: Welcome."}
	h := newTestServer(t, map[provider.Kind]*fakeClient{provider.Anthropic: anthropic})

	view := createSession(t, h, `, "provider": "Anthropic", "model": "claude-3-haiku-20240307"`)
	assert.Equal(t, provider.Anthropic, view.Provider)

	rec := do(t, h, http.MethodPost, "/api/sessions/"+view.ID+"/generate", `{"api_key": "`+anthropicKey+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[generateResp](t, rec)
	assert.Equal(t, provider.Anthropic, got.Provider)
	assert.Equal(t, "claude-3-haiku-20240307", got.Model)
}

func TestSessionCreate_Invalid(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(t, h, http.MethodPost, "/api/sessions", `{"study": {"participants": 4, "male": 2, "female": 1,
		"topic": "x", "objective": "y", "duration": 30, "location": "Paris", "languages": ["French"]}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	got := decode[errorResp](t, rec)
	require.NotEmpty(t, got.Problems)
	assert.Equal(t, "gender", got.Problems[0].Field)

	rec = do(t, h, http.MethodPost, "/api/sessions", `{"study": {"participants": "eight"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decode[errorResp](t, rec).Problems)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/sessions", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/sessions", `{"study": `+mumbaiStudy+`, "provider": "watson"}`).Code)
}

func TestSession_NotFound(t *testing.T) {
	h := newTestServer(t, nil)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/sessions/nope", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/api/sessions/nope/generate", "").Code)
}

func TestPromptUpdate_Empty(t *testing.T) {
	h := newTestServer(t, nil)
	view := createSession(t, h, "")
	rec := do(t, h, http.MethodPut, "/api/sessions/"+view.ID+"/prompt", `{"prompt": "  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerate_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		client     *fakeClient
		wantStatus int
		wantSource provider.Source
	}{
		{
			name:       "malformed credential",
			body:       `{"provider": "google", "api_key": "not-a-key"}`,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown provider",
			body:       `{"provider": "watson"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "anthropic failure is surfaced",
			body:       `{"provider": "anthropic", "api_key": "` + anthropicKey + `"}`,
			client:     &fakeClient{err: errors.New("connection reset")},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "google failure falls back",
			body:       `{"provider": "google", "api_key": "` + googleKey + `"}`,
			client:     &fakeClient{err: errors.New("connection reset")},
			wantStatus: http.StatusOK,
			wantSource: provider.SourceFallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clients := map[provider.Kind]*fakeClient{}
			if tt.client != nil {
				clients[provider.Google] = tt.client
				clients[provider.Anthropic] = tt.client
			}
			h := newTestServer(t, clients)
			view := createSession(t, h, "")

			rec := do(t, h, http.MethodPost, "/api/sessions/"+view.ID+"/generate", tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantSource != "" {
				got := decode[generateResp](t, rec)
				assert.Equal(t, tt.wantSource, got.Source)
				assert.Contains(t, got.FallbackReason, "connection reset")
				assert.Contains(t, got.Transcript, "Local placeholder")
			}
		})
	}
}

func TestTranscriptMarkdown(t *testing.T) {
	tr := generator.Transcript{
		Header: "FOCUS GROUP DISCUSSION TRANSCRIPT\n\nStudy Information:\n- Topic: EVs\n\n" + generator.HeaderRule,
		Body:   "[00:00] MODERATOR: Hello.\nP1: Hi.",
	}
	md := transcriptMarkdown(tr)
	assert.Equal(t, "# FOCUS GROUP DISCUSSION TRANSCRIPT\n\n\n**Study Information**\n\n- Topic: EVs\n\n---\n\n**[00:00]** MODERATOR: Hello.\n\nP1: Hi.\n\n", md)

	html, err := transcriptHTML(tr)
	require.NoError(t, err)
	assert.Contains(t, html, "<li>Topic: EVs</li>")
	assert.Contains(t, html, "<hr>")
	assert.Contains(t, html, "<p>P1: Hi.</p>")
}
