package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Request is one generation call: the composed prompt plus its constraints.
// MaxOutput is unit-agnostic; each variant feeds it to its native limit field.
type Request struct {
	Prompt        string
	MaxOutput     int
	Temperature   float64
	ExpectedWords int
}

// Client is the capability every provider variant implements. Complete returns
// the normalized text or a *MalformedResponseError when the response carries none.
//
//go:generate mockgen -source=gateway.go -destination=mock_client_test.go -package=provider
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ClientOptions carries what a variant needs to build its client.
type ClientOptions struct {
	Provider   Kind
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// Factory builds a Client for one provider.
type Factory func(opts ClientOptions) (Client, error)

var defaultFactories = map[Kind]Factory{
	OpenAI:    newOpenAIClient,
	Mistral:   newOpenAIClient,
	Anthropic: newAnthropicClient,
	Google:    newGeminiClient,
	Cohere:    newCohereClient,
}

// Source tells whether a Result came from the provider or the local stub.
type Source string

const (
	SourceProvider Source = "provider"
	SourceFallback Source = "fallback"
)

// Result is the outcome of a successful Generate call.
type Result struct {
	Text     string
	Source   Source
	Provider Kind
	Model    string
	// Cause is the failure that was masked when Source is SourceFallback.
	Cause error
}

// IsFallback reports whether Text is the local placeholder.
func (r Result) IsFallback() bool { return r.Source == SourceFallback }

// Handle is an initialized, credentialed connection to one provider.
type Handle struct {
	Provider Kind
	Model    string
	client   Client
	fallback bool
}

// Gateway builds provider handles and normalizes their output.
type Gateway struct {
	factories  map[Kind]Factory
	baseURLs   map[Kind]string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithFactory replaces the client constructor for one provider.
func WithFactory(id Kind, f Factory) Option {
	return func(g *Gateway) { g.factories[id] = f }
}

// WithBaseURL points one provider at a different endpoint (proxy, test server).
func WithBaseURL(id Kind, url string) Option {
	return func(g *Gateway) {
		if url != "" {
			g.baseURLs[id] = url
		}
	}
}

// WithHTTPClient sets the HTTP client shared by all variants.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.httpClient = c }
}

// WithLogger sets the gateway logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) { g.logger = l }
}

// NewGateway returns a gateway wired to the real provider variants.
func NewGateway(opts ...Option) *Gateway {
	g := &Gateway{
		factories:  make(map[Kind]Factory, len(defaultFactories)),
		baseURLs:   make(map[Kind]string),
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		logger:     slog.Default(),
	}
	for k, f := range defaultFactories {
		g.factories[k] = f
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Initialize validates the credential shape and constructs the provider client.
// An empty model selects the provider's first catalogued model.
func (g *Gateway) Initialize(id Kind, credential, model string) (*Handle, error) {
	desc, ok := Lookup(id)
	if !ok {
		return nil, &InitError{Provider: id, Err: &UnknownProviderError{Name: string(id)}}
	}
	if err := ValidateCredential(id, credential); err != nil {
		return nil, &InitError{Provider: id, Err: err}
	}
	if model == "" {
		model = desc.DefaultModel()
	}
	if !contains(desc.Models, model) {
		g.logger.Warn("Model not in catalogue, passing through", "provider", id, "model", model)
	}

	factory, ok := g.factories[id]
	if !ok {
		return nil, &InitError{Provider: id, Err: errors.New("no client factory registered")}
	}
	client, err := factory(ClientOptions{
		Provider:   id,
		APIKey:     strings.TrimSpace(credential),
		Model:      model,
		BaseURL:    g.baseURLs[id],
		HTTPClient: g.httpClient,
	})
	if err != nil {
		return nil, &InitError{Provider: id, Err: err}
	}

	g.logger.Info("Provider initialized", "provider", id, "model", model)
	return &Handle{Provider: id, Model: model, client: client, fallback: desc.FallbackEligible}, nil
}

// Generate sends one request through h. Failures and malformed responses from
// fallback-eligible providers come back as a SourceFallback Result; everything
// else is returned as an error. A cancelled context is never masked.
func (g *Gateway) Generate(ctx context.Context, h *Handle, req Request) (Result, error) {
	if h == nil || h.client == nil {
		return Result{}, errors.New("provider handle is not initialized")
	}

	text, err := h.client.Complete(ctx, req)
	if err == nil {
		text = strings.TrimSpace(text)
		if text == "" {
			err = &MalformedResponseError{Provider: h.Provider, Field: "text"}
		}
	}
	if err == nil {
		return Result{Text: text, Source: SourceProvider, Provider: h.Provider, Model: h.Model}, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{}, &GenerationError{Provider: h.Provider, Message: ctxErr.Error(), Err: ctxErr}
	}

	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		var genErr *GenerationError
		if !errors.As(err, &genErr) {
			genErr = &GenerationError{Provider: h.Provider, Message: err.Error(), Err: err}
		}
		err = genErr
	}

	if !h.fallback {
		g.logger.Error("Generation failed", "provider", h.Provider, "error", err)
		return Result{}, err
	}

	g.logger.Warn("Provider output unusable, substituting local stub", "provider", h.Provider, "cause", err)
	return Result{
		Text:     Stub(req),
		Source:   SourceFallback,
		Provider: h.Provider,
		Model:    h.Model,
		Cause:    err,
	}, nil
}

// Bound pairs a gateway with one handle so callers can generate without either.
type Bound struct {
	gateway *Gateway
	handle  *Handle
}

// Bind returns a Bound for h.
func (g *Gateway) Bind(h *Handle) *Bound {
	return &Bound{gateway: g, handle: h}
}

// Generate calls Gateway.Generate with the bound handle.
func (b *Bound) Generate(ctx context.Context, req Request) (Result, error) {
	return b.gateway.Generate(ctx, b.handle, req)
}

// Provider returns the bound provider.
func (b *Bound) Provider() Kind { return b.handle.Provider }

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func httpError(id Kind, status int, msg string) error {
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &GenerationError{Provider: id, Message: fmt.Sprintf("http %d: %s", status, msg)}
}
