package generator

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

const fallbackStatus = "Local placeholder (provider output unavailable)"

// Agent runs the pipeline: validate, compose, generate, post-process, audit.
type Agent struct {
	llm    LLMClient
	tables *Tables
	now    func() time.Time

	composer  *Composer
	processor *PostProcessor
	auditor   *Auditor
	logger    *slog.Logger
}

// AgentOption configures an Agent.
type AgentOption func(*Agent)

// WithTables sets the lookup tables used by every stage.
func WithTables(t *Tables) AgentOption {
	return func(a *Agent) { a.tables = t }
}

// WithClock overrides the header date source.
func WithClock(now func() time.Time) AgentOption {
	return func(a *Agent) { a.now = now }
}

// WithAgentLogger sets the agent logger.
func WithAgentLogger(l *slog.Logger) AgentOption {
	return func(a *Agent) { a.logger = l }
}

func NewAgent(llm LLMClient, opts ...AgentOption) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	a := &Agent{llm: llm, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	a.composer = NewComposer(a.tables)
	a.processor = NewPostProcessor(a.tables)
	if a.now != nil {
		a.processor.now = a.now
	}
	a.auditor = NewAuditor(a.tables)
	return a, nil
}

// Composer returns the agent's prompt composer.
func (a *Agent) Composer() *Composer { return a.composer }

// Run executes one generation. An empty prompt is composed from the study.
// Configuration problems are reported before the provider is called, and a
// failed or cancelled call leaves no partial output.
func (a *Agent) Run(ctx context.Context, s Study, prompt string) (Output, error) {
	s = s.Normalized()
	if err := s.Validate(); err != nil {
		return Output{}, err
	}
	if strings.TrimSpace(prompt) == "" {
		prompt = a.composer.Compose(s)
	}

	req := NewGenerationRequest(s, prompt)
	a.logger.Info("Generating transcript", "topic", s.Topic, "duration", s.Duration, "expected_words", req.ExpectedWords, "max_output", req.MaxOutput)

	res, err := a.llm.Generate(ctx, req)
	if err != nil {
		return Output{}, err
	}

	status := ""
	out := Output{Source: res.Source, Provider: res.Provider, Model: res.Model}
	if res.IsFallback() {
		status = fallbackStatus
		if res.Cause != nil {
			out.FallbackReason = res.Cause.Error()
		}
	}

	out.Transcript = a.processor.Process(res.Text, s, status)
	out.Report = a.auditor.Audit(out.Transcript.Text(), s)
	a.logger.Info("Transcript ready", "provider", res.Provider, "source", res.Source,
		"words", out.Transcript.WordCount, "quality", out.Report.Score)
	return out, nil
}
