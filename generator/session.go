package generator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"focus_group_generator/provider"
)

// Session holds one study through prompt review and generation.
type Session struct {
	mu sync.Mutex

	ID          string
	Study       Study
	Prompt      string
	Template    TemplateKind
	Recommended provider.Kind

	// Provider and Model pin the generation target; empty Provider uses Recommended.
	Provider provider.Kind
	Model    string

	Output  *Output
	History []Turn
}

// NewSession validates the study and composes its initial prompt.
func NewSession(id string, s Study, c *Composer) (*Session, error) {
	if c == nil {
		c = NewComposer(nil)
	}
	s = s.Normalized()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	kind := c.ClassifyTopic(s.Topic)
	sess := &Session{
		ID:          id,
		Study:       s,
		Prompt:      c.ComposeWith(s, BuildTemplate(kind)),
		Template:    kind,
		Recommended: provider.Recommend(s.Languages),
	}
	sess.appendTurn("compose", "prompt composed with "+string(kind)+" template")
	return sess, nil
}

// SetPrompt replaces the prompt with a reviewed version.
func (s *Session) SetPrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return configError("prompt", "must not be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Prompt = prompt
	s.appendTurn("edit", "prompt replaced")
	return nil
}

// Generate runs the agent over the session's current prompt.
func (s *Session) Generate(ctx context.Context, agent *Agent) (Output, error) {
	if agent == nil {
		return Output{}, errors.New("agent is required")
	}
	s.mu.Lock()
	prompt := s.Prompt
	s.mu.Unlock()

	out, err := agent.Run(ctx, s.Study, prompt)
	if err != nil {
		return Output{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Output = &out
	summary := "transcript from " + string(out.Provider)
	if out.IsFallback() {
		summary += " (fallback)"
	}
	s.appendTurn("generate", summary)
	return out, nil
}

// Target returns the provider and model generation should use.
func (s *Session) Target() (provider.Kind, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Provider != "" {
		return s.Provider, s.Model
	}
	return s.Recommended, s.Model
}

// Snapshot returns a copy safe to read while the session is in use.
func (s *Session) Snapshot() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := SessionView{
		ID:          s.ID,
		Study:       s.Study,
		Prompt:      s.Prompt,
		Template:    s.Template,
		Recommended: s.Recommended,
		Provider:    s.Provider,
		Model:       s.Model,
		History:     append([]Turn(nil), s.History...),
	}
	if s.Output != nil {
		out := *s.Output
		v.Output = &out
	}
	return v
}

// SessionView is a point-in-time copy of a Session.
type SessionView struct {
	ID          string        `json:"session_id"`
	Study       Study         `json:"study"`
	Prompt      string        `json:"prompt"`
	Template    TemplateKind  `json:"template"`
	Recommended provider.Kind `json:"recommended_provider"`
	Provider    provider.Kind `json:"provider,omitempty"`
	Model       string        `json:"model,omitempty"`
	Output      *Output       `json:"output,omitempty"`
	History     []Turn        `json:"history"`
}

func (s *Session) appendTurn(action, summary string) {
	s.History = append(s.History, Turn{
		Action:    action,
		Summary:   summary,
		CreatedAt: time.Now(),
	})
}
