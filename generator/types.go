package generator

import (
	"time"

	"focus_group_generator/provider"
)

// Output is everything one pipeline run produces.
type Output struct {
	Transcript Transcript      `json:"transcript"`
	Report     QualityReport   `json:"report"`
	Source     provider.Source `json:"source"`
	Provider   provider.Kind   `json:"provider"`
	Model      string          `json:"model"`
	// FallbackReason is the masked provider failure when Source is fallback.
	FallbackReason string `json:"fallback_reason,omitempty"`
}

// IsFallback reports whether the transcript body is the local placeholder.
func (o Output) IsFallback() bool { return o.Source == provider.SourceFallback }

// Turn records one step of a session.
type Turn struct {
	Action    string    `json:"action"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}
