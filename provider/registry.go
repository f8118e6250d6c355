package provider

import (
	"fmt"
	"strings"
)

// Kind identifies a text-generation provider.
type Kind string

const (
	OpenAI    Kind = "openai"
	Anthropic Kind = "anthropic"
	Google    Kind = "google"
	Cohere    Kind = "cohere"
	Mistral   Kind = "mistral"
)

// DefaultKind is the general-purpose provider used when no language rule applies.
const DefaultKind = OpenAI

// Descriptor is the static catalogue entry for one provider.
type Descriptor struct {
	ID        Kind     `json:"id"`
	Name      string   `json:"name"`
	Models    []string `json:"models"`
	Languages []string `json:"languages"`
	Strengths []string `json:"strengths"`
	// CostPer1K is the approximate cost range per 1000 generated words.
	CostPer1K string `json:"cost_per_1k"`

	BestForIndic  bool `json:"best_for_indic,omitempty"`
	BestForFrench bool `json:"best_for_french,omitempty"`
	// FallbackEligible providers get a local stub transcript instead of an error
	// when the call fails or returns unusable data.
	FallbackEligible bool `json:"fallback_eligible,omitempty"`
}

// DefaultModel returns the first listed model.
func (d Descriptor) DefaultModel() string {
	if len(d.Models) == 0 {
		return ""
	}
	return d.Models[0]
}

// RateLimit is descriptive metadata; the gateway never throttles.
type RateLimit struct {
	RequestsPerMinute int `json:"requests_per_minute"`
	TokensPerMinute   int `json:"tokens_per_minute"`
}

var catalogue = []Descriptor{
	{
		ID:        OpenAI,
		Name:      "OpenAI",
		Models:    []string{"gpt-4-turbo", "gpt-4", "gpt-3.5-turbo"},
		Languages: []string{"English", "Hindi", "Hinglish", "French", "Spanish", "Mandarin", "Arabic"},
		Strengths: []string{"Best overall performance", "Superior English & Hinglish", "Realistic character development"},
		CostPer1K: "$0.03-0.06",
	},
	{
		ID:        Anthropic,
		Name:      "Anthropic Claude",
		Models:    []string{"claude-3-opus-20240229", "claude-3-sonnet-20240229", "claude-3-haiku-20240307"},
		Languages: []string{"English", "French", "Spanish", "Portuguese"},
		Strengths: []string{"Best at following complex prompts", "Superior consistency", "Excellent character traits"},
		CostPer1K: "$0.015-0.075",
	},
	{
		ID:               Google,
		Name:             "Google AI (Gemini)",
		Models:           []string{"gemini-pro", "gemini-pro-vision"},
		Languages:        []string{"English", "Hindi", "Hinglish", "French", "Spanish", "Mandarin", "Arabic", "Portuguese"},
		Strengths:        []string{"Best for Hindi & Indian languages", "Strong cultural context", "Excellent regional dialects"},
		CostPer1K:        "$0.0005-0.002",
		BestForIndic:     true,
		FallbackEligible: true,
	},
	{
		ID:               Cohere,
		Name:             "Cohere",
		Models:           []string{"command", "command-light"},
		Languages:        []string{"English", "French", "Spanish"},
		Strengths:        []string{"Best conversation coherence", "Excellent for business scenarios", "Strong logical flow"},
		CostPer1K:        "$0.015-0.025",
		FallbackEligible: true,
	},
	{
		ID:               Mistral,
		Name:             "Mistral AI",
		Models:           []string{"mistral-large-latest", "mistral-medium-latest", "mistral-small-latest"},
		Languages:        []string{"English", "French", "Spanish", "Portuguese"},
		Strengths:        []string{"Best for French language", "Superior European cultural nuances", "French-speaking regions"},
		CostPer1K:        "$0.0002-0.006",
		BestForFrench:    true,
		FallbackEligible: true,
	},
}

var rateLimits = map[Kind]RateLimit{
	OpenAI:    {RequestsPerMinute: 3500, TokensPerMinute: 90000},
	Anthropic: {RequestsPerMinute: 5000, TokensPerMinute: 100000},
	Google:    {RequestsPerMinute: 60, TokensPerMinute: 32000},
	Cohere:    {RequestsPerMinute: 1000, TokensPerMinute: 40000},
	Mistral:   {RequestsPerMinute: 1000, TokensPerMinute: 30000},
}

// List returns the catalogue in its fixed order. The slice is a copy.
func List() []Descriptor {
	out := make([]Descriptor, len(catalogue))
	copy(out, catalogue)
	return out
}

// Lookup returns the descriptor for id.
func Lookup(id Kind) (Descriptor, bool) {
	for _, d := range catalogue {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}

// ParseKind maps a user-supplied name onto a known provider.
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := Lookup(k); !ok {
		return "", &UnknownProviderError{Name: name}
	}
	return k, nil
}

// RateLimitFor returns the published limits for id.
func RateLimitFor(id Kind) (RateLimit, bool) {
	rl, ok := rateLimits[id]
	return rl, ok
}

// Recommend picks a provider for the requested languages. Indic languages win over
// everything else, then a French-only request, then the default provider.
func Recommend(languages []string) Kind {
	for _, l := range languages {
		switch strings.ToLower(strings.TrimSpace(l)) {
		case "hindi", "hinglish":
			return flagged(func(d Descriptor) bool { return d.BestForIndic })
		}
	}
	if len(languages) == 1 && strings.EqualFold(strings.TrimSpace(languages[0]), "french") {
		return flagged(func(d Descriptor) bool { return d.BestForFrench })
	}
	return DefaultKind
}

func flagged(match func(Descriptor) bool) Kind {
	for _, d := range catalogue {
		if match(d) {
			return d.ID
		}
	}
	return DefaultKind
}

// LanguageCoverage reports how many of the requested languages id supports.
func LanguageCoverage(id Kind, languages []string) (supported, total int) {
	total = len(languages)
	d, ok := Lookup(id)
	if !ok {
		return 0, total
	}
	for _, want := range languages {
		for _, have := range d.Languages {
			if strings.EqualFold(want, have) {
				supported++
				break
			}
		}
	}
	return supported, total
}

// UnknownProviderError is returned for provider names outside the catalogue.
type UnknownProviderError struct {
	Name string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("provider %q not supported", e.Name)
}
