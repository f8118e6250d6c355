package generator

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"focus_group_generator/provider"
)

// Generation policy constants.
const (
	WordsPerMinute = 150
	// TokenMultiplier leaves room for speaker labels and timestamps in the output budget.
	TokenMultiplier = 1.5
	Temperature     = 0.7

	MinParticipants = 4
	MaxParticipants = 12
	MinDuration     = 15
	MaxDuration     = 180

	DefaultAgeRange = "25-45"
)

// SupportedLanguages is the fixed set a study may request.
var SupportedLanguages = []string{"English", "Hindi", "Hinglish", "French", "Spanish", "Mandarin", "Arabic", "Portuguese"}

type DiscussionType string

const (
	Online  DiscussionType = "online"
	Offline DiscussionType = "offline"
)

// Study is the configuration of one simulated focus group. Build it once and
// treat it as read-only for the rest of the run.
type Study struct {
	Participants   int            `json:"participants" mapstructure:"participants"`
	Male           int            `json:"male" mapstructure:"male"`
	Female         int            `json:"female" mapstructure:"female"`
	NonBinary      int            `json:"non_binary" mapstructure:"non_binary"`
	AgeRange       string         `json:"age_range" mapstructure:"age_range"`
	Demographics   string         `json:"demographics" mapstructure:"demographics"`
	Topic          string         `json:"topic" mapstructure:"topic"`
	Objective      string         `json:"objective" mapstructure:"objective"`
	Duration       int            `json:"duration" mapstructure:"duration"`
	Location       string         `json:"location" mapstructure:"location"`
	DiscussionType DiscussionType `json:"discussion_type" mapstructure:"discussion_type"`
	Languages      []string       `json:"languages" mapstructure:"languages"`
}

// Normalized returns a copy with defaults applied and language names canonicalised.
func (s Study) Normalized() Study {
	out := s
	out.AgeRange = strings.TrimSpace(out.AgeRange)
	if out.AgeRange == "" {
		out.AgeRange = DefaultAgeRange
	}
	out.DiscussionType = DiscussionType(strings.ToLower(strings.TrimSpace(string(out.DiscussionType))))
	if out.DiscussionType == "" {
		out.DiscussionType = Offline
	}
	out.Topic = strings.TrimSpace(out.Topic)
	out.Objective = strings.TrimSpace(out.Objective)
	out.Location = strings.TrimSpace(out.Location)
	out.Demographics = strings.TrimSpace(out.Demographics)

	out.Languages = make([]string, 0, len(s.Languages))
	for _, l := range s.Languages {
		name := canonicalLanguage(l)
		if name != "" && !slices.Contains(out.Languages, name) {
			out.Languages = append(out.Languages, name)
		}
	}
	return out
}

var titleCaser = cases.Title(language.English)

func canonicalLanguage(name string) string {
	return titleCaser.String(strings.ToLower(strings.TrimSpace(name)))
}

// Validate reports every problem at once, judging the normalized form of s.
// Callers should validate before spending a provider round trip.
func (s Study) Validate() error {
	s = s.Normalized()
	var problems []Problem
	add := func(field, format string, args ...any) {
		problems = append(problems, Problem{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if s.Participants < MinParticipants || s.Participants > MaxParticipants {
		add("participants", "must be between %d and %d, got %d", MinParticipants, MaxParticipants, s.Participants)
	}
	if s.Male < 0 || s.Female < 0 || s.NonBinary < 0 {
		add("gender", "counts must not be negative")
	}
	if total := s.Male + s.Female + s.NonBinary; total != s.Participants {
		add("gender", "counts (%d) don't match total participants (%d)", total, s.Participants)
	}
	if s.Duration < MinDuration || s.Duration > MaxDuration {
		add("duration", "must be between %d and %d minutes, got %d", MinDuration, MaxDuration, s.Duration)
	}
	if strings.TrimSpace(s.Topic) == "" {
		add("topic", "is required")
	}
	if strings.TrimSpace(s.Objective) == "" {
		add("objective", "is required")
	}
	if strings.TrimSpace(s.Location) == "" {
		add("location", "is required")
	}
	switch s.DiscussionType {
	case Online, Offline:
	default:
		add("discussion_type", "must be online or offline, got %q", s.DiscussionType)
	}
	if len(s.Languages) == 0 {
		add("languages", "at least one language is required")
	}
	for _, l := range s.Languages {
		if !slices.Contains(SupportedLanguages, l) {
			add("languages", "%q is not supported", l)
		}
	}

	if len(problems) > 0 {
		return &ConfigurationError{Problems: problems}
	}
	return nil
}

// ExpectedWords is the target transcript length for the study's duration.
func (s Study) ExpectedWords() int { return ExpectedWordCount(s.Duration) }

// ExpectedWordCount converts a duration in minutes to a target word count.
func ExpectedWordCount(minutes int) int { return minutes * WordsPerMinute }

// Phase is one fixed section of the discussion and its share of the word budget.
type Phase struct {
	Name     string
	Fraction float64
}

var Phases = []Phase{
	{Name: "Opening", Fraction: 0.15},
	{Name: "Warm-up", Fraction: 0.10},
	{Name: "Core Discussion", Fraction: 0.65},
	{Name: "Closing", Fraction: 0.10},
}

// PhaseTargets returns round(expected*fraction) for each phase, in Phases order.
func PhaseTargets(expected int) []int {
	out := make([]int, len(Phases))
	for i, p := range Phases {
		out[i] = int(math.Round(float64(expected) * p.Fraction))
	}
	return out
}

// NewGenerationRequest derives the provider request for a composed prompt.
func NewGenerationRequest(s Study, prompt string) provider.Request {
	expected := s.ExpectedWords()
	return provider.Request{
		Prompt:        prompt,
		MaxOutput:     int(math.Ceil(float64(expected) * TokenMultiplier)),
		Temperature:   Temperature,
		ExpectedWords: expected,
	}
}
