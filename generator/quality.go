package generator

import (
	"regexp"
	"strings"
)

// Probe names, in report order.
const (
	CheckModerator       = "has_moderator"
	CheckParticipants    = "has_participants"
	CheckTimestamps      = "has_timestamps"
	CheckOpening         = "has_opening"
	CheckClosing         = "has_closing"
	CheckLength          = "appropriate_length"
	CheckNaturalFlow     = "natural_flow"
	CheckCulturalMarkers = "cultural_references"
)

var CheckNames = []string{
	CheckModerator, CheckParticipants, CheckTimestamps, CheckOpening,
	CheckClosing, CheckLength, CheckNaturalFlow, CheckCulturalMarkers,
}

var recommendations = map[string]string{
	CheckModerator:       "Add moderator dialogue to guide the discussion",
	CheckParticipants:    "Include more participant responses and interactions",
	CheckTimestamps:      "Add timestamps to show discussion progression",
	CheckOpening:         "Include a proper opening with introductions and ground rules",
	CheckClosing:         "Add a closing section with summary and thanks",
	CheckLength:          "Adjust transcript length to match expected duration",
	CheckNaturalFlow:     "Add more natural speech patterns and hesitations",
	CheckCulturalMarkers: "Include more location-specific cultural references",
}

const (
	edgeWindow     = 500
	minTimestamps  = 3
	minLengthRatio = 0.7
	maxLengthRatio = 1.3
)

var (
	openingKeywords = []string{"welcome", "introduction", "begin", "start", "good morning", "good evening"}
	closingKeywords = []string{"thank you", "conclude", "wrap up", "final thoughts", "end"}
	fillerRe        = wordsRegexp([]string{"umm", "uh", "you know", "like", "actually", "i think", "well"})
	moderatorRe     = regexp.MustCompile(`(?i)\bMODERATOR\b`)
	timestampLineRe = regexp.MustCompile(`^\[\d{1,3}:\d{2}(?::\d{2})?\]`)
)

// QualityReport is derived from a transcript and its study. Recomputing it on
// the same input yields the same report.
type QualityReport struct {
	Score           float64         `json:"quality_score"`
	Passed          int             `json:"passed_checks"`
	Total           int             `json:"total_checks"`
	Checks          map[string]bool `json:"checks"`
	Recommendations []string        `json:"recommendations"`
	WordCount       int             `json:"word_count"`
	ExpectedWords   int             `json:"expected_words"`
}

// Failed returns the names of failing probes in report order.
func (r QualityReport) Failed() []string {
	var out []string
	for _, name := range CheckNames {
		if !r.Checks[name] {
			out = append(out, name)
		}
	}
	return out
}

// Auditor runs the fixed probe battery.
type Auditor struct {
	tables *Tables
}

// NewAuditor returns an Auditor; nil tables selects the embedded ones.
func NewAuditor(t *Tables) *Auditor {
	if t == nil {
		t = DefaultTables()
	}
	return &Auditor{tables: t}
}

// Audit scores text for s. When text carries a transcript header only the body
// after HeaderRule is inspected. text is never modified.
func (a *Auditor) Audit(text string, s Study) QualityReport {
	body := text
	if _, after, ok := strings.Cut(text, HeaderRule); ok {
		body = after
	}
	body = strings.TrimSpace(body)
	lower := strings.ToLower(body)
	lines := strings.Split(body, "\n")
	matcher := newSpeakerMatcher(FirstNames(a.tables.SuggestNames(s)))
	expected := s.ExpectedWords()
	words := CountWords(body)

	var moderator, participant bool
	stamps := 0
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if loc := timestampLineRe.FindStringIndex(l); loc != nil {
			stamps++
			l = strings.TrimSpace(l[loc[1]:])
		}
		if moderatorRe.MatchString(l) && matcher.isSpeaker(l) {
			moderator = true
		}
		if matcher.isParticipant(l) {
			participant = true
		}
	}

	checks := map[string]bool{
		CheckModerator:       moderator,
		CheckParticipants:    participant,
		CheckTimestamps:      stamps >= minTimestamps,
		CheckOpening:         containsAny(headRunes(lower, edgeWindow), openingKeywords),
		CheckClosing:         containsAny(tailRunes(lower, edgeWindow), closingKeywords),
		CheckLength:          lengthWithin(words, expected),
		CheckNaturalFlow:     fillerRe.MatchString(lower),
		CheckCulturalMarkers: a.culturalMarkersPresent(lower, s.Location),
	}

	r := QualityReport{
		Checks:        checks,
		Total:         len(CheckNames),
		WordCount:     words,
		ExpectedWords: expected,
	}
	for _, name := range CheckNames {
		if checks[name] {
			r.Passed++
		} else {
			r.Recommendations = append(r.Recommendations, recommendations[name])
		}
	}
	r.Score = float64(r.Passed) / float64(r.Total)
	return r
}

// culturalMarkersPresent is trivially true when no marker set applies to the location.
func (a *Auditor) culturalMarkersPresent(lower, location string) bool {
	loc := strings.ToLower(location)
	applies := false
	for _, ms := range a.tables.CulturalMarkers {
		if !containsAny(loc, ms.Locations) || len(ms.Words) == 0 {
			continue
		}
		applies = true
		if wordsRegexp(ms.Words).MatchString(lower) {
			return true
		}
	}
	return !applies
}

func lengthWithin(words, expected int) bool {
	if expected <= 0 {
		return false
	}
	ratio := float64(words) / float64(expected)
	return ratio >= minLengthRatio && ratio <= maxLengthRatio
}

func wordsRegexp(words []string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

func headRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func tailRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
