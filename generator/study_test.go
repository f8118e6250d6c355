package generator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudyValidate(t *testing.T) {
	require.NoError(t, mumbaiStudy().Validate())

	tests := []struct {
		name   string
		mutate func(*Study)
		field  string
	}{
		{"too few participants", func(s *Study) { s.Participants, s.Male, s.Female = 3, 2, 1 }, "participants"},
		{"too many participants", func(s *Study) { s.Participants, s.Male, s.Female = 13, 7, 6 }, "participants"},
		{"gender mismatch", func(s *Study) { s.Female = 3 }, "gender"},
		{"negative count", func(s *Study) { s.Male, s.NonBinary = 5, -1 }, "gender"},
		{"duration too short", func(s *Study) { s.Duration = 10 }, "duration"},
		{"duration too long", func(s *Study) { s.Duration = 181 }, "duration"},
		{"missing topic", func(s *Study) { s.Topic = "  " }, "topic"},
		{"missing objective", func(s *Study) { s.Objective = "" }, "objective"},
		{"missing location", func(s *Study) { s.Location = "" }, "location"},
		{"bad discussion type", func(s *Study) { s.DiscussionType = "hybrid" }, "discussion_type"},
		{"no languages", func(s *Study) { s.Languages = nil }, "languages"},
		{"unsupported language", func(s *Study) { s.Languages = []string{"English", "Klingon"} }, "languages"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mumbaiStudy()
			tt.mutate(&s)

			err := s.Validate()
			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			fields := make([]string, 0, len(cfgErr.Problems))
			for _, p := range cfgErr.Problems {
				fields = append(fields, p.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestStudyValidate_ReportsAllProblems(t *testing.T) {
	err := Study{}.Validate()
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.GreaterOrEqual(t, len(cfgErr.Problems), 5)
	assert.Contains(t, err.Error(), "invalid study configuration")
}

func TestStudyNormalized(t *testing.T) {
	s := mumbaiStudy()
	s.AgeRange = ""
	s.DiscussionType = " ONLINE "
	s.Languages = []string{"hindi", " HINGLISH", "Hindi", ""}

	n := s.Normalized()
	assert.Equal(t, DefaultAgeRange, n.AgeRange)
	assert.Equal(t, Online, n.DiscussionType)
	assert.Equal(t, []string{"Hindi", "Hinglish"}, n.Languages)
	assert.Equal(t, []string{"hindi", " HINGLISH", "Hindi", ""}, s.Languages, "receiver untouched")

	s.DiscussionType = ""
	assert.Equal(t, Offline, s.Normalized().DiscussionType)
}

func TestExpectedWordCount(t *testing.T) {
	assert.Equal(t, 9000, ExpectedWordCount(60))
	assert.Equal(t, 9000, mumbaiStudy().ExpectedWords())

	prev := -1
	for d := MinDuration; d <= MaxDuration; d++ {
		got := ExpectedWordCount(d)
		require.Greater(t, got, prev, "duration %d", d)
		prev = got

		sum := 0
		for _, n := range PhaseTargets(got) {
			sum += n
		}
		assert.InDelta(t, got, sum, 4, "duration %d", d)
	}
}

func TestPhaseTargets(t *testing.T) {
	assert.Equal(t, []int{1350, 900, 5850, 900}, PhaseTargets(9000))
}

func TestNewGenerationRequest(t *testing.T) {
	req := NewGenerationRequest(mumbaiStudy(), "prompt")
	assert.Equal(t, "prompt", req.Prompt)
	assert.Equal(t, 9000, req.ExpectedWords)
	assert.Equal(t, 13500, req.MaxOutput)
	assert.InDelta(t, 0.7, req.Temperature, 1e-9)
}

func TestParseStudy(t *testing.T) {
	doc := `
participants: 6
male: 2
female: 3
non_binary: 1
topic: Food delivery apps
objective: Learn why people switch apps
duration: 45
location: Paris, France
discussion_type: Online
languages: [french]
`
	s, err := ParseStudy([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 6, s.Participants)
	assert.Equal(t, 1, s.NonBinary)
	assert.Equal(t, Online, s.DiscussionType)
	assert.Equal(t, []string{"French"}, s.Languages)
	assert.Equal(t, DefaultAgeRange, s.AgeRange)
}

func TestParseStudy_JSON(t *testing.T) {
	doc := `{"participants": 4, "male": 2, "female": 2, "topic": "t", "objective": "o",
"duration": 30, "location": "Toronto, Canada", "languages": ["English", "French"]}`
	s, err := ParseStudy([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 30, s.Duration)
}

func TestParseStudy_SchemaErrors(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{"unknown field", "participants: 4\nmale: 2\nfemale: 2\ntopic: t\nobjective: o\nduration: 30\nlocation: x\nlanguages: [English]\ncolour: red\n", "/"},
		{"wrong type", "participants: eight\nmale: 2\nfemale: 2\ntopic: t\nobjective: o\nduration: 30\nlocation: x\nlanguages: [English]\n", "participants"},
		{"out of range", "participants: 4\nmale: 2\nfemale: 2\ntopic: t\nobjective: o\nduration: 300\nlocation: x\nlanguages: [English]\n", "duration"},
		{"empty languages", "participants: 4\nmale: 2\nfemale: 2\ntopic: t\nobjective: o\nduration: 30\nlocation: x\nlanguages: []\n", "languages"},
		{"bad discussion type", "participants: 4\nmale: 2\nfemale: 2\ntopic: t\nobjective: o\nduration: 30\nlocation: x\ndiscussion_type: hybrid\nlanguages: [English]\n", "discussion_type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStudy([]byte(tt.doc))
			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			require.NotEmpty(t, cfgErr.Problems)
			assert.Equal(t, tt.field, cfgErr.Problems[0].Field)
		})
	}
}

func TestParseStudy_GenderMismatchAfterSchema(t *testing.T) {
	doc := "participants: 4\nmale: 2\nfemale: 1\ntopic: t\nobjective: o\nduration: 30\nlocation: x\nlanguages: [English]\n"
	_, err := ParseStudy([]byte(doc))
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "gender", cfgErr.Problems[0].Field)
}

func TestParseStudy_NotYAML(t *testing.T) {
	_, err := ParseStudy([]byte("participants: [unclosed"))
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestDecodeStudy_JSONNumbers(t *testing.T) {
	doc := map[string]any{
		"participants": float64(4),
		"male":         float64(1),
		"female":       float64(1),
		"non_binary":   float64(2),
		"topic":        "Telehealth",
		"objective":    "o",
		"duration":     float64(90),
		"location":     "New York, USA",
		"languages":    []any{"English", "Spanish"},
	}
	s, err := DecodeStudy(doc)
	require.NoError(t, err)
	assert.Equal(t, 2, s.NonBinary)
	assert.Equal(t, 90, s.Duration)
	assert.Equal(t, []string{"English", "Spanish"}, s.Languages)
}
