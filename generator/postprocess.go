package generator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// HeaderRule closes the metadata block of every transcript.
var HeaderRule = strings.Repeat("=", 80)

// Reconciliation bounds on actual/expected words.
const (
	MinWordRatio = 0.8
	MaxWordRatio = 1.2
)

// StampsPerTranscript is the target number of timestamps the repair stage aims for.
const StampsPerTranscript = 20

// Transcript is the finished artifact. Text() is what export and display consume.
type Transcript struct {
	Header string `json:"header"`
	// Body is the processed discussion, including Note when one was added.
	Body string `json:"body"`
	// Note is the word-count annotation, empty when the length is within bounds.
	Note          string `json:"note,omitempty"`
	WordCount     int    `json:"word_count"`
	ExpectedWords int    `json:"expected_words"`
}

// Text is header, blank line, body.
func (t Transcript) Text() string { return t.Header + "\n\n" + t.Body }

type lineKind int

const (
	blankLine lineKind = iota
	timestampLine
	speakerLine
	contentLine
)

var (
	// A leading bracket that carries a digit, e.g. "[12:30]" or "[00:05:10]".
	leadingStampRe = regexp.MustCompile(`^\[[^\]]*\d[^\]]*\]`)
	clockRe        = regexp.MustCompile(`^\[(\d{1,3}):(\d{2})(?::(\d{2}))?\]`)
)

// speakerMatcher recognises speaker-attributed lines: the moderator, numbered
// participants and, when known, the suggested participant first names.
type speakerMatcher struct {
	any         *regexp.Regexp
	participant *regexp.Regexp
}

func newSpeakerMatcher(names []string) speakerMatcher {
	alts := []string{`P\d{1,2}`, `PARTICIPANT(?:\s*\d+)?`}
	for _, n := range names {
		alts = append(alts, regexp.QuoteMeta(n))
	}
	participants := strings.Join(alts, "|")
	// Optional markdown bold, the marker, then a short label (surname, "(Priya)") before the colon.
	const tail = `)\b[^:\n]{0,40}:`
	return speakerMatcher{
		any:         regexp.MustCompile(`(?i)^(?:\*\*)?(?:MODERATOR|` + participants + tail),
		participant: regexp.MustCompile(`(?i)^(?:\*\*)?(?:` + participants + tail),
	}
}

func (m speakerMatcher) isSpeaker(line string) bool     { return m.any.MatchString(line) }
func (m speakerMatcher) isParticipant(line string) bool { return m.participant.MatchString(line) }

// PostProcessor turns raw provider text into a Transcript.
type PostProcessor struct {
	tables *Tables
	now    func() time.Time
}

// NewPostProcessor returns a processor; nil tables selects the embedded ones.
func NewPostProcessor(t *Tables) *PostProcessor {
	if t == nil {
		t = DefaultTables()
	}
	return &PostProcessor{tables: t, now: time.Now}
}

// Process runs header synthesis, normalization, timestamp repair and word-count
// reconciliation, in that order. status is written into the header.
func (p *PostProcessor) Process(raw string, s Study, status string) Transcript {
	matcher := newSpeakerMatcher(FirstNames(p.tables.SuggestNames(s)))

	lines := normalizeLines(raw)
	lines = repairTimestamps(lines, s.Duration, matcher)
	body := strings.Join(lines, "\n")

	expected := s.ExpectedWords()
	actual := CountWords(body)
	note := reconciliationNote(actual, expected)
	if note != "" {
		body += "\n\n" + note
	}

	return Transcript{
		Header:        p.Header(s, status),
		Body:          body,
		Note:          note,
		WordCount:     actual,
		ExpectedWords: expected,
	}
}

// Header builds the fixed-shape metadata block.
func (p *PostProcessor) Header(s Study, status string) string {
	if status == "" {
		status = "Generated using AI simulation"
	}
	var sb strings.Builder
	sb.WriteString("FOCUS GROUP DISCUSSION TRANSCRIPT\n\n")
	sb.WriteString("Study Information:\n")
	sb.WriteString("- Topic: " + s.Topic + "\n")
	sb.WriteString("- Date: " + p.now().Format("January 02, 2006") + "\n")
	sb.WriteString(fmt.Sprintf("- Duration: %d minutes\n", s.Duration))
	sb.WriteString("- Location: " + s.Location + "\n")
	sb.WriteString("- Type: " + strings.ToUpper(string(s.DiscussionType)) + "\n")
	sb.WriteString("- Languages: " + strings.Join(s.Languages, ", ") + "\n\n")
	sb.WriteString("Participant Demographics:\n")
	sb.WriteString(fmt.Sprintf("- Total Participants: %d\n", s.Participants))
	sb.WriteString(fmt.Sprintf("- Gender Distribution: %dM, %dF, %dNB\n", s.Male, s.Female, s.NonBinary))
	sb.WriteString("- Age Range: " + s.AgeRange + "\n")
	sb.WriteString("- Profile: " + s.Demographics + "\n\n")
	sb.WriteString("Study Objective:\n")
	sb.WriteString(s.Objective + "\n\n")
	sb.WriteString(printer.Sprintf("Expected Word Count: ~%d words\n", s.ExpectedWords()))
	sb.WriteString("Transcript Status: " + status + "\n\n")
	sb.WriteString(HeaderRule)
	return sb.String()
}

// normalizeLines trims every line. Blank lines are kept as paragraph breaks.
func normalizeLines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return lines
}

func classify(line string, m speakerMatcher) lineKind {
	switch {
	case line == "":
		return blankLine
	case strings.HasPrefix(line, "[") && strings.Contains(line, "]"):
		return timestampLine
	case m.isSpeaker(line):
		return speakerLine
	default:
		return contentLine
	}
}

// repairTimestamps stamps speaker lines that lack one. Elapsed time is paced
// from the words spoken so far; a stamp is due once a cadence interval has
// passed since the previous one. Existing stamps are kept and move the clock.
func repairTimestamps(lines []string, durationMinutes int, m speakerMatcher) []string {
	cadence := max(1, durationMinutes/StampsPerTranscript) * 60

	out := make([]string, len(lines))
	var words, last, next int
	stamped := false

	for i, line := range lines {
		elapsed := words * 60 / WordsPerMinute
		out[i] = line

		if loc := leadingStampRe.FindStringIndex(line); loc != nil {
			if sec, ok := parseClock(line); ok {
				last = max(last, sec)
				next = sec + cadence
			}
			stamped = true
			words += len(strings.Fields(line[loc[1]:]))
			continue
		}

		if classify(line, m) == speakerLine && (!stamped || elapsed >= next) {
			at := max(last, elapsed)
			out[i] = formatClock(at) + " " + line
			last, next, stamped = at, at+cadence, true
		}
		words += len(strings.Fields(line))
	}
	return out
}

func parseClock(line string) (int, bool) {
	m := clockRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	a, _ := strconv.Atoi(m[1])
	b, _ := strconv.Atoi(m[2])
	if m[3] == "" {
		return a*60 + b, true
	}
	c, _ := strconv.Atoi(m[3])
	return a*3600 + b*60 + c, true
}

// formatClock renders seconds as [mm:ss] with total minutes.
func formatClock(sec int) string {
	return fmt.Sprintf("[%02d:%02d]", sec/60, sec%60)
}

// CountWords counts whitespace-separated words, ignoring leading timestamps.
func CountWords(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if loc := clockRe.FindStringIndex(line); loc != nil {
			line = line[loc[1]:]
		}
		n += len(strings.Fields(line))
	}
	return n
}

func reconciliationNote(actual, expected int) string {
	if expected <= 0 {
		return ""
	}
	ratio := float64(actual) / float64(expected)
	switch {
	case ratio < MinWordRatio:
		return printer.Sprintf("[Note: Transcript may be shorter than expected. Actual words: ~%d, Expected: ~%d]", actual, expected)
	case ratio > MaxWordRatio:
		return printer.Sprintf("[Note: Transcript may be longer than expected. Actual words: ~%d, Expected: ~%d]", actual, expected)
	}
	return ""
}
