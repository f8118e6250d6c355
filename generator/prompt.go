package generator

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Composer builds provider prompts from a study. It only reads its tables.
type Composer struct {
	tables *Tables
}

// NewComposer returns a Composer over t, or over the embedded tables when t is nil.
func NewComposer(t *Tables) *Composer {
	if t == nil {
		t = DefaultTables()
	}
	return &Composer{tables: t}
}

// Tables exposes the composer's lookup tables.
func (c *Composer) Tables() *Tables { return c.tables }

// ClassifyTopic picks the template kind by case-insensitive keyword substring.
// Keyword sets are tried in table order; the first hit wins.
func (c *Composer) ClassifyTopic(topic string) TemplateKind {
	t := strings.ToLower(topic)
	for _, ks := range c.tables.TopicKeywords {
		if containsAny(t, ks.Keywords) {
			return ks.Kind
		}
	}
	return Standard
}

// Compose builds the complete prompt for s using the template for its topic.
func (c *Composer) Compose(s Study) string {
	return c.ComposeWith(s, BuildTemplate(c.ClassifyTopic(s.Topic)))
}

// ComposeWith interpolates s into template and appends the research, cultural
// and language blocks.
func (c *Composer) ComposeWith(s Study, template string) string {
	var sb strings.Builder
	sb.WriteString(c.BasePrompt(s))
	sb.WriteString("\n\n")
	sb.WriteString(template)
	sb.WriteString("\n\n")
	sb.WriteString(customization(s))

	sb.WriteString("\n\nRESEARCH INSIGHTS:\n")
	sb.WriteString(c.Research(s.Topic, s.Location))
	sb.WriteString("\n\nCULTURAL CONTEXT FOR ")
	sb.WriteString(strings.ToUpper(s.Location))
	sb.WriteString(":\n")
	sb.WriteString(c.CulturalContext(s.Location))
	sb.WriteString("\n\nLANGUAGE PATTERNS:\n")
	sb.WriteString(c.LanguagePatterns(s.Languages, s.Location))
	sb.WriteString("\n\n")
	sb.WriteString(additionalInstructions)
	return sb.String()
}

// Research returns the topic research snippet for the location.
func (c *Composer) Research(topic, location string) string {
	t, loc := strings.ToLower(topic), strings.ToLower(location)
	for _, e := range c.tables.Research {
		if e.Topic == "" || !strings.Contains(t, e.Topic) {
			continue
		}
		for _, r := range e.Regions {
			if strings.Contains(loc, r.Region) {
				return bulletList(r.Bullets)
			}
		}
		if len(e.Global) > 0 {
			return bulletList(e.Global)
		}
		return "No specific research available"
	}
	return "Research topic '" + topic + "' in context of " + location + " market conditions and consumer behavior"
}

// CulturalContext returns the snippet for the first city found in location.
func (c *Composer) CulturalContext(location string) string {
	loc := strings.ToLower(location)
	for _, cc := range c.tables.CulturalContext {
		if cc.City != "" && strings.Contains(loc, cc.City) {
			return bulletList(cc.Bullets)
		}
	}
	return "Consider local cultural norms, communication styles, and references relevant to " + location
}

// LanguagePatterns renders one line per requested language, in request order.
func (c *Composer) LanguagePatterns(languages []string, location string) string {
	loc := strings.ToLower(location)
	lines := make([]string, 0, len(languages))
	for _, lang := range languages {
		lines = append(lines, lang+": "+c.languagePattern(lang, loc))
	}
	return strings.Join(lines, "\n")
}

func (c *Composer) languagePattern(lang, loc string) string {
	key := strings.ToLower(lang)
	for _, p := range c.tables.LanguagePatterns {
		if p.Language != key {
			continue
		}
		if len(p.Regions) == 0 {
			return strings.Join(p.Bullets, "; ")
		}
		for _, r := range p.Regions {
			if strings.Contains(loc, r.Region) {
				return strings.Join(r.Bullets, "; ")
			}
		}
		return "Standard " + lang + " patterns"
	}
	return "Use natural " + lang + " speech patterns with local dialect variations"
}

var printer = message.NewPrinter(language.English)

// BasePrompt is the study brief: configuration, research requirements, phase
// word targets, speech and moderator guidance, personas and output format.
func (c *Composer) BasePrompt(s Study) string {
	expected := s.ExpectedWords()
	targets := PhaseTargets(expected)
	langs := strings.Join(s.Languages, ", ")

	var sb strings.Builder
	sb.WriteString("FOCUS GROUP DISCUSSION GENERATOR PROMPT\n\n")

	sb.WriteString("STUDY CONFIGURATION:\n")
	sb.WriteString(printer.Sprintf("- Participants: %d total (%dM, %dF, %dNB)\n", s.Participants, s.Male, s.Female, s.NonBinary))
	sb.WriteString("- Age Range: " + s.AgeRange + "\n")
	sb.WriteString("- Demographics: " + s.Demographics + "\n")
	sb.WriteString("- Topic: " + s.Topic + "\n")
	sb.WriteString("- Objective: " + s.Objective + "\n")
	sb.WriteString(printer.Sprintf("- Duration: %d minutes (Target: ~%d words)\n", s.Duration, expected))
	sb.WriteString("- Location: " + s.Location + "\n")
	sb.WriteString("- Type: " + string(s.DiscussionType) + "\n")
	sb.WriteString("- Languages: " + langs + "\n\n")

	sb.WriteString("RESEARCH REQUIREMENTS:\n")
	sb.WriteString("1. Research the topic \"" + s.Topic + "\" thoroughly for " + s.Location + "\n")
	sb.WriteString("2. Understand local market conditions, cultural nuances, and recent developments\n")
	sb.WriteString("3. Generate realistic participant personas based on demographics and location\n")
	sb.WriteString("4. Create natural conversation flow with local dialects and speech patterns\n\n")

	sb.WriteString("TRANSCRIPT STRUCTURE:\n")
	phaseNotes := [][]string{
		{"Welcome and introductions", "Ground rules and recording consent", "Overview of discussion"},
		{"Icebreaker questions", "General topic introduction"},
		{"Main research questions", "Deep probing and follow-ups", "Natural participant interactions"},
		{"Summary of key points", "Final thoughts", "Thank you and wrap-up"},
	}
	for i, p := range Phases {
		sb.WriteString(printer.Sprintf("%d. %s (%.0f%% - %d words):\n", i+1, p.Name, p.Fraction*100, targets[i]))
		for _, n := range phaseNotes[i] {
			sb.WriteString("   - " + n + "\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("NATURAL SPEECH REQUIREMENTS:\n")
	sb.WriteString("- Include natural speech patterns: \"umm\", \"you know\", \"like\"\n")
	sb.WriteString("- Add grammatical imperfections and hesitations\n")
	sb.WriteString("- Use local references and cultural context from " + s.Location + "\n")
	sb.WriteString("- Include appropriate dialect/accent markers for " + strings.Join(s.Languages, "/") + "\n")
	sb.WriteString("- Show realistic group dynamics (interruptions, agreements, disagreements)\n\n")

	sb.WriteString("MODERATOR BEHAVIOR:\n")
	sb.WriteString("- Maintain neutrality throughout\n")
	sb.WriteString("- Use probing questions: \"Can you tell me more about that?\", \"What do others think?\"\n")
	sb.WriteString("- Manage participation: encourage quiet members, tactfully redirect dominant ones\n")
	sb.WriteString("- Bridge between topics smoothly\n")
	sb.WriteString("- Summarize and reflect back key points\n\n")

	sb.WriteString(printer.Sprintf("PARTICIPANT PERSONAS:\nGenerate %d distinct personalities with:\n", s.Participants))
	sb.WriteString("- Realistic names appropriate for " + s.Location + "\n")
	if names := c.tables.SuggestNames(s); len(names) > 0 {
		list := make([]string, len(names))
		for i, p := range names {
			list[i] = p.Name
		}
		sb.WriteString("- Suggested names: " + strings.Join(list, ", ") + "\n")
	}
	sb.WriteString("- Varied speaking styles and opinions\n")
	sb.WriteString("- Different levels of engagement\n")
	sb.WriteString("- Authentic demographic representation\n\n")

	sb.WriteString("OUTPUT FORMAT:\n")
	sb.WriteString("Generate a realistic focus group transcript with:\n")
	sb.WriteString("- Timestamp markers every 5-10 minutes\n")
	sb.WriteString("- Speaker identification (Moderator, Participant names)\n")
	sb.WriteString("- Natural conversation flow\n")
	sb.WriteString("- Realistic pace and word count distribution\n")
	sb.WriteString("- Cultural authenticity and local relevance")
	return sb.String()
}

func customization(s Study) string {
	langs := strings.Join(s.Languages, ", ")
	var sb strings.Builder
	sb.WriteString("STUDY-SPECIFIC CUSTOMIZATIONS:\n\n")
	sb.WriteString("Topic: " + orNotSpecified(s.Topic) + "\n")
	sb.WriteString("Objective: " + orNotSpecified(s.Objective) + "\n")
	sb.WriteString("Location: " + orNotSpecified(s.Location) + "\n")
	sb.WriteString(printer.Sprintf("Duration: %d minutes\n", s.Duration))
	sb.WriteString(printer.Sprintf("Participants: %d people\n", s.Participants))
	sb.WriteString("Demographics: " + orNotSpecified(s.Demographics) + "\n")
	sb.WriteString("Languages: " + langs + "\n")
	sb.WriteString("Discussion Type: " + string(s.DiscussionType) + "\n\n")

	sb.WriteString("PARTICIPANT PERSONAS TO CREATE:\n")
	sb.WriteString(printer.Sprintf("- Generate %d distinct participants\n", s.Participants))
	sb.WriteString(printer.Sprintf("- %d male participants\n", s.Male))
	sb.WriteString(printer.Sprintf("- %d female participants\n", s.Female))
	sb.WriteString(printer.Sprintf("- %d non-binary participants\n", s.NonBinary))
	sb.WriteString("- Age range: " + s.AgeRange + "\n")
	background := s.Demographics
	if background == "" {
		background = "Mixed demographics"
	}
	sb.WriteString("- Background: " + background + "\n\n")

	sb.WriteString("CULTURAL AND LINGUISTIC REQUIREMENTS:\n")
	sb.WriteString("- Incorporate " + s.Location + " cultural context\n")
	sb.WriteString("- Use " + strings.Join(s.Languages, "/") + " language patterns\n")
	sb.WriteString("- Include relevant local references and idioms\n")
	sb.WriteString("- Reflect authentic regional communication styles")
	return sb.String()
}

func orNotSpecified(v string) string {
	if v == "" {
		return "Not specified"
	}
	return v
}

const additionalInstructions = `ADDITIONAL INSTRUCTIONS:
- Incorporate the research insights naturally into participant responses
- Use cultural references and local knowledge appropriately
- Apply language patterns and dialect markers as specified
- Ensure responses reflect real market conditions and local perspectives
- Include realistic local references (transportation, food, places, etc.)`
