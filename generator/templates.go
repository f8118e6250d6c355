package generator

// TemplateKind selects the structural template for a topic.
type TemplateKind string

const (
	Standard   TemplateKind = "standard"
	Business   TemplateKind = "business"
	Consumer   TemplateKind = "consumer"
	Healthcare TemplateKind = "healthcare"
	Technology TemplateKind = "technology"
)

// TemplateKinds lists every kind in display order.
var TemplateKinds = []TemplateKind{Standard, Business, Consumer, Healthcare, Technology}

func (k TemplateKind) valid() bool {
	_, ok := templateAddenda[k]
	return ok
}

const standardTemplate = `FOCUS GROUP STRUCTURE GUIDELINES:

1. OPENING PHASE (15% of discussion):
   - Warm welcome and moderator introduction
   - Participant introductions (name, brief background)
   - Explanation of process and confidentiality
   - Recording consent
   - Ground rules establishment

2. WARM-UP PHASE (10% of discussion):
   - Icebreaker questions related to topic
   - General opinions and initial reactions
   - Build comfort and rapport

3. CORE DISCUSSION PHASE (65% of discussion):
   - Systematic exploration of key research questions
   - Deep probing with follow-up questions
   - Encourage different perspectives
   - Manage group dynamics
   - Explore underlying motivations

4. CLOSING PHASE (10% of discussion):
   - Summary of key themes
   - Final thoughts and additional comments
   - Thank participants
   - Next steps (if any)

MODERATOR TECHNIQUES:
- Use open-ended questions
- Probe with "Can you tell me more about that?"
- Encourage quiet participants: "Sarah, what's your take on this?"
- Manage dominant speakers tactfully
- Maintain neutrality
- Use active listening techniques`

var templateAddenda = map[TemplateKind]string{
	Standard: "",
	Business: `BUSINESS FOCUS GROUP SPECIFICS:
- Explore decision-making processes
- Understand ROI and cost considerations
- Investigate stakeholder influences
- Discuss implementation challenges
- Explore competitive landscape awareness
- Focus on practical business implications`,
	Consumer: `CONSUMER FOCUS GROUP SPECIFICS:
- Explore emotional connections to products/brands
- Understand purchase journey and touchpoints
- Investigate lifestyle and value influences
- Discuss word-of-mouth and social influences
- Explore unmet needs and pain points
- Focus on user experience and satisfaction`,
	Healthcare: `HEALTHCARE FOCUS GROUP SPECIFICS:
- Handle sensitive topics with care
- Explore trust and credibility factors
- Understand patient/provider relationships
- Investigate accessibility and convenience
- Discuss privacy and security concerns
- Focus on health outcomes and quality of life
- Be mindful of regulatory and ethical considerations`,
	Technology: `TECHNOLOGY FOCUS GROUP SPECIFICS:
- Explore user experience and interface preferences
- Understand adoption barriers and drivers
- Investigate feature priorities and usage patterns
- Discuss privacy and security concerns
- Explore integration with existing workflows
- Focus on learning curves and support needs
- Consider generational and technical skill differences`,
}

// BuildTemplate returns the standard four-phase template plus the kind's addendum.
// Unknown kinds get the standard template.
func BuildTemplate(kind TemplateKind) string {
	addendum := templateAddenda[kind]
	if addendum == "" {
		return standardTemplate
	}
	return standardTemplate + "\n\n" + addendum
}
