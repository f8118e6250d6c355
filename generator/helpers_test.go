package generator

import "strings"

// mumbaiStudy is the reference Hindi/English EV study.
func mumbaiStudy() Study {
	return Study{
		Participants:   8,
		Male:           4,
		Female:         4,
		NonBinary:      0,
		AgeRange:       "25-45",
		Demographics:   "Urban professionals, middle-income",
		Topic:          "Electric Vehicle Adoption",
		Objective:      "Understand barriers to buying an electric car",
		Duration:       60,
		Location:       "Mumbai, India",
		DiscussionType: Offline,
		Languages:      []string{"Hindi", "English"},
	}
}

// words returns n filler words that match no keyword or marker.
func words(n int) string {
	return strings.TrimSpace(strings.Repeat("lorem ", n))
}
