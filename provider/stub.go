package provider

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Stub is a minimal local placeholder transcript. It is not a retry against the
// provider and must be flagged as a fallback by the caller.
func Stub(req Request) string {
	p := message.NewPrinter(language.English)

	var sb strings.Builder
	sb.WriteString("[00:00] MODERATOR: Welcome everyone, and thank you for joining today's discussion. Let's begin with a short round of introductions.\n\n")
	sb.WriteString("[00:01] P1: Thanks for having me. I'm happy to share my experience with this topic.\n\n")
	sb.WriteString("[00:02] P2: Glad to be here. I think this will be an interesting conversation.\n\n")
	if req.ExpectedWords > 0 {
		sb.WriteString(p.Sprintf("[Note: Placeholder transcript generated locally because the provider response was unavailable. The full discussion is expected to run to ~%d words.]", req.ExpectedWords))
	} else {
		sb.WriteString("[Note: Placeholder transcript generated locally because the provider response was unavailable.]")
	}
	return sb.String()
}
