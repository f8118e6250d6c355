package server

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"

	"focus_group_generator/generator"
)

var stampRe = regexp.MustCompile(`^(\[\d{1,3}:\d{2}(?::\d{2})?\])\s*`)

// transcriptHTML renders a transcript for the browser preview.
func transcriptHTML(t generator.Transcript) (string, error) {
	return mdToHTML(transcriptMarkdown(t))
}

func mdToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// transcriptMarkdown maps the plain-text layout onto markdown. Every body line
// becomes its own paragraph so speaker turns are not merged.
func transcriptMarkdown(t generator.Transcript) string {
	var b strings.Builder
	for i, line := range strings.Split(t.Header, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case i == 0:
			b.WriteString("# " + line + "\n\n")
		case line == "" || line == generator.HeaderRule:
		case strings.HasPrefix(line, "- "):
			b.WriteString(line + "\n")
		case strings.HasSuffix(line, ":"):
			b.WriteString("\n**" + strings.TrimSuffix(line, ":") + "**\n\n")
		default:
			b.WriteString("\n" + line + "\n")
		}
	}
	b.WriteString("\n---\n\n")

	for _, line := range strings.Split(t.Body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := stampRe.FindStringSubmatchIndex(line); m != nil {
			line = "**" + line[m[2]:m[3]] + "** " + line[m[1]:]
		}
		b.WriteString(line + "\n\n")
	}
	return b.String()
}
