package page

import (
	"strings"

	"github.com/leadlens/leadlens/internal/assess"
)

// normalizePlainText converts a pre-rendered plain-text/markdown payload into
// a canonical document. Fidelity is deliberately degraded compared to markup:
// only the title, heading lines, and the visible-text excerpt are recovered.
// Link, form, and button extraction is not attempted from this representation,
// and no leak scan runs on it.
func normalizePlainText(body []byte, url string) assess.Document {
	doc := assess.Document{URL: url}

	lines := strings.Split(string(body), "\n")
	var excerpt []string
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if heading, ok := markdownHeading(line); ok {
			if doc.Title == "" {
				doc.Title = heading
			}
			if len(doc.Headings) < maxHeadings {
				doc.Headings = append(doc.Headings, heading)
			}
			continue
		}
		if doc.Title == "" {
			doc.Title = truncateRunes(line, 120)
		}
		excerpt = append(excerpt, line)
	}

	doc.Excerpt = truncateRunes(strings.Join(excerpt, " "), maxExcerptRunes)
	return doc
}

func markdownHeading(line string) (string, bool) {
	if !strings.HasPrefix(line, "#") {
		return "", false
	}
	trimmed := strings.TrimLeft(line, "#")
	if trimmed == line || !strings.HasPrefix(trimmed, " ") {
		return "", false
	}
	return strings.TrimSpace(trimmed), true
}
