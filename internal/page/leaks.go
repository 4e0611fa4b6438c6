package page

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/leadlens/leadlens/internal/assess"
)

// documentExtensions are link targets treated as directly downloadable
// resources given away without lead capture.
var documentExtensions = []string{
	".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx", ".zip",
}

const (
	mailtoRecommendation = "Replace the direct email link with a contact form so every inquiry is captured and trackable."
	telRecommendation    = "Route phone contact through a callback form so the lead is recorded before the call."
	docRecommendation    = "Gate the document behind a short form; ask for an email address before handing over the content."
)

// DetectLeaks scans anchor targets for contact-channel and ungated-document
// exposure. The scan is purely syntactic, runs on markup input only, and is
// idempotent: identical input produces an identical leak list in first-match
// document order.
func DetectLeaks(gq *goquery.Document) []assess.Leak {
	var leaks []assess.Leak
	gq.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" {
			return
		}
		text := collapseSpace(s.Text())
		if leak, ok := classifyTarget(href, text); ok {
			leaks = append(leaks, leak)
		}
	})
	return leaks
}

func classifyTarget(href, text string) (assess.Leak, bool) {
	lower := strings.ToLower(href)
	switch {
	case strings.HasPrefix(lower, "mailto:"):
		address := strings.SplitN(strings.TrimPrefix(href, "mailto:"), "?", 2)[0]
		return assess.Leak{
			Type:           assess.LeakMailto,
			Severity:       assess.LeakSeverityMedium,
			Location:       locationFor(text, href),
			Details:        "Direct email link exposes " + address + " and bypasses lead capture.",
			Recommendation: mailtoRecommendation,
		}, true
	case strings.HasPrefix(lower, "tel:"):
		number := strings.TrimPrefix(href, "tel:")
		return assess.Leak{
			Type:           assess.LeakTel,
			Severity:       assess.LeakSeverityMedium,
			Location:       locationFor(text, href),
			Details:        "Direct phone link exposes " + number + " without recording the visitor.",
			Recommendation: telRecommendation,
		}, true
	case isDocumentTarget(lower):
		return assess.Leak{
			Type:           assess.LeakDocument,
			Severity:       assess.LeakSeverityHigh,
			Location:       locationFor(text, href),
			Details:        "Downloadable document " + href + " is reachable without any form.",
			Recommendation: docRecommendation,
		}, true
	}
	return assess.Leak{}, false
}

func isDocumentTarget(lower string) bool {
	path := lower
	if u, err := url.Parse(lower); err == nil && u.Path != "" {
		path = u.Path
	}
	for _, ext := range documentExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func locationFor(text, href string) string {
	if text != "" {
		return text
	}
	return href
}
