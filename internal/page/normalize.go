// Package page converts raw retrieval payloads into canonical documents and
// performs local leak detection.
package page

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/leadlens/leadlens/internal/assess"
)

// Caps applied to every bounded list. Truncation always keeps the earliest
// matches in document order so identical input yields an identical document.
const (
	maxHeadings     = 20
	maxParagraphs   = 30
	maxLinks        = 50
	maxButtons      = 20
	maxForms        = 10
	maxImages       = 20
	maxExcerptRunes = 4000

	// minParagraphLen filters out navigation fragments and stray labels.
	minParagraphLen = 30
)

// Normalize converts a raw payload into the canonical document for the given
// normalized URL. It is a pure transformation: no I/O, deterministic output.
func Normalize(payload assess.RawPayload, url string) (assess.Document, error) {
	switch payload.Kind {
	case assess.PayloadMarkup:
		return normalizeMarkup(payload.Body, url)
	case assess.PayloadPlainText:
		return normalizePlainText(payload.Body, url), nil
	default:
		return assess.Document{}, fmt.Errorf("unsupported payload kind %q", payload.Kind)
	}
}

func normalizeMarkup(body []byte, url string) (assess.Document, error) {
	gq, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return assess.Document{}, fmt.Errorf("parse markup: %w", err)
	}

	doc := assess.Document{
		URL:             url,
		Title:           strings.TrimSpace(gq.Find("title").First().Text()),
		MetaDescription: metaDescription(gq),
		Headings:        extractHeadings(gq),
		Paragraphs:      extractParagraphs(gq),
		Links:           extractLinks(gq),
		ButtonLabels:    extractButtons(gq),
		Forms:           extractForms(gq),
		Images:          extractImages(gq),
		Excerpt:         extractExcerpt(gq),
	}
	doc.Leaks = DetectLeaks(gq)
	return doc, nil
}

func metaDescription(gq *goquery.Document) string {
	if v, ok := gq.Find(`meta[name="description"]`).First().Attr("content"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if v, ok := gq.Find(`meta[property="og:description"]`).First().Attr("content"); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func extractHeadings(gq *goquery.Document) []string {
	var out []string
	gq.Find("h1, h2, h3, h4, h5, h6").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := collapseSpace(s.Text())
		if text != "" {
			out = append(out, text)
		}
		return len(out) < maxHeadings
	})
	return out
}

func extractParagraphs(gq *goquery.Document) []string {
	var out []string
	gq.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := collapseSpace(s.Text())
		if len([]rune(text)) >= minParagraphLen {
			out = append(out, text)
		}
		return len(out) < maxParagraphs
	})
	return out
}

func extractLinks(gq *goquery.Document) []assess.Link {
	var out []assess.Link
	gq.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return true
		}
		out = append(out, assess.Link{
			Text: collapseSpace(s.Text()),
			Href: href,
		})
		return len(out) < maxLinks
	})
	return out
}

func extractButtons(gq *goquery.Document) []string {
	var out []string
	gq.Find(`button, input[type="submit"], input[type="button"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		label := collapseSpace(s.Text())
		if label == "" {
			label = strings.TrimSpace(s.AttrOr("value", ""))
		}
		if label != "" {
			out = append(out, label)
		}
		return len(out) < maxButtons
	})
	return out
}

func extractForms(gq *goquery.Document) []assess.Form {
	var out []assess.Form
	gq.Find("form").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		form := assess.Form{
			Action: strings.TrimSpace(s.AttrOr("action", "")),
			Method: strings.ToLower(strings.TrimSpace(s.AttrOr("method", "get"))),
		}
		if form.Method == "" {
			form.Method = "get"
		}
		s.Find("input, textarea, select").Each(func(_ int, f *goquery.Selection) {
			fieldType := fieldTypeFor(f)
			if fieldType == "hidden" {
				return
			}
			_, required := f.Attr("required")
			form.Fields = append(form.Fields, assess.FormField{
				Name:     strings.TrimSpace(f.AttrOr("name", "")),
				Type:     fieldType,
				Required: required,
			})
		})
		form.SubmitLabel = submitLabel(s)
		out = append(out, form)
		return len(out) < maxForms
	})
	return out
}

func fieldTypeFor(f *goquery.Selection) string {
	switch goquery.NodeName(f) {
	case "textarea":
		return "textarea"
	case "select":
		return "select"
	default:
		t := strings.ToLower(strings.TrimSpace(f.AttrOr("type", "text")))
		if t == "" {
			return "text"
		}
		return t
	}
}

// submitLabel resolves the submit control text for a form, preferring an
// explicit submit button over a generic one.
func submitLabel(form *goquery.Selection) string {
	if btn := form.Find(`button[type="submit"]`).First(); btn.Length() > 0 {
		if label := collapseSpace(btn.Text()); label != "" {
			return label
		}
	}
	if in := form.Find(`input[type="submit"]`).First(); in.Length() > 0 {
		if label := strings.TrimSpace(in.AttrOr("value", "")); label != "" {
			return label
		}
	}
	if btn := form.Find("button").First(); btn.Length() > 0 {
		return collapseSpace(btn.Text())
	}
	return ""
}

func extractImages(gq *goquery.Document) []assess.Image {
	var out []assess.Image
	gq.Find("img[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		src = strings.TrimSpace(src)
		if src == "" {
			return true
		}
		out = append(out, assess.Image{
			Src: src,
			Alt: strings.TrimSpace(s.AttrOr("alt", "")),
		})
		return len(out) < maxImages
	})
	return out
}

func extractExcerpt(gq *goquery.Document) string {
	body := gq.Find("body").Clone()
	if body.Length() == 0 {
		return ""
	}
	body.Find("script, style, noscript").Remove()
	return truncateRunes(collapseSpace(body.Text()), maxExcerptRunes)
}

// collapseSpace trims and folds all runs of whitespace into single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
