package page

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadlens/leadlens/internal/assess"
)

func parseMarkup(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	gq, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return gq
}

func TestDetectLeaksMailtoAndDocument(t *testing.T) {
	t.Parallel()

	gq := parseMarkup(t, `<html><body>
		<a href="/pricing">Pricing</a>
		<a href="mailto:sales@acme.test?subject=hi">Email sales</a>
		<p>Some copy in between.</p>
		<a href="/files/whitepaper.pdf">Download the whitepaper</a>
	</body></html>`)

	leaks := DetectLeaks(gq)
	require.Len(t, leaks, 2)

	assert.Equal(t, assess.LeakMailto, leaks[0].Type)
	assert.Equal(t, assess.LeakSeverityMedium, leaks[0].Severity)
	assert.Equal(t, "Email sales", leaks[0].Location)
	assert.Contains(t, leaks[0].Details, "sales@acme.test")
	assert.NotContains(t, leaks[0].Details, "subject=")

	assert.Equal(t, assess.LeakDocument, leaks[1].Type)
	assert.Equal(t, assess.LeakSeverityHigh, leaks[1].Severity)
	assert.Equal(t, "Download the whitepaper", leaks[1].Location)
	assert.Contains(t, leaks[1].Details, "/files/whitepaper.pdf")
}

func TestDetectLeaksTel(t *testing.T) {
	t.Parallel()

	gq := parseMarkup(t, `<a href="tel:+4681234567">Call us</a>`)
	leaks := DetectLeaks(gq)
	require.Len(t, leaks, 1)
	assert.Equal(t, assess.LeakTel, leaks[0].Type)
	assert.Equal(t, assess.LeakSeverityMedium, leaks[0].Severity)
	assert.Contains(t, leaks[0].Details, "+4681234567")
}

func TestDetectLeaksDocumentWithQuery(t *testing.T) {
	t.Parallel()

	gq := parseMarkup(t, `<a href="https://cdn.acme.test/guide.DOCX?v=2">Guide</a>`)
	leaks := DetectLeaks(gq)
	require.Len(t, leaks, 1)
	assert.Equal(t, assess.LeakDocument, leaks[0].Type)
}

// An anchor without visible text falls back to the raw target for location.
func TestDetectLeaksLocationFallback(t *testing.T) {
	t.Parallel()

	gq := parseMarkup(t, `<a href="mailto:hi@acme.test"></a>`)
	leaks := DetectLeaks(gq)
	require.Len(t, leaks, 1)
	assert.Equal(t, "mailto:hi@acme.test", leaks[0].Location)
}

func TestDetectLeaksIgnoresRegularLinks(t *testing.T) {
	t.Parallel()

	gq := parseMarkup(t, `<html><body>
		<a href="/signup">Sign up</a>
		<a href="https://acme.test/blog/post">Read more</a>
		<a href="#faq">FAQ</a>
	</body></html>`)
	assert.Empty(t, DetectLeaks(gq))
}

func TestDetectLeaksIdempotent(t *testing.T) {
	t.Parallel()

	const markup = `<body>
		<a href="mailto:a@acme.test">A</a>
		<a href="tel:123">B</a>
		<a href="/deck.pptx">C</a>
	</body>`

	first := DetectLeaks(parseMarkup(t, markup))
	second := DetectLeaks(parseMarkup(t, markup))
	assert.Equal(t, first, second)
	require.Len(t, first, 3)
	assert.Equal(t, assess.LeakMailto, first[0].Type)
	assert.Equal(t, assess.LeakTel, first[1].Type)
	assert.Equal(t, assess.LeakDocument, first[2].Type)
}
