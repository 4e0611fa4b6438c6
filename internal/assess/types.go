// Package assess defines the core types shared across the assessment pipeline.
package assess

import (
	"time"
)

// FetchMode selects the deadline profile for a page retrieval.
type FetchMode string

// Supported fetch modes.
const (
	// ModeQuick bounds the retrieval tightly for the provisional pass.
	ModeQuick FetchMode = "quick"
	// ModeFull allows the longer deadline used by the authoritative pass.
	ModeFull FetchMode = "full"
)

// PayloadKind identifies the representation carried by a RawPayload.
type PayloadKind string

// Supported payload kinds.
const (
	// PayloadMarkup is raw HTML as served by the origin.
	PayloadMarkup PayloadKind = "markup"
	// PayloadPlainText is a pre-rendered plain-text/markdown proxy of the page.
	PayloadPlainText PayloadKind = "plaintext"
)

// RawPayload is the result returned by a retrieval strategy.
type RawPayload struct {
	Kind       PayloadKind
	URL        string
	Body       []byte
	Strategy   string
	StatusCode int
	Duration   time.Duration
}

// FormField describes one input inside a captured form.
type FormField struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// Form captures a lead-relevant form found on the page.
type Form struct {
	Action      string      `json:"action"`
	Method      string      `json:"method"`
	Fields      []FormField `json:"fields"`
	SubmitLabel string      `json:"submit_label"`
}

// Link is an outbound anchor with its visible text.
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// Image is an image reference with its alternative text.
type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// LeakType names a locally detected structural defect class.
type LeakType string

// Supported leak types.
const (
	LeakMailto   LeakType = "mailto-leak"
	LeakTel      LeakType = "tel-leak"
	LeakDocument LeakType = "document-leak"
)

// LeakSeverity grades how badly a leak undermines lead capture.
type LeakSeverity string

// Supported leak severities.
const (
	LeakSeverityMedium LeakSeverity = "medium"
	LeakSeverityHigh   LeakSeverity = "high"
)

// Leak records one contact-channel or ungated-document exposure. Leaks are
// produced only by syntactic pattern matching during normalization and are
// immutable once created.
type Leak struct {
	Type           LeakType     `json:"type"`
	Severity       LeakSeverity `json:"severity"`
	Location       string       `json:"location"`
	Details        string       `json:"details"`
	Recommendation string       `json:"recommendation"`
}

// Document is the canonical structured form of a fetched page. All bounded
// lists are truncated deterministically (document order, fixed caps) so that
// re-normalizing identical content yields an identical Document.
type Document struct {
	URL             string   `json:"url"`
	Title           string   `json:"title"`
	MetaDescription string   `json:"meta_description"`
	Headings        []string `json:"headings"`
	Paragraphs      []string `json:"paragraphs"`
	Links           []Link   `json:"links"`
	ButtonLabels    []string `json:"button_labels"`
	Forms           []Form   `json:"forms"`
	Images          []Image  `json:"images"`
	Excerpt         string   `json:"excerpt"`
	Leaks           []Leak   `json:"leaks"`
}

// Status classifies a single criterion outcome.
type Status string

// Supported criterion statuses.
const (
	StatusCritical      Status = "critical"
	StatusImprovement   Status = "improvement"
	StatusGood          Status = "good"
	StatusNeutral       Status = "neutral"
	StatusNotIdentified Status = "not_identified"
)

// ProblemFinding is one structured issue reported for a criterion.
type ProblemFinding struct {
	Tag            string `json:"tag,omitempty"`
	Severity       string `json:"severity,omitempty"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
	Evidence       string `json:"evidence,omitempty"`
}

// CriterionResult holds the assessed outcome for one catalog criterion. The
// weight is carried alongside the score so a stream consumer can recompute
// aggregates without the catalog; WeightedScore is always computed locally
// and never taken from the judge.
type CriterionResult struct {
	CriterionID   string           `json:"criterion_id"`
	Name          string           `json:"name"`
	Icon          string           `json:"icon"`
	Score         int              `json:"score"`
	Status        Status           `json:"status"`
	Weight        float64          `json:"weight"`
	WeightedScore float64          `json:"weighted_score"`
	Problems      []ProblemFinding `json:"problems"`
}

// Snapshot is the accumulating state of one assessment run. The orchestrator
// owns the authoritative copy; a stream consumer rebuilds its own from frames.
type Snapshot struct {
	URL                string            `json:"url"`
	AnalyzedAt         time.Time         `json:"analyzed_at"`
	Results            []CriterionResult `json:"results"`
	ProvisionalScore   *float64          `json:"provisional_score,omitempty"`
	ProvisionalTeaser  string            `json:"provisional_teaser,omitempty"`
	OverallScore       float64           `json:"overall_score"`
	OverallCategory    string            `json:"overall_category"`
	SummaryText        string            `json:"summary_text"`
	Strengths          []string          `json:"strengths"`
	PrioritizedActions []string          `json:"prioritized_actions"`
	Leaks              []Leak            `json:"leaks"`
	Complete           bool              `json:"complete"`
	ErrorText          string            `json:"error_text,omitempty"`
}

// Clock abstracts time so AnalyzedAt is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator produces unique run identifiers.
type IDGenerator interface {
	NewID() (string, error)
}
