// Package judge calls the external judgement service and enforces the trust
// boundary on its output.
package judge

import (
	"context"
	"math"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/leadlens/leadlens/internal/assess"
	"github.com/leadlens/leadlens/internal/catalog"
)

// Phase names the assessment phase a judgement belongs to.
type Phase string

const (
	PhaseQuick Phase = "quick"
	PhaseFull  Phase = "full"
)

// Request is the wire request sent to the judgement service.
type Request struct {
	URL      string             `json:"url"`
	Phase    Phase              `json:"phase"`
	Document assess.Document    `json:"document"`
	Criteria []RequestCriterion `json:"criteria"`
}

// RequestCriterion describes one criterion the judge must score.
type RequestCriterion struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// Judgement is one criterion verdict as returned by the judge, before
// sanitization.
type Judgement struct {
	CriterionID string                  `json:"criterionId"`
	Score       float64                 `json:"score"`
	Status      string                  `json:"status"`
	Problems    []assess.ProblemFinding `json:"problems"`
}

// Insights carries the judge's optional free-text output for the full phase.
type Insights struct {
	SummaryText string   `json:"summaryText,omitempty"`
	Strengths   []string `json:"strengths,omitempty"`
}

// Response is the wire response from the judgement service.
type Response struct {
	Judgements []Judgement `json:"judgements"`
	Insights   *Insights   `json:"insights,omitempty"`
}

// Judge evaluates a document against a set of criteria. Implementations
// return an error wrapping assess.ErrJudgeUnavailable when the service cannot
// produce a verdict.
type Judge interface {
	Evaluate(ctx context.Context, req Request) (Response, error)
}

// BuildRequest assembles the wire request for the given criteria subset.
func BuildRequest(url string, phase Phase, doc assess.Document, criteria []catalog.Criterion) Request {
	req := Request{
		URL:      url,
		Phase:    phase,
		Document: doc,
		Criteria: make([]RequestCriterion, 0, len(criteria)),
	}
	for _, c := range criteria {
		req.Criteria = append(req.Criteria, RequestCriterion{ID: c.ID, Name: c.Name, Weight: c.Weight})
	}
	return req
}

// Verdict is a sanitized judgement safe for the rest of the pipeline.
type Verdict struct {
	CriterionID string
	Score       int
	Status      assess.Status
	Problems    []assess.ProblemFinding
}

// Sanitize filters the judge's raw output down to trustworthy verdicts for
// the requested criteria. Unknown criterion ids are dropped with a warning,
// duplicate ids keep the first occurrence, scores are rounded and clamped to
// [1,5], and a missing or unrecognized status defaults to improvement.
// Requested criteria absent from the output are NOT synthesized here;
// reconciliation owns that.
func Sanitize(resp Response, requested []catalog.Criterion, logger *zap.Logger) []Verdict {
	if logger == nil {
		logger = zap.NewNop()
	}
	allowed := make(map[string]bool, len(requested))
	for _, c := range requested {
		allowed[c.ID] = true
	}

	seen := make(map[string]bool, len(resp.Judgements))
	out := make([]Verdict, 0, len(resp.Judgements))
	for _, j := range resp.Judgements {
		if !allowed[j.CriterionID] {
			logger.Warn("dropping judgement for unknown criterion",
				zap.String("criterionId", j.CriterionID),
			)
			continue
		}
		if seen[j.CriterionID] {
			continue
		}
		seen[j.CriterionID] = true

		status := assess.Status(j.Status)
		if !validStatus(j.Status) {
			status = assess.StatusImprovement
		}
		out = append(out, Verdict{
			CriterionID: j.CriterionID,
			Score:       clampScore(j.Score),
			Status:      status,
			Problems:    j.Problems,
		})
	}
	return out
}

// Length caps for the judge's free-text output.
const (
	maxSummaryRunes  = 600
	maxStrengthRunes = 200
)

// SanitizeInsights bounds the judge's free-text output before it can reach a
// frame: control characters become spaces, the summary and each strength are
// length-capped, and blank entries are dropped. Nil in, or nothing usable
// left, returns nil so callers fall back to locally composed text.
func SanitizeInsights(ins *Insights) *Insights {
	if ins == nil {
		return nil
	}
	out := &Insights{SummaryText: cleanText(ins.SummaryText, maxSummaryRunes)}
	for _, s := range ins.Strengths {
		if c := cleanText(s, maxStrengthRunes); c != "" {
			out.Strengths = append(out.Strengths, c)
		}
	}
	if out.SummaryText == "" && len(out.Strengths) == 0 {
		return nil
	}
	return out
}

func cleanText(s string, limit int) string {
	out := make([]rune, 0, limit)
	for _, r := range s {
		if unicode.IsControl(r) {
			r = ' '
		}
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}
	return strings.Join(strings.Fields(string(out)), " ")
}

func clampScore(s float64) int {
	r := int(math.Round(s))
	if r < 1 {
		return 1
	}
	if r > 5 {
		return 5
	}
	return r
}

func validStatus(s string) bool {
	switch assess.Status(s) {
	case assess.StatusCritical, assess.StatusImprovement, assess.StatusGood,
		assess.StatusNeutral, assess.StatusNotIdentified:
		return true
	}
	return false
}
