package orchestrator

import (
	"fmt"
	"sort"

	"github.com/leadlens/leadlens/internal/assess"
	"github.com/leadlens/leadlens/internal/catalog"
	"github.com/leadlens/leadlens/internal/judge"
	"github.com/leadlens/leadlens/internal/scoring"
)

const (
	maxStrengths = 3
	maxActions   = 6
)

// reconcile merges sanitized verdicts against the full catalog: every
// criterion the judge skipped gets a neutral placeholder, and the merged list
// is sorted by descending weight with ties keeping catalog declaration order.
// The result always has exactly one entry per catalog id.
func reconcile(verdicts []judge.Verdict) []assess.CriterionResult {
	byID := make(map[string]judge.Verdict, len(verdicts))
	for _, v := range verdicts {
		byID[v.CriterionID] = v
	}

	results := make([]assess.CriterionResult, 0, len(catalog.All()))
	for _, c := range catalog.All() {
		v, ok := byID[c.ID]
		if !ok {
			results = append(results, placeholderResult(c))
			continue
		}
		results = append(results, resultFromVerdict(c, v))
	}
	sortResults(results)
	return results
}

// resultsFromVerdicts builds results for the quick subset only; nothing is
// synthesized for criteria outside the verdict set.
func resultsFromVerdicts(verdicts []judge.Verdict) []assess.CriterionResult {
	results := make([]assess.CriterionResult, 0, len(verdicts))
	for _, v := range verdicts {
		c, err := catalog.Lookup(v.CriterionID)
		if err != nil {
			continue
		}
		results = append(results, resultFromVerdict(c, v))
	}
	return results
}

func resultFromVerdict(c catalog.Criterion, v judge.Verdict) assess.CriterionResult {
	return assess.CriterionResult{
		CriterionID:   c.ID,
		Name:          c.Name,
		Icon:          c.Icon,
		Score:         v.Score,
		Status:        v.Status,
		Weight:        c.Weight,
		WeightedScore: scoring.WeightedScore(v.Score, c.Weight),
		Problems:      v.Problems,
	}
}

func placeholderResult(c catalog.Criterion) assess.CriterionResult {
	return assess.CriterionResult{
		CriterionID:   c.ID,
		Name:          c.Name,
		Icon:          c.Icon,
		Score:         3,
		Status:        assess.StatusNotIdentified,
		Weight:        c.Weight,
		WeightedScore: scoring.WeightedScore(3, c.Weight),
		Problems: []assess.ProblemFinding{{
			Description:    fmt.Sprintf("%s could not be assessed on this page.", c.Name),
			Recommendation: fmt.Sprintf("Make the elements relevant to %s visible in the page content.", c.Name),
		}},
	}
}

// sortResults orders by descending weight; the sort is stable so equal
// weights keep catalog declaration order.
func sortResults(results []assess.CriterionResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Weight != results[j].Weight {
			return results[i].Weight > results[j].Weight
		}
		return catalog.DeclarationIndex(results[i].CriterionID) < catalog.DeclarationIndex(results[j].CriterionID)
	})
}

func provisionalScore(results []assess.CriterionResult) float64 {
	return scoring.WeightedAverage(results)
}

func overallScore(results []assess.CriterionResult) float64 {
	return scoring.WeightedAverage(results)
}

func categorize(score float64) string {
	return scoring.Categorize(score)
}

// teaserFor produces the one-line provisional blurb for the quick frame,
// keyed by the same category boundaries as the final score.
func teaserFor(score float64) string {
	switch scoring.Categorize(score) {
	case scoring.CategoryCritical:
		return "First look: this page is likely losing most of its potential leads."
	case scoring.CategoryPoor:
		return "First look: significant conversion barriers are holding this page back."
	case scoring.CategoryAcceptable:
		return "First look: a workable foundation with clear room to convert more visitors."
	case scoring.CategoryGood:
		return "First look: this page is in good shape, with a few spots left to tighten."
	default:
		return "First look: this page is strongly optimized for conversion."
	}
}

// strengths lists the names of good-status criteria, capped. When the judge
// supplied its own strengths they win. With no strengths at all and an at
// least acceptable score, a single generic sentence keeps the section from
// reading as an omission.
func strengths(results []assess.CriterionResult, overall float64, insights *judge.Insights) []string {
	if insights != nil && len(insights.Strengths) > 0 {
		if len(insights.Strengths) > maxStrengths {
			return insights.Strengths[:maxStrengths]
		}
		return insights.Strengths
	}

	var out []string
	for _, r := range results {
		if r.Status == assess.StatusGood {
			out = append(out, r.Name)
			if len(out) == maxStrengths {
				break
			}
		}
	}
	if len(out) == 0 && overall >= 3 {
		out = []string{"The page holds a reasonable baseline across the assessed criteria."}
	}
	return out
}

// prioritizedActions selects criteria that have at least one problem and are
// not in good standing, critical status first, then by descending weight,
// capped. Each action is the first problem's recommendation, or a fallback
// naming the criterion.
func prioritizedActions(results []assess.CriterionResult) []string {
	var candidates []assess.CriterionResult
	for _, r := range results {
		if len(r.Problems) > 0 && r.Status != assess.StatusGood {
			candidates = append(candidates, r)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		ci := candidates[i].Status == assess.StatusCritical
		cj := candidates[j].Status == assess.StatusCritical
		if ci != cj {
			return ci
		}
		return candidates[i].Weight > candidates[j].Weight
	})

	actions := make([]string, 0, maxActions)
	for _, r := range candidates {
		text := r.Problems[0].Recommendation
		if text == "" {
			text = fmt.Sprintf("Review and improve %s.", r.Name)
		}
		actions = append(actions, text)
		if len(actions) == maxActions {
			break
		}
	}
	return actions
}

// summaryText composes the final summary from one of five templates selected
// by the category boundaries, parameterized by the critical count and the
// action count. Judge-supplied summary text, when present, wins.
func summaryText(overall float64, results []assess.CriterionResult, actions []string, insights *judge.Insights) string {
	if insights != nil && insights.SummaryText != "" {
		return insights.SummaryText
	}

	critical := 0
	for _, r := range results {
		if r.Status == assess.StatusCritical {
			critical++
		}
	}

	switch scoring.Categorize(overall) {
	case scoring.CategoryCritical:
		return fmt.Sprintf(
			"This page is losing most of its potential leads: %d critical issues were found. Work through the %d prioritized actions, starting at the top.",
			critical, len(actions))
	case scoring.CategoryPoor:
		return fmt.Sprintf(
			"Significant conversion barriers are in the way (%d critical issues). The %d prioritized actions below will have the biggest impact.",
			critical, len(actions))
	case scoring.CategoryAcceptable:
		return fmt.Sprintf(
			"The page has a solid foundation but leaves conversions on the table. %d targeted improvements are listed below.",
			len(actions))
	case scoring.CategoryGood:
		return fmt.Sprintf(
			"The page converts well overall. %d refinements below would push it further.",
			len(actions))
	default:
		return "The page is strongly optimized for conversion. Keep monitoring after content changes to hold this level."
	}
}
