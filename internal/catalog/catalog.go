// Package catalog holds the fixed table of assessment criteria.
//
// The catalog is shared, versioned data: both the orchestrator and any
// stream consumer rely on the same ids, weights, and declaration order.
package catalog

import (
	"fmt"
	"sort"

	"github.com/leadlens/leadlens/internal/assess"
)

// Criterion is one named, weighted axis of assessment.
type Criterion struct {
	ID     string
	Name   string
	Icon   string
	Weight float64
}

// TotalWeight is the sum of all catalog weights.
const TotalWeight = 12.0

// QuickSubsetSize is the number of criteria assessed during the quick pass.
const QuickSubsetSize = 3

// criteria is the authoritative declaration order. Do not reorder: ties on
// weight are broken by this order everywhere results are sorted.
var criteria = []Criterion{
	{ID: "value_proposition", Name: "Value Proposition Clarity", Icon: "💎", Weight: 2.0},
	{ID: "call_to_action", Name: "Call to Action Effectiveness", Icon: "🎯", Weight: 1.5},
	{ID: "lead_magnets", Name: "Lead Magnet Quality", Icon: "🧲", Weight: 1.5},
	{ID: "form_design", Name: "Form Design & Friction", Icon: "📝", Weight: 1.25},
	{ID: "social_proof", Name: "Social Proof & Credibility", Icon: "⭐", Weight: 1.25},
	{ID: "guiding_content", Name: "Guiding Content", Icon: "🧭", Weight: 1.0},
	{ID: "offer_structure", Name: "Offer Structure", Icon: "📦", Weight: 1.0},
	{ID: "trust_signals", Name: "Trust Signals", Icon: "🛡️", Weight: 1.0},
	{ID: "message_match", Name: "Message Match & Consistency", Icon: "🔁", Weight: 0.75},
	{ID: "friction_reduction", Name: "Friction Reduction", Icon: "🧹", Weight: 0.75},
}

var byID = func() map[string]Criterion {
	m := make(map[string]Criterion, len(criteria))
	for _, c := range criteria {
		m[c.ID] = c
	}
	return m
}()

// All returns every criterion in declaration order. The caller owns the
// returned slice.
func All() []Criterion {
	out := make([]Criterion, len(criteria))
	copy(out, criteria)
	return out
}

// Lookup resolves a criterion by id.
func Lookup(id string) (Criterion, error) {
	c, ok := byID[id]
	if !ok {
		return Criterion{}, fmt.Errorf("%w: %q", assess.ErrUnknownCriterion, id)
	}
	return c, nil
}

// Contains reports whether the catalog defines the given id.
func Contains(id string) bool {
	_, ok := byID[id]
	return ok
}

// QuickSubset returns the highest-weight criteria used for the provisional
// pass. Ties keep declaration order.
func QuickSubset() []Criterion {
	sorted := All()
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Weight > sorted[j].Weight
	})
	return sorted[:QuickSubsetSize]
}

// IDs returns all catalog ids in declaration order.
func IDs() []string {
	ids := make([]string, 0, len(criteria))
	for _, c := range criteria {
		ids = append(ids, c.ID)
	}
	return ids
}

// DeclarationIndex returns the position of id in the catalog declaration
// order, or len(catalog) for unknown ids so they sort last.
func DeclarationIndex(id string) int {
	for i, c := range criteria {
		if c.ID == id {
			return i
		}
	}
	return len(criteria)
}
