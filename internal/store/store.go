// Package store persists completed assessment reports.
package store

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/leadlens/leadlens/internal/assess"
)

// ErrNotFound signals that the requested record does not exist.
var ErrNotFound = errors.New("report not found")

// Report is one persisted assessment run.
type Report struct {
	ID              string          `json:"id"`
	URL             string          `json:"url"`
	AnalyzedAt      time.Time       `json:"analyzed_at"`
	OverallScore    float64         `json:"overall_score"`
	OverallCategory string          `json:"overall_category"`
	Snapshot        assess.Snapshot `json:"snapshot"`
}

// CriterionCount pairs a criterion id with how often it scored poorly.
type CriterionCount struct {
	CriterionID string `json:"criterion_id"`
	Count       int    `json:"count"`
}

// Stats aggregates the report history for the admin surface.
type Stats struct {
	TotalReports    int              `json:"total_reports"`
	ReportsToday    int              `json:"reports_today"`
	AverageScore    float64          `json:"average_score"`
	TopWeakCriteria []CriterionCount `json:"top_weak_criteria"`
}

// ReportStore records completed runs and serves the admin endpoints.
type ReportStore interface {
	// SaveReport persists one completed snapshot.
	SaveReport(ctx context.Context, snap assess.Snapshot) error
	// ListReports returns reports newest first, paged by limit/offset.
	ListReports(ctx context.Context, limit, offset int) ([]Report, error)
	// GetReport loads one report or returns ErrNotFound.
	GetReport(ctx context.Context, id string) (Report, error)
	// Stats aggregates the stored history.
	Stats(ctx context.Context) (Stats, error)
	// Close releases underlying resources.
	Close()
}

// weakCriteria counts criteria scoring at or below the threshold across the
// given reports, strongest offenders first. Shared by both implementations so
// the admin surface behaves identically against either backend.
func weakCriteria(reports []Report, threshold, top int) []CriterionCount {
	counts := map[string]int{}
	for _, r := range reports {
		for _, res := range r.Snapshot.Results {
			if res.Status == assess.StatusNotIdentified {
				continue
			}
			if res.Score <= threshold {
				counts[res.CriterionID]++
			}
		}
	}
	out := make([]CriterionCount, 0, len(counts))
	for id, n := range counts {
		out = append(out, CriterionCount{CriterionID: id, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].CriterionID < out[j].CriterionID
	})
	if len(out) > top {
		out = out[:top]
	}
	return out
}
