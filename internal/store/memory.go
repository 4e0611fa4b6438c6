package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leadlens/leadlens/internal/assess"
)

// MemoryStore is an in-memory ReportStore for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	reports []Report
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// SaveReport appends one completed snapshot.
func (s *MemoryStore) SaveReport(_ context.Context, snap assess.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, Report{
		ID:              uuid.NewString(),
		URL:             snap.URL,
		AnalyzedAt:      snap.AnalyzedAt,
		OverallScore:    snap.OverallScore,
		OverallCategory: snap.OverallCategory,
		Snapshot:        snap,
	})
	return nil
}

// ListReports returns reports newest first.
func (s *MemoryStore) ListReports(_ context.Context, limit, offset int) ([]Report, error) {
	if limit <= 0 {
		limit = 50
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Stored oldest first; walk backwards for newest-first paging.
	n := len(s.reports)
	start := n - offset
	if start <= 0 {
		return nil, nil
	}
	out := make([]Report, 0, limit)
	for i := start - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.reports[i])
	}
	return out, nil
}

// GetReport loads one report by id.
func (s *MemoryStore) GetReport(_ context.Context, id string) (Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.reports {
		if r.ID == id {
			return r, nil
		}
	}
	return Report{}, ErrNotFound
}

// Stats aggregates the stored history.
func (s *MemoryStore) Stats(_ context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{TotalReports: len(s.reports)}
	midnight := time.Now().UTC().Truncate(24 * time.Hour)
	var sum float64
	for _, r := range s.reports {
		sum += r.OverallScore
		if !r.AnalyzedAt.Before(midnight) {
			stats.ReportsToday++
		}
	}
	if len(s.reports) > 0 {
		stats.AverageScore = sum / float64(len(s.reports))
	}
	stats.TopWeakCriteria = weakCriteria(s.reports, 2, 5)
	return stats, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() {}
