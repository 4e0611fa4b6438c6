// Package publisher announces completed assessments to downstream consumers.
package publisher

import (
	"context"
	"time"

	"github.com/leadlens/leadlens/internal/assess"
)

// Publisher delivers one JSON-serializable payload to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Completion is the compact message published when a run completes.
type Completion struct {
	URL             string    `json:"url"`
	AnalyzedAt      time.Time `json:"analyzed_at"`
	OverallScore    float64   `json:"overall_score"`
	OverallCategory string    `json:"overall_category"`
	LeakCount       int       `json:"leak_count"`
}

// CompletionNotifier adapts a Publisher to the orchestrator's completion
// hook, pinning the topic and payload shape.
type CompletionNotifier struct {
	pub   Publisher
	topic string
}

// NewCompletionNotifier builds a notifier over pub.
func NewCompletionNotifier(pub Publisher, topic string) *CompletionNotifier {
	return &CompletionNotifier{pub: pub, topic: topic}
}

// PublishCompletion publishes the compact completion message.
func (n *CompletionNotifier) PublishCompletion(ctx context.Context, snap assess.Snapshot) error {
	_, err := n.pub.Publish(ctx, n.topic, Completion{
		URL:             snap.URL,
		AnalyzedAt:      snap.AnalyzedAt,
		OverallScore:    snap.OverallScore,
		OverallCategory: snap.OverallCategory,
		LeakCount:       len(snap.Leaks),
	})
	return err
}
