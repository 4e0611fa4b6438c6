package publisher_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadlens/leadlens/internal/assess"
	"github.com/leadlens/leadlens/internal/publisher"
	"github.com/leadlens/leadlens/internal/publisher/memory"
)

func TestCompletionNotifierPublishesCompactMessage(t *testing.T) {
	t.Parallel()

	pub := memory.New()
	notifier := publisher.NewCompletionNotifier(pub, "assessments")

	snap := assess.Snapshot{
		URL:             "https://example.se",
		AnalyzedAt:      time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		OverallScore:    3.8,
		OverallCategory: "Good",
		Leaks: []assess.Leak{
			{Type: assess.LeakMailto},
			{Type: assess.LeakDocument},
		},
		Complete: true,
	}
	require.NoError(t, notifier.PublishCompletion(context.Background(), snap))

	msgs := pub.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "assessments", msgs[0].Topic)

	completion, ok := msgs[0].Payload.(publisher.Completion)
	require.True(t, ok)
	assert.Equal(t, "https://example.se", completion.URL)
	assert.Equal(t, 3.8, completion.OverallScore)
	assert.Equal(t, "Good", completion.OverallCategory)
	assert.Equal(t, 2, completion.LeakCount)
}

func TestMemoryPublisherIDs(t *testing.T) {
	t.Parallel()

	pub := memory.New()
	id1, err := pub.Publish(context.Background(), "t", "a")
	require.NoError(t, err)
	id2, err := pub.Publish(context.Background(), "t", "b")
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)
	assert.Len(t, pub.Messages(), 2)
}
