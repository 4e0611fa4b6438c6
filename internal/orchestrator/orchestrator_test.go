package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadlens/leadlens/internal/assess"
	"github.com/leadlens/leadlens/internal/catalog"
	"github.com/leadlens/leadlens/internal/fetch"
	"github.com/leadlens/leadlens/internal/judge"
	"github.com/leadlens/leadlens/internal/stream"
)

type recordedFrame struct {
	frameType stream.FrameType
	payload   any
}

// frameRecorder captures emitted frames in order for assertion.
type frameRecorder struct {
	frames []recordedFrame
}

func (r *frameRecorder) Encode(frameType stream.FrameType, payload any) error {
	r.frames = append(r.frames, recordedFrame{frameType: frameType, payload: payload})
	return nil
}

func (r *frameRecorder) types() []stream.FrameType {
	out := make([]stream.FrameType, 0, len(r.frames))
	for _, f := range r.frames {
		out = append(out, f.frameType)
	}
	return out
}

func (r *frameRecorder) count(frameType stream.FrameType) int {
	n := 0
	for _, f := range r.frames {
		if f.frameType == frameType {
			n++
		}
	}
	return n
}

func (r *frameRecorder) first(frameType stream.FrameType) (any, bool) {
	for _, f := range r.frames {
		if f.frameType == frameType {
			return f.payload, true
		}
	}
	return nil, false
}

type stubFetcher struct {
	quickErr error
	fullErr  error
	doc      assess.Document
	payload  assess.RawPayload
}

func (f *stubFetcher) Fetch(_ context.Context, url string, mode assess.FetchMode) (fetch.Result, error) {
	if mode == assess.ModeQuick && f.quickErr != nil {
		return fetch.Result{}, f.quickErr
	}
	if mode == assess.ModeFull && f.fullErr != nil {
		return fetch.Result{}, f.fullErr
	}
	doc := f.doc
	doc.URL = url
	return fetch.Result{Document: doc, Payload: f.payload}, nil
}

type stubJudge struct {
	quickResp judge.Response
	quickErr  error
	fullResp  judge.Response
	fullErr   error
	requests  []judge.Request
}

func (j *stubJudge) Evaluate(_ context.Context, req judge.Request) (judge.Response, error) {
	j.requests = append(j.requests, req)
	if req.Phase == judge.PhaseQuick {
		return j.quickResp, j.quickErr
	}
	return j.fullResp, j.fullErr
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type reportRecorder struct {
	saved []assess.Snapshot
	err   error
}

func (r *reportRecorder) SaveReport(_ context.Context, snap assess.Snapshot) error {
	r.saved = append(r.saved, snap)
	return r.err
}

type archiveRecorder struct {
	payloads []assess.RawPayload
}

func (a *archiveRecorder) Archive(_ context.Context, payload assess.RawPayload) (string, error) {
	a.payloads = append(a.payloads, payload)
	return "memory/markup/abc", nil
}

type publishRecorder struct {
	published []assess.Snapshot
}

func (p *publishRecorder) PublishCompletion(_ context.Context, snap assess.Snapshot) error {
	p.published = append(p.published, snap)
	return nil
}

// judgementsFor fabricates one judgement per catalog criterion with the given
// score and status.
func judgementsFor(score float64, status string) []judge.Judgement {
	all := catalog.All()
	out := make([]judge.Judgement, 0, len(all))
	for _, c := range all {
		out = append(out, judge.Judgement{CriterionID: c.ID, Score: score, Status: status})
	}
	return out
}

func quickJudgements(score float64, status string) []judge.Judgement {
	subset := catalog.QuickSubset()
	out := make([]judge.Judgement, 0, len(subset))
	for _, c := range subset {
		out = append(out, judge.Judgement{CriterionID: c.ID, Score: score, Status: status})
	}
	return out
}

func newOrchestrator(t *testing.T, deps Deps) *Orchestrator {
	t.Helper()
	if deps.Clock == nil {
		deps.Clock = fixedClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	}
	o, err := New(deps)
	require.NoError(t, err)
	return o
}

func TestRunInvalidURLEmitsNoFrames(t *testing.T) {
	t.Parallel()

	rec := &frameRecorder{}
	o := newOrchestrator(t, Deps{Fetcher: &stubFetcher{}, Judge: &stubJudge{}})

	_, err := o.Run(context.Background(), "ftp://example.se", rec)
	assert.True(t, errors.Is(err, assess.ErrInvalidURL))
	assert.Empty(t, rec.frames)
}

func TestRunHappyPath(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{
		doc:     assess.Document{Title: "Example"},
		payload: assess.RawPayload{Kind: assess.PayloadMarkup, Strategy: "markup", Body: []byte("<html></html>")},
	}
	j := &stubJudge{
		quickResp: judge.Response{Judgements: quickJudgements(4, "good")},
		fullResp: judge.Response{
			Judgements: judgementsFor(4, "good"),
			Insights:   &judge.Insights{SummaryText: "A well built page.", Strengths: []string{"Clear value proposition"}},
		},
	}
	store := &reportRecorder{}
	arch := &archiveRecorder{}
	pub := &publishRecorder{}
	rec := &frameRecorder{}

	o := newOrchestrator(t, Deps{Fetcher: fetcher, Judge: j, Store: store, Archive: arch, Publisher: pub})
	snap, err := o.Run(context.Background(), "Example.SE", rec)
	require.NoError(t, err)

	assert.Equal(t, []stream.FrameType{
		stream.FrameProgress, stream.FrameProgress, stream.FrameQuickResult,
		stream.FrameProgress, stream.FrameProgress,
		stream.FrameCategories, stream.FrameSummary, stream.FrameComplete,
	}, rec.types())

	assert.Equal(t, "https://example.se", snap.URL)
	assert.True(t, snap.Complete)
	assert.Len(t, snap.Results, len(catalog.All()))
	assert.Equal(t, 4.0, snap.OverallScore)
	assert.Equal(t, "Good", snap.OverallCategory)
	assert.Equal(t, "A well built page.", snap.SummaryText)
	assert.Equal(t, []string{"Clear value proposition"}, snap.Strengths)

	require.Len(t, store.saved, 1)
	require.Len(t, arch.payloads, 1)
	assert.Equal(t, "markup", arch.payloads[0].Strategy)
	require.Len(t, pub.published, 1)
	assert.True(t, pub.published[0].Complete)

	// Quick phase judged only the subset; full phase the whole catalog.
	require.Len(t, j.requests, 2)
	assert.Len(t, j.requests[0].Criteria, len(catalog.QuickSubset()))
	assert.Len(t, j.requests[1].Criteria, len(catalog.All()))
}

func TestRunProvisionalScoreIsNotFinalScore(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{doc: assess.Document{Title: "Example"}}
	j := &stubJudge{
		quickResp: judge.Response{Judgements: quickJudgements(5, "good")},
		fullResp:  judge.Response{Judgements: judgementsFor(2, "improvement")},
	}
	rec := &frameRecorder{}

	o := newOrchestrator(t, Deps{Fetcher: fetcher, Judge: j})
	snap, err := o.Run(context.Background(), "https://example.se", rec)
	require.NoError(t, err)

	require.NotNil(t, snap.ProvisionalScore)
	assert.Equal(t, 5.0, *snap.ProvisionalScore)
	assert.Equal(t, 2.0, snap.OverallScore)

	payload, ok := rec.first(stream.FrameQuickResult)
	require.True(t, ok)
	quick := payload.(stream.QuickResultPayload)
	assert.Equal(t, 5.0, quick.ProvisionalScore)
	assert.NotEmpty(t, quick.Teaser)

	payload, ok = rec.first(stream.FrameSummary)
	require.True(t, ok)
	summary := payload.(stream.SummaryPayload)
	assert.Equal(t, 2.0, summary.OverallScore)
	assert.Equal(t, "Poor", summary.OverallCategory)
}

// A partial judge response still yields one result per catalog criterion,
// with placeholders interleaved at their weight positions.
func TestRunReconcilesPartialJudgeResponse(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{doc: assess.Document{Title: "Example"}}
	j := &stubJudge{
		quickErr: errors.New("quick judge down"),
		fullResp: judge.Response{Judgements: []judge.Judgement{
			{CriterionID: "call_to_action", Score: 5, Status: "good"},
			{CriterionID: "message_match", Score: 1, Status: "critical", Problems: []assess.ProblemFinding{
				{Description: "Headline diverges from the ad copy.", Recommendation: "Align the headline with the ad promise."},
			}},
		}},
	}
	rec := &frameRecorder{}

	o := newOrchestrator(t, Deps{Fetcher: fetcher, Judge: j})
	snap, err := o.Run(context.Background(), "https://example.se", rec)
	require.NoError(t, err)
	require.Len(t, snap.Results, len(catalog.All()))

	placeholders := 0
	for _, r := range snap.Results {
		if r.Status == assess.StatusNotIdentified {
			placeholders++
			assert.Equal(t, 3, r.Score)
			require.Len(t, r.Problems, 1)
			assert.Contains(t, r.Problems[0].Description, "could not be assessed")
		}
	}
	assert.Equal(t, len(catalog.All())-2, placeholders)

	// Descending weight, judged and placeholder entries interleaved.
	for i := 1; i < len(snap.Results); i++ {
		assert.GreaterOrEqual(t, snap.Results[i-1].Weight, snap.Results[i].Weight)
	}
	assert.Equal(t, "value_proposition", snap.Results[0].CriterionID)
	assert.Equal(t, "call_to_action", snap.Results[1].CriterionID)
	assert.Equal(t, assess.StatusGood, snap.Results[1].Status)

	// The critical finding outranks every heavier placeholder.
	require.NotEmpty(t, snap.PrioritizedActions)
	assert.Equal(t, "Align the headline with the ad promise.", snap.PrioritizedActions[0])
}

// A failed quick fetch skips the quick phase entirely; the run still
// completes off the full phase.
func TestRunQuickFetchFailureSkipsQuickResult(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{
		quickErr: &assess.RetrievalError{URL: "https://example.se", Cause: errors.New("all strategies failed")},
		doc:      assess.Document{Title: "Example"},
	}
	j := &stubJudge{fullResp: judge.Response{Judgements: judgementsFor(4, "good")}}
	rec := &frameRecorder{}

	o := newOrchestrator(t, Deps{Fetcher: fetcher, Judge: j})
	snap, err := o.Run(context.Background(), "https://example.se", rec)
	require.NoError(t, err)

	assert.Zero(t, rec.count(stream.FrameQuickResult))
	assert.Equal(t, 1, rec.count(stream.FrameComplete))
	assert.True(t, snap.Complete)
	assert.Nil(t, snap.ProvisionalScore)
}

func TestRunQuickJudgeFailureSkipsQuickResult(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{doc: assess.Document{Title: "Example"}}
	j := &stubJudge{
		quickErr: assess.ErrJudgeUnavailable,
		fullResp: judge.Response{Judgements: judgementsFor(3, "neutral")},
	}
	rec := &frameRecorder{}

	o := newOrchestrator(t, Deps{Fetcher: fetcher, Judge: j})
	snap, err := o.Run(context.Background(), "https://example.se", rec)
	require.NoError(t, err)

	assert.Zero(t, rec.count(stream.FrameQuickResult))
	assert.True(t, snap.Complete)
}

// A failed full fetch is fatal: exactly one error frame, no terminal
// success frames, and the snapshot carries the error text.
func TestRunFullFetchFailureEmitsSingleErrorFrame(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{
		doc:     assess.Document{Title: "Example"},
		fullErr: &assess.RetrievalError{URL: "https://example.se", Cause: errors.New("timeout")},
	}
	j := &stubJudge{quickResp: judge.Response{Judgements: quickJudgements(4, "good")}}
	store := &reportRecorder{}
	rec := &frameRecorder{}

	o := newOrchestrator(t, Deps{Fetcher: fetcher, Judge: j, Store: store})
	snap, err := o.Run(context.Background(), "https://example.se", rec)
	require.NoError(t, err)

	assert.Equal(t, 1, rec.count(stream.FrameError))
	assert.Zero(t, rec.count(stream.FrameCategories))
	assert.Zero(t, rec.count(stream.FrameSummary))
	assert.Zero(t, rec.count(stream.FrameComplete))

	assert.False(t, snap.Complete)
	assert.Equal(t, "could not retrieve https://example.se", snap.ErrorText)
	assert.Empty(t, store.saved)
}

// A failed full judgement degrades to placeholders instead of failing the
// run.
func TestRunFullJudgeFailureDegrades(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{doc: assess.Document{Title: "Example"}}
	j := &stubJudge{
		quickErr: assess.ErrJudgeUnavailable,
		fullErr:  assess.ErrJudgeUnavailable,
	}
	rec := &frameRecorder{}

	o := newOrchestrator(t, Deps{Fetcher: fetcher, Judge: j})
	snap, err := o.Run(context.Background(), "https://example.se", rec)
	require.NoError(t, err)

	assert.True(t, snap.Complete)
	require.Len(t, snap.Results, len(catalog.All()))
	for _, r := range snap.Results {
		assert.Equal(t, assess.StatusNotIdentified, r.Status)
	}
	assert.Equal(t, 3.0, snap.OverallScore)
	assert.Equal(t, "Acceptable", snap.OverallCategory)
	assert.NotEmpty(t, snap.SummaryText)
	assert.Len(t, snap.PrioritizedActions, 6)
	assert.Equal(t, 1, rec.count(stream.FrameComplete))
}

func TestRunSideEffectFailureDoesNotFailRun(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{doc: assess.Document{Title: "Example"}}
	j := &stubJudge{
		quickResp: judge.Response{Judgements: quickJudgements(4, "good")},
		fullResp:  judge.Response{Judgements: judgementsFor(4, "good")},
	}
	store := &reportRecorder{err: errors.New("db down")}
	rec := &frameRecorder{}

	o := newOrchestrator(t, Deps{Fetcher: fetcher, Judge: j, Store: store})
	snap, err := o.Run(context.Background(), "https://example.se", rec)
	require.NoError(t, err)
	assert.True(t, snap.Complete)
	assert.Equal(t, 1, rec.count(stream.FrameComplete))
}

func TestRunCarriesLeaksIntoCategories(t *testing.T) {
	t.Parallel()

	leak := assess.Leak{Type: assess.LeakMailto, Severity: assess.LeakSeverityMedium, Location: "Email us"}
	fetcher := &stubFetcher{doc: assess.Document{Title: "Example", Leaks: []assess.Leak{leak}}}
	j := &stubJudge{
		quickErr: assess.ErrJudgeUnavailable,
		fullResp: judge.Response{Judgements: judgementsFor(4, "good")},
	}
	rec := &frameRecorder{}

	o := newOrchestrator(t, Deps{Fetcher: fetcher, Judge: j})
	snap, err := o.Run(context.Background(), "https://example.se", rec)
	require.NoError(t, err)
	require.Len(t, snap.Leaks, 1)

	payload, ok := rec.first(stream.FrameCategories)
	require.True(t, ok)
	categories := payload.(stream.CategoriesPayload)
	require.Len(t, categories.Leaks, 1)
	assert.Equal(t, assess.LeakMailto, categories.Leaks[0].Type)
}

func TestNewValidatesDeps(t *testing.T) {
	t.Parallel()

	_, err := New(Deps{Judge: &stubJudge{}, Clock: fixedClock{}})
	assert.Error(t, err)
	_, err = New(Deps{Fetcher: &stubFetcher{}, Clock: fixedClock{}})
	assert.Error(t, err)
	_, err = New(Deps{Fetcher: &stubFetcher{}, Judge: &stubJudge{}})
	assert.Error(t, err)
}
