// Package orchestrator drives the two-phase assessment protocol: a
// best-effort quick pass over the highest-weight criteria, then the
// load-bearing full pass, reconciliation, and the terminal frames.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/leadlens/leadlens/internal/assess"
	"github.com/leadlens/leadlens/internal/catalog"
	"github.com/leadlens/leadlens/internal/fetch"
	"github.com/leadlens/leadlens/internal/judge"
	"github.com/leadlens/leadlens/internal/metrics"
	"github.com/leadlens/leadlens/internal/stream"
)

// Fetcher retrieves and normalizes one page per mode.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, mode assess.FetchMode) (fetch.Result, error)
}

// FrameWriter emits one typed frame to the consumer.
type FrameWriter interface {
	Encode(frameType stream.FrameType, payload any) error
}

// ReportSink records a completed snapshot. Failures never fail the run.
type ReportSink interface {
	SaveReport(ctx context.Context, snap assess.Snapshot) error
}

// PayloadArchive stores the full-phase winning raw payload. Best effort.
type PayloadArchive interface {
	Archive(ctx context.Context, payload assess.RawPayload) (string, error)
}

// CompletionPublisher announces a completed run to downstream consumers.
type CompletionPublisher interface {
	PublishCompletion(ctx context.Context, snap assess.Snapshot) error
}

// Deps wires the orchestrator's collaborators. Fetcher and Judge are
// required; Store, Archive, and Publisher are optional side-effect hooks.
type Deps struct {
	Fetcher   Fetcher
	Judge     judge.Judge
	Clock     assess.Clock
	IDs       assess.IDGenerator
	Logger    *zap.Logger
	Store     ReportSink
	Archive   PayloadArchive
	Publisher CompletionPublisher
}

// Orchestrator runs assessments. Safe for concurrent use; each run holds its
// own snapshot and shares nothing with other runs except the fetch cache.
type Orchestrator struct {
	deps Deps
}

// New validates deps and builds an Orchestrator.
func New(deps Deps) (*Orchestrator, error) {
	if deps.Fetcher == nil {
		return nil, errors.New("fetcher required")
	}
	if deps.Judge == nil {
		return nil, errors.New("judge required")
	}
	if deps.Clock == nil {
		return nil, errors.New("clock required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Orchestrator{deps: deps}, nil
}

// Run executes one assessment for rawURL, emitting frames to w. An invalid
// URL returns assess.ErrInvalidURL before any frame is written, so callers
// can still report a request-level error. Any later failure is reported as a
// single error frame and reflected in the returned snapshot.
func (o *Orchestrator) Run(ctx context.Context, rawURL string, w FrameWriter) (assess.Snapshot, error) {
	url, err := fetch.NormalizeURL(rawURL)
	if err != nil {
		metrics.ObserveRun("invalid_url")
		return assess.Snapshot{}, err
	}

	runID := o.runID()
	logger := o.deps.Logger.With(zap.String("runId", runID), zap.String("url", url))

	snap := assess.Snapshot{
		URL:        url,
		AnalyzedAt: o.deps.Clock.Now().UTC(),
	}

	o.quickPhase(ctx, url, &snap, w, logger)

	payload, ok := o.fullPhase(ctx, url, &snap, w, logger)
	if !ok {
		metrics.ObserveRun("error")
		return snap, nil
	}

	o.finish(ctx, snap, payload, w, logger)
	metrics.ObserveRun("complete")
	return snap, nil
}

// quickPhase is best effort from end to end: a fetch, judge, or emit failure
// is logged and the run proceeds straight to the full phase. No quickResult
// frame is emitted unless at least one verdict survived sanitization.
func (o *Orchestrator) quickPhase(ctx context.Context, url string, snap *assess.Snapshot, w FrameWriter, logger *zap.Logger) {
	o.progress(w, "quick_fetch", "Fetching page preview")

	res, err := o.deps.Fetcher.Fetch(ctx, url, assess.ModeQuick)
	if err != nil {
		logger.Info("quick fetch failed, skipping quick phase", zap.Error(err))
		return
	}

	o.progress(w, "quick_judging", "Scoring key criteria")

	subset := catalog.QuickSubset()
	resp, err := o.deps.Judge.Evaluate(ctx, judge.BuildRequest(url, judge.PhaseQuick, res.Document, subset))
	if err != nil {
		logger.Info("quick judgement unavailable, skipping quick phase", zap.Error(err))
		return
	}
	verdicts := judge.Sanitize(resp, subset, logger)
	if len(verdicts) == 0 {
		logger.Info("quick judgement produced no usable verdicts, skipping quick phase")
		return
	}

	results := resultsFromVerdicts(verdicts)
	sortResults(results)

	provisional := provisionalScore(results)
	snap.Results = results
	snap.ProvisionalScore = &provisional
	snap.ProvisionalTeaser = teaserFor(provisional)

	err = w.Encode(stream.FrameQuickResult, stream.QuickResultPayload{
		URL:              snap.URL,
		AnalyzedAt:       snap.AnalyzedAt,
		Results:          results,
		ProvisionalScore: provisional,
		Teaser:           snap.ProvisionalTeaser,
	})
	if err != nil {
		logger.Warn("failed to emit quick result", zap.Error(err))
	}
}

// fullPhase fetches the complete page. A fetch failure here is fatal to the
// run: one error frame, then the stream closes. A judge failure degrades to
// an empty verdict set and the run still completes.
func (o *Orchestrator) fullPhase(ctx context.Context, url string, snap *assess.Snapshot, w FrameWriter, logger *zap.Logger) (assess.RawPayload, bool) {
	o.progress(w, "full_fetch", "Fetching full page")

	res, err := o.deps.Fetcher.Fetch(ctx, url, assess.ModeFull)
	if err != nil {
		logger.Warn("full fetch failed", zap.Error(err))
		snap.ErrorText = fmt.Sprintf("could not retrieve %s", url)
		o.emitError(w, snap.ErrorText, logger)
		return assess.RawPayload{}, false
	}

	o.progress(w, "full_judging", "Scoring all criteria")

	all := catalog.All()
	var verdicts []judge.Verdict
	var insights *judge.Insights
	resp, err := o.deps.Judge.Evaluate(ctx, judge.BuildRequest(url, judge.PhaseFull, res.Document, all))
	if err != nil {
		logger.Warn("full judgement unavailable, degrading to placeholders", zap.Error(err))
	} else {
		verdicts = judge.Sanitize(resp, all, logger)
		insights = judge.SanitizeInsights(resp.Insights)
	}

	snap.Results = reconcile(verdicts)
	snap.Leaks = res.Document.Leaks
	snap.OverallScore = overallScore(snap.Results)
	snap.OverallCategory = categorize(snap.OverallScore)
	snap.Strengths = strengths(snap.Results, snap.OverallScore, insights)
	snap.PrioritizedActions = prioritizedActions(snap.Results)
	snap.SummaryText = summaryText(snap.OverallScore, snap.Results, snap.PrioritizedActions, insights)
	snap.Complete = true

	return res.Payload, true
}

// finish emits the terminal frames and runs the best-effort side effects.
func (o *Orchestrator) finish(ctx context.Context, snap assess.Snapshot, payload assess.RawPayload, w FrameWriter, logger *zap.Logger) {
	if err := w.Encode(stream.FrameCategories, stream.CategoriesPayload{
		URL:        snap.URL,
		AnalyzedAt: snap.AnalyzedAt,
		Results:    snap.Results,
		Leaks:      snap.Leaks,
	}); err != nil {
		logger.Warn("failed to emit categories", zap.Error(err))
	}

	if err := w.Encode(stream.FrameSummary, stream.SummaryPayload{
		OverallScore:       snap.OverallScore,
		OverallCategory:    snap.OverallCategory,
		SummaryText:        snap.SummaryText,
		Strengths:          snap.Strengths,
		PrioritizedActions: snap.PrioritizedActions,
	}); err != nil {
		logger.Warn("failed to emit summary", zap.Error(err))
	}

	if err := w.Encode(stream.FrameComplete, stream.CompletePayload{
		URL:        snap.URL,
		AnalyzedAt: snap.AnalyzedAt,
	}); err != nil {
		logger.Warn("failed to emit completion", zap.Error(err))
	}

	o.persistAndPublish(ctx, snap, payload, logger)
}

func (o *Orchestrator) persistAndPublish(ctx context.Context, snap assess.Snapshot, payload assess.RawPayload, logger *zap.Logger) {
	if o.deps.Store != nil {
		if err := o.deps.Store.SaveReport(ctx, snap); err != nil {
			logger.Warn("failed to persist report", zap.Error(err))
		}
	}
	if o.deps.Archive != nil && len(payload.Body) > 0 {
		if key, err := o.deps.Archive.Archive(ctx, payload); err != nil {
			logger.Warn("failed to archive payload", zap.Error(err))
		} else {
			logger.Debug("archived raw payload", zap.String("key", key))
		}
	}
	if o.deps.Publisher != nil {
		if err := o.deps.Publisher.PublishCompletion(ctx, snap); err != nil {
			logger.Warn("failed to publish completion", zap.Error(err))
		}
	}
}

func (o *Orchestrator) progress(w FrameWriter, stage, message string) {
	// Progress frames are advisory; emit failures are not worth surfacing.
	_ = w.Encode(stream.FrameProgress, stream.ProgressPayload{Stage: stage, Message: message})
}

func (o *Orchestrator) emitError(w FrameWriter, message string, logger *zap.Logger) {
	if err := w.Encode(stream.FrameError, stream.ErrorPayload{Message: message}); err != nil {
		logger.Warn("failed to emit error frame", zap.Error(err))
	}
}

func (o *Orchestrator) runID() string {
	if o.deps.IDs == nil {
		return ""
	}
	id, err := o.deps.IDs.NewID()
	if err != nil {
		return ""
	}
	return id
}
