package stream

import (
	"encoding/json"
	"io"

	"github.com/leadlens/leadlens/internal/assess"
)

// Reducer folds frames into a consumer-side snapshot. It tolerates malformed
// frame payloads (the frame is skipped), treats progress frames as advisory,
// and applies categories/summary/complete in arrival order. A terminal frame
// freezes the snapshot; later frames are ignored.
type Reducer struct {
	snap     assess.Snapshot
	terminal bool
	skipped  int
}

// Apply folds one frame into the snapshot. It reports whether the frame was
// terminal.
func (r *Reducer) Apply(f Frame) bool {
	if r.terminal {
		return true
	}
	switch f.Type {
	case FrameProgress:
		// Advisory only.
	case FrameQuickResult:
		var p QuickResultPayload
		if !r.decode(f.Data, &p) {
			return false
		}
		r.snap.URL = p.URL
		r.snap.AnalyzedAt = p.AnalyzedAt
		r.snap.Results = p.Results
		score := p.ProvisionalScore
		r.snap.ProvisionalScore = &score
		r.snap.ProvisionalTeaser = p.Teaser
	case FrameCategories:
		var p CategoriesPayload
		if !r.decode(f.Data, &p) {
			return false
		}
		r.snap.URL = p.URL
		r.snap.AnalyzedAt = p.AnalyzedAt
		r.snap.Results = p.Results
		r.snap.Leaks = p.Leaks
	case FrameSummary:
		var p SummaryPayload
		if !r.decode(f.Data, &p) {
			return false
		}
		r.snap.OverallScore = p.OverallScore
		r.snap.OverallCategory = p.OverallCategory
		r.snap.SummaryText = p.SummaryText
		r.snap.Strengths = p.Strengths
		r.snap.PrioritizedActions = p.PrioritizedActions
	case FrameComplete:
		var p CompletePayload
		if r.decode(f.Data, &p) {
			if r.snap.URL == "" {
				r.snap.URL = p.URL
			}
			if r.snap.AnalyzedAt.IsZero() {
				r.snap.AnalyzedAt = p.AnalyzedAt
			}
		}
		r.snap.Complete = true
		r.terminal = true
	case FrameError:
		var p ErrorPayload
		if r.decode(f.Data, &p) {
			r.snap.ErrorText = p.Message
		} else {
			r.snap.ErrorText = "assessment failed"
		}
		r.terminal = true
	default:
		r.skipped++
	}
	return r.terminal
}

// Snapshot returns the current reduced state.
func (r *Reducer) Snapshot() assess.Snapshot { return r.snap }

// Terminal reports whether a complete or error frame has been applied.
func (r *Reducer) Terminal() bool { return r.terminal }

// Skipped reports how many frames were ignored as malformed or unknown.
func (r *Reducer) Skipped() int { return r.skipped }

func (r *Reducer) decode(data json.RawMessage, v any) bool {
	if err := json.Unmarshal(data, v); err != nil {
		r.skipped++
		return false
	}
	return true
}

// Reduce consumes an entire frame stream from rd and returns the final
// snapshot. Read errors after a terminal frame are ignored; before one, they
// are returned alongside whatever state accumulated.
func Reduce(rd io.Reader) (assess.Snapshot, error) {
	var (
		dec Decoder
		red Reducer
		buf [4096]byte
	)
	for {
		n, err := rd.Read(buf[:])
		if n > 0 {
			for _, f := range dec.Feed(buf[:n]) {
				if red.Apply(f) {
					return red.Snapshot(), nil
				}
			}
		}
		if err == io.EOF {
			return red.Snapshot(), nil
		}
		if err != nil {
			if red.Terminal() {
				return red.Snapshot(), nil
			}
			return red.Snapshot(), err
		}
	}
}
