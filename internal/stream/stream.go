// Package stream implements the newline-delimited JSON frame protocol that
// carries assessment events from the orchestrator to a consumer, and the
// consumer-side reducer that folds frames back into a snapshot.
package stream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/leadlens/leadlens/internal/assess"
	"github.com/leadlens/leadlens/internal/metrics"
)

// FrameType discriminates the payload of a Frame.
type FrameType string

const (
	FrameProgress    FrameType = "progress"
	FrameQuickResult FrameType = "quickResult"
	FrameCategories  FrameType = "categories"
	FrameSummary     FrameType = "summary"
	FrameComplete    FrameType = "complete"
	FrameError       FrameType = "error"
)

// Frame is one self-delimited stream event: a type tag plus its payload.
type Frame struct {
	Type FrameType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ProgressPayload is advisory UI state; consumers never need it for
// correctness.
type ProgressPayload struct {
	Stage   string `json:"stage"`
	Message string `json:"message,omitempty"`
}

// QuickResultPayload carries the provisional quick-phase verdict. The score
// here covers only the quick criterion subset and must never be conflated
// with the final overall score.
type QuickResultPayload struct {
	URL              string                   `json:"url"`
	AnalyzedAt       time.Time                `json:"analyzed_at"`
	Results          []assess.CriterionResult `json:"results"`
	ProvisionalScore float64                  `json:"provisional_score"`
	Teaser           string                   `json:"teaser,omitempty"`
}

// CategoriesPayload carries the reconciled full result set.
type CategoriesPayload struct {
	URL        string                   `json:"url"`
	AnalyzedAt time.Time                `json:"analyzed_at"`
	Results    []assess.CriterionResult `json:"results"`
	Leaks      []assess.Leak            `json:"leaks"`
}

// SummaryPayload carries the final aggregates.
type SummaryPayload struct {
	OverallScore       float64  `json:"overall_score"`
	OverallCategory    string   `json:"overall_category"`
	SummaryText        string   `json:"summary_text"`
	Strengths          []string `json:"strengths"`
	PrioritizedActions []string `json:"prioritized_actions"`
}

// CompletePayload terminates a successful run.
type CompletePayload struct {
	URL        string    `json:"url"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}

// ErrorPayload terminates a failed run.
type ErrorPayload struct {
	Message string `json:"message"`
}

// Flusher is the subset of http.Flusher the encoder needs.
type Flusher interface {
	Flush()
}

// Encoder writes frames as newline-delimited JSON, flushing after each frame
// so consumers see events as they happen.
type Encoder struct {
	w       io.Writer
	flusher Flusher
}

// NewEncoder builds an Encoder. flusher may be nil.
func NewEncoder(w io.Writer, flusher Flusher) *Encoder {
	return &Encoder{w: w, flusher: flusher}
}

// Encode marshals payload into a frame of the given type and writes it.
func (e *Encoder) Encode(frameType FrameType, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", frameType, err)
	}
	line, err := json.Marshal(Frame{Type: frameType, Data: data})
	if err != nil {
		return fmt.Errorf("marshal %s frame: %w", frameType, err)
	}
	line = append(line, '\n')
	if _, err := e.w.Write(line); err != nil {
		return fmt.Errorf("write %s frame: %w", frameType, err)
	}
	if e.flusher != nil {
		e.flusher.Flush()
	}
	metrics.ObserveFrame(string(frameType))
	return nil
}

// Decoder reassembles whole frames from arbitrarily fragmented transport
// segments. Feed may be called with any byte slicing of the stream; a frame
// is yielded only once its terminating newline has arrived.
type Decoder struct {
	buf       []byte
	malformed int
}

// Feed appends a segment and returns every complete, parseable frame now
// available. Unparseable lines are skipped and counted, not returned.
func (d *Decoder) Feed(segment []byte) []Frame {
	d.buf = append(d.buf, segment...)

	var frames []Frame
	for {
		i := bytes.IndexByte(d.buf, '\n')
		if i < 0 {
			return frames
		}
		line := d.buf[:i]
		d.buf = d.buf[i+1:]
		if len(line) == 0 {
			continue
		}
		var f Frame
		if err := json.Unmarshal(line, &f); err != nil || f.Type == "" {
			d.malformed++
			continue
		}
		frames = append(frames, f)
	}
}

// Malformed reports how many lines were skipped as unparseable.
func (d *Decoder) Malformed() int { return d.malformed }
