package assess

import (
	"errors"
	"fmt"
)

// ErrInvalidURL indicates the caller submitted a URL that cannot be
// normalized into a well-formed absolute URL. No frames are emitted.
var ErrInvalidURL = errors.New("invalid url")

// ErrJudgeUnavailable indicates the external judge call failed, timed out,
// or returned unparseable output. It never terminates a run; callers degrade
// to an empty result set.
var ErrJudgeUnavailable = errors.New("judgement unavailable")

// ErrUnknownCriterion indicates a lookup for an id absent from the catalog.
var ErrUnknownCriterion = errors.New("unknown criterion")

// RetrievalError reports that every retrieval strategy failed before the
// deadline for the given normalized URL.
type RetrievalError struct {
	URL   string
	Cause error
}

// Error implements the error interface.
func (e *RetrievalError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("retrieval failed for %s", e.URL)
	}
	return fmt.Sprintf("retrieval failed for %s: %v", e.URL, e.Cause)
}

// Unwrap exposes the underlying strategy error for errors.Is/As.
func (e *RetrievalError) Unwrap() error {
	return e.Cause
}
