// Package archive stores the raw payload that won the full-phase fetch so a
// report can later be audited against the markup it was scored on.
package archive

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/leadlens/leadlens/internal/assess"
)

// BlobStore writes one payload under a derived key and returns that key.
type BlobStore interface {
	Archive(ctx context.Context, payload assess.RawPayload) (string, error)
}

// Key derives the object key for a payload: an optional prefix, the strategy
// name, and the content hash. Identical content always maps to the same key,
// so re-archiving is idempotent.
func Key(prefix string, payload assess.RawPayload) string {
	sum := sha256.Sum256(payload.Body)
	key := fmt.Sprintf("%s/%s", payload.Strategy, hex.EncodeToString(sum[:]))
	if prefix != "" {
		key = strings.TrimSuffix(prefix, "/") + "/" + key
	}
	return key
}

func contentType(payload assess.RawPayload) string {
	if payload.Kind == assess.PayloadPlainText {
		return "text/plain; charset=utf-8"
	}
	return "text/html; charset=utf-8"
}
