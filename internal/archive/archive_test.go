package archive

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadlens/leadlens/internal/assess"
)

func markupPayload(body string) assess.RawPayload {
	return assess.RawPayload{
		Kind:     assess.PayloadMarkup,
		Strategy: "markup",
		Body:     []byte(body),
	}
}

func TestKeyDeterministic(t *testing.T) {
	t.Parallel()

	payload := markupPayload("<html></html>")
	assert.Equal(t, Key("raw", payload), Key("raw", payload))
	assert.True(t, strings.HasPrefix(Key("raw", payload), "raw/markup/"))
	assert.True(t, strings.HasPrefix(Key("raw/", payload), "raw/markup/"))
	assert.True(t, strings.HasPrefix(Key("", payload), "markup/"))

	other := markupPayload("<html>different</html>")
	assert.NotEqual(t, Key("raw", payload), Key("raw", other))
}

func TestMemoryStoreArchive(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore("raw")
	payload := markupPayload("<html></html>")

	key, err := s.Archive(context.Background(), payload)
	require.NoError(t, err)

	got, ok := s.Get(key)
	require.True(t, ok)
	assert.Equal(t, payload.Body, got)

	// Same content re-archives under the same key.
	again, err := s.Archive(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, key, again)
	assert.Equal(t, 1, s.Len())
}

func TestLocalStoreArchive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := NewLocalStore(dir, "raw")
	require.NoError(t, err)

	payload := markupPayload("<html><body>archived</body></html>")
	key, err := s.Archive(context.Background(), payload)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, payload.Body, data)
}

func TestNewLocalStoreRequiresDir(t *testing.T) {
	t.Parallel()

	_, err := NewLocalStore("", "raw")
	assert.Error(t, err)
}
