package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"

	"github.com/leadlens/leadlens/internal/assess"
)

// GCSStore archives payloads into a Google Cloud Storage bucket.
type GCSStore struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSStore creates a GCS-backed archive.
func NewGCSStore(client *storage.Client, bucket, prefix string) (*GCSStore, error) {
	if client == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	return &GCSStore{client: client, bucket: bucket, prefix: prefix}, nil
}

// Archive uploads the payload body and returns a gs:// URI.
func (s *GCSStore) Archive(ctx context.Context, payload assess.RawPayload) (string, error) {
	key := Key(s.prefix, payload)
	writer := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	writer.ContentType = contentType(payload)
	if _, err := io.Copy(writer, bytes.NewReader(payload.Body)); err != nil {
		closeErr := writer.Close()
		if closeErr != nil {
			return "", fmt.Errorf("copy object: %w (close writer: %v)", err, closeErr)
		}
		return "", fmt.Errorf("copy object: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close writer: %w", err)
	}
	return fmt.Sprintf("gs://%s/%s", s.bucket, key), nil
}
