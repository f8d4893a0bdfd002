// Package storage is the blob collaborator: original uploads become stored
// objects whose key the attachment row records. A GCS bucket when configured,
// the local disk otherwise.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BlobStore writes attachment bytes somewhere durable and returns the key the
// attachment row should record.
type BlobStore interface {
	IsConfigured() bool
	Upload(ctx context.Context, data []byte, path, mimeType string) (string, error)
}

// DiskStore is the local-disk fallback used when no bucket is configured.
type DiskStore struct {
	root string
}

func NewDiskStore(root string) *DiskStore {
	if root == "" {
		root = "./attachments"
	}
	return &DiskStore{root: root}
}

func (s *DiskStore) IsConfigured() bool { return true }

func (s *DiskStore) Upload(_ context.Context, data []byte, path, _ string) (string, error) {
	clean := filepath.Clean("/" + strings.TrimPrefix(path, "/"))
	full := filepath.Join(s.root, clean)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create attachment dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write attachment: %w", err)
	}
	return full, nil
}
