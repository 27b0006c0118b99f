package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStorage persists media on disk as baseDir/bucket/path. The HTTP server
// exposes baseDir statically under the public base URL.
type LocalStorage struct {
	baseDir    string
	publicBase string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir, publicBase string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./media"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create media directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir, publicBase: publicBase}, nil
}

// Upload copies body into the bucket. Without Overwrite an existing object is an error.
func (s *LocalStorage) Upload(ctx context.Context, bucket, path string, body io.Reader, opts UploadOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := cleanKey(bucket, path)
	if err != nil {
		return err
	}

	target := filepath.Join(s.baseDir, bucket, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("prepare media directory: %w", err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !opts.Overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	file, err := os.OpenFile(target, flags, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%s/%s: %w", bucket, key, ErrObjectExists)
		}
		return fmt.Errorf("create media file: %w", err)
	}
	defer file.Close() //nolint:errcheck

	if _, err := io.Copy(file, body); err != nil {
		return fmt.Errorf("write media file: %w", err)
	}
	return nil
}

// PublicURL returns the URL the static route serves the object from.
func (s *LocalStorage) PublicURL(bucket, path string) string {
	if _, err := cleanKey(bucket, path); err != nil {
		return ""
	}
	return joinURL(s.publicBase, bucket, path)
}

// Dir is the directory served as static media.
func (s *LocalStorage) Dir() string {
	return s.baseDir
}
