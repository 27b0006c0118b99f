package storage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
)

// ErrObjectExists is returned when an upload without overwrite targets an existing object.
var ErrObjectExists = errors.New("object already exists")

// ErrInvalidPath is returned for object paths that escape their bucket.
var ErrInvalidPath = errors.New("invalid object path")

// UploadOptions tunes a single upload.
type UploadOptions struct {
	Overwrite   bool
	ContentType string
	Size        int64
}

// ObjectStore stores uploaded media under bucket/path and resolves its public URL.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, path string, body io.Reader, opts UploadOptions) error
	PublicURL(bucket, path string) string
}

func cleanKey(bucket, path string) (string, error) {
	if bucket == "" || path == "" {
		return "", ErrInvalidPath
	}
	for _, part := range strings.Split(bucket+"/"+path, "/") {
		if part == ".." || part == "." {
			return "", ErrInvalidPath
		}
	}
	if strings.HasPrefix(path, "/") || strings.Contains(bucket, "/") {
		return "", ErrInvalidPath
	}
	return path, nil
}

func joinURL(base string, segments ...string) string {
	escaped := make([]string, 0, len(segments)+1)
	escaped = append(escaped, strings.TrimRight(base, "/"))
	for _, seg := range segments {
		for _, part := range strings.Split(seg, "/") {
			escaped = append(escaped, url.PathEscape(part))
		}
	}
	return strings.Join(escaped, "/")
}
