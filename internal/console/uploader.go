package console

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-admin-console/internal/models"
	appErrors "github.com/noah-isme/campus-admin-console/pkg/errors"
	"github.com/noah-isme/campus-admin-console/pkg/storage"
)

// NamingStrategy decides the object name of an upload.
type NamingStrategy int

const (
	// NameTimestamp produces <unix-ms>-<original name>.
	NameTimestamp NamingStrategy = iota
	// NameRandom produces <unix-ms>-<random>.<ext>.
	NameRandom
)

// MediaTarget is where a resource keeps its files.
type MediaTarget struct {
	Bucket    string
	Prefix    string
	Naming    NamingStrategy
	Overwrite bool
}

// UploadObserver is told about every upload outcome.
type UploadObserver interface {
	ObserveUpload(bucket string, err error)
}

// Uploader stores files in object storage and resolves their public URL.
type Uploader struct {
	store    storage.ObjectStore
	observer UploadObserver
	logger   *zap.Logger
	now      func() time.Time
	random   func() string
}

// NewUploader builds an uploader over store.
func NewUploader(store storage.ObjectStore, observer UploadObserver, logger *zap.Logger) *Uploader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Uploader{
		store:    store,
		observer: observer,
		logger:   logger,
		now:      time.Now,
		random: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
		},
	}
}

// Upload stores file under target and returns its public reference.
func (u *Uploader) Upload(ctx context.Context, target MediaTarget, file *Upload) (models.MediaReference, error) {
	ref, err := u.upload(ctx, target, file)
	if u.observer != nil {
		u.observer.ObserveUpload(target.Bucket, err)
	}
	if err != nil {
		u.logger.Warn("upload failed", zap.String("bucket", target.Bucket), zap.Error(err))
		return models.MediaReference{}, appErrors.WrapAs(appErrors.ErrUpload, err, "File upload failed: "+err.Error())
	}
	return ref, nil
}

func (u *Uploader) upload(ctx context.Context, target MediaTarget, file *Upload) (models.MediaReference, error) {
	if u == nil || u.store == nil {
		return models.MediaReference{}, fmt.Errorf("object storage not configured")
	}
	if file == nil || file.Body == nil {
		return models.MediaReference{}, fmt.Errorf("no file provided")
	}

	key := u.PathFor(target, file.Filename)
	err := u.store.Upload(ctx, target.Bucket, key, file.Body, storage.UploadOptions{
		Overwrite:   target.Overwrite,
		ContentType: file.ContentType,
		Size:        file.Size,
	})
	if err != nil {
		return models.MediaReference{}, err
	}

	url := u.store.PublicURL(target.Bucket, key)
	if url == "" {
		return models.MediaReference{}, fmt.Errorf("no public url for %s/%s", target.Bucket, key)
	}
	return models.MediaReference{URL: url, Type: MediaType(file.ContentType)}, nil
}

// PathFor returns the object key an upload named filename gets.
func (u *Uploader) PathFor(target MediaTarget, filename string) string {
	stamp := strconv.FormatInt(u.now().UnixMilli(), 10)
	name := baseName(filename)
	if target.Naming == NameRandom {
		name = u.random() + strings.ToLower(path.Ext(name))
	}
	return target.Prefix + stamp + "-" + name
}

// MediaType classifies a content type as video or image.
func MediaType(contentType string) string {
	if strings.HasPrefix(strings.ToLower(contentType), models.MediaVideo) {
		return models.MediaVideo
	}
	return models.MediaImage
}

func baseName(filename string) string {
	name := strings.ReplaceAll(filename, "\\", "/")
	name = path.Base(name)
	if name == "." || name == "/" || name == ".." {
		return "file"
	}
	return name
}
