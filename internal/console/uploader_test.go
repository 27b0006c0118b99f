package console

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-admin-console/internal/models"
	appErrors "github.com/noah-isme/campus-admin-console/pkg/errors"
)

type observedUpload struct {
	bucket string
	err    error
}

type recordingObserver struct{ seen []observedUpload }

func (r *recordingObserver) ObserveUpload(bucket string, err error) {
	r.seen = append(r.seen, observedUpload{bucket: bucket, err: err})
}

func fixedUploader(objects *fakeObjects, observer UploadObserver) *Uploader {
	u := NewUploader(objects, observer, nil)
	u.now = func() time.Time { return time.UnixMilli(1700000000000) }
	u.random = func() string { return "k3j9x" }
	return u
}

func TestPathForNamingStrategies(t *testing.T) {
	u := fixedUploader(newFakeObjects(), nil)

	assert.Equal(t, "course/1700000000000-intro.png", u.PathFor(MediaTarget{Prefix: "course/", Naming: NameTimestamp}, "intro.png"))
	assert.Equal(t, "1700000000000-k3j9x.jpg", u.PathFor(MediaTarget{Naming: NameRandom}, "Holiday.JPG"))
	assert.Equal(t, "class/1700000000000-evil.png", u.PathFor(MediaTarget{Prefix: "class/"}, "../../evil.png"))
	assert.Equal(t, "1700000000000-k3j9x", u.PathFor(MediaTarget{Naming: NameRandom}, "noext"))
}

func TestUploadReturnsPublicReference(t *testing.T) {
	objects := newFakeObjects()
	observer := &recordingObserver{}
	u := fixedUploader(objects, observer)

	ref, err := u.Upload(context.Background(), MediaTarget{Bucket: "gallery", Naming: NameRandom}, &Upload{
		Filename: "clip.mov", ContentType: "video/quicktime", Body: strings.NewReader("data"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.MediaReference{URL: "https://cdn.test/gallery/1700000000000-k3j9x.mov", Type: models.MediaVideo}, ref)
	assert.Equal(t, "data", objects.bodies["gallery/1700000000000-k3j9x.mov"])
	require.Len(t, observer.seen, 1)
	assert.NoError(t, observer.seen[0].err)
}

func TestUploadFailures(t *testing.T) {
	objects := newFakeObjects()
	objects.failFor["bad"] = true
	observer := &recordingObserver{}
	u := fixedUploader(objects, observer)
	target := MediaTarget{Bucket: "class-image", Prefix: "class/"}

	_, err := u.Upload(context.Background(), target, &Upload{Filename: "a.png", Body: strings.NewReader("bad")})
	assert.ErrorIs(t, err, appErrors.ErrUpload)

	objects.noURL = true
	_, err = u.Upload(context.Background(), target, &Upload{Filename: "a.png", Body: strings.NewReader("ok")})
	assert.ErrorIs(t, err, appErrors.ErrUpload)

	_, err = NewUploader(nil, nil, nil).Upload(context.Background(), target, &Upload{Filename: "a.png", Body: strings.NewReader("ok")})
	assert.ErrorIs(t, err, appErrors.ErrUpload)

	require.Len(t, observer.seen, 2)
	assert.Error(t, observer.seen[1].err)
}

func TestMediaType(t *testing.T) {
	assert.Equal(t, models.MediaVideo, MediaType("video/mp4"))
	assert.Equal(t, models.MediaImage, MediaType("image/png"))
	assert.Equal(t, models.MediaImage, MediaType(""))
}
