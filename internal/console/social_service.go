package console

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-admin-console/internal/models"
	appErrors "github.com/noah-isme/campus-admin-console/pkg/errors"
)

// SocialServiceBucket holds the media of social service records.
const SocialServiceBucket = "socialservice-media"

// ServiceMediaStore is the service_media table.
type ServiceMediaStore interface {
	Store[models.ServiceMedia, models.ServiceMediaDraft]
	BatchInserter[models.ServiceMedia, models.ServiceMediaDraft]
	ForeignKeyDeleter
}

// SocialServiceResult is the outcome of registering a service.
type SocialServiceResult struct {
	Service       models.SocialService  `json:"service"`
	Media         []models.ServiceMedia `json:"media"`
	FailedUploads []string              `json:"failed_uploads,omitempty"`
}

// SocialServiceBoard registers social service activities with their media.
type SocialServiceBoard struct {
	Services *Controller[models.SocialService, models.SocialServiceDraft]
	Media    *Controller[models.ServiceMedia, models.ServiceMediaDraft]

	services Store[models.SocialService, models.SocialServiceDraft]
	media    ServiceMediaStore
	uploader *Uploader
	shared   Shared
}

// NewSocialServiceBoard builds the board over both tables.
func NewSocialServiceBoard(services Store[models.SocialService, models.SocialServiceDraft], media ServiceMediaStore, uploader *Uploader, opts Shared) *SocialServiceBoard {
	opts = opts.withDefaults()
	return &SocialServiceBoard{
		Services: NewController(SocialServiceDefinition(), services, uploader, opts.Validate, opts.Logger),
		Media:    NewController(ServiceMediaDefinition(), media, uploader, opts.Validate, opts.Logger),
		services: services,
		media:    media,
		uploader: uploader,
		shared:   opts,
	}
}

// MediaTargetFor returns where files of serviceID are stored.
func MediaTargetFor(serviceID string) MediaTarget {
	return MediaTarget{
		Bucket:    SocialServiceBucket,
		Prefix:    "socialservice/" + serviceID + "/",
		Naming:    NameTimestamp,
		Overwrite: true,
	}
}

// Submit inserts the service, uploads every file and records the uploaded media
// in one batch. Files that fail to upload are skipped and reported as ErrUpload
// together with the partial result.
func (b *SocialServiceBoard) Submit(ctx context.Context, draft models.SocialServiceDraft, files []*Upload) (*SocialServiceResult, error) {
	if err := b.shared.Validate.Struct(draft); err != nil {
		return nil, validationError(err)
	}

	service, err := b.services.Insert(ctx, draft)
	if err != nil {
		b.shared.Logger.Warn("insert social service failed", zap.Error(err))
		return nil, appErrors.WrapAs(appErrors.ErrWrite, err, "Failed to add item: "+err.Error())
	}
	result := &SocialServiceResult{Service: service, Media: []models.ServiceMedia{}}

	target := MediaTargetFor(service.ID)
	drafts := make([]models.ServiceMediaDraft, 0, len(files))
	for _, file := range files {
		if file == nil {
			continue
		}
		ref, err := b.uploader.Upload(ctx, target, file)
		if err != nil {
			result.FailedUploads = append(result.FailedUploads, file.Filename)
			continue
		}
		drafts = append(drafts, models.ServiceMediaDraft{ServiceID: service.ID, URL: ref.URL, Type: ref.Type})
	}

	if len(drafts) > 0 {
		rows, err := b.media.InsertMany(ctx, drafts)
		if err != nil {
			b.shared.Logger.Warn("insert service media failed", zap.String("service_id", service.ID), zap.Error(err))
			b.refresh(ctx)
			return result, appErrors.WrapAs(appErrors.ErrWrite, err, "Failed to add item: "+err.Error())
		}
		result.Media = rows
	}
	b.refresh(ctx)

	if len(result.FailedUploads) > 0 {
		return result, appErrors.Clone(appErrors.ErrUpload, "File upload failed: "+strings.Join(result.FailedUploads, ", "))
	}
	return result, nil
}

// MediaFor filters the held media by service.
func (b *SocialServiceBoard) MediaFor(serviceID string) []models.ServiceMedia {
	all := b.Media.Records()
	out := make([]models.ServiceMedia, 0, len(all))
	for _, m := range all {
		if m.ServiceID == serviceID {
			out = append(out, m)
		}
	}
	return out
}

// DeleteService removes the media rows of the service and then the service.
func (b *SocialServiceBoard) DeleteService(ctx context.Context, serviceID string) error {
	if err := b.media.DeleteWhere(ctx, "service_id", serviceID); err != nil {
		return appErrors.WrapAs(appErrors.ErrWrite, err, "Failed to delete item: "+err.Error())
	}
	err := b.Services.Delete(ctx, serviceID)
	_ = b.Media.Refresh(ctx)
	return err
}

// Refresh re-reads both lists.
func (b *SocialServiceBoard) Refresh(ctx context.Context) error {
	errS := b.Services.Refresh(ctx)
	errM := b.Media.Refresh(ctx)
	if errS != nil {
		return errS
	}
	return errM
}

func (b *SocialServiceBoard) refresh(ctx context.Context) {
	_ = b.Refresh(ctx)
}
