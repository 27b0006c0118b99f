package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/noah-isme/campus-admin-console/pkg/config"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Storage uploads media to an S3 compatible service (AWS, MinIO).
type S3Storage struct {
	client     s3API
	publicBase string
}

// NewS3Storage builds a client from static credentials. publicBase is the URL prefix
// objects are reachable under; it defaults to the endpoint in path style.
func NewS3Storage(ctx context.Context, cfg config.S3Config, publicBase string) (*S3Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})

	if publicBase == "" {
		if cfg.Endpoint != "" {
			publicBase = cfg.Endpoint
		} else {
			publicBase = fmt.Sprintf("https://s3.%s.amazonaws.com", cfg.Region)
		}
	}

	return &S3Storage{client: client, publicBase: publicBase}, nil
}

// Upload puts the object. Without Overwrite the write is conditional on absence.
func (s *S3Storage) Upload(ctx context.Context, bucket, path string, body io.Reader, opts UploadOptions) error {
	key, err := cleanKey(bucket, path)
	if err != nil {
		return err
	}

	in := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if opts.ContentType != "" {
		in.ContentType = aws.String(opts.ContentType)
	}
	if opts.Size > 0 {
		in.ContentLength = aws.Int64(opts.Size)
	}
	if !opts.Overwrite {
		in.IfNoneMatch = aws.String("*")
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed" {
			return fmt.Errorf("%s/%s: %w", bucket, key, ErrObjectExists)
		}
		return fmt.Errorf("put object %s/%s: %w", bucket, key, err)
	}
	return nil
}

// PublicURL returns the path-style URL of the object.
func (s *S3Storage) PublicURL(bucket, path string) string {
	if _, err := cleanKey(bucket, path); err != nil {
		return ""
	}
	return joinURL(s.publicBase, bucket, path)
}
