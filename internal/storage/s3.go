package storage

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/reelkit/reelkit/internal/config"
	ierr "github.com/reelkit/reelkit/internal/errors"
	"github.com/reelkit/reelkit/internal/logger"
)

// SignedURLProvider mints time-limited read URLs for stored assets. Asset
// contents are opaque to this service; only the automation dispatch payload
// ever needs a readable URL.
type SignedURLProvider interface {
	SignedURL(ctx context.Context, storagePath string) (string, error)
}

type s3Provider struct {
	bucket    string
	ttl       time.Duration
	presigner *s3.PresignClient
	logger    *logger.Logger
}

// NewS3Provider builds a presigning client against the configured bucket.
func NewS3Provider(ctx context.Context, cfg *config.Configuration, log *logger.Logger) (SignedURLProvider, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Storage.Region))
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to load storage credentials").
			Mark(ierr.ErrSystem)
	}

	client := s3.NewFromConfig(awsCfg)
	return &s3Provider{
		bucket:    cfg.Storage.Bucket,
		ttl:       cfg.Storage.SignedURLTTL,
		presigner: s3.NewPresignClient(client),
		logger:    log,
	}, nil
}

func (p *s3Provider) SignedURL(ctx context.Context, storagePath string) (string, error) {
	result, err := p.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(storagePath),
	}, s3.WithPresignExpires(p.ttl))
	if err != nil {
		p.logger.Errorw("failed to generate signed url", "storage_path", storagePath, "error", err)
		return "", ierr.WithError(err).
			WithHint("Failed to generate signed asset URL").
			Mark(ierr.ErrInternal)
	}

	return result.URL, nil
}
