package publish

import (
	"context"
	"fmt"
	"os"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	relerrors "releasekit.dev/releasekit/internal/errors"
)

// MinIOPublisher uploads to a bucket on an S3 compatible endpoint
type MinIOPublisher struct {
	client *minio.Client
	bucket string
}

// NewMinIOPublisher creates a publisher with static credentials, falling back to
// AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY
func NewMinIOPublisher(opts Options) (*MinIOPublisher, error) {
	if opts.Endpoint == "" {
		return nil, relerrors.NewConfigurationError("publish.endpoint", "the minio backend needs an endpoint")
	}
	accessKey := opts.AccessKey
	if accessKey == "" {
		accessKey = os.Getenv("AWS_ACCESS_KEY_ID")
	}
	secretKey := opts.SecretKey
	if secretKey == "" {
		secretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
	if accessKey == "" {
		return nil, relerrors.NewConfigurationError("AWS_ACCESS_KEY_ID", "")
	}
	if secretKey == "" {
		return nil, relerrors.NewConfigurationError("AWS_SECRET_ACCESS_KEY", "")
	}

	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: opts.Secure,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	bucket := opts.Bucket
	if bucket == "" {
		bucket = DefaultBucket
	}
	return &MinIOPublisher{client: client, bucket: bucket}, nil
}

// Upload puts localPath at key
func (p *MinIOPublisher) Upload(ctx context.Context, localPath, key string) error {
	_, err := p.client.FPutObject(ctx, p.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: DetectContentType(localPath),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to %s/%s: %w", localPath, p.bucket, key, err)
	}
	return nil
}
