package aws

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/storage/s3/v2"
	"github.com/google/uuid"

	"catalog/domain"
	"catalog/pkg/config"
)

// bucket is the subset of the fiber s3 storage the image store needs.
type bucket interface {
	SetWithContext(ctx context.Context, key string, val []byte, exp time.Duration) error
	DeleteWithContext(ctx context.Context, key string) error
}

// S3 stores item images in a bucket and addresses them by public URL.
type S3 struct {
	bucket   bucket
	endpoint string
	name     string
	region   string
}

func NewS3Bucket(cfg *config.AppConfig) *S3 {
	storage := s3.New(s3.Config{
		Endpoint: cfg.AWSEndpoint,
		Bucket:   cfg.AWSBucket,
		Region:   cfg.AWSDefaultRegion,
		Credentials: s3.Credentials{
			AccessKey:       cfg.AWSAccessKey,
			SecretAccessKey: cfg.AWSSecretKey,
		},
		MaxAttempts:    cfg.AWSMaxAttempts,
		RequestTimeout: cfg.AWSRequestTimeout,
		Reset:          false,
	})

	return newS3(storage, cfg.AWSEndpoint, cfg.AWSBucket, cfg.AWSDefaultRegion)
}

func newS3(b bucket, endpoint, name, region string) *S3 {
	return &S3{
		bucket:   b,
		endpoint: strings.TrimRight(endpoint, "/"),
		name:     name,
		region:   region,
	}
}

// Upload writes the image under items/<key>/ with a fresh name, so a
// replacement never overwrites the object a previous URI points at.
func (s *S3) Upload(ctx context.Context, image domain.Image, key string) (string, error) {
	objectKey := fmt.Sprintf("items/%s/%s%s", key, uuid.NewString(), image.Ext())
	if err := s.bucket.SetWithContext(ctx, objectKey, image.Data, 0); err != nil {
		return "", fmt.Errorf("upload %s: %w", objectKey, err)
	}
	return s.constructImageURL(objectKey), nil
}

// Delete removes the object behind uri. A URI that does not point into the
// bucket's item prefix fails with domain.ErrUnmanagedImage.
func (s *S3) Delete(ctx context.Context, uri string) error {
	objectKey, err := s.extractImageKey(uri)
	if err != nil {
		return err
	}
	if err := s.bucket.DeleteWithContext(ctx, objectKey); err != nil {
		return fmt.Errorf("delete %s: %w", objectKey, err)
	}
	return nil
}

// constructImageURL uses path-style addressing when a custom endpoint is
// configured and virtual-hosted style against AWS otherwise.
func (s *S3) constructImageURL(objectKey string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.name, objectKey)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.name, s.region, objectKey)
}

func (s *S3) extractImageKey(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil || u.Path == "" {
		return "", fmt.Errorf("%w: malformed image uri %q", domain.ErrUnmanagedImage, uri)
	}
	path := strings.TrimPrefix(u.Path, "/")
	if s.endpoint != "" {
		path = strings.TrimPrefix(path, s.name+"/")
	}
	if !strings.HasPrefix(path, "items/") {
		return "", fmt.Errorf("%w: image uri %q is outside the item prefix", domain.ErrUnmanagedImage, uri)
	}
	return path, nil
}
