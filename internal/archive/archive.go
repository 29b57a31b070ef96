// Package archive keeps a copy of every camera image submitted for
// classification in S3-compatible object storage (MinIO).
package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/oshokin/catpoint/internal/classifier"
	"github.com/oshokin/catpoint/internal/config"
	"github.com/oshokin/catpoint/internal/logger"
)

// imageContentType is the content type stored with archived images.
const imageContentType = "image/jpeg"

// ObjectStore saves objects; minio.Client satisfies it through MinioStore.
type ObjectStore interface {
	PutImage(ctx context.Context, key string, image []byte) error
}

// MinioStore writes images into one bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects to the server described by the settings and ensures the bucket exists.
func NewMinioStore(ctx context.Context, settings *config.Archive) (*MinioStore, error) {
	client, err := minio.New(settings.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(settings.AccessKey, settings.SecretKey, ""),
		Secure: settings.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, settings.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", settings.Bucket, err)
	}

	if !exists {
		if err = client.MakeBucket(ctx, settings.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", settings.Bucket, err)
		}
	}

	return &MinioStore{client: client, bucket: settings.Bucket}, nil
}

// PutImage uploads the image under key.
func (s *MinioStore) PutImage(ctx context.Context, key string, image []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(image), int64(len(image)), minio.PutObjectOptions{
		ContentType: imageContentType,
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}

	return nil
}

// Classifier archives each image, then delegates to the wrapped classifier.
// Archive failures are logged and never block classification.
type Classifier struct {
	store ObjectStore
	next  classifier.Classifier
	// now returns the current time; replaced in tests.
	now func() time.Time
	// newID returns a unique object name; replaced in tests.
	newID func() string
}

// NewClassifier wraps next with archiving into store.
func NewClassifier(store ObjectStore, next classifier.Classifier) *Classifier {
	return &Classifier{
		store: store,
		next:  next,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// ImageContainsCat stores the image and classifies it.
func (c *Classifier) ImageContainsCat(ctx context.Context, image []byte, confidenceThreshold float32) (bool, error) {
	key := ObjectKey(c.now(), c.newID())

	if err := c.store.PutImage(ctx, key, image); err != nil {
		logger.WarnKV(ctx, "Failed to archive camera image", "key", key, "error", err)
	} else {
		logger.DebugKV(ctx, "Camera image archived", "key", key, "size", len(image))
	}

	return c.next.ImageContainsCat(ctx, image, confidenceThreshold)
}

// ObjectKey returns images/<yyyy>/<mm>/<dd>/<id>.jpg in UTC.
func ObjectKey(at time.Time, id string) string {
	return path.Join("images", at.UTC().Format("2006/01/02"), id+".jpg")
}
