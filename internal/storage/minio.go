package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"cohort-chat-service/internal/config"
	"cohort-chat-service/internal/models"
)

// MediaStore persists uploaded message attachments and returns the URL the
// message record will reference.
type MediaStore interface {
	Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (models.Media, error)
}

// MinIOStore is a MediaStore backed by a MinIO (or any S3-compatible)
// bucket.
type MinIOStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
	logger    *zap.Logger
}

// NewMinIOStore connects to the object store and ensures the bucket exists.
func NewMinIOStore(ctx context.Context, cfg config.MinIOConfig, logger *zap.Logger) (*MinIOStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	store := &MinIOStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
		logger:    logger,
	}
	if err := store.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *MinIOStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Upload stores the attachment under a random object name, keeping the
// original extension, and returns the media descriptor for the message row.
func (s *MinIOStore) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (models.Media, error) {
	objectName := uuid.NewString() + path.Ext(filename)

	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		s.logger.Error("media upload failed",
			zap.String("object", objectName), zap.Int64("size", size), zap.Error(err))
		return models.Media{}, err
	}

	s.logger.Info("media uploaded",
		zap.String("object", objectName), zap.Int64("size", size), zap.String("content_type", contentType))

	return models.Media{
		URL:  s.objectURL(objectName),
		Type: ClassifyMedia(contentType),
	}, nil
}

func (s *MinIOStore) objectURL(objectName string) string {
	if s.publicURL != "" {
		return s.publicURL + "/" + s.bucket + "/" + objectName
	}
	scheme := "http"
	if s.client.EndpointURL().Scheme == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.client.EndpointURL().Host, s.bucket, objectName)
}

// ClassifyMedia maps an upload content type to the coarse media kind stored
// on the message: image uploads render inline, everything else is a file.
func ClassifyMedia(contentType string) string {
	if strings.HasPrefix(contentType, "image/") {
		return models.MediaImage
	}
	return models.MediaFile
}
