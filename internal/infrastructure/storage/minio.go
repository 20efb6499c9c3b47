package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/pkg/config"
)

const minioScheme = "minio://"

// MinIOStore keeps uploaded media in a MinIO (or any S3-compatible) bucket
type MinIOStore struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

// NewMinIOStore creates a MinIO client and makes sure the bucket exists
func NewMinIOStore(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (*MinIOStore, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	store := &MinIOStore{client: minioClient, bucket: cfg.BucketName, logger: logger}
	if err := store.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}
	return store, nil
}

// ensureBucket creates the bucket when it does not exist. Media stays private.
func (m *MinIOStore) ensureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	m.logger.Info("🪣 Created media bucket", zap.String("bucket", m.bucket))
	return nil
}

// Put uploads the media and returns a minio:// reference
func (m *MinIOStore) Put(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error) {
	key := objectKey(filename)
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload media: %w", err)
	}
	return minioScheme + m.bucket + "/" + key, nil
}

// Open downloads the object to a temp file; cleanup removes it
func (m *MinIOStore) Open(ctx context.Context, ref string) (string, func(), error) {
	bucket, key := m.parseRef(ref)

	if _, err := m.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{}); err != nil {
		if isNotFound(err) {
			return "", nil, entities.ErrMediaNotFound
		}
		return "", nil, fmt.Errorf("failed to stat media: %w", err)
	}

	tmp, err := os.CreateTemp("", "meeting-media-*"+filepath.Ext(key))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	path := tmp.Name()
	tmp.Close()
	cleanup := func() { os.Remove(path) }

	if err := m.client.FGetObject(ctx, bucket, key, path, minio.GetObjectOptions{}); err != nil {
		cleanup()
		if isNotFound(err) {
			return "", nil, entities.ErrMediaNotFound
		}
		return "", nil, fmt.Errorf("failed to download media: %w", err)
	}
	return path, cleanup, nil
}

// parseRef accepts minio://bucket/key or a bare key in the configured bucket
func (m *MinIOStore) parseRef(ref string) (bucket, key string) {
	return parseMinIORef(ref, m.bucket)
}

func parseMinIORef(ref, defaultBucket string) (bucket, key string) {
	if rest, ok := strings.CutPrefix(ref, minioScheme); ok {
		if b, k, found := strings.Cut(rest, "/"); found && b != "" {
			return b, k
		}
		return defaultBucket, rest
	}
	return defaultBucket, strings.TrimPrefix(ref, "/")
}

func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NoSuchBucket"
}

// objectKey places uploads under meetings/ with a unique prefix
func objectKey(filename string) string {
	base := sanitizeName(filename)
	return fmt.Sprintf("meetings/%s-%s", uuid.NewString(), base)
}
