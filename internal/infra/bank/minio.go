package bank

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioSource reads files as objects of one bucket.
type MinioSource struct {
	client *minio.Client
	bucket string
}

// MinioConfig holds connection parameters for MinioSource.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// NewMinioSource connects to an S3-compatible object store.
func NewMinioSource(cfg MinioConfig) (*MinioSource, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("new minio client: %w", err)
	}

	return &MinioSource{client: client, bucket: cfg.Bucket}, nil
}

// Name identifies the source in logs and metrics.
func (s *MinioSource) Name() string { return "minio" }

// Fetch returns the content of the named object.
func (s *MinioSource) Fetch(ctx context.Context, name string) (string, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("get object %s: %w", name, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
			return "", fmt.Errorf("get object %s: %w", name, ErrFileNotFound)
		}
		return "", fmt.Errorf("read object %s: %w", name, err)
	}

	return string(data), nil
}
