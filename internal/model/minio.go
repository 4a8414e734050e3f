package model

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioFetcher reads artifacts from an S3-compatible bucket.
type MinioFetcher struct {
	client *minio.Client
	bucket string
}

// NewMinioFetcher builds a fetcher for the given endpoint and bucket.
// Credentials come from configuration; they are never logged.
func NewMinioFetcher(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioFetcher, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create artifact store client: %w", err)
	}
	return &MinioFetcher{client: client, bucket: bucket}, nil
}

// Fetch downloads one object fully into memory. Artifacts are small JSON
// blobs, so buffering is fine.
func (f *MinioFetcher) Fetch(ctx context.Context, key string) ([]byte, error) {
	obj, err := f.client.GetObject(ctx, f.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get artifact %s: %w", key, err)
	}
	defer obj.Close()

	blob, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", key, err)
	}
	return blob, nil
}
