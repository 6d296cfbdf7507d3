package minio_storage

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioStorage struct {
	client  *minio.Client
	buckets []string
}

// NewMinioStorage connects and makes sure every bucket exists.
func NewMinioStorage(ctx context.Context, endpoint, accessKey, secretKey string, useSSL bool, buckets ...string) (*MinioStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}

	for _, name := range buckets {
		exists, err := client.BucketExists(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("error checking bucket %s: %w", name, err)
		}
		if !exists {
			if err := client.MakeBucket(ctx, name, minio.MakeBucketOptions{}); err != nil {
				return nil, fmt.Errorf("error creating bucket %s: %w", name, err)
			}
		}
	}

	return &MinioStorage{client: client, buckets: buckets}, nil
}

// Ping checks that the first managed bucket is still reachable.
func (m *MinioStorage) Ping(ctx context.Context) error {
	if len(m.buckets) == 0 {
		_, err := m.client.ListBuckets(ctx)
		return err
	}
	exists, err := m.client.BucketExists(ctx, m.buckets[0])
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket %s is missing", m.buckets[0])
	}
	return nil
}
