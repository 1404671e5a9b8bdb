package rulestore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const maxRuleObjectSize = 1 << 20

// MinioReader reads rule files from an S3-compatible bucket.
type MinioReader struct {
	client *minio.Client
	bucket string
}

// NewMinioReader constructs the reader.
func NewMinioReader(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioReader, error) {
	client, err := minio.New(sanitizeEndpoint(endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure:       useSSL,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init object storage client: %w", err)
	}
	return &MinioReader{client: client, bucket: bucket}, nil
}

// Read implements ObjectReader.
func (r *MinioReader) Read(ctx context.Context, key string) ([]byte, error) {
	obj, err := r.client.GetObject(ctx, r.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	if _, err := obj.Stat(); err != nil {
		return nil, err
	}
	return io.ReadAll(io.LimitReader(obj, maxRuleObjectSize))
}

var _ ObjectReader = (*MinioReader)(nil)

// sanitizeEndpoint strips scheme and path; minio.New wants host[:port].
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if i := strings.Index(raw, "/"); i >= 0 {
		raw = raw[:i]
	}
	return raw
}
