package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sheasmith19/ezapp/internal/config"
)

// Mirror receives a copy of every saved artifact. It never replaces the primary store.
type Mirror interface {
	Put(ctx context.Context, userID string, kind Kind, key string, data []byte) error
	Delete(ctx context.Context, userID string, kind Kind, key string) error
}

// MinIOMirror copies artifacts into an S3-compatible bucket.
type MinIOMirror struct {
	client     *minio.Client
	bucketName string
}

var _ Mirror = (*MinIOMirror)(nil)

func parseBucketLookup(v string) (minio.BucketLookupType, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "auto":
		return minio.BucketLookupAuto, nil
	case "dns":
		return minio.BucketLookupDNS, nil
	case "path":
		return minio.BucketLookupPath, nil
	default:
		return minio.BucketLookupAuto, fmt.Errorf("invalid minio bucket lookup %q", v)
	}
}

// NewMinIOMirror connects to the bucket and creates it when allowed.
func NewMinIOMirror(ctx context.Context, cfg config.MinIOConfig) (*MinIOMirror, error) {
	bucketLookup, err := parseBucketLookup(cfg.BucketLookup)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure:       cfg.UseSSL,
		Region:       cfg.Region,
		BucketLookup: bucketLookup,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if !cfg.AutoCreateBucket {
			return nil, fmt.Errorf("bucket %q does not exist (auto create disabled)", cfg.Bucket)
		}
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("make bucket %q: %w", cfg.Bucket, err)
		}
	}

	return &MinIOMirror{client: client, bucketName: cfg.Bucket}, nil
}

// ObjectName mirrors the on-disk layout: <userID>/<kind>/<key>.<kind>.
func ObjectName(userID string, kind Kind, key string) string {
	return path.Join(userID, string(kind), key+kind.Ext())
}

func contentType(kind Kind) string {
	if kind == KindPDF {
		return "application/pdf"
	}
	return "application/xml"
}

// Put uploads one artifact, replacing any previous copy.
func (m *MinIOMirror) Put(ctx context.Context, userID string, kind Kind, key string, data []byte) error {
	objectName := ObjectName(userID, kind, key)
	opts := minio.PutObjectOptions{ContentType: contentType(kind)}
	if _, err := m.client.PutObject(ctx, m.bucketName, objectName, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		if IsNoSuchBucket(err) {
			return fmt.Errorf("put object %q: bucket %q is gone: %w", objectName, m.bucketName, err)
		}
		return fmt.Errorf("put object %q: %w", objectName, err)
	}
	return nil
}

// Delete removes one artifact. A missing object counts as deleted.
func (m *MinIOMirror) Delete(ctx context.Context, userID string, kind Kind, key string) error {
	objectName := ObjectName(userID, kind, key)
	if err := m.client.RemoveObject(ctx, m.bucketName, objectName, minio.RemoveObjectOptions{}); err != nil {
		if IsNoSuchKey(err) {
			return nil
		}
		return fmt.Errorf("remove object %q: %w", objectName, err)
	}
	return nil
}
