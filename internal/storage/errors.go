package storage

import (
	"errors"
	"strings"

	"github.com/minio/minio-go/v7"
)

var (
	// ErrStorageIO wraps every filesystem failure of the primary store.
	ErrStorageIO = errors.New("storage io")
	// ErrNotExist means the requested file is absent.
	ErrNotExist = errors.New("file does not exist")
	// ErrInvalidUser rejects user IDs that cannot be used as a directory name.
	ErrInvalidUser = errors.New("invalid user id")
	// ErrInvalidName rejects keys that would escape the user's directory.
	ErrInvalidName = errors.New("invalid file name")
)

// IsNoSuchKey reports whether a mirror error means the object is absent (S3/MinIO: NoSuchKey/NotFound).
func IsNoSuchKey(err error) bool {
	if err == nil {
		return false
	}

	var minioErr minio.ErrorResponse
	if errors.As(err, &minioErr) {
		switch strings.ToLower(strings.TrimSpace(minioErr.Code)) {
		case "nosuchkey", "notfound":
			return true
		}
	}

	// some gateways only keep the message
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "nosuchkey") ||
		strings.Contains(lower, "specified key does not exist") ||
		strings.Contains(lower, "not found")
}

// IsNoSuchBucket reports whether a mirror error means the bucket is missing.
func IsNoSuchBucket(err error) bool {
	if err == nil {
		return false
	}

	var minioErr minio.ErrorResponse
	if errors.As(err, &minioErr) {
		if strings.EqualFold(strings.TrimSpace(minioErr.Code), "nosuchbucket") {
			return true
		}
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "nosuchbucket") ||
		strings.Contains(lower, "specified bucket does not exist")
}
