// Package services contains the gateway's business logic: accounts and
// tokens, product file management with presigned uploads, and order
// downloads. Handlers translate the sentinel errors from common into HTTP
// statuses.
package services

import (
	"context"
	"time"
)

// ObjectStore is the part of the bucket the services need.
type ObjectStore interface {
	PresignPut(ctx context.Context, key, contentType string) (string, time.Time, error)
	PresignGet(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// UploadSpec describes a file the client is about to upload.
type UploadSpec struct {
	FileName string
	FileType string
	FileSize int64
	Category string
}

// UploadGrant authorizes one direct PUT to storage.
type UploadGrant struct {
	FileName     string
	PresignedURL string
	StorageKey   string
	Category     string
	ExpiresAt    time.Time
}

// Confirmation reports an object the client has finished uploading.
type Confirmation struct {
	FileName     string
	FileType     string
	FileSize     int64
	StorageKey   string
	Category     string
	DisplayOrder int
}

// DownloadGrant authorizes one direct GET of an ordered file.
type DownloadGrant struct {
	FileName     string
	Category     string
	PresignedURL string
	SizeLabel    string
}
