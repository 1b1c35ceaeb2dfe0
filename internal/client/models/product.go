// Package models defines the client-side data models of the MeshMart CLI.
package models

import (
	"time"

	"github.com/dmitrijs2005/meshmart/internal/catalog"
)

// Product is the parent record files are attached to.
type Product struct {
	ID    string
	Title string
}

// ProductFile is a file record persisted by the gateway.
type ProductFile struct {
	ID        string
	ProductID string
	FileName  string
	FileSize  int64
	Category  catalog.Category
	// DisplayOrder defines presentation and thumbnail-selection sequence.
	DisplayOrder int
	// Thumbnail marks the product's selected preview image.
	Thumbnail  bool
	PublicURL  string
	StorageKey string
}

// FileSpec describes one file a write grant is requested for.
type FileSpec struct {
	FileName string
	FileType string
	FileSize int64
	Category catalog.Category
}

// Grant authorizes one direct PUT to object storage.
type Grant struct {
	FileName     string
	PresignedURL string
	StorageKey   string
	Category     catalog.Category
	ExpiresAt    time.Time
}

// Confirmation asks the gateway to persist a file after a successful PUT.
type Confirmation struct {
	ProductID    string
	FileName     string
	FileType     string
	FileSize     int64
	StorageKey   string
	Category     catalog.Category
	DisplayOrder int
}

// DownloadFile authorizes one direct GET of an owned asset.
type DownloadFile struct {
	FileName     string
	Category     catalog.Category
	PresignedURL string
	// SizeLabel is a human-readable approximate size such as "12.5 MB".
	SizeLabel string
}
