// Package wire holds the JSON request and response bodies exchanged between
// the MeshMart CLI and the storage gateway.
package wire

import "time"

type ErrorResponse struct {
	Error string `json:"error"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

type CreateProductRequest struct {
	Title string `json:"title"`
}

type Product struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type ProductFile struct {
	ID           string `json:"id"`
	ProductID    string `json:"product_id"`
	FileName     string `json:"file_name"`
	FileSize     int64  `json:"file_size"`
	Category     string `json:"category"`
	DisplayOrder int    `json:"display_order"`
	IsThumbnail  bool   `json:"is_thumbnail"`
	PublicURL    string `json:"public_url"`
	StorageKey   string `json:"storage_key"`
}

type ProductFilesResponse struct {
	Files []ProductFile `json:"files"`
}

// ArrangeRequest sets the display order of a product's files. Files left out
// of Order keep their relative order after the listed ones. An empty
// ThumbnailFileID leaves the thumbnail unchanged.
type ArrangeRequest struct {
	Order           []string `json:"order"`
	ThumbnailFileID string   `json:"thumbnail_file_id,omitempty"`
}

type UploadFileSpec struct {
	FileName string `json:"file_name"`
	FileType string `json:"file_type"`
	FileSize int64  `json:"file_size"`
	Category string `json:"category"`
}

type PresignRequest struct {
	Files []UploadFileSpec `json:"files"`
}

type UploadGrant struct {
	FileName     string    `json:"file_name"`
	PresignedURL string    `json:"presigned_url"`
	StorageKey   string    `json:"storage_key"`
	Category     string    `json:"category"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type PresignResponse struct {
	Grants []UploadGrant `json:"grants"`
}

type ConfirmRequest struct {
	FileName     string `json:"file_name"`
	FileType     string `json:"file_type"`
	FileSize     int64  `json:"file_size"`
	StorageKey   string `json:"storage_key"`
	Category     string `json:"category"`
	DisplayOrder int    `json:"display_order"`
}

type DownloadFile struct {
	FileName     string `json:"file_name"`
	Category     string `json:"category"`
	PresignedURL string `json:"presigned_url"`
	FileSizeMB   string `json:"file_size_mb"`
}

type DownloadResponse struct {
	Files []DownloadFile `json:"files"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
