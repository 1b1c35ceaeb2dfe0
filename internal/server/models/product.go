package models

import "time"

type Product struct {
	ID        string
	Title     string
	CreatedBy string
	CreatedAt time.Time
}

// ProductFile is the record of an object confirmed in storage. The bytes
// live under StorageKey in the bucket.
type ProductFile struct {
	ID           string
	ProductID    string
	FileName     string
	FileType     string
	FileSize     int64
	Category     string
	DisplayOrder int
	IsThumbnail  bool
	StorageKey   string
	CreatedAt    time.Time
}
