package archive

import "errors"

var (
	ErrNoFiles           = errors.New("order has no downloadable files")
	ErrNothingDownloaded = errors.New("no files could be downloaded")
	ErrCancelled         = errors.New("download cancelled")
)
