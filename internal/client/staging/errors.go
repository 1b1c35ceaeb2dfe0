package staging

import "errors"

var (
	ErrNotFound        = errors.New("file not found in session")
	ErrNotLocal        = errors.New("only files that have not been uploaded can change category")
	ErrTransferStarted = errors.New("transfer already started")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrDuplicateName   = errors.New("a file with this name is already staged")
	ErrLoadFailed      = errors.New("load failed")
	ErrNoLister        = errors.New("no file lister configured")
	ErrUnknownPreview  = errors.New("unknown or already released preview handle")
)
