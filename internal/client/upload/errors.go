package upload

import (
	"errors"
	"strings"
)

var (
	ErrNoItems       = errors.New("nothing to upload")
	ErrDuplicateItem = errors.New("duplicate file name in upload batch")
	ErrAuthorization = errors.New("upload authorization failed")
	ErrAllFailed     = errors.New("all transfers failed")
	ErrCancelled     = errors.New("upload cancelled")
	ErrMissingGrant  = errors.New("no upload grant issued for file")
)

// AllFailedError is returned when no file of a batch could be uploaded.
// Names lists every failed file in batch order.
type AllFailedError struct {
	Names   []string
	Reasons map[string]string
}

func (e *AllFailedError) Error() string {
	return ErrAllFailed.Error() + ": " + strings.Join(e.Names, ", ")
}

func (e *AllFailedError) Is(target error) bool {
	return target == ErrAllFailed
}
