package blobstore

import "errors"

var (
	// ErrPathEscape is returned when a file name would resolve outside
	// the configured storage root once joined and cleaned.
	ErrPathEscape = errors.New("file name escapes storage root")
)
