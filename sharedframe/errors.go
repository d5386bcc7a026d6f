package sharedframe

import "errors"

var (
	// ErrNotFound reports that the named shared-memory region does not exist.
	// The hardware driver must create it before this process starts.
	ErrNotFound = errors.New("sharedframe: region not found")

	// ErrPermission reports that the region exists but could not be opened
	// for read-write access.
	ErrPermission = errors.New("sharedframe: permission denied")

	// ErrSize reports that the mapped region is smaller than the layout
	// this package requires.
	ErrSize = errors.New("sharedframe: region smaller than expected size")
)
