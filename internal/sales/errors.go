package sales

import "errors"

var (
	// ErrRegionNotFound is returned for a region outside the catalog or one
	// with no loaded records.
	ErrRegionNotFound = errors.New("region not found")
	// ErrInvalidArgument marks a caller contract violation such as k <= 0.
	ErrInvalidArgument = errors.New("invalid argument")
)
