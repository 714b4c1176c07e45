package volume

import "errors"

var (
	// ErrClosed is returned by any operation on a closed volume, including a second Close.
	ErrClosed = errors.New("volume is closed")

	// ErrExists is returned when creating a volume whose name is taken.
	ErrExists = errors.New("volume already exists")

	// ErrNotFound is returned when opening a volume that doesn't exist.
	ErrNotFound = errors.New("volume not found")

	// ErrDataWritten is returned when changing geometry or scaling settings after voxels were stored.
	ErrDataWritten = errors.New("volume already holds data")

	// ErrReadOnlyResolution is returned when writing at a resolution level other than full resolution.
	ErrReadOnlyResolution = errors.New("resolution level is read-only")

	// ErrNoResolution is returned when selecting a resolution level that hasn't been built.
	ErrNoResolution = errors.New("resolution level not built")

	// ErrOutOfBounds is returned when a region falls outside the volume.
	ErrOutOfBounds = errors.New("region out of bounds")

	// ErrTypeMismatch is returned when a native buffer's kind differs from the storage kind.
	ErrTypeMismatch = errors.New("buffer type differs from storage type")

	// ErrBadSpec is returned for volume descriptions that fail validation.
	ErrBadSpec = errors.New("invalid volume spec")
)
