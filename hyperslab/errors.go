package hyperslab

import (
	"errors"
	"fmt"

	"github.com/janelia-flyem/voxelio/convert"
	"github.com/janelia-flyem/voxelio/dvid"
	"github.com/janelia-flyem/voxelio/volume"
)

// Contract violations.
var (
	ErrOutOfBounds        = volume.ErrOutOfBounds
	ErrReadOnlyResolution = volume.ErrReadOnlyResolution
	ErrTypeMismatch       = volume.ErrTypeMismatch
	ErrBufferSize         = convert.ErrBufferSize

	ErrNormalizeFloat = errors.New("normalization needs an integer destination type")
	ErrConfigLocked   = errors.New("context configuration can't change while attached")
	ErrUnsupported    = errors.New("operation not supported with this configuration")
)

// ErrResource is returned when a request has more elements than can be buffered.
var ErrResource = errors.New("request exceeds resource limits")

// State errors are programming errors.  They are logged as critical and panic in
// binaries built with the slabdebug tag.
var (
	ErrNotAttached     = errors.New("context is not attached to a volume")
	ErrAlreadyAttached = errors.New("context is already attached to a volume")
	ErrDestroyed       = errors.New("context has been destroyed")
)

// MaxElements bounds the number of elements in one request.
const MaxElements = 1 << 36

// TransferError reports a storage failure partway through a chunked transfer.
// Chunks before the failing one were completed and, for writes, remain stored.
type TransferError struct {
	Chunk     int // index of the failing chunk
	Completed int // number of chunks transferred before the failure
	Err       error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("chunk %d failed after %d completed: %v", e.Chunk, e.Completed, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

func stateError(err error, format string, args ...interface{}) error {
	err = fmt.Errorf(format+": %w", append(args, err)...)
	dvid.Criticalf("%v\n", err)
	if debugPanics {
		panic(err)
	}
	return err
}
