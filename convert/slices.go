package convert

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/janelia-flyem/voxelio/dvid"
)

var (
	// ErrUnknownType is returned for buffers that aren't a slice of a supported kind.
	ErrUnknownType = errors.New("buffer is not a slice of a supported element type")

	// ErrBufferSize is returned when a buffer is too small for the requested elements.
	ErrBufferSize = errors.New("buffer too small")
)

// Kind returns the element kind of a Number type.
func Kind[T Number]() dvid.DataType {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return dvid.T_uint8
	case int8:
		return dvid.T_int8
	case uint16:
		return dvid.T_uint16
	case int16:
		return dvid.T_int16
	case uint32:
		return dvid.T_uint32
	case int32:
		return dvid.T_int32
	case float32:
		return dvid.T_float32
	default:
		return dvid.T_float64
	}
}

// KindOf returns the element kind and length of a typed slice.
func KindOf(buf any) (dvid.DataType, int, error) {
	switch b := buf.(type) {
	case []uint8:
		return dvid.T_uint8, len(b), nil
	case []int8:
		return dvid.T_int8, len(b), nil
	case []uint16:
		return dvid.T_uint16, len(b), nil
	case []int16:
		return dvid.T_int16, len(b), nil
	case []uint32:
		return dvid.T_uint32, len(b), nil
	case []int32:
		return dvid.T_int32, len(b), nil
	case []float32:
		return dvid.T_float32, len(b), nil
	case []float64:
		return dvid.T_float64, len(b), nil
	}
	return 0, 0, fmt.Errorf("%T: %w", buf, ErrUnknownType)
}

// Make allocates a typed slice of n elements of the given kind.
func Make(kind dvid.DataType, n int) any {
	switch kind {
	case dvid.T_uint8:
		return make([]uint8, n)
	case dvid.T_int8:
		return make([]int8, n)
	case dvid.T_uint16:
		return make([]uint16, n)
	case dvid.T_int16:
		return make([]int16, n)
	case dvid.T_uint32:
		return make([]uint32, n)
	case dvid.T_int32:
		return make([]int32, n)
	case dvid.T_float32:
		return make([]float32, n)
	case dvid.T_float64:
		return make([]float64, n)
	}
	return nil
}

// Sub returns buf[off:off+n] for any supported typed slice.
func Sub(buf any, off, n int) any {
	switch b := buf.(type) {
	case []uint8:
		return b[off : off+n]
	case []int8:
		return b[off : off+n]
	case []uint16:
		return b[off : off+n]
	case []int16:
		return b[off : off+n]
	case []uint32:
		return b[off : off+n]
	case []int32:
		return b[off : off+n]
	case []float32:
		return b[off : off+n]
	case []float64:
		return b[off : off+n]
	}
	return nil
}

// Clone returns a copy of a typed slice.
func Clone(buf any) any {
	kind, n, err := KindOf(buf)
	if err != nil {
		return nil
	}
	out := Make(kind, n)
	table[kind][kind](out, buf, nil)
	return out
}

// Decode fills a typed slice from little-endian bytes.
func Decode(dst any, b []byte) error {
	kind, n, err := KindOf(dst)
	if err != nil {
		return err
	}
	if len(b) < n*kind.Bytes() {
		return fmt.Errorf("decoding %d %s values from %d bytes: %w", n, kind, len(b), ErrBufferSize)
	}
	_, err = binary.Decode(b, binary.LittleEndian, dst)
	return err
}

// Encode appends the little-endian bytes of a typed slice to b.
func Encode(b []byte, src any) ([]byte, error) {
	if _, _, err := KindOf(src); err != nil {
		return b, err
	}
	return binary.Append(b, binary.LittleEndian, src)
}
