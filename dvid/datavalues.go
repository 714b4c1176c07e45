/*
   This file describes the numeric element kinds a voxel can be stored or
   delivered as, along with their sizes and representable ranges.
*/

package dvid

import (
	"encoding/json"
	"fmt"
	"math"
)

// DataType is a unique ID for each numeric element kind, e.g., a uint8 or a float32.
// Signedness is part of the kind.
type DataType uint8

const (
	T_uint8 DataType = iota
	T_int8
	T_uint16
	T_int16
	T_uint32
	T_int32
	T_float32
	T_float64
)

// NumDataTypes is the number of supported element kinds.
const NumDataTypes = 8

var typeBytes = [NumDataTypes]int{
	T_uint8:   1,
	T_int8:    1,
	T_uint16:  2,
	T_int16:   2,
	T_uint32:  4,
	T_int32:   4,
	T_float32: 4,
	T_float64: 8,
}

var typeNames = [NumDataTypes]string{
	T_uint8:   "uint8",
	T_int8:    "int8",
	T_uint16:  "uint16",
	T_int16:   "int16",
	T_uint32:  "uint32",
	T_int32:   "int32",
	T_float32: "float32",
	T_float64: "float64",
}

var typeRanges = [NumDataTypes][2]float64{
	T_uint8:   {0, math.MaxUint8},
	T_int8:    {math.MinInt8, math.MaxInt8},
	T_uint16:  {0, math.MaxUint16},
	T_int16:   {math.MinInt16, math.MaxInt16},
	T_uint32:  {0, math.MaxUint32},
	T_int32:   {math.MinInt32, math.MaxInt32},
	T_float32: {-math.MaxFloat32, math.MaxFloat32},
	T_float64: {-math.MaxFloat64, math.MaxFloat64},
}

// Valid returns true if t is one of the supported kinds.
func (t DataType) Valid() bool {
	return t < NumDataTypes
}

// Bytes returns the number of bytes for one element of the kind.
func (t DataType) Bytes() int {
	if !t.Valid() {
		return 0
	}
	return typeBytes[t]
}

// IsFloat returns true for float32 and float64.
func (t DataType) IsFloat() bool {
	return t == T_float32 || t == T_float64
}

// IsSigned returns true if the kind can hold negative values.
func (t DataType) IsSigned() bool {
	switch t {
	case T_int8, T_int16, T_int32, T_float32, T_float64:
		return true
	}
	return false
}

// Range returns the minimum and maximum representable values of the kind.
func (t DataType) Range() (min, max float64) {
	if !t.Valid() {
		return 0, 0
	}
	r := typeRanges[t]
	return r[0], r[1]
}

// WithSign returns the integer kind of the same width with the requested signedness.
// Floating kinds are returned unchanged.
func (t DataType) WithSign(signed bool) DataType {
	switch t {
	case T_uint8, T_int8:
		if signed {
			return T_int8
		}
		return T_uint8
	case T_uint16, T_int16:
		if signed {
			return T_int16
		}
		return T_uint16
	case T_uint32, T_int32:
		if signed {
			return T_int32
		}
		return T_uint32
	}
	return t
}

func (t DataType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("DataType(%d)", uint8(t))
	}
	return typeNames[t]
}

// ParseDataType returns the kind with the given name, e.g., "uint16".
func ParseDataType(s string) (DataType, error) {
	for i, name := range typeNames {
		if name == s {
			return DataType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown data type %q", s)
}

// MarshalJSON implements the json.Marshaler interface.
func (t DataType) MarshalJSON() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("can't marshal unknown data type %d", uint8(t))
	}
	return []byte(fmt.Sprintf("%q", typeNames[t])), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (t *DataType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	dt, err := ParseDataType(s)
	if err != nil {
		return err
	}
	*t = dt
	return nil
}
