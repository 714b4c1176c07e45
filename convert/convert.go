/*
Package convert moves numeric values between the eight voxel element kinds,
optionally applying an affine transform and fill-value substitution on the way.

Conversion semantics:

	float -> integer	clamp to the destination range, then round to nearest
	integer -> float	exact
	integer -> integer	through float64 with saturation
	same kind		raw copy when no transform is requested

Dispatch goes through a table indexed by (source kind, destination kind) whose
entries are instantiations of one generic loop.
*/
package convert

import (
	"fmt"
	"math"

	"github.com/janelia-flyem/voxelio/dvid"
)

// Number is the set of element types a buffer may hold.
type Number interface {
	uint8 | int8 | uint16 | int16 | uint32 | int32 | float32 | float64
}

// Transform describes what happens to each source value s:
//
//	if Fill and s is outside [FillMin, FillMax]: result = FillValue
//	else: result = s*Scale + Offset
//
// The result is then saturated into the destination kind.
type Transform struct {
	Scale  float64
	Offset float64

	Fill      bool
	FillMin   float64
	FillMax   float64
	FillValue float64
}

// Identity returns a transform that leaves values unchanged.
func Identity() *Transform {
	return &Transform{Scale: 1}
}

// IsIdentity returns true if applying the transform is the same as not applying one.
// A nil transform is the identity.
func (xf *Transform) IsIdentity() bool {
	return xf == nil || (!xf.Fill && xf.Scale == 1 && xf.Offset == 0)
}

// Apply returns the transformed value of s before saturation.
func (xf *Transform) Apply(s float64) float64 {
	if xf == nil {
		return s
	}
	if xf.Fill && (s < xf.FillMin || s > xf.FillMax) {
		return xf.FillValue
	}
	return s*xf.Scale + xf.Offset
}

func (xf *Transform) String() string {
	if xf == nil {
		return "identity"
	}
	s := fmt.Sprintf("x*%g%+g", xf.Scale, xf.Offset)
	if xf.Fill {
		s += fmt.Sprintf(" fill %g outside [%g,%g]", xf.FillValue, xf.FillMin, xf.FillMax)
	}
	return s
}

type convertFunc func(dst, src any, xf *Transform)

var table [dvid.NumDataTypes][dvid.NumDataTypes]convertFunc

func init() {
	registerSource[uint8](dvid.T_uint8)
	registerSource[int8](dvid.T_int8)
	registerSource[uint16](dvid.T_uint16)
	registerSource[int16](dvid.T_int16)
	registerSource[uint32](dvid.T_uint32)
	registerSource[int32](dvid.T_int32)
	registerSource[float32](dvid.T_float32)
	registerSource[float64](dvid.T_float64)
}

func registerSource[S Number](sk dvid.DataType) {
	table[sk][dvid.T_uint8] = pair[uint8, S]
	table[sk][dvid.T_int8] = pair[int8, S]
	table[sk][dvid.T_uint16] = pair[uint16, S]
	table[sk][dvid.T_int16] = pair[int16, S]
	table[sk][dvid.T_uint32] = pair[uint32, S]
	table[sk][dvid.T_int32] = pair[int32, S]
	table[sk][dvid.T_float32] = pair[float32, S]
	table[sk][dvid.T_float64] = pair[float64, S]
}

func pair[D, S Number](dst, src any, xf *Transform) {
	Slice(dst.([]D), src.([]S), xf)
}

// Slice converts len(src) values into dst, which must be at least as long.
func Slice[D, S Number](dst []D, src []S, xf *Transform) {
	dk := Kind[D]()
	if xf.IsIdentity() && dk == Kind[S]() {
		copy(dst, any(src).([]D))
		return
	}
	lo, hi := dk.Range()
	isFloat := dk.IsFloat()
	if xf.IsIdentity() {
		for i, s := range src {
			dst[i] = saturate[D](float64(s), lo, hi, isFloat)
		}
		return
	}
	for i, s := range src {
		dst[i] = saturate[D](xf.Apply(float64(s)), lo, hi, isFloat)
	}
}

// saturate clamps v into [lo, hi].  Integer results are rounded to nearest and NaN
// becomes zero.  Floating results keep NaN and infinities.
func saturate[D Number](v, lo, hi float64, isFloat bool) D {
	if isFloat {
		if !math.IsInf(v, 0) {
			if v > hi {
				v = hi
			} else if v < lo {
				v = lo
			}
		}
		return D(v)
	}
	if v != v {
		return 0
	}
	if v <= lo {
		return D(lo)
	}
	if v >= hi {
		return D(hi)
	}
	return D(math.Round(v))
}

// Saturate converts a single value into the given kind's range, rounding for integer kinds.
func Saturate(v float64, kind dvid.DataType) float64 {
	lo, hi := kind.Range()
	if kind.IsFloat() {
		if kind == dvid.T_float32 && !math.IsInf(v, 0) && v == v {
			return float64(saturate[float32](v, lo, hi, true))
		}
		return v
	}
	if v != v {
		return 0
	}
	return math.Max(lo, math.Min(hi, math.Round(v)))
}

// Convert converts every element of src into dst.  Both must be slices of one of the
// Number types and dst must be at least as long as src.
func Convert(dst, src any, xf *Transform) error {
	sk, sn, err := KindOf(src)
	if err != nil {
		return fmt.Errorf("source buffer: %w", err)
	}
	dk, dn, err := KindOf(dst)
	if err != nil {
		return fmt.Errorf("destination buffer: %w", err)
	}
	if dn < sn {
		return fmt.Errorf("destination holds %d elements, need %d: %w", dn, sn, ErrBufferSize)
	}
	table[sk][dk](dst, src, xf)
	return nil
}
