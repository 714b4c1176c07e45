/*
Package hyperslab moves rectangular regions of N-d volumes between storage and caller
buffers.

Requests are given in the volume's apparent dimension order, with each axis running in
its apparent direction.  The translator maps a request onto storage order, the driver
moves it in chunks no larger than a buffer budget, each chunk is converted (and
optionally scaled) between the storage type and the caller's type, and the caller's
buffer is then permuted in place into apparent order.

Three families of transfers are offered:

	Get, Put                    raw voxel values, saturated into the requested type
	GetReal, PutReal            real values via the volume's valid and real ranges
	GetNormalized, PutNormalized  real values in [min, max] spread over an integer type

A Context gives full control over the options and can be reused across transfers.
*/
package hyperslab

import (
	"github.com/janelia-flyem/voxelio/dvid"
	"github.com/janelia-flyem/voxelio/volume"
)

func transfer(v *volume.Volume, put bool, start, count []int, buf any, opts ...Option) error {
	ctx, err := NewContext(opts...)
	if err != nil {
		return err
	}
	defer ctx.Destroy()
	if err := ctx.Attach(v); err != nil {
		return err
	}
	if put {
		return ctx.Put(start, count, buf)
	}
	return ctx.Get(start, count, buf)
}

// Get reads raw voxel values of the hyperslab into buf, a slice of dtype elements.
func Get(v *volume.Volume, dtype dvid.DataType, start, count []int, buf any) error {
	return transfer(v, false, start, count, buf, WithType(dtype))
}

// Put writes raw voxel values from buf, a slice of dtype elements.
func Put(v *volume.Volume, dtype dvid.DataType, start, count []int, buf any) error {
	return transfer(v, true, start, count, buf, WithType(dtype))
}

// GetReal reads real values of the hyperslab into buf.
func GetReal(v *volume.Volume, dtype dvid.DataType, start, count []int, buf any) error {
	return transfer(v, false, start, count, buf, WithType(dtype), WithRangeScaling(true))
}

// PutReal writes real values from buf and records their range in the volume.
func PutReal(v *volume.Volume, dtype dvid.DataType, start, count []int, buf any) error {
	return transfer(v, true, start, count, buf, WithType(dtype), WithRangeScaling(true))
}

// GetNormalized reads real values with [min, max] mapped onto the full range of dtype,
// which must be an integer type.
func GetNormalized(v *volume.Volume, dtype dvid.DataType, min, max float64, start, count []int, buf any) error {
	return transfer(v, false, start, count, buf, WithType(dtype), WithRangeScaling(true),
		WithNormalization(true), WithUserNormalization(true, min, max))
}

// PutNormalized writes integer values whose full range represents real values in [min, max].
func PutNormalized(v *volume.Volume, dtype dvid.DataType, min, max float64, start, count []int, buf any) error {
	return transfer(v, true, start, count, buf, WithType(dtype), WithRangeScaling(true),
		WithNormalization(true), WithUserNormalization(true, min, max))
}
