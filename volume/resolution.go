package volume

import (
	"fmt"

	"github.com/janelia-flyem/voxelio/convert"
	"github.com/janelia-flyem/voxelio/dvid"
)

// MaxLevels bounds the number of resolution levels a volume can hold.
const MaxLevels = 16

// downsampled returns true if dimension i is halved at each coarser level.  Spatial
// dimensions are halved, except that slice-scaled volumes only halve image dimensions
// so each slice keeps its own range.
func (v *Volume) downsampled(i int) bool {
	if !v.meta.Dims[i].Class.IsSpatial() {
		return false
	}
	if v.meta.SliceScaling {
		return i >= len(v.meta.Dims)-v.meta.ImageDims
	}
	return true
}

func (v *Volume) dimsAtLevel(level int) []Dimension {
	dims := append([]Dimension(nil), v.meta.Dims...)
	for i := range dims {
		if !v.downsampled(i) {
			continue
		}
		for l := 0; l < level; l++ {
			dims[i].Length = (dims[i].Length + 1) / 2
			dims[i].Start += dims[i].Step / 2
			dims[i].Step *= 2
		}
	}
	return dims
}

// Resolution returns the selected resolution level.  Level 0 is full resolution.
func (v *Volume) Resolution() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.level
}

// Levels returns the coarsest resolution level built so far.  A write at full
// resolution resets it to 0.
func (v *Volume) Levels() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.meta.Levels
}

// SelectResolution makes a built level the one read through this handle.  Levels
// above 0 are read-only.
func (v *Volume) SelectResolution(level int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrClosed
	}
	if level < 0 || level > v.meta.Levels {
		return fmt.Errorf("level %d of volume %q (built through %d): %w", level, v.meta.Name, v.meta.Levels, ErrNoResolution)
	}
	v.level = level
	v.levelDims = v.dimsAtLevel(level)
	return nil
}

// BuildResolution computes a level by 2x averaging of the previous level.  Levels must
// be built in order.  Rebuilding an existing level refreshes it from the level below.
func (v *Volume) BuildResolution(level int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrClosed
	}
	if level < 1 || level > v.meta.Levels+1 || level > MaxLevels {
		return fmt.Errorf("can't build level %d of volume %q with %d levels built", level, v.meta.Name, v.meta.Levels)
	}
	n := len(v.meta.Dims)
	var factors []int
	for i := 0; i < n; i++ {
		f := 1
		if v.downsampled(i) {
			f = 2
		}
		factors = append(factors, f)
	}
	if n == 0 || !containsFactor(factors) {
		return fmt.Errorf("volume %q has no dimensions to downsample", v.meta.Name)
	}

	tlog := dvid.NewTimeLog()
	src := v.dimsAtLevel(level - 1)
	dst := v.dimsAtLevel(level)
	srcLengths := dimLengths(src)
	dstLengths := dimLengths(dst)

	for t := 0; t < dstLengths[0]; t++ {
		sStart := make([]int, n)
		sCount := append([]int(nil), srcLengths...)
		sStart[0] = t * factors[0]
		sCount[0] = min(factors[0], srcLengths[0]-sStart[0])

		dStart := make([]int, n)
		dCount := append([]int(nil), dstLengths...)
		dStart[0] = t
		dCount[0] = 1

		out, err := v.downsampleSlab(level, src, sStart, sCount, dCount, factors)
		if err != nil {
			return err
		}
		if err := v.writeLevel(level, dst, dStart, dCount, out); err != nil {
			return err
		}
	}
	if level > v.meta.Levels {
		v.meta.Levels = level
		if err := v.save(); err != nil {
			return err
		}
	}
	tlog.Infof("Built resolution level %d of volume %q, dims %v", level, v.meta.Name, dst)
	return nil
}

func containsFactor(factors []int) bool {
	for _, f := range factors {
		if f > 1 {
			return true
		}
	}
	return false
}

// downsampleSlab averages a source slab into a slab of the next coarser level.
func (v *Volume) downsampleSlab(level int, src []Dimension, sStart, sCount, dCount, factors []int) (any, error) {
	kind := v.DataType()
	sn, err := dvid.NumElements(sCount)
	if err != nil {
		return nil, err
	}
	dn, _ := dvid.NumElements(dCount)

	raw := convert.Make(kind, sn)
	if err := v.readLevel(level-1, src, sStart, sCount, raw); err != nil {
		return nil, err
	}
	values := make([]float64, sn)
	if err := convert.Convert(values, raw, nil); err != nil {
		return nil, err
	}

	n := len(sCount)
	sums := make([]float64, dn)
	counts := make([]int, dn)
	dStride := make([]int, n)
	stride := 1
	for i := n - 1; i >= 0; i-- {
		dStride[i] = stride
		stride *= dCount[i]
	}
	idx := make([]int, n)
	for s := 0; s < sn; s++ {
		var d int
		for i := 1; i < n; i++ {
			d += (idx[i] / factors[i]) * dStride[i]
		}
		sums[d] += values[s]
		counts[d]++
		for i := n - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < sCount[i] {
				break
			}
			idx[i] = 0
		}
	}
	for d := range sums {
		if counts[d] > 0 {
			sums[d] /= float64(counts[d])
		}
	}
	out := convert.Make(kind, dn)
	if err := convert.Convert(out, sums, nil); err != nil {
		return nil, err
	}
	return out, nil
}
