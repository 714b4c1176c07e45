package hyperslab

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/janelia-flyem/voxelio/convert"
	"github.com/janelia-flyem/voxelio/dvid"
)

// FillValueEpsilon is the fraction of the valid range by which a voxel may lie outside
// the valid range and still be treated as data when fill values are enabled: ten times
// the float32 machine epsilon.
const FillValueEpsilon = 10 * 1.1920928955078125e-07

// affine is x -> x*scale + offset.
type affine struct {
	scale, offset float64
}

var identity = affine{scale: 1}

// then returns the affine that applies a and then b.
func (a affine) then(b affine) affine {
	return affine{scale: a.scale * b.scale, offset: a.offset*b.scale + b.offset}
}

func (a affine) apply(x float64) float64 {
	return x*a.scale + a.offset
}

// mapRange returns the affine taking [fromMin, fromMax] onto [toMin, toMax].  An empty
// source range collapses everything onto toMin.
func mapRange(fromMin, fromMax, toMin, toMax float64) affine {
	if fromMax == fromMin {
		return affine{scale: 0, offset: toMin}
	}
	scale := (toMax - toMin) / (fromMax - fromMin)
	return affine{scale: scale, offset: toMin - fromMin*scale}
}

// scaler computes per-chunk transforms for one transfer.  Whole-volume ranges are read
// once when the scaler is made; slice ranges are cached for the life of the transfer.
type scaler struct {
	d *derived

	valid [2]float64
	real  [2]float64

	slices map[string][2]float64
}

func (d *derived) newScaler() *scaler {
	s := &scaler{d: d}
	s.valid[0], s.valid[1] = d.vol.ValidRange()
	s.real[0], s.real[1] = d.vol.RealRange()
	return s
}

func sliceKey(coords []int) string {
	var b strings.Builder
	for _, c := range coords {
		fmt.Fprintf(&b, "%d,", c)
	}
	return b.String()
}

// realRange returns the real range that applies at a native chunk start.
func (s *scaler) realRange(chunkStart []int) ([2]float64, error) {
	if !s.d.sliceScaling {
		return s.real, nil
	}
	coords := s.d.sliceCoords(chunkStart)
	key := sliceKey(coords)
	if r, found := s.slices[key]; found {
		return r, nil
	}
	var r [2]float64
	var err error
	if r[0], r[1], err = s.d.vol.SliceRange(coords); err != nil {
		return r, err
	}
	if s.slices == nil {
		s.slices = make(map[string][2]float64)
	}
	s.slices[key] = r
	return r, nil
}

// normRange returns the real range mapped onto the full integer range when normalizing.
func (s *scaler) normRange() (float64, float64) {
	if s.d.cfg.userNorm {
		return s.d.cfg.normMin, s.d.cfg.normMax
	}
	return s.real[0], s.real[1]
}

func (s *scaler) scaled() bool {
	return s.d.cfg.doRange || s.d.cfg.doNormalize
}

// voxelToReal returns the affine from stored voxels to real values.  Floating-point
// storage holds real values directly.
func (s *scaler) voxelToReal(r [2]float64) affine {
	if s.d.storage.IsFloat() {
		return identity
	}
	return mapRange(s.valid[0], s.valid[1], r[0], r[1])
}

func (s *scaler) realToVoxel(r [2]float64) affine {
	if s.d.storage.IsFloat() {
		return identity
	}
	return mapRange(r[0], r[1], s.valid[0], s.valid[1])
}

// realToNormal maps the normalization range onto the full range of the destination type.
func (s *scaler) realToNormal() affine {
	lo, hi := s.d.dest.Range()
	nmin, nmax := s.normRange()
	return mapRange(nmin, nmax, lo, hi)
}

// readTransform returns the transform from stored voxels to caller values for the
// chunk starting at the given native position.  A nil transform means plain conversion.
func (s *scaler) readTransform(chunkStart []int) (*convert.Transform, error) {
	a := identity
	if s.scaled() {
		r, err := s.realRange(chunkStart)
		if err != nil {
			return nil, err
		}
		a = s.voxelToReal(r)
		if s.d.cfg.doNormalize {
			a = a.then(s.realToNormal())
		}
	}
	if !s.d.cfg.doFill && a == identity {
		return nil, nil
	}
	xf := &convert.Transform{Scale: a.scale, Offset: a.offset}
	if s.d.cfg.doFill {
		eps := FillValueEpsilon * (s.valid[1] - s.valid[0])
		xf.Fill = true
		xf.FillMin = s.valid[0] - eps
		xf.FillMax = s.valid[1] + eps
		xf.FillValue = s.d.cfg.fillValue
	}
	return xf, nil
}

// callerToReal returns the affine from caller values to real values.
func (s *scaler) callerToReal() affine {
	if !s.d.cfg.doNormalize {
		return identity
	}
	lo, hi := s.d.dest.Range()
	nmin, nmax := s.normRange()
	return mapRange(lo, hi, nmin, nmax)
}

// writeTransform returns the transform from caller values to stored voxels.
func (s *scaler) writeTransform(chunkStart []int) (*convert.Transform, error) {
	if !s.scaled() {
		return nil, nil
	}
	r, err := s.realRange(chunkStart)
	if err != nil {
		return nil, err
	}
	a := s.callerToReal().then(s.realToVoxel(r))
	if a == identity {
		return nil, nil
	}
	return &convert.Transform{Scale: a.scale, Offset: a.offset}, nil
}

// rangeStat accumulates the real range of written values.
type rangeStat struct {
	coords   []int
	min, max float64
	seen     bool
}

func (st *rangeStat) add(values []float64) {
	if len(values) == 0 {
		return
	}
	lo, hi := floats.Min(values), floats.Max(values)
	if math.IsNaN(lo) || math.IsNaN(hi) {
		lo, hi = math.Inf(1), math.Inf(-1)
		for _, v := range values {
			if v == v {
				lo, hi = math.Min(lo, v), math.Max(hi, v)
			}
		}
		if lo > hi {
			return
		}
	}
	if !st.seen {
		st.min, st.max, st.seen = lo, hi, true
		return
	}
	st.min = math.Min(st.min, lo)
	st.max = math.Max(st.max, hi)
}

func union(a [2]float64, lo, hi float64) [2]float64 {
	return [2]float64{math.Min(a[0], lo), math.Max(a[1], hi)}
}

// recordRanges scans the caller's values chunk by chunk and stores the real range of
// the written data.  Whole-volume ranges only extend.  A slice written in full gets
// exactly the range of its new data; a partly written slice keeps the union with its
// stored range.
func (s *scaler) recordRanges(r *request, buf any) error {
	p := s.d.rangePlan(r)
	scratch := make([]float64, p.chunkElems)
	toReal := s.callerToReal()
	whole := &rangeStat{}
	stats := make(map[string]*rangeStat)
	var order []string

	err := p.walk(r, func(chunk int, cstart, ccount []int, off, n int) error {
		values := scratch[:n]
		if err := convert.Convert(values, convert.Sub(buf, off, n), nil); err != nil {
			return err
		}
		if toReal != identity {
			for i, v := range values {
				values[i] = toReal.apply(v)
			}
		}
		whole.add(values)
		if s.d.sliceScaling {
			coords := s.d.sliceCoords(cstart)
			key := sliceKey(coords)
			st, found := stats[key]
			if !found {
				st = &rangeStat{coords: append([]int(nil), coords...)}
				stats[key] = st
				order = append(order, key)
			}
			st.add(values)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if !whole.seen {
		return nil
	}

	full := s.d.coversSlices(r)
	for _, key := range order {
		st := stats[key]
		if !st.seen {
			continue
		}
		lo, hi := st.min, st.max
		if !full {
			old, err := s.realRange(st.coords)
			if err != nil {
				return err
			}
			u := union(old, lo, hi)
			lo, hi = u[0], u[1]
		}
		if err := s.d.vol.SetSliceRange(st.coords, lo, hi); err != nil {
			return err
		}
		if s.slices == nil {
			s.slices = make(map[string][2]float64)
		}
		s.slices[key] = [2]float64{lo, hi}
	}

	if whole.min < s.real[0] || whole.max > s.real[1] {
		s.real = union(s.real, whole.min, whole.max)
		if err := s.d.vol.SetRealRange(s.real[0], s.real[1]); err != nil {
			return err
		}
	}
	dvid.Debugf("Recorded real range [%g,%g] of %d values written to %s\n", whole.min, whole.max, r.total, s.d.vol)
	return nil
}
