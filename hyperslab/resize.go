package hyperslab

import (
	"fmt"

	"github.com/janelia-flyem/voxelio/convert"
	"github.com/janelia-flyem/voxelio/dvid"
)

// resizeAxis describes how one of the two fastest apparent axes is resized.  A stored
// length is shrunk by averaging blocks of factor voxels or grown by repeating each
// voxel factor times.
type resizeAxis struct {
	length int // stored
	size   int // as seen by callers
	shrink bool
	factor int
}

// srcRange returns the stored index range [lo, hi), relative to srcStart, that feeds
// resized index start+j.
func (a resizeAxis) srcRange(start, srcStart, j int) (lo, hi int) {
	switch {
	case a.factor == 1:
		return j, j + 1
	case a.shrink:
		lo = (start+j)*a.factor - srcStart
		return lo, lo + a.factor
	default:
		lo = (start+j)/a.factor - srcStart
		return lo, lo + 1
	}
}

// source returns the stored start and count needed for a resized start and count.
func (a resizeAxis) source(start, count int) (int, int) {
	switch {
	case a.factor == 1:
		return start, count
	case a.shrink:
		return start * a.factor, count * a.factor
	default:
		first := start / a.factor
		last := (start + count - 1) / a.factor
		return first, last - first + 1
	}
}

// resizer reads hyperslabs whose two fastest apparent axes have caller-chosen lengths.
// It reads one plane of those axes at a time so memory stays bounded by a plane.
type resizer struct {
	axes []resizeAxis // apparent positions n-len(axes) .. n-1
}

func newResizer(d *derived) (*resizer, error) {
	n := len(d.lengths)
	sizes := d.cfg.axisSize
	if sizes[AxisA] == 0 && sizes[AxisB] == 0 {
		return nil, nil
	}
	m := min(2, n)
	if sizes[AxisB] != 0 && m < 2 || sizes[AxisA] != 0 && m < 1 {
		return nil, fmt.Errorf("resizing axes of %d-d %s: %w", n, d.vol, ErrUnsupported)
	}
	r := &resizer{axes: make([]resizeAxis, m)}
	resized := false
	for i := range r.axes {
		length := d.lengths[d.order[n-m+i]]
		size := sizes[AxisA]
		if i < m-1 {
			size = sizes[AxisB]
		}
		a := resizeAxis{length: length, size: length, factor: 1}
		switch {
		case size == 0 || size == length:
		case size < length && length%size == 0:
			a.size, a.shrink, a.factor = size, true, length/size
		case size > length && size%length == 0:
			a.size, a.factor = size, size/length
		default:
			return nil, fmt.Errorf("resizing axis of length %d to %d needs an integer factor: %w", length, size, ErrUnsupported)
		}
		if a.factor != 1 {
			resized = true
		}
		r.axes[i] = a
	}
	if !resized {
		return nil, nil
	}
	return r, nil
}

func (r *resizer) get(d *derived, start, count []int, buf any) error {
	n := len(d.lengths)
	if len(start) != n || len(count) != n {
		return fmt.Errorf("hyperslab of %d/%d dimensions for %d-d %s: %w",
			len(start), len(count), n, d.vol, ErrOutOfBounds)
	}
	m := len(r.axes)
	outer := n - m
	for p := 0; p < n; p++ {
		length := d.lengths[d.order[p]]
		if p >= outer {
			length = r.axes[p-outer].size
		}
		if start[p] < 0 || count[p] < 1 || start[p]+count[p] > length {
			return fmt.Errorf("apparent dimension %d: start=%d count=%d length=%d: %w",
				p, start[p], count[p], length, ErrOutOfBounds)
		}
	}
	total, err := dvid.NumElements(count)
	if err != nil || total > MaxElements {
		return fmt.Errorf("hyperslab %v: %w", count, ErrResource)
	}
	if err := d.checkBuffer(buf, total); err != nil {
		return err
	}

	sstart := append([]int(nil), start...)
	scount := make([]int, n)
	for i := 0; i < outer; i++ {
		scount[i] = 1
	}
	planeSrc := 1
	planeOut := 1
	for i, a := range r.axes {
		p := outer + i
		sstart[p], scount[p] = a.source(start[p], count[p])
		planeSrc *= scount[p]
		planeOut *= count[p]
	}
	src := make([]float64, planeSrc)
	out := make([]float64, planeOut)

	idx := make([]int, outer)
	for plane := 0; ; plane++ {
		for i := 0; i < outer; i++ {
			sstart[i] = start[i] + idx[i]
		}
		req, err := d.translate(sstart, scount)
		if err != nil {
			return err
		}
		if err := d.read(req, src); err != nil {
			return err
		}
		r.resample(out, src, start[outer:], sstart[outer:], count[outer:], scount[outer:])
		if err := convert.Convert(convert.Sub(buf, plane*planeOut, planeOut), out, nil); err != nil {
			return err
		}

		i := outer - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < count[i] {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return nil
		}
	}
}

// resample fills out, a plane of count elements, from src, a plane of scount stored
// elements.  Shrunk axes average their source blocks.
func (r *resizer) resample(out, src []float64, start, sstart, count, scount []int) {
	if len(r.axes) == 1 {
		a := r.axes[0]
		for j := 0; j < count[0]; j++ {
			lo, hi := a.srcRange(start[0], sstart[0], j)
			var sum float64
			for s := lo; s < hi; s++ {
				sum += src[s]
			}
			out[j] = sum / float64(hi-lo)
		}
		return
	}
	b, a := r.axes[0], r.axes[1]
	for jb := 0; jb < count[0]; jb++ {
		blo, bhi := b.srcRange(start[0], sstart[0], jb)
		for ja := 0; ja < count[1]; ja++ {
			alo, ahi := a.srcRange(start[1], sstart[1], ja)
			var sum float64
			for sb := blo; sb < bhi; sb++ {
				row := src[sb*scount[1] : (sb+1)*scount[1]]
				for sa := alo; sa < ahi; sa++ {
					sum += row[sa]
				}
			}
			out[jb*count[1]+ja] = sum / float64((bhi-blo)*(ahi-alo))
		}
	}
}
