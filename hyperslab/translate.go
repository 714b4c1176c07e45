package hyperslab

import (
	"fmt"

	"github.com/janelia-flyem/voxelio/dvid"
	"github.com/janelia-flyem/voxelio/restructure"
)

// request is a hyperslab translated into storage order.
type request struct {
	start, count []int // native order, flips applied
	total        int

	// layout takes a buffer in native order to the caller's apparent order.
	layout restructure.Layout

	// moved is the number of axes whose apparent position differs from their native one.
	moved int
}

func (r *request) String() string {
	return fmt.Sprintf("start %v count %v (%d axes moved)", r.start, r.count, r.moved)
}

// needsRestructure returns true if the caller's buffer isn't already in native order.
func (r *request) needsRestructure() bool {
	return len(r.count) > 0 && !r.layout.IsIdentity()
}

// translate converts an apparent-order hyperslab into native coordinates.  Bounds are
// checked here so no I/O happens for bad requests.
func (d *derived) translate(start, count []int) (*request, error) {
	n := len(d.lengths)
	if len(start) != n || len(count) != n {
		return nil, fmt.Errorf("hyperslab of %d/%d dimensions for %d-d %s: %w",
			len(start), len(count), n, d.vol, ErrOutOfBounds)
	}
	if n == 0 {
		return &request{total: 1}, nil
	}
	r := &request{
		start: make([]int, n),
		count: make([]int, n),
		layout: restructure.Layout{
			AxisMap: make([]int, n),
			Reverse: make([]bool, n),
		},
	}
	for p, axis := range d.order {
		length := d.lengths[axis]
		if start[p] < 0 || count[p] < 1 || start[p]+count[p] > length {
			return nil, fmt.Errorf("apparent dimension %d: start=%d count=%d length=%d: %w",
				p, start[p], count[p], length, ErrOutOfBounds)
		}
		r.count[axis] = count[p]
		if d.reversed[axis] {
			r.start[axis] = length - start[p] - count[p]
		} else {
			r.start[axis] = start[p]
		}
		r.layout.AxisMap[axis] = p
		r.layout.Reverse[axis] = d.reversed[axis]
		if axis != p {
			r.moved++
		}
	}
	r.layout.Lengths = r.count

	total, err := dvid.NumElements(r.count)
	if err != nil {
		return nil, fmt.Errorf("hyperslab %v: %w", count, ErrResource)
	}
	if total > MaxElements {
		return nil, fmt.Errorf("hyperslab of %d elements, limit %d: %w", total, MaxElements, ErrResource)
	}
	r.total = total
	return r, nil
}

// sliceCoords returns the slice a native position belongs to, given by its
// coordinates in the dimensions slower than the image dimensions.
func (d *derived) sliceCoords(native []int) []int {
	return native[:len(d.lengths)-d.imageDims]
}

// coversSlices returns true if a native request spans whole slices.
func (d *derived) coversSlices(r *request) bool {
	n := len(d.lengths)
	for i := n - d.imageDims; i < n; i++ {
		if r.count[i] != d.lengths[i] {
			return false
		}
	}
	return true
}
