/*
Package restructure permutes and flips the axes of a row-major N-d array in place.

A Layout describes the array as it currently sits in memory (Lengths, slowest axis
first) and where each of those axes ends up.  Apply rearranges the buffer by following
permutation cycles, marking finished offsets in a bitmap so each element moves once
using a single temporary.
*/
package restructure

import (
	"errors"
	"fmt"

	"github.com/janelia-flyem/voxelio/convert"
	"github.com/janelia-flyem/voxelio/dvid"
)

var (
	// ErrBadLayout is returned for layouts whose axis map isn't a permutation or
	// whose slices disagree in length.
	ErrBadLayout = errors.New("invalid layout")

	// ErrBufferLength is returned when a buffer doesn't hold exactly the layout's elements.
	ErrBufferLength = errors.New("buffer length doesn't match layout")
)

// Layout describes a restructuring.  Source axis i, of length Lengths[i], becomes
// output axis AxisMap[i].  If Reverse[i] is set, indices along that axis run backwards
// in the output.  A nil AxisMap or Reverse means identity or no reversal.
type Layout struct {
	Lengths []int
	AxisMap []int
	Reverse []bool
}

// NewLayout returns an identity layout for the given lengths.
func NewLayout(lengths []int) Layout {
	l := Layout{
		Lengths: append([]int(nil), lengths...),
		AxisMap: make([]int, len(lengths)),
		Reverse: make([]bool, len(lengths)),
	}
	for i := range l.AxisMap {
		l.AxisMap[i] = i
	}
	return l
}

func (l Layout) axis(i int) int {
	if l.AxisMap == nil {
		return i
	}
	return l.AxisMap[i]
}

func (l Layout) reversed(i int) bool {
	return l.Reverse != nil && l.Reverse[i]
}

// Validate checks that the layout describes a permutation.
func (l Layout) Validate() error {
	n := len(l.Lengths)
	if l.AxisMap != nil && len(l.AxisMap) != n {
		return fmt.Errorf("%w: %d axes mapped for %d lengths", ErrBadLayout, len(l.AxisMap), n)
	}
	if l.Reverse != nil && len(l.Reverse) != n {
		return fmt.Errorf("%w: %d reverse flags for %d lengths", ErrBadLayout, len(l.Reverse), n)
	}
	seen := make([]bool, n)
	for i, length := range l.Lengths {
		if length < 1 {
			return fmt.Errorf("%w: axis %d has length %d", ErrBadLayout, i, length)
		}
		j := l.axis(i)
		if j < 0 || j >= n || seen[j] {
			return fmt.Errorf("%w: axis map %v is not a permutation", ErrBadLayout, l.AxisMap)
		}
		seen[j] = true
	}
	return nil
}

// IsIdentity returns true if applying the layout leaves a buffer unchanged.
func (l Layout) IsIdentity() bool {
	for i, length := range l.Lengths {
		if l.axis(i) != i {
			return false
		}
		if l.reversed(i) && length > 1 {
			return false
		}
	}
	return true
}

// OutputLengths returns the axis lengths after restructuring.
func (l Layout) OutputLengths() []int {
	out := make([]int, len(l.Lengths))
	for i, length := range l.Lengths {
		out[l.axis(i)] = length
	}
	return out
}

// Inverse returns the layout that undoes l.
func (l Layout) Inverse() Layout {
	n := len(l.Lengths)
	inv := Layout{
		Lengths: l.OutputLengths(),
		AxisMap: make([]int, n),
		Reverse: make([]bool, n),
	}
	for i := 0; i < n; i++ {
		j := l.axis(i)
		inv.AxisMap[j] = i
		inv.Reverse[j] = l.reversed(i)
	}
	return inv
}

func (l Layout) String() string {
	return fmt.Sprintf("lengths %v -> axes %v reverse %v", l.Lengths, l.AxisMap, l.Reverse)
}

// gather maps an output offset to the source offset whose element belongs there.
type gather struct {
	outLengths []int
	srcOf      []int // output axis -> source axis
	srcStride  []int // by source axis
	srcLength  []int
	reverse    []bool // by source axis
	idx        []int
}

func newGather(l Layout) *gather {
	n := len(l.Lengths)
	g := &gather{
		outLengths: l.OutputLengths(),
		srcOf:      make([]int, n),
		srcStride:  make([]int, n),
		srcLength:  l.Lengths,
		reverse:    make([]bool, n),
		idx:        make([]int, n),
	}
	stride := 1
	for i := n - 1; i >= 0; i-- {
		g.srcStride[i] = stride
		stride *= l.Lengths[i]
		g.srcOf[l.axis(i)] = i
		g.reverse[i] = l.reversed(i)
	}
	return g
}

func (g *gather) source(d int) int {
	var s int
	for j := len(g.outLengths) - 1; j >= 0; j-- {
		o := d % g.outLengths[j]
		d /= g.outLengths[j]
		i := g.srcOf[j]
		if g.reverse[i] {
			o = g.srcLength[i] - 1 - o
		}
		s += o * g.srcStride[i]
	}
	return s
}

// Apply restructures buf in place according to l.
func Apply[T any](buf []T, l Layout) error {
	if err := l.Validate(); err != nil {
		return err
	}
	total, err := dvid.NumElements(l.Lengths)
	if err != nil {
		return err
	}
	if len(buf) != total {
		return fmt.Errorf("%w: %d elements for lengths %v", ErrBufferLength, len(buf), l.Lengths)
	}
	if l.IsIdentity() {
		return nil
	}

	g := newGather(l)
	done := NewBitmap(total)
	for start := 0; start < total; start++ {
		if done.Test(start) {
			continue
		}
		next := g.source(start)
		if next == start {
			done.Set(start)
			continue
		}
		tmp := buf[start]
		cur := start
		for next != start {
			buf[cur] = buf[next]
			done.Set(cur)
			cur = next
			next = g.source(cur)
		}
		buf[cur] = tmp
		done.Set(cur)
	}
	return nil
}

// ApplySlice restructures any supported typed slice in place.
func ApplySlice(buf any, l Layout) error {
	switch b := buf.(type) {
	case []uint8:
		return Apply(b, l)
	case []int8:
		return Apply(b, l)
	case []uint16:
		return Apply(b, l)
	case []int16:
		return Apply(b, l)
	case []uint32:
		return Apply(b, l)
	case []int32:
		return Apply(b, l)
	case []float32:
		return Apply(b, l)
	case []float64:
		return Apply(b, l)
	}
	_, _, err := convert.KindOf(buf)
	return err
}
