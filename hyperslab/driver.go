package hyperslab

import (
	"fmt"

	"github.com/DmitriyVTitov/size"
	"github.com/dustin/go-humanize"

	"github.com/janelia-flyem/voxelio/convert"
	"github.com/janelia-flyem/voxelio/dvid"
	"github.com/janelia-flyem/voxelio/restructure"
)

// plan splits a native request into chunks that each fit the buffer budget.  Every
// chunk has count 1 in dimensions slower than firstdim, up to ntimes in firstdim, and
// the full request count in faster dimensions, so each chunk is contiguous in a
// native-order buffer.
type plan struct {
	firstdim   int
	ntimes     int
	inner      int // elements per step of firstdim
	chunkElems int
	nchunks    int

	stride []int // native-order buffer strides
}

// newPlan lays out chunks for count (native order) given the byte budget and element
// size.  If sliceDims >= 0, chunks are kept within one slice of that many fastest
// dimensions.
func newPlan(count []int, elemBytes, maxBuffer, sliceDims int) *plan {
	if len(count) == 0 {
		return &plan{ntimes: 1, inner: 1, chunkElems: 1, nchunks: 1}
	}
	n := len(count)
	budget := max(maxBuffer/elemBytes, 1)

	limit := 0
	if sliceDims >= 0 {
		limit = max(n-sliceDims, 0)
	}
	inner := 1
	d := n - 1
	for d > limit && inner*count[d] <= budget {
		inner *= count[d]
		d--
	}
	p := &plan{
		firstdim: d,
		inner:    inner,
		ntimes:   min(max(budget/inner, 1), count[d]),
		stride:   make([]int, n),
	}
	if sliceDims == 0 {
		p.ntimes = 1
	}
	p.chunkElems = p.ntimes * inner

	stride := 1
	for i := n - 1; i >= 0; i-- {
		p.stride[i] = stride
		stride *= count[i]
	}
	p.nchunks = (count[d] + p.ntimes - 1) / p.ntimes
	for i := 0; i < d; i++ {
		p.nchunks *= count[i]
	}
	return p
}

func (p *plan) String() string {
	return fmt.Sprintf("%d chunks of %d elements, %d along dim %d", p.nchunks, p.chunkElems, p.ntimes, p.firstdim)
}

// walk calls f for each chunk with its native start and count, and the offset and
// length of its elements in a native-order buffer of the whole request.
func (p *plan) walk(r *request, f func(chunk int, cstart, ccount []int, off, n int) error) error {
	n := len(r.count)
	if n == 0 {
		return f(0, nil, nil, 0, 1)
	}
	fd := p.firstdim
	idx := make([]int, fd+1) // relative to the request start
	cstart := make([]int, n)
	ccount := make([]int, n)
	copy(cstart, r.start)
	copy(ccount, r.count)
	for i := 0; i < fd; i++ {
		ccount[i] = 1
	}

	for chunk := 0; ; chunk++ {
		var off int
		for i := 0; i <= fd; i++ {
			cstart[i] = r.start[i] + idx[i]
			off += idx[i] * p.stride[i]
		}
		ccount[fd] = min(p.ntimes, r.count[fd]-idx[fd])
		if err := f(chunk, cstart, ccount, off, ccount[fd]*p.inner); err != nil {
			return err
		}

		idx[fd] += p.ntimes
		d := fd
		for d >= 0 {
			if idx[d] < r.count[d] {
				break
			}
			idx[d] = 0
			d--
			if d >= 0 {
				idx[d]++
			}
		}
		if d < 0 {
			return nil
		}
	}
}

// chunkBuffer returns the storage-kind buffer chunks pass through, or nil when chunks
// can move directly between the caller's buffer and storage.
func (d *derived) chunkBuffer(p *plan, direct bool) any {
	if direct {
		return nil
	}
	buf := convert.Make(d.storage, p.chunkElems)
	if dvid.LogMode() == dvid.DebugMode {
		dvid.Debugf("Transfer on %s: %s, buffer %s\n", d.vol, p, humanize.Bytes(uint64(size.Of(buf))))
	}
	return buf
}

// sliceDims returns the image dimensions chunks must stay within, or -1 when chunks
// may span slices.
func (d *derived) sliceDims() int {
	if d.sliceScaling && (d.cfg.doRange || d.cfg.doNormalize) {
		return d.imageDims
	}
	return -1
}

func (d *derived) newPlan(r *request) *plan {
	return newPlan(r.count, d.storage.Bytes(), d.cfg.maxBuffer, d.sliceDims())
}

// rangePlan lays out the chunks of the range pre-pass, whose scratch holds float64s.
func (d *derived) rangePlan(r *request) *plan {
	return newPlan(r.count, 8, d.cfg.maxBuffer, d.sliceDims())
}

// read fills buf, a slice of exactly r.total elements, with the requested hyperslab in
// apparent order.  Values are scaled for the destination kind even if buf holds a
// wider kind.
func (d *derived) read(r *request, buf any) error {
	kind, _, err := convert.KindOf(buf)
	if err != nil {
		return err
	}
	p := d.newPlan(r)
	s := d.newScaler()
	direct := kind == d.storage && !s.scaled() && !d.cfg.doFill
	chunkBuf := d.chunkBuffer(p, direct)

	tlog := dvid.NewTimeLog()
	err = p.walk(r, func(chunk int, cstart, ccount []int, off, n int) error {
		dst := convert.Sub(buf, off, n)
		if direct {
			if err := d.vol.ReadNative(cstart, ccount, dst); err != nil {
				return &TransferError{Chunk: chunk, Completed: chunk, Err: err}
			}
			return nil
		}
		xf, err := s.readTransform(cstart)
		if err != nil {
			return err
		}
		src := convert.Sub(chunkBuf, 0, n)
		if err := d.vol.ReadNative(cstart, ccount, src); err != nil {
			return &TransferError{Chunk: chunk, Completed: chunk, Err: err}
		}
		return convert.Convert(dst, src, xf)
	})
	if err != nil {
		return err
	}
	if r.needsRestructure() {
		if err := restructure.ApplySlice(buf, r.layout); err != nil {
			return err
		}
	}
	tlog.Debugf("Read %s from %s as %s", r, d.vol, d.dest)
	return nil
}

// write stores buf, a slice of exactly r.total elements in apparent order.  The buffer
// is restructured into native order for the transfer and put back before returning.
func (d *derived) write(r *request, buf any) (err error) {
	if r.needsRestructure() {
		if err := restructure.ApplySlice(buf, r.layout.Inverse()); err != nil {
			return err
		}
		defer func() {
			if rerr := restructure.ApplySlice(buf, r.layout); rerr != nil && err == nil {
				err = rerr
			}
		}()
	}

	p := d.newPlan(r)
	s := d.newScaler()
	if s.scaled() && d.cfg.trackRange {
		if err := s.recordRanges(r, buf); err != nil {
			return err
		}
	}
	direct := d.dest == d.storage && !s.scaled()
	chunkBuf := d.chunkBuffer(p, direct)

	tlog := dvid.NewTimeLog()
	err = p.walk(r, func(chunk int, cstart, ccount []int, off, n int) error {
		src := convert.Sub(buf, off, n)
		if !direct {
			xf, err := s.writeTransform(cstart)
			if err != nil {
				return err
			}
			dst := convert.Sub(chunkBuf, 0, n)
			if err := convert.Convert(dst, src, xf); err != nil {
				return err
			}
			src = dst
		}
		if err := d.vol.WriteNative(cstart, ccount, src); err != nil {
			return &TransferError{Chunk: chunk, Completed: chunk, Err: err}
		}
		return nil
	})
	if err != nil {
		return err
	}
	tlog.Debugf("Wrote %s to %s from %s", r, d.vol, d.dest)
	return nil
}
