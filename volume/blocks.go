package volume

import (
	"encoding/binary"
	"fmt"

	"github.com/janelia-flyem/voxelio/convert"
	"github.com/janelia-flyem/voxelio/dvid"
	"github.com/janelia-flyem/voxelio/storage"
)

func blockKey(name string, level int, coord []int) storage.Key {
	suffix := make([]byte, 1+4*len(coord))
	suffix[0] = byte(level)
	for i, c := range coord {
		binary.BigEndian.PutUint32(suffix[1+i*4:], uint32(c))
	}
	return storage.NewKey([]byte(name), keyBlock, suffix)
}

// region is a normalized rectangular request.  Scalar volumes are treated as one
// dimension of length 1.
type region struct {
	start, count []int
	lengths      []int
	blockSize    []int
}

func (v *Volume) region(start, count []int, lengths []int) (region, error) {
	n := len(lengths)
	if len(start) != n || len(count) != n {
		return region{}, fmt.Errorf("region of %d/%d dimensions for %d-d volume %q: %w",
			len(start), len(count), n, v.meta.Name, ErrOutOfBounds)
	}
	for i := 0; i < n; i++ {
		if start[i] < 0 || count[i] < 1 || start[i]+count[i] > lengths[i] {
			return region{}, fmt.Errorf("dimension %d: start=%d count=%d length=%d: %w",
				i, start[i], count[i], lengths[i], ErrOutOfBounds)
		}
	}
	if n == 0 {
		return region{start: []int{0}, count: []int{1}, lengths: []int{1}, blockSize: []int{1}}, nil
	}
	return region{start: start, count: count, lengths: lengths, blockSize: v.meta.BlockSize}, nil
}

func (r region) numElements() int {
	n := 1
	for _, c := range r.count {
		n *= c
	}
	return n
}

// blockRange returns the first and last block coordinates touched by the region.
func (r region) blockRange() (first, last []int) {
	n := len(r.start)
	first, last = make([]int, n), make([]int, n)
	for i := 0; i < n; i++ {
		first[i] = r.start[i] / r.blockSize[i]
		last[i] = (r.start[i] + r.count[i] - 1) / r.blockSize[i]
	}
	return
}

// forEachIndex walks idx from first to last inclusive, last dimension fastest.
func forEachIndex(first, last []int, f func(idx []int) error) error {
	n := len(first)
	idx := append([]int(nil), first...)
	for {
		if err := f(idx); err != nil {
			return err
		}
		d := n - 1
		for ; d >= 0; d-- {
			idx[d]++
			if idx[d] <= last[d] {
				break
			}
			idx[d] = first[d]
		}
		if d < 0 {
			return nil
		}
	}
}

// blockCopier moves the intersection of a block and a region between the block's
// buffer and the region's buffer.
type blockCopier struct {
	r         region
	regStride []int
	blkStride []int
	blkElems  int
}

func newBlockCopier(r region) *blockCopier {
	n := len(r.start)
	c := &blockCopier{
		r:         r,
		regStride: make([]int, n),
		blkStride: make([]int, n),
	}
	rs, bs := 1, 1
	for i := n - 1; i >= 0; i-- {
		c.regStride[i] = rs
		c.blkStride[i] = bs
		rs *= r.count[i]
		bs *= r.blockSize[i]
	}
	c.blkElems = bs
	return c
}

// runs calls f with region and block offsets of each contiguous run in the
// intersection with block b.  It reports whether the intersection is the whole block.
func (c *blockCopier) runs(b []int, f func(regOff, blkOff, n int)) (full bool) {
	n := len(b)
	lo, hi := make([]int, n), make([]int, n)
	full = true
	for i := 0; i < n; i++ {
		bStart := b[i] * c.r.blockSize[i]
		lo[i] = max(c.r.start[i], bStart)
		hi[i] = min(c.r.start[i]+c.r.count[i], bStart+c.r.blockSize[i]) - 1
		if lo[i] != bStart || hi[i] != bStart+c.r.blockSize[i]-1 {
			full = false
		}
	}
	runLen := hi[n-1] - lo[n-1] + 1
	rowLast := append([]int(nil), hi...)
	rowLast[n-1] = lo[n-1]
	forEachIndex(lo, rowLast, func(idx []int) error {
		var regOff, blkOff int
		for i := 0; i < n; i++ {
			regOff += (idx[i] - c.r.start[i]) * c.regStride[i]
			blkOff += (idx[i] - b[i]*c.r.blockSize[i]) * c.blkStride[i]
		}
		f(regOff, blkOff, runLen)
		return nil
	})
	return
}

func (v *Volume) loadBlock(key storage.Key, dst any) (found bool, err error) {
	data, err := v.db.Get(key)
	if err != nil || data == nil {
		return false, err
	}
	raw, _, err := dvid.DeserializeData(data)
	if err != nil {
		return false, fmt.Errorf("block %s of volume %q: %w", key, v.meta.Name, err)
	}
	return true, convert.Decode(dst, raw)
}

func (v *Volume) storeBlock(key storage.Key, src any) error {
	raw, err := convert.Encode(nil, src)
	if err != nil {
		return err
	}
	data, err := dvid.SerializeData(raw, v.compression, dvid.CRC32)
	if err != nil {
		return err
	}
	return v.db.Put(key, data)
}

func (v *Volume) checkBuffer(buf any, need int) error {
	kind, n, err := convert.KindOf(buf)
	if err != nil {
		return err
	}
	if kind != v.DataType() {
		return fmt.Errorf("%s buffer for %s volume %q: %w", kind, v.DataType(), v.meta.Name, ErrTypeMismatch)
	}
	if n < need {
		return fmt.Errorf("buffer of %d elements for region of %d: %w", n, need, convert.ErrBufferSize)
	}
	return nil
}

// ReadNative reads a region in storage order and storage kind into dst, which must be
// a slice of the storage kind holding at least the region's elements.  Blocks never
// written read as zero.
func (v *Volume) ReadNative(start, count []int, dst any) error {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.closed {
		return ErrClosed
	}
	return v.readLevel(v.level, v.levelDims, start, count, dst)
}

func (v *Volume) readLevel(level int, dims []Dimension, start, count []int, dst any) error {
	r, err := v.region(start, count, dimLengths(dims))
	if err != nil {
		return err
	}
	if err := v.checkBuffer(dst, r.numElements()); err != nil {
		return err
	}
	switch b := dst.(type) {
	case []uint8:
		return readRegion(v, level, r, b)
	case []int8:
		return readRegion(v, level, r, b)
	case []uint16:
		return readRegion(v, level, r, b)
	case []int16:
		return readRegion(v, level, r, b)
	case []uint32:
		return readRegion(v, level, r, b)
	case []int32:
		return readRegion(v, level, r, b)
	case []float32:
		return readRegion(v, level, r, b)
	case []float64:
		return readRegion(v, level, r, b)
	}
	return convert.ErrUnknownType
}

func readRegion[T convert.Number](v *Volume, level int, r region, dst []T) error {
	c := newBlockCopier(r)
	block := make([]T, c.blkElems)
	first, last := r.blockRange()
	return forEachIndex(first, last, func(b []int) error {
		found, err := v.loadBlock(blockKey(v.meta.Name, level, b), block)
		if err != nil {
			return err
		}
		if !found {
			clear(block)
		}
		c.runs(b, func(regOff, blkOff, n int) {
			copy(dst[regOff:regOff+n], block[blkOff:blkOff+n])
		})
		return nil
	})
}

// WriteNative writes a region in storage order and storage kind from src.  Only full
// resolution can be written.  Any built lower resolutions are discarded and must be
// rebuilt.
func (v *Volume) WriteNative(start, count []int, src any) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrClosed
	}
	if v.level != 0 {
		return fmt.Errorf("writing level %d of volume %q: %w", v.level, v.meta.Name, ErrReadOnlyResolution)
	}
	if err := v.writeLevel(0, v.levelDims, start, count, src); err != nil {
		return err
	}
	if v.meta.Levels > 0 {
		return v.dropLevels()
	}
	if !v.meta.DataWritten {
		v.meta.DataWritten = true
		return v.save()
	}
	return nil
}

// dropLevels deletes the blocks of every level above full resolution.
func (v *Volume) dropLevels() error {
	dvid.Infof("Write to volume %q discards %d lower resolution levels\n", v.meta.Name, v.meta.Levels)
	ns := []byte(v.meta.Name)
	start := storage.NewKey(ns, keyBlock, []byte{1})
	end := storage.NewKey(ns, keyBlock+1, nil)
	if err := storage.DeleteRange(v.db, start, end); err != nil {
		return fmt.Errorf("dropping resolution levels of volume %q: %w", v.meta.Name, err)
	}
	v.meta.Levels = 0
	v.meta.DataWritten = true
	return v.save()
}

func (v *Volume) writeLevel(level int, dims []Dimension, start, count []int, src any) error {
	r, err := v.region(start, count, dimLengths(dims))
	if err != nil {
		return err
	}
	if err := v.checkBuffer(src, r.numElements()); err != nil {
		return err
	}
	switch b := src.(type) {
	case []uint8:
		return writeRegion(v, level, r, b)
	case []int8:
		return writeRegion(v, level, r, b)
	case []uint16:
		return writeRegion(v, level, r, b)
	case []int16:
		return writeRegion(v, level, r, b)
	case []uint32:
		return writeRegion(v, level, r, b)
	case []int32:
		return writeRegion(v, level, r, b)
	case []float32:
		return writeRegion(v, level, r, b)
	case []float64:
		return writeRegion(v, level, r, b)
	}
	return convert.ErrUnknownType
}

func writeRegion[T convert.Number](v *Volume, level int, r region, src []T) error {
	c := newBlockCopier(r)
	block := make([]T, c.blkElems)
	first, last := r.blockRange()
	return forEachIndex(first, last, func(b []int) error {
		key := blockKey(v.meta.Name, level, b)
		var runs [][3]int
		full := c.runs(b, func(regOff, blkOff, n int) {
			runs = append(runs, [3]int{regOff, blkOff, n})
		})
		if !full {
			found, err := v.loadBlock(key, block)
			if err != nil {
				return err
			}
			if !found {
				clear(block)
			}
		}
		for _, run := range runs {
			copy(block[run[1]:run[1]+run[2]], src[run[0]:run[0]+run[2]])
		}
		return v.storeBlock(key, block)
	})
}

func dimLengths(dims []Dimension) []int {
	lengths := make([]int, len(dims))
	for i, d := range dims {
		lengths[i] = d.Length
	}
	return lengths
}
