/*
Package volume stores N-dimensional voxel volumes in an ordered key-value store.

A volume has an ordered list of dimensions (slowest-varying first), a storage element
kind, a valid voxel range and a real-value range, optionally per slice.  Voxels are
kept in fixed-size N-d blocks; ReadNative and WriteNative move regions in storage
order and storage kind without any scaling.  Apparent order and flip policies are
recorded here but applied by the hyperslab package.
*/
package volume

import (
	"fmt"
	"strings"
	"sync"

	"github.com/twinj/uuid"

	"github.com/janelia-flyem/voxelio/dvid"
	"github.com/janelia-flyem/voxelio/storage"
)

// Volume is an open handle on a stored volume.  Handles are safe for concurrent reads;
// settings changes and writes should not race with each other.
type Volume struct {
	db storage.OrderedKeyValueDB

	mu          sync.RWMutex
	meta        *metadata
	compression dvid.Compression
	level       int
	levelDims   []Dimension
	apparent    []int
	closed      bool
}

func checkName(name string) error {
	if name == "" || strings.ContainsRune(name, 0) {
		return fmt.Errorf("bad volume name %q", name)
	}
	return nil
}

// Create makes a new volume in db.
func Create(db storage.OrderedKeyValueDB, name string, spec Spec) (*Volume, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	if err := spec.validate(); err != nil {
		return nil, err
	}
	existing, err := db.Get(metadataKey(name))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("volume %q: %w", name, ErrExists)
	}

	m := &metadata{
		UUID:         uuid.NewV4().String(),
		Name:         name,
		Version:      FormatVersion.String(),
		DataType:     uint8(spec.DataType),
		Dims:         make([]Dimension, len(spec.Dims)),
		RealRange:    [2]float64{0, 1},
		SliceScaling: spec.SliceScaling,
		ImageDims:    spec.ImageDims,
	}
	for i, d := range spec.Dims {
		m.Dims[i] = d.dimension()
	}
	if spec.ValidRange != nil {
		m.ValidRange = *spec.ValidRange
	} else {
		m.ValidRange[0], m.ValidRange[1] = spec.DataType.Range()
	}
	if spec.RealRange != nil {
		m.RealRange = *spec.RealRange
	}
	if m.SliceScaling && m.ImageDims == 0 {
		m.ImageDims = min(2, len(m.Dims))
	}
	if spec.BlockSize != nil {
		m.BlockSize = append([]int(nil), spec.BlockSize...)
	} else {
		m.BlockSize = defaultBlockSize(m.Dims)
	}
	compression, _ := dvid.ParseCompression(spec.Compression)
	m.Compression = uint8(compression)

	if err := m.save(db); err != nil {
		return nil, err
	}
	dvid.Infof("Created volume %q (%s) with dims %v\n", name, spec.DataType, m.Dims)
	return newVolume(db, m), nil
}

// Open returns a handle on an existing volume.
func Open(db storage.OrderedKeyValueDB, name string) (*Volume, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	m, err := loadMetadata(db, name)
	if err != nil {
		return nil, err
	}
	return newVolume(db, m), nil
}

// Delete removes a volume and all of its voxels from db.
func Delete(db storage.OrderedKeyValueDB, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	ns := []byte(name)
	return storage.DeleteRange(db, storage.NewKey(ns, 0, nil), storage.NewKey(ns, keySliceRange+1, nil))
}

func newVolume(db storage.OrderedKeyValueDB, m *metadata) *Volume {
	v := &Volume{
		db:          db,
		meta:        m,
		compression: dvid.Compression(m.Compression),
	}
	v.levelDims = v.dimsAtLevel(0)
	return v
}

// Close releases the handle.  The store itself stays open.
func (v *Volume) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrClosed
	}
	v.closed = true
	return nil
}

func (v *Volume) String() string {
	return fmt.Sprintf("volume %q (%s)", v.meta.Name, dvid.DataType(v.meta.DataType))
}

func (v *Volume) Name() string {
	return v.meta.Name
}

func (v *Volume) UUID() string {
	return v.meta.UUID
}

// DataType returns the storage element kind.
func (v *Volume) DataType() dvid.DataType {
	return dvid.DataType(v.meta.DataType)
}

// NumDims returns the number of dimensions.  Scalar volumes have none.
func (v *Volume) NumDims() int {
	return len(v.meta.Dims)
}

// Dims returns the dimensions at the selected resolution, slowest-varying first.
func (v *Volume) Dims() []Dimension {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]Dimension(nil), v.levelDims...)
}

// Lengths returns the dimension lengths at the selected resolution.
func (v *Volume) Lengths() []int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	lengths := make([]int, len(v.levelDims))
	for i, d := range v.levelDims {
		lengths[i] = d.Length
	}
	return lengths
}

// BlockSize returns the block extents used for storage.
func (v *Volume) BlockSize() []int {
	return append([]int(nil), v.meta.BlockSize...)
}

// DataWritten returns true once any voxel has been stored.
func (v *Volume) DataWritten() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.meta.DataWritten
}

func (v *Volume) dimIndex(name string) int {
	for i, d := range v.meta.Dims {
		if d.Name == name {
			return i
		}
	}
	return -1
}

// Dim returns a dimension at the selected resolution and its storage position.
func (v *Volume) Dim(name string) (Dimension, int, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	i := v.dimIndex(name)
	if i < 0 {
		return Dimension{}, -1, false
	}
	return v.levelDims[i], i, true
}

// save persists metadata; callers hold the write lock.
func (v *Volume) save() error {
	if v.closed {
		return ErrClosed
	}
	return v.meta.save(v.db)
}

// updateDim changes a dimension's settings.  Geometry can't change once voxels are stored.
func (v *Volume) updateDim(name string, geometry bool, f func(*Dimension)) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrClosed
	}
	i := v.dimIndex(name)
	if i < 0 {
		return fmt.Errorf("volume %q has no dimension %q", v.meta.Name, name)
	}
	if geometry && v.meta.DataWritten {
		return fmt.Errorf("can't change %q of volume %q: %w", name, v.meta.Name, ErrDataWritten)
	}
	f(&v.meta.Dims[i])
	v.levelDims = v.dimsAtLevel(v.level)
	return v.save()
}

func (v *Volume) SetDimStep(name string, step float64) error {
	if step == 0 {
		return fmt.Errorf("dimension %q can't have zero step", name)
	}
	return v.updateDim(name, true, func(d *Dimension) { d.Step = step })
}

func (v *Volume) SetDimStart(name string, start float64) error {
	return v.updateDim(name, true, func(d *Dimension) { d.Start = start })
}

func (v *Volume) SetDimCosines(name string, cosines [3]float64) error {
	return v.updateDim(name, true, func(d *Dimension) { d.Cosines = cosines })
}

func (v *Volume) SetDimRegular(name string, regular bool) error {
	return v.updateDim(name, true, func(d *Dimension) { d.Regular = regular })
}

// SetDimFlip changes the apparent direction of a dimension.  This is allowed at any time.
func (v *Volume) SetDimFlip(name string, flip FlipPolicy) error {
	return v.updateDim(name, false, func(d *Dimension) { d.Flip = flip })
}

// --- ranges -----

// ValidRange returns the range of voxel values that represent data.
func (v *Volume) ValidRange() (min, max float64) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.meta.ValidRange[0], v.meta.ValidRange[1]
}

// SetValidRange sets the range of voxel values that represent data.  It must fit the storage kind.
func (v *Volume) SetValidRange(min, max float64) error {
	lo, hi := v.DataType().Range()
	if min > max || min < lo || max > hi {
		return fmt.Errorf("valid range [%g,%g] doesn't fit %s", min, max, v.DataType())
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.meta.ValidRange = [2]float64{min, max}
	return v.save()
}

// RealRange returns the whole-volume real range.
func (v *Volume) RealRange() (min, max float64) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.meta.RealRange[0], v.meta.RealRange[1]
}

// SetRealRange sets the whole-volume real range.
func (v *Volume) SetRealRange(min, max float64) error {
	if min > max {
		return fmt.Errorf("real range [%g,%g] is inverted", min, max)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.meta.RealRange = [2]float64{min, max}
	return v.save()
}

// SliceScaling returns true if each slice has its own real range.
func (v *Volume) SliceScaling() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.meta.SliceScaling
}

// ImageDims returns the number of fastest-varying dimensions that make up one slice.
func (v *Volume) ImageDims() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.meta.ImageDims
}

// SetSliceScaling turns per-slice ranges on or off.  It can't change once voxels are stored.
func (v *Volume) SetSliceScaling(on bool, imageDims int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.meta.DataWritten {
		return fmt.Errorf("can't change slice scaling of volume %q: %w", v.meta.Name, ErrDataWritten)
	}
	if imageDims < 0 || imageDims > len(v.meta.Dims) {
		return fmt.Errorf("%d image dimensions for %d dimensions", imageDims, len(v.meta.Dims))
	}
	v.meta.SliceScaling = on
	v.meta.ImageDims = imageDims
	return v.save()
}

func (v *Volume) checkSliceCoords(coords []int) error {
	want := len(v.meta.Dims) - v.meta.ImageDims
	if len(coords) != want {
		return fmt.Errorf("slice of volume %q needs %d coordinates, got %d", v.meta.Name, want, len(coords))
	}
	for i, c := range coords {
		if c < 0 || c >= v.levelDims[i].Length {
			return fmt.Errorf("slice coordinate %d in dimension %d: %w", c, i, ErrOutOfBounds)
		}
	}
	return nil
}

// SliceRange returns the real range of the slice at the given coordinates of the
// dimensions slower than the image dimensions.  Slices never written report the
// whole-volume real range.
func (v *Volume) SliceRange(coords []int) (min, max float64, err error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if err = v.checkSliceCoords(coords); err != nil {
		return
	}
	data, err := v.db.Get(sliceRangeKey(v.meta.Name, coords))
	if err != nil {
		return
	}
	if data == nil {
		return v.meta.RealRange[0], v.meta.RealRange[1], nil
	}
	return decodeRange(data)
}

// SetSliceRange stores the real range of one slice.
func (v *Volume) SetSliceRange(coords []int, min, max float64) error {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.closed {
		return ErrClosed
	}
	if err := v.checkSliceCoords(coords); err != nil {
		return err
	}
	if min > max {
		return fmt.Errorf("slice range [%g,%g] is inverted", min, max)
	}
	return v.db.Put(sliceRangeKey(v.meta.Name, coords), encodeRange(min, max))
}

// --- apparent order -----

// SetApparentOrder sets the order in which dimensions are presented to callers.  Named
// dimensions become the fastest-varying, in the order given; unnamed dimensions keep
// their storage order and come first.  With no names the apparent order is the storage order.
func (v *Volume) SetApparentOrder(names ...string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrClosed
	}
	if len(names) == 0 {
		v.apparent = nil
		return nil
	}
	n := len(v.meta.Dims)
	named := make([]bool, n)
	tail := make([]int, 0, len(names))
	for _, name := range names {
		i := v.dimIndex(name)
		if i < 0 {
			return fmt.Errorf("volume %q has no dimension %q", v.meta.Name, name)
		}
		if named[i] {
			return fmt.Errorf("dimension %q named twice in apparent order", name)
		}
		named[i] = true
		tail = append(tail, i)
	}
	order := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if !named[i] {
			order = append(order, i)
		}
	}
	v.apparent = append(order, tail...)
	return nil
}

// ApparentOrder returns, for each apparent position, the storage position of its dimension.
func (v *Volume) ApparentOrder() []int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	order := make([]int, len(v.meta.Dims))
	for i := range order {
		if v.apparent != nil {
			order[i] = v.apparent[i]
		} else {
			order[i] = i
		}
	}
	return order
}

// --- info -----

// Info summarizes a volume for display.
type Info struct {
	Name         string
	UUID         string
	Version      string
	DataType     dvid.DataType
	Dims         []Dimension
	ValidRange   [2]float64
	RealRange    [2]float64
	SliceScaling bool
	ImageDims    int
	BlockSize    []int
	Compression  string
	Resolution   int
	Levels       int
	DataWritten  bool
}

func (v *Volume) Info() Info {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return Info{
		Name:         v.meta.Name,
		UUID:         v.meta.UUID,
		Version:      v.meta.Version,
		DataType:     dvid.DataType(v.meta.DataType),
		Dims:         append([]Dimension(nil), v.levelDims...),
		ValidRange:   v.meta.ValidRange,
		RealRange:    v.meta.RealRange,
		SliceScaling: v.meta.SliceScaling,
		ImageDims:    v.meta.ImageDims,
		BlockSize:    append([]int(nil), v.meta.BlockSize...),
		Compression:  v.compression.String(),
		Resolution:   v.level,
		Levels:       v.meta.Levels,
		DataWritten:  v.meta.DataWritten,
	}
}

