package hyperslab

import (
	"fmt"

	"github.com/janelia-flyem/voxelio/dvid"
	"github.com/janelia-flyem/voxelio/volume"
)

// DefaultMaxBufferSize is the default byte budget for one chunk of a transfer.
const DefaultMaxBufferSize = dvid.Mega

// Sign overrides the signedness of the requested element type.
type Sign uint8

const (
	SignDefault Sign = iota
	Signed
	Unsigned
)

func (s Sign) String() string {
	switch s {
	case Signed:
		return "signed"
	case Unsigned:
		return "unsigned"
	}
	return "default"
}

// Axis names one of the two fastest apparent axes for legacy resizing.
type Axis uint8

const (
	AxisA Axis = iota // fastest
	AxisB             // next fastest
)

func (a Axis) String() string {
	if a == AxisA {
		return "A"
	}
	return "B"
}

type config struct {
	kind    dvid.DataType
	kindSet bool
	sign    Sign

	doRange      bool
	doNormalize  bool
	doDimConvert bool
	doFill       bool
	trackRange   bool

	userNorm         bool
	normMin, normMax float64
	fillValue        float64

	axisSize [2]int
	axisDir  map[volume.DimClass]int

	maxBuffer int
}

func defaultConfig() config {
	return config{
		trackRange: true,
		maxBuffer:  DefaultMaxBufferSize,
	}
}

func (c config) clone() config {
	if c.axisDir != nil {
		dirs := make(map[volume.DimClass]int, len(c.axisDir))
		for k, v := range c.axisDir {
			dirs[k] = v
		}
		c.axisDir = dirs
	}
	return c
}

// destKind returns the element type delivered to callers given the volume's storage type.
func (c config) destKind(storage dvid.DataType) dvid.DataType {
	kind := storage
	if c.kindSet {
		kind = c.kind
	}
	switch c.sign {
	case Signed:
		kind = kind.WithSign(true)
	case Unsigned:
		kind = kind.WithSign(false)
	}
	return kind
}

// Option configures a Context.
type Option func(*config) error

// WithType sets the element type of caller buffers.  Without it the volume's storage
// type is used.
func WithType(kind dvid.DataType) Option {
	return func(c *config) error {
		if !kind.Valid() {
			return fmt.Errorf("bad element type %d", kind)
		}
		c.kind = kind
		c.kindSet = true
		return nil
	}
}

func WithSign(s Sign) Option {
	return func(c *config) error {
		if s > Unsigned {
			return fmt.Errorf("bad sign %d", s)
		}
		c.sign = s
		return nil
	}
}

// WithRangeScaling makes transfers move real values instead of raw voxels.
func WithRangeScaling(on bool) Option {
	return func(c *config) error {
		c.doRange = on
		return nil
	}
}

// WithNormalization maps real values onto the full range of the integer element type.
func WithNormalization(on bool) Option {
	return func(c *config) error {
		c.doNormalize = on
		return nil
	}
}

// WithDimConversion enables apparent axis directions and legacy resizing.
func WithDimConversion(on bool) Option {
	return func(c *config) error {
		c.doDimConvert = on
		return nil
	}
}

// WithFillValue substitutes value for voxels outside the valid range on reads.
func WithFillValue(on bool, value float64) Option {
	return func(c *config) error {
		c.doFill = on
		c.fillValue = value
		return nil
	}
}

// WithUserNormalization normalizes against [min, max] instead of the volume's real range.
func WithUserNormalization(on bool, min, max float64) Option {
	return func(c *config) error {
		if on && min > max {
			return fmt.Errorf("normalization range [%g,%g] is inverted", min, max)
		}
		c.userNorm = on
		c.normMin, c.normMax = min, max
		return nil
	}
}

// WithAxisSize requests a resized length for one of the two fastest apparent axes.
// A size of 0 keeps the stored length.
func WithAxisSize(axis Axis, size int) Option {
	return func(c *config) error {
		if axis > AxisB {
			return fmt.Errorf("bad axis %d", axis)
		}
		if size < 0 {
			return fmt.Errorf("axis %s can't have size %d", axis, size)
		}
		c.axisSize[axis] = size
		return nil
	}
}

// WithAxisDirection forces the apparent direction of a spatial axis class: +1 for
// positive steps, -1 for negative, 0 to follow the volume's flip policy.
func WithAxisDirection(class volume.DimClass, dir int) Option {
	return func(c *config) error {
		if !class.IsSpatial() {
			return fmt.Errorf("direction can only be forced on spatial axes, not %s", class)
		}
		if dir < -1 || dir > 1 {
			return fmt.Errorf("bad direction %d for %s", dir, class)
		}
		if c.axisDir == nil {
			c.axisDir = make(map[volume.DimClass]int)
		}
		if dir == 0 {
			delete(c.axisDir, class)
		} else {
			c.axisDir[class] = dir
		}
		return nil
	}
}

// WithMaxBufferSize sets the byte budget of the chunk buffer.
func WithMaxBufferSize(bytes int) Option {
	return func(c *config) error {
		if bytes < 1 {
			return fmt.Errorf("max buffer size must be positive, got %d", bytes)
		}
		c.maxBuffer = bytes
		return nil
	}
}

// WithRangeTracking controls whether real-valued writes record the range of the
// written data in the volume.  It is on by default.  With it off, values outside the
// stored real range saturate.
func WithRangeTracking(on bool) Option {
	return func(c *config) error {
		c.trackRange = on
		return nil
	}
}
