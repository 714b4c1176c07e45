package hyperslab

import (
	"fmt"

	"github.com/janelia-flyem/voxelio/convert"
	"github.com/janelia-flyem/voxelio/dvid"
	"github.com/janelia-flyem/voxelio/volume"
)

type state uint8

const (
	unattached state = iota
	attached
	destroyed
)

func (s state) String() string {
	switch s {
	case unattached:
		return "unattached"
	case attached:
		return "attached"
	}
	return "destroyed"
}

// Context holds the configuration for a series of transfers on one volume.  Options
// can only change while the context is unattached.  Attaching derives everything the
// transfers need from the volume; that derived state doesn't change until Detach.
//
// A Context must not be used by more than one goroutine at a time.
type Context struct {
	cfg   config
	state state
	d     *derived
}

// derived is computed once at Attach.
type derived struct {
	cfg     config
	vol     *volume.Volume
	storage dvid.DataType
	dest    dvid.DataType

	lengths  []int // native
	classes  []volume.DimClass
	reversed []bool // native
	order    []int  // apparent position -> native axis

	sliceScaling bool
	imageDims    int

	resize *resizer
}

// NewContext returns an unattached context.
func NewContext(opts ...Option) (*Context, error) {
	c := &Context{cfg: defaultConfig()}
	for _, opt := range opts {
		if err := opt(&c.cfg); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Set changes options of an unattached context.
func (c *Context) Set(opts ...Option) error {
	switch c.state {
	case attached:
		return stateError(ErrConfigLocked, "setting options")
	case destroyed:
		return stateError(ErrDestroyed, "setting options")
	}
	cfg := c.cfg.clone()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return err
		}
	}
	c.cfg = cfg
	return nil
}

// Attach binds the context to a volume.
func (c *Context) Attach(v *volume.Volume) error {
	switch c.state {
	case attached:
		return stateError(ErrAlreadyAttached, "attaching to %s", v)
	case destroyed:
		return stateError(ErrDestroyed, "attaching to %s", v)
	}
	d, err := derive(c.cfg.clone(), v)
	if err != nil {
		return err
	}
	c.d = d
	c.state = attached
	return nil
}

// Detach releases the volume so the context can be reconfigured or attached elsewhere.
func (c *Context) Detach() error {
	switch c.state {
	case unattached:
		return stateError(ErrNotAttached, "detaching")
	case destroyed:
		return stateError(ErrDestroyed, "detaching")
	}
	c.d = nil
	c.state = unattached
	return nil
}

// Destroy detaches if needed and makes the context unusable.
func (c *Context) Destroy() error {
	if c.state == destroyed {
		return stateError(ErrDestroyed, "destroying")
	}
	c.d = nil
	c.state = destroyed
	return nil
}

// Volume returns the attached volume or nil.
func (c *Context) Volume() *volume.Volume {
	if c.d == nil {
		return nil
	}
	return c.d.vol
}

func (c *Context) ready() error {
	switch c.state {
	case unattached:
		return stateError(ErrNotAttached, "transfer")
	case destroyed:
		return stateError(ErrDestroyed, "transfer")
	}
	return nil
}

// Get reads the hyperslab [start, start+count) given in apparent order into buf.
func (c *Context) Get(start, count []int, buf any) error {
	if err := c.ready(); err != nil {
		return err
	}
	if c.d.resize != nil {
		return c.d.resize.get(c.d, start, count, buf)
	}
	req, err := c.d.translate(start, count)
	if err != nil {
		return err
	}
	if err := c.d.checkBuffer(buf, req.total); err != nil {
		return err
	}
	return c.d.read(req, convert.Sub(buf, 0, req.total))
}

// Put writes buf to the hyperslab [start, start+count) given in apparent order.  The
// contents of buf are unchanged on return, including on error.
func (c *Context) Put(start, count []int, buf any) error {
	if err := c.ready(); err != nil {
		return err
	}
	if c.d.resize != nil {
		return fmt.Errorf("writing with resized axes: %w", ErrUnsupported)
	}
	if level := c.d.vol.Resolution(); level != 0 {
		return fmt.Errorf("writing level %d of %s: %w", level, c.d.vol, ErrReadOnlyResolution)
	}
	req, err := c.d.translate(start, count)
	if err != nil {
		return err
	}
	if err := c.d.checkBuffer(buf, req.total); err != nil {
		return err
	}
	return c.d.write(req, convert.Sub(buf, 0, req.total))
}

func derive(cfg config, v *volume.Volume) (*derived, error) {
	d := &derived{
		cfg:          cfg,
		vol:          v,
		storage:      v.DataType(),
		sliceScaling: v.SliceScaling(),
		imageDims:    v.ImageDims(),
		order:        v.ApparentOrder(),
	}
	d.dest = cfg.destKind(d.storage)
	if cfg.doNormalize && d.dest.IsFloat() {
		return nil, fmt.Errorf("normalizing %s into %s: %w", v, d.dest, ErrNormalizeFloat)
	}

	dims := v.Dims()
	d.lengths = make([]int, len(dims))
	d.classes = make([]volume.DimClass, len(dims))
	d.reversed = make([]bool, len(dims))
	for i, dim := range dims {
		d.lengths[i] = dim.Length
		d.classes[i] = dim.Class
		flip := dim.Flip
		if cfg.doDimConvert {
			switch cfg.axisDir[dim.Class] {
			case 1:
				flip = volume.ForcePositive
			case -1:
				flip = volume.ForceNegative
			}
		}
		d.reversed[i] = flip.Reversed(dim.Step)
	}

	if cfg.doDimConvert {
		r, err := newResizer(d)
		if err != nil {
			return nil, err
		}
		d.resize = r
	}
	return d, nil
}

func (d *derived) checkBuffer(buf any, need int) error {
	kind, n, err := convert.KindOf(buf)
	if err != nil {
		return err
	}
	if kind != d.dest {
		return fmt.Errorf("%s buffer for %s transfer: %w", kind, d.dest, ErrTypeMismatch)
	}
	if n < need {
		return fmt.Errorf("buffer of %d elements for hyperslab of %d: %w", n, need, ErrBufferSize)
	}
	return nil
}
