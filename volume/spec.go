package volume

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/janelia-flyem/voxelio/dvid"
)

const specSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["datatype"],
  "properties": {
    "datatype": {"enum": ["uint8", "int8", "uint16", "int16", "uint32", "int32", "float32", "float64"]},
    "dims": {
      "type": "array",
      "maxItems": 32,
      "items": {
        "type": "object",
        "required": ["name", "length"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "class": {"enum": ["x", "y", "z", "time", "vector", "user"]},
          "length": {"type": "integer", "minimum": 1},
          "step": {"type": "number"},
          "start": {"type": "number"},
          "cosines": {"type": "array", "items": {"type": "number"}, "minItems": 3, "maxItems": 3},
          "flip": {"enum": ["file", "counter", "positive", "negative"]},
          "regular": {"type": "boolean"}
        },
        "additionalProperties": false
      }
    },
    "valid_range": {"type": "array", "items": {"type": "number"}, "minItems": 2, "maxItems": 2},
    "real_range": {"type": "array", "items": {"type": "number"}, "minItems": 2, "maxItems": 2},
    "slice_scaling": {"type": "boolean"},
    "image_dims": {"type": "integer", "minimum": 0},
    "block_size": {"type": "array", "items": {"type": "integer", "minimum": 1}},
    "compression": {"enum": ["none", "snappy", "zstd"]}
  },
  "additionalProperties": false
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("volume.json", specSchema)
	})
	return schema, schemaErr
}

// DimSpec describes a dimension to create.  Omitted steps default to 1 and omitted
// cosines to the unit vector of a spatial class.
type DimSpec struct {
	Name    string      `json:"name"`
	Class   DimClass    `json:"class"`
	Length  int         `json:"length"`
	Step    *float64    `json:"step,omitempty"`
	Start   float64     `json:"start,omitempty"`
	Cosines *[3]float64 `json:"cosines,omitempty"`
	Flip    FlipPolicy  `json:"flip,omitempty"`
	Regular *bool       `json:"regular,omitempty"`
}

// Spec describes a volume to create.  Dims are listed slowest-varying first.
type Spec struct {
	DataType     dvid.DataType `json:"datatype"`
	Dims         []DimSpec     `json:"dims"`
	ValidRange   *[2]float64   `json:"valid_range,omitempty"`
	RealRange    *[2]float64   `json:"real_range,omitempty"`
	SliceScaling bool          `json:"slice_scaling,omitempty"`
	ImageDims    int           `json:"image_dims,omitempty"`
	BlockSize    []int         `json:"block_size,omitempty"`
	Compression  string        `json:"compression,omitempty"`
}

// ParseSpec validates a JSON volume description against the volume schema and decodes it.
func ParseSpec(data []byte) (Spec, error) {
	var spec Spec
	sch, err := compiledSchema()
	if err != nil {
		return spec, err
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return spec, fmt.Errorf("%w: %v", ErrBadSpec, err)
	}
	if err := sch.Validate(doc); err != nil {
		return spec, fmt.Errorf("%w: %v", ErrBadSpec, err)
	}
	if err := json.Unmarshal(data, &spec); err != nil {
		return spec, fmt.Errorf("%w: %v", ErrBadSpec, err)
	}
	return spec, spec.validate()
}

// NewDim is shorthand for a regular dimension with unit step.
func NewDim(name string, class DimClass, length int) DimSpec {
	return DimSpec{Name: name, Class: class, Length: length}
}

func (s Spec) validate() error {
	if !s.DataType.Valid() {
		return fmt.Errorf("%w: unknown data type %d", ErrBadSpec, s.DataType)
	}
	n := len(s.Dims)
	names := make(map[string]bool, n)
	for i, d := range s.Dims {
		if d.Name == "" || strings.ContainsRune(d.Name, 0) {
			return fmt.Errorf("%w: dimension %d has an invalid name", ErrBadSpec, i)
		}
		if names[d.Name] {
			return fmt.Errorf("%w: duplicate dimension %q", ErrBadSpec, d.Name)
		}
		names[d.Name] = true
		if d.Length < 1 {
			return fmt.Errorf("%w: dimension %q has length %d", ErrBadSpec, d.Name, d.Length)
		}
		if d.Step != nil && *d.Step == 0 {
			return fmt.Errorf("%w: dimension %q has zero step", ErrBadSpec, d.Name)
		}
	}
	if _, err := dvid.NumElements(s.lengths()); err != nil {
		return fmt.Errorf("%w: %v", ErrBadSpec, err)
	}
	if s.ImageDims < 0 || s.ImageDims > n {
		return fmt.Errorf("%w: %d image dimensions for %d dimensions", ErrBadSpec, s.ImageDims, n)
	}
	if s.BlockSize != nil && len(s.BlockSize) != n {
		return fmt.Errorf("%w: block size %v for %d dimensions", ErrBadSpec, s.BlockSize, n)
	}
	for _, b := range s.BlockSize {
		if b < 1 {
			return fmt.Errorf("%w: block size %v", ErrBadSpec, s.BlockSize)
		}
	}
	if s.ValidRange != nil {
		lo, hi := s.DataType.Range()
		if s.ValidRange[0] > s.ValidRange[1] || s.ValidRange[0] < lo || s.ValidRange[1] > hi {
			return fmt.Errorf("%w: valid range %v for %s", ErrBadSpec, *s.ValidRange, s.DataType)
		}
	}
	if s.RealRange != nil && s.RealRange[0] > s.RealRange[1] {
		return fmt.Errorf("%w: real range %v", ErrBadSpec, *s.RealRange)
	}
	if _, err := dvid.ParseCompression(s.Compression); err != nil {
		return fmt.Errorf("%w: %v", ErrBadSpec, err)
	}
	return nil
}

func (s Spec) lengths() []int {
	lengths := make([]int, len(s.Dims))
	for i, d := range s.Dims {
		lengths[i] = d.Length
	}
	return lengths
}

func (d DimSpec) dimension() Dimension {
	dim := Dimension{
		Name:    d.Name,
		Class:   d.Class,
		Length:  d.Length,
		Step:    1,
		Start:   d.Start,
		Cosines: defaultCosines(d.Class),
		Flip:    d.Flip,
		Regular: true,
	}
	if d.Step != nil {
		dim.Step = *d.Step
	}
	if d.Cosines != nil {
		dim.Cosines = *d.Cosines
	}
	if d.Regular != nil {
		dim.Regular = *d.Regular
	}
	return dim
}

// defaultBlockSize uses 64 along spatial dims and 1 along the rest, capped at each length.
func defaultBlockSize(dims []Dimension) []int {
	bs := make([]int, len(dims))
	for i, d := range dims {
		b := 1
		if d.Class.IsSpatial() {
			b = 64
		}
		if b > d.Length {
			b = d.Length
		}
		bs[i] = b
	}
	return bs
}
