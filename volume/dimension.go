package volume

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DimClass classifies a dimension.
type DimClass uint8

const (
	ClassX DimClass = iota
	ClassY
	ClassZ
	ClassTime
	ClassVector
	ClassUser
)

var classNames = []string{"x", "y", "z", "time", "vector", "user"}

// IsSpatial returns true for the X, Y and Z classes.
func (c DimClass) IsSpatial() bool {
	return c <= ClassZ
}

func (c DimClass) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("class(%d)", uint8(c))
}

// ParseDimClass returns the class with the given name.
func ParseDimClass(s string) (DimClass, error) {
	for i, name := range classNames {
		if strings.EqualFold(name, s) {
			return DimClass(i), nil
		}
	}
	return 0, fmt.Errorf("unknown dimension class %q", s)
}

func (c DimClass) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *DimClass) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDimClass(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// FlipPolicy decides which direction an axis runs in the apparent view of a volume.
type FlipPolicy uint8

const (
	// FileOrder presents the axis as stored.
	FileOrder FlipPolicy = iota

	// CounterFileOrder presents the axis reversed.
	CounterFileOrder

	// ForcePositive presents the axis with a positive step, reversing it if the stored step is negative.
	ForcePositive

	// ForceNegative presents the axis with a negative step, reversing it if the stored step is positive.
	ForceNegative
)

var flipNames = []string{"file", "counter", "positive", "negative"}

func (f FlipPolicy) String() string {
	if int(f) < len(flipNames) {
		return flipNames[f]
	}
	return fmt.Sprintf("flip(%d)", uint8(f))
}

// ParseFlipPolicy returns the policy with the given name.
func ParseFlipPolicy(s string) (FlipPolicy, error) {
	if s == "" {
		return FileOrder, nil
	}
	for i, name := range flipNames {
		if strings.EqualFold(name, s) {
			return FlipPolicy(i), nil
		}
	}
	return 0, fmt.Errorf("unknown flip policy %q", s)
}

func (f FlipPolicy) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

func (f *FlipPolicy) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseFlipPolicy(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Reversed returns true if the axis must be presented opposite to its stored order.
func (f FlipPolicy) Reversed(step float64) bool {
	switch f {
	case CounterFileOrder:
		return true
	case ForcePositive:
		return step < 0
	case ForceNegative:
		return step > 0
	}
	return false
}

// Dimension describes one axis of a volume.
type Dimension struct {
	Name    string
	Class   DimClass
	Length  int
	Step    float64
	Start   float64
	Cosines [3]float64 `json:",omitempty"`
	Flip    FlipPolicy
	Regular bool
}

func (d Dimension) String() string {
	return fmt.Sprintf("%s(%s, %d)", d.Name, d.Class, d.Length)
}

// defaultCosines returns the unit direction for a spatial class.
func defaultCosines(c DimClass) [3]float64 {
	var cos [3]float64
	if c.IsSpatial() {
		cos[c] = 1
	}
	return cos
}
