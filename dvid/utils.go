package dvid

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
)

const (
	Kilo = 1 << 10
	Mega = 1 << 20
	Giga = 1 << 30
)

// ErrOverflow is returned when a product of dimension extents can't be represented.
var ErrOverflow = errors.New("element count overflows int")

// NumElements returns the product of extents, checking for overflow and
// non-positive extents.  An empty shape holds one element.
func NumElements(extents []int) (int, error) {
	n := 1
	for i, e := range extents {
		if e < 1 {
			return 0, fmt.Errorf("extent %d in dimension %d must be positive", e, i)
		}
		if n > math.MaxInt/e {
			return 0, ErrOverflow
		}
		n *= e
	}
	return n, nil
}

// ConvertToAbsolute returns path unchanged if it is absolute, otherwise the absolute
// path of path relative to dir.
func ConvertToAbsolute(path, dir string) (string, error) {
	if path == "" || filepath.IsAbs(path) {
		return path, nil
	}
	return filepath.Abs(filepath.Join(dir, path))
}
