/*
	This file holds types and functions supporting command-line activity.
*/

package dvid

import (
	"fmt"
	"strconv"
	"strings"
)

// Keys for setting various arguments within the command line via "key=value" strings.
const (
	KeyMode        = "mode"
	KeyCompression = "compression"
	KeyLevel       = "level"
	KeyType        = "type"
)

var setKeys = map[string]bool{
	KeyMode:        true,
	KeyCompression: true,
	KeyLevel:       true,
	KeyType:        true,
}

// Command supports command-line interaction.  The first item in the string
// slice is the command, e.g., "create" or "get".  The other arguments are
// command arguments or optional settings of the form "<key>=<value>".
type Command []string

// String returns a space-separated command line
func (cmd Command) String() string {
	return strings.Join([]string(cmd), " ")
}

// Name returns the first argument which is assumed to be the name of the command.
func (cmd Command) Name() string {
	if len(cmd) == 0 {
		return ""
	}
	return cmd[0]
}

// Parameter scans a command for any "key=value" argument and returns
// the value of the passed 'key'.
func (cmd Command) Parameter(key string) (value string, found bool) {
	if len(cmd) > 1 {
		for _, arg := range cmd[1:] {
			elems := strings.SplitN(arg, "=", 2)
			if len(elems) == 2 && elems[0] == key {
				return elems[1], true
			}
		}
	}
	return
}

// CommandArgs sets a variadic argument set of string pointers to
// command arguments, ignoring setting arguments of the form "<key>=<value>".
// If there aren't enough arguments to set a target, the target is set to the
// empty string.  It returns an 'overflow' slice that has all arguments
// beyond those needed for targets.
func (cmd Command) CommandArgs(targets ...*string) (overflow []string) {
	for _, target := range targets {
		*target = ""
	}
	if len(cmd) < 2 {
		return
	}
	curTarget := 0
	for _, arg := range cmd[1:] {
		elems := strings.SplitN(arg, "=", 2)
		if len(elems) == 2 && setKeys[elems[0]] {
			continue
		}
		if curTarget < len(targets) {
			*(targets[curTarget]) = arg
		} else {
			overflow = append(overflow, arg)
		}
		curTarget++
	}
	return
}

// PointStr is an n-dimensional coordinate in string format "a,b,c,..."
// where each coordinate is a non-negative integer.
type PointStr string

// Ints parses the coordinate.
func (s PointStr) Ints() ([]int, error) {
	str := strings.TrimSpace(string(s))
	if str == "" {
		return nil, fmt.Errorf("empty coordinate string")
	}
	elems := strings.Split(str, ",")
	pt := make([]int, len(elems))
	for i, e := range elems {
		v, err := strconv.Atoi(strings.TrimSpace(e))
		if err != nil {
			return nil, fmt.Errorf("bad coordinate %q: %v", s, err)
		}
		pt[i] = v
	}
	return pt, nil
}
