package dvid

import (
	"fmt"
	"strconv"
	"strings"

	humanize "github.com/dustin/go-humanize"
)

// Config is a map of keyword to arbitrary data to specify configurations via keyword.
// Keywords are case-insensitive.
type Config map[string]interface{}

// NewConfig returns an empty Config.
func NewConfig() Config {
	return make(Config)
}

// SetAll replaces any settings with the given map.
func (c *Config) SetAll(kv map[string]interface{}) {
	*c = make(Config, len(kv))
	for k, v := range kv {
		(*c)[strings.ToLower(k)] = v
	}
}

// GetAll returns all settings.
func (c Config) GetAll() map[string]interface{} {
	return map[string]interface{}(c)
}

// Set sets a keyword to a value.
func (c Config) Set(key string, value interface{}) {
	c[strings.ToLower(key)] = value
}

// Get returns the setting for a keyword.
func (c Config) Get(key string) (value interface{}, found bool) {
	if c == nil {
		return nil, false
	}
	value, found = c[strings.ToLower(key)]
	return
}

// GetString returns a string setting.
func (c Config) GetString(key string) (s string, found bool, err error) {
	v, found := c.Get(key)
	if !found {
		return
	}
	s, ok := v.(string)
	if !ok {
		err = fmt.Errorf("setting %q should be a string, got %T", key, v)
	}
	return
}

// GetBool returns a bool setting.  The strings "true" and "false" are accepted.
func (c Config) GetBool(key string) (b bool, found bool, err error) {
	v, found := c.Get(key)
	if !found {
		return
	}
	switch x := v.(type) {
	case bool:
		b = x
	case string:
		b, err = strconv.ParseBool(x)
	default:
		err = fmt.Errorf("setting %q should be a bool, got %T", key, v)
	}
	return
}

// GetInt returns an integer setting.  Strings are parsed as integers.
func (c Config) GetInt(key string) (i int, found bool, err error) {
	v, found := c.Get(key)
	if !found {
		return
	}
	switch x := v.(type) {
	case int:
		i = x
	case int64:
		i = int(x)
	case uint64:
		i = int(x)
	case float64:
		i = int(x)
	case string:
		i, err = strconv.Atoi(x)
	default:
		err = fmt.Errorf("setting %q should be an integer, got %T", key, v)
	}
	return
}

// GetBytes returns a byte count setting.  Strings like "64 MiB" are parsed
// with go-humanize.
func (c Config) GetBytes(key string) (n uint64, found bool, err error) {
	v, found := c.Get(key)
	if !found {
		return
	}
	switch x := v.(type) {
	case string:
		n, err = humanize.ParseBytes(x)
	case int:
		n = uint64(x)
	case int64:
		n = uint64(x)
	case uint64:
		n = x
	case float64:
		n = uint64(x)
	default:
		err = fmt.Errorf("setting %q should be a byte size, got %T", key, v)
	}
	return
}
