/*
Package config loads voxelio settings from a TOML or YAML file.

A TOML configuration looks like:

	[logging]
	logfile = "/demo/logs/voxelio.log"
	level = "info"
	max_log_size = 500 # MB
	max_log_age = 30   # days

	[conversion]
	max_buffer = "4 MiB"
	fill = true
	fill_value = -1.0

	[store.volumes]
	engine = "badger"
	path = "data/volumes"

	[cache]
	size = "64 MB"

Relative paths are taken relative to the directory holding the configuration file.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/janelia-flyem/voxelio/dvid"
	"github.com/janelia-flyem/voxelio/hyperslab"
	"github.com/janelia-flyem/voxelio/storage"
)

// DefaultStore is the alias used when a configuration names no stores.
const DefaultStore = "default"

type storeConfig map[string]interface{}

type sizeConfig struct {
	Size string `toml:"size" yaml:"size"`
}

// Conversion holds the defaults applied to every conversion context.
type Conversion struct {
	MaxBuffer string  `toml:"max_buffer" yaml:"max_buffer"`
	Fill      bool    `toml:"fill" yaml:"fill"`
	FillValue float64 `toml:"fill_value" yaml:"fill_value"`
}

// Config is the parsed configuration file.
type Config struct {
	Logging    dvid.LogConfig         `toml:"logging" yaml:"logging"`
	Conversion Conversion             `toml:"conversion" yaml:"conversion"`
	Store      map[string]storeConfig `toml:"store" yaml:"store"`
	Cache      sizeConfig             `toml:"cache" yaml:"cache"`
}

// Default returns the configuration used without a configuration file: a badger
// store in the working directory and a 1 MiB transfer buffer.
func Default() *Config {
	return &Config{
		Conversion: Conversion{MaxBuffer: humanize.IBytes(hyperslab.DefaultMaxBufferSize)},
		Store: map[string]storeConfig{
			DefaultStore: {"engine": "badger", "path": "voxelio-data"},
		},
	}
}

// Load reads a configuration file.  Files ending in .yaml or .yml are parsed as YAML,
// all others as TOML.  Sections missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	c := Default()
	c.Store = nil
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parsing YAML config %q: %v", path, err)
		}
	default:
		if _, err := toml.DecodeFile(path, c); err != nil {
			return nil, fmt.Errorf("parsing TOML config %q: %v", path, err)
		}
	}
	if len(c.Store) == 0 {
		c.Store = Default().Store
	}
	if err := c.convertPathsToAbsolute(path); err != nil {
		return nil, err
	}
	if _, err := c.MaxBufferSize(); err != nil {
		return nil, err
	}
	if _, err := c.CacheSize(); err != nil {
		return nil, err
	}
	dvid.Infof("Loaded config %s: %d stores, conversion %+v\n", path, len(c.Store), c.Conversion)
	return c, nil
}

// convertPathsToAbsolute makes the log file and store paths absolute relative to the
// configuration file's directory.
func (c *Config) convertPathsToAbsolute(configPath string) error {
	dir := filepath.Dir(configPath)
	var err error
	if c.Logging.Logfile, err = dvid.ConvertToAbsolute(c.Logging.Logfile, dir); err != nil {
		return fmt.Errorf("logfile %q: %v", c.Logging.Logfile, err)
	}
	for alias, sc := range c.Store {
		v, found := sc["path"]
		if !found {
			continue
		}
		path, ok := v.(string)
		if !ok {
			return fmt.Errorf("store %q has path %v that is not a string", alias, v)
		}
		if sc["path"], err = dvid.ConvertToAbsolute(path, dir); err != nil {
			return fmt.Errorf("store %q path %q: %v", alias, path, err)
		}
	}
	return nil
}

// MaxBufferSize returns the conversion buffer budget in bytes.
func (c *Config) MaxBufferSize() (int, error) {
	if c.Conversion.MaxBuffer == "" {
		return hyperslab.DefaultMaxBufferSize, nil
	}
	n, err := humanize.ParseBytes(c.Conversion.MaxBuffer)
	if err != nil {
		return 0, fmt.Errorf("conversion max_buffer %q: %v", c.Conversion.MaxBuffer, err)
	}
	if n == 0 || n > uint64(dvid.Giga) {
		return 0, fmt.Errorf("conversion max_buffer %q must be between 1 byte and 1 GiB", c.Conversion.MaxBuffer)
	}
	return int(n), nil
}

// CacheSize returns the block cache size in bytes, or 0 if no cache is configured.
func (c *Config) CacheSize() (int, error) {
	if c.Cache.Size == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(c.Cache.Size)
	if err != nil {
		return 0, fmt.Errorf("cache size %q: %v", c.Cache.Size, err)
	}
	if n > uint64(16*dvid.Giga) {
		return 0, fmt.Errorf("cache size %q is larger than 16 GiB", c.Cache.Size)
	}
	return int(n), nil
}

// Aliases returns the sorted store aliases.
func (c *Config) Aliases() []string {
	aliases := make([]string, 0, len(c.Store))
	for alias := range c.Store {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	return aliases
}

// StoreConfig returns the engine configuration for a store alias.
func (c *Config) StoreConfig(alias string) (dvid.StoreConfig, error) {
	sc, found := c.Store[alias]
	if !found {
		return dvid.StoreConfig{}, fmt.Errorf("no store %q in configuration (have %v)", alias, c.Aliases())
	}
	engine, ok := sc["engine"].(string)
	if !ok || engine == "" {
		return dvid.StoreConfig{}, fmt.Errorf("store %q must give an engine", alias)
	}
	settings := make(map[string]interface{}, len(sc))
	for k, v := range sc {
		if k != "engine" {
			settings[k] = v
		}
	}
	var config dvid.Config
	config.SetAll(settings)
	return dvid.StoreConfig{Config: config, Engine: engine}, nil
}

// OpenStore opens the store with the given alias, wrapped in a block cache if one
// is configured.
func (c *Config) OpenStore(alias string) (storage.OrderedKeyValueDB, error) {
	sc, err := c.StoreConfig(alias)
	if err != nil {
		return nil, err
	}
	db, _, err := storage.NewStore(sc)
	if err != nil {
		return nil, err
	}
	size, err := c.CacheSize()
	if err != nil {
		db.Close()
		return nil, err
	}
	if size > 0 {
		return storage.NewCachedDB(db, size), nil
	}
	return db, nil
}

// ContextOptions returns the conversion options every context should start from.
func (c *Config) ContextOptions() ([]hyperslab.Option, error) {
	maxBuffer, err := c.MaxBufferSize()
	if err != nil {
		return nil, err
	}
	return []hyperslab.Option{
		hyperslab.WithMaxBufferSize(maxBuffer),
		hyperslab.WithFillValue(c.Conversion.Fill, c.Conversion.FillValue),
	}, nil
}
