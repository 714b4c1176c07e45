/*
Package storage provides a unified interface to a number of storage engines.
Each engine registers itself at init time and produces stores from a
dvid.StoreConfig.  All engines return stores that fulfill OrderedKeyValueDB.
*/
package storage

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/blang/semver"

	"github.com/janelia-flyem/voxelio/dvid"
)

// Engine is a storage engine that can create a storage instance, dvid.Store, which could
// be a database directory in the case of an embedded database Engine implementation.
// Engine implementations can fulfill a variety of interfaces, checkable by runtime cast checks,
// e.g., myGetter, ok := myEngine.(OrderedKeyValueGetter)
type Engine interface {
	fmt.Stringer

	// GetName returns a simple driver identifier like "badger" or "memory".
	GetName() string

	// GetDescription returns a human-readable description of the storage engine.
	GetDescription() string

	// GetSemVer returns the semantic versioning info.
	GetSemVer() semver.Version

	// NewStore returns a new storage engine given the passed configuration.  It should return true
	// if the store was newly created.
	NewStore(dvid.StoreConfig) (db dvid.Store, created bool, err error)
}

// TestableEngine is an Engine that can provide throwaway configurations for tests.
type TestableEngine interface {
	Engine

	// TestConfig returns a configuration for a temporary store.
	TestConfig() dvid.StoreConfig

	// Delete removes a store created from the given configuration.
	Delete(dvid.StoreConfig) error
}

// ErrStoreClosed is returned by operations on a closed store.
var ErrStoreClosed = errors.New("store is closed")

var (
	enginesMu sync.RWMutex
	engines   = map[string]Engine{}
)

// RegisterEngine registers an Engine for voxelio use.
func RegisterEngine(e Engine) {
	enginesMu.Lock()
	defer enginesMu.Unlock()
	dvid.Debugf("Engine %q registered with voxelio server.\n", e.GetName())
	engines[e.GetName()] = e
}

// GetEngine returns an Engine of the given name.
func GetEngine(name string) Engine {
	enginesMu.RLock()
	defer enginesMu.RUnlock()
	return engines[name]
}

// EnginesAvailable returns a description of the available storage engines.
func EnginesAvailable() []string {
	enginesMu.RLock()
	defer enginesMu.RUnlock()
	var names []string
	for _, e := range engines {
		names = append(names, e.String())
	}
	sort.Strings(names)
	return names
}

// NewStore creates a store using the engine named in the configuration.  The returned
// store is checked for the OrderedKeyValueDB interface.
func NewStore(c dvid.StoreConfig) (db OrderedKeyValueDB, created bool, err error) {
	engine := GetEngine(c.Engine)
	if engine == nil {
		return nil, false, fmt.Errorf("engine %q not available", c.Engine)
	}
	store, created, err := engine.NewStore(c)
	if err != nil {
		return nil, false, err
	}
	kvdb, ok := store.(OrderedKeyValueDB)
	if !ok {
		store.Close()
		return nil, false, fmt.Errorf("store %s is not an ordered key-value database", store)
	}
	dvid.Infof("Opened store %s (created %t)\n", store, created)
	return kvdb, created, nil
}

// NewTestStore returns a temporary store from a testable engine along with a function
// that closes and deletes it.
func NewTestStore(name string) (OrderedKeyValueDB, func(), error) {
	engine, ok := GetEngine(name).(TestableEngine)
	if !ok {
		return nil, nil, fmt.Errorf("engine %q is not available for testing", name)
	}
	config := engine.TestConfig()
	db, _, err := NewStore(config)
	if err != nil {
		return nil, nil, err
	}
	teardown := func() {
		if err := db.Close(); err != nil {
			dvid.Errorf("closing test store %s: %v\n", db, err)
		}
		if err := engine.Delete(config); err != nil {
			dvid.Errorf("deleting test store %s: %v\n", db, err)
		}
	}
	return db, teardown, nil
}
