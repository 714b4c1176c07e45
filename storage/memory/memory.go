// Package memory provides an in-process ordered key-value engine.  Stores are
// lost when closed, which makes the engine the default for tests and scratch volumes.
package memory

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/blang/semver"
	"github.com/google/btree"
	"github.com/twinj/uuid"

	"github.com/janelia-flyem/voxelio/dvid"
	"github.com/janelia-flyem/voxelio/storage"
)

// Degree of the in-memory B-tree.
const treeDegree = 32

func init() {
	ver, err := semver.Make("0.1.0")
	if err != nil {
		dvid.Errorf("Unable to make semver in memory engine: %v\n", err)
	}
	storage.RegisterEngine(Engine{"memory", "In-memory B-tree", ver})
}

// --- Engine Implementation ------

type Engine struct {
	name   string
	desc   string
	semver semver.Version
}

func (e Engine) GetName() string {
	return e.name
}

func (e Engine) GetDescription() string {
	return e.desc
}

func (e Engine) GetSemVer() semver.Version {
	return e.semver
}

func (e Engine) String() string {
	return fmt.Sprintf("%s [%s]", e.name, e.semver)
}

// NewStore returns an empty in-memory store.  An optional "name" setting identifies it.
func (e Engine) NewStore(config dvid.StoreConfig) (dvid.Store, bool, error) {
	name, _, err := config.GetString("name")
	if err != nil {
		return nil, false, err
	}
	db := &DB{
		name: name,
		tree: btree.NewG(treeDegree, lessItem),
	}
	return db, true, nil
}

// TestConfig returns a configuration with a unique name.
func (e Engine) TestConfig() dvid.StoreConfig {
	var c dvid.Config
	c.SetAll(map[string]interface{}{
		"name": fmt.Sprintf("voxelio-test-%x", uuid.NewV4().Bytes()),
	})
	return dvid.StoreConfig{Config: c, Engine: e.name}
}

// Delete is a no-op since closed stores are garbage collected.
func (e Engine) Delete(config dvid.StoreConfig) error {
	return nil
}

type item struct {
	k storage.Key
	v []byte
}

func lessItem(a, b item) bool {
	return bytes.Compare(a.k, b.k) < 0
}

// DB is an ordered key-value store held in a B-tree.
type DB struct {
	name string

	mu   sync.RWMutex
	tree *btree.BTreeG[item]
}

func (db *DB) String() string {
	return fmt.Sprintf("memory store %q", db.name)
}

// Equal returns true if the store was created with the same name.
func (db *DB) Equal(config dvid.StoreConfig) bool {
	name, _, _ := config.GetString("name")
	return config.Engine == "memory" && name == db.name
}

// Close releases the contents of the store.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.tree == nil {
		return storage.ErrStoreClosed
	}
	db.tree = nil
	return nil
}

// Get returns a copy of the value for a key or nil if absent.
func (db *DB) Get(k storage.Key) ([]byte, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.tree == nil {
		return nil, storage.ErrStoreClosed
	}
	it, found := db.tree.Get(item{k: k})
	if !found {
		return nil, nil
	}
	return append([]byte(nil), it.v...), nil
}

// Put stores copies of the key and value.
func (db *DB) Put(k storage.Key, v []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.tree == nil {
		return storage.ErrStoreClosed
	}
	db.tree.ReplaceOrInsert(item{
		k: append(storage.Key(nil), k...),
		v: append([]byte(nil), v...),
	})
	return nil
}

func (db *DB) Delete(k storage.Key) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.tree == nil {
		return storage.ErrStoreClosed
	}
	db.tree.Delete(item{k: k})
	return nil
}

func (db *DB) KeysInRange(start, end storage.Key) ([]storage.Key, error) {
	var keys []storage.Key
	err := db.ProcessRange(start, end, func(kv *storage.KeyValue) error {
		keys = append(keys, kv.K)
		return nil
	})
	return keys, err
}

func (db *DB) ProcessRange(start, end storage.Key, f func(*storage.KeyValue) error) error {
	db.mu.RLock()
	if db.tree == nil {
		db.mu.RUnlock()
		return storage.ErrStoreClosed
	}
	var kvs []storage.KeyValue
	db.tree.AscendRange(item{k: start}, item{k: end}, func(it item) bool {
		kvs = append(kvs, storage.KeyValue{
			K: append(storage.Key(nil), it.k...),
			V: append([]byte(nil), it.v...),
		})
		return true
	})
	db.mu.RUnlock()

	for i := range kvs {
		if err := f(&kvs[i]); err != nil {
			return err
		}
	}
	return nil
}
