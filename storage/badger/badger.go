// Package badger registers a storage engine backed by BadgerDB.
package badger

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/blang/semver"
	"github.com/dgraph-io/badger/v3"
	"github.com/twinj/uuid"

	"github.com/janelia-flyem/voxelio/dvid"
	"github.com/janelia-flyem/voxelio/storage"
)

const (
	// DefaultVersionsToKeep is the number of versions to keep per key.
	DefaultVersionsToKeep = 1

	// DefaultSyncWrites is true if all writes are synced to disk, thereby making db resilient
	// at cost of speed.
	DefaultSyncWrites = false

	syncInterval = 30 * time.Second
)

func init() {
	ver, err := semver.Make("0.2.0")
	if err != nil {
		dvid.Errorf("Unable to make semver in badger: %v\n", err)
	}
	e := Engine{"badger", "BadgerDB", ver}
	storage.RegisterEngine(e)
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

// NewStore returns a badger. The passed Config must contain "path" string.
func (e Engine) NewStore(config dvid.StoreConfig) (dvid.Store, bool, error) {
	return e.newDB(config)
}

func parseConfig(config dvid.StoreConfig) (path string, testing bool, err error) {
	path, found, err := config.GetString("path")
	if err != nil {
		return
	}
	if !found {
		err = fmt.Errorf("%q must be specified for BadgerDB configuration", "path")
		return
	}
	testing, _, err = config.GetBool("testing")
	if err != nil {
		return
	}
	if testing {
		path = filepath.Join(os.TempDir(), path)
	}
	return
}

// Periodically sync to prevent too many writes from being buffered
// if the process crashes.
func syncPeriodically(db *BadgerDB) {
	ticker := time.NewTicker(syncInterval)
	defer ticker.Stop()
	for {
		select {
		case <-db.stopSyncCh:
			dvid.Debugf("Stopping sync goroutine for badger @ %s\n", db.directory)
			return
		case <-ticker.C:
			if err := db.bdp.Sync(); err != nil {
				dvid.Errorf("Unable to sync badger @ %s: %v\n", db.directory, err)
			}
		}
	}
}

// newDB returns a Badger backend, creating one at path if it doesn't exist.
func (e Engine) newDB(config dvid.StoreConfig) (*BadgerDB, bool, error) {
	path, _, err := parseConfig(config)
	if err != nil {
		return nil, false, err
	}

	// Is there a database already at this path?  If not, create.
	var created bool
	if _, err := os.Stat(path); os.IsNotExist(err) {
		dvid.Infof("Database not already at path (%s). Creating directory...\n", path)
		created = true
		if err := os.MkdirAll(path, 0744); err != nil {
			return nil, true, fmt.Errorf("can't make directory at %s: %v", path, err)
		}
	} else {
		dvid.Infof("Found directory at %s\n", path)
	}

	opts, err := getOptions(path, config.Config)
	if err != nil {
		return nil, false, err
	}

	tlog := dvid.NewTimeLog()
	bdp, err := badger.Open(*opts)
	if err != nil {
		return nil, false, err
	}
	tlog.Infof("Opened badger @ path %s", path)

	badgerDB := &BadgerDB{
		directory:  path,
		config:     config,
		bdp:        bdp,
		stopSyncCh: make(chan struct{}),
	}
	if !opts.SyncWrites && !opts.InMemory && !opts.ReadOnly {
		badgerDB.syncWG.Add(1)
		go func() {
			defer badgerDB.syncWG.Done()
			syncPeriodically(badgerDB)
		}()
	}
	return badgerDB, created, nil
}

// TestConfig returns a configuration for a uniquely named database under the temp directory.
func (e Engine) TestConfig() dvid.StoreConfig {
	var c dvid.Config
	c.SetAll(map[string]interface{}{
		"path":    fmt.Sprintf("voxelio-test-badger-%x", uuid.NewV4().Bytes()),
		"testing": true,
	})
	return dvid.StoreConfig{Config: c, Engine: e.name}
}

// Delete provides a way to dispose of testing databases.
func (e Engine) Delete(config dvid.StoreConfig) error {
	path, _, err := parseConfig(config)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("can't delete old datastore %q: %v", path, err)
		}
	}
	return nil
}

// --- The BadgerDB Implementation must satisfy storage.OrderedKeyValueDB ----

type BadgerDB struct {
	// Directory of datastore
	directory string

	// Config at time of Open()
	config dvid.StoreConfig

	bdp *badger.DB

	closeOnce  sync.Once
	stopSyncCh chan struct{}
	syncWG     sync.WaitGroup
}

func (db *BadgerDB) String() string {
	return fmt.Sprintf("badger @ %s", db.directory)
}

// Close stops the sync goroutine and closes the database.
func (db *BadgerDB) Close() error {
	err := storage.ErrStoreClosed
	db.closeOnce.Do(func() {
		close(db.stopSyncCh)
		db.syncWG.Wait()
		err = db.bdp.Close()
		dvid.Infof("Closed Badger DB @ %s\n", db.directory)
	})
	return err
}

// Equal returns true if the badger matches the given store configuration.
func (db *BadgerDB) Equal(config dvid.StoreConfig) bool {
	path, _, err := parseConfig(config)
	if err != nil {
		return false
	}
	return config.Engine == "badger" && db.directory == path
}

// GetStoreConfig returns the configuration for this store.
func (db *BadgerDB) GetStoreConfig() dvid.StoreConfig {
	return db.config
}

// ---- KeyValueGetter interface ------

// Get returns a value given a key.
func (db *BadgerDB) Get(k storage.Key) ([]byte, error) {
	var v []byte
	err := db.bdp.View(func(txn *badger.Txn) error {
		item, err := txn.Get(k)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		v, err = item.ValueCopy(nil)
		return err
	})
	return v, err
}

// ---- KeyValueSetter interface ------

// Put writes a value with given key.
func (db *BadgerDB) Put(k storage.Key, v []byte) error {
	return db.bdp.Update(func(txn *badger.Txn) error {
		return txn.Set(k, v)
	})
}

// Delete removes a value with given key.
func (db *BadgerDB) Delete(k storage.Key) error {
	return db.bdp.Update(func(txn *badger.Txn) error {
		return txn.Delete(k)
	})
}

// ---- Range queries ------

func (db *BadgerDB) KeysInRange(kStart, kEnd storage.Key) ([]storage.Key, error) {
	var keys []storage.Key
	err := db.bdp.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false // key only
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(kStart); it.Valid(); it.Next() {
			k := it.Item().KeyCopy(nil)
			if bytes.Compare(k, kEnd) >= 0 {
				break
			}
			keys = append(keys, k)
		}
		return nil
	})
	return keys, err
}

func (db *BadgerDB) ProcessRange(kStart, kEnd storage.Key, f func(*storage.KeyValue) error) error {
	return db.bdp.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(kStart); it.Valid(); it.Next() {
			item := it.Item()
			kv := &storage.KeyValue{K: item.KeyCopy(nil)}
			if bytes.Compare(kv.K, kEnd) >= 0 {
				break
			}
			var err error
			if kv.V, err = item.ValueCopy(nil); err != nil {
				return err
			}
			if err := f(kv); err != nil {
				return err
			}
		}
		return nil
	})
}
