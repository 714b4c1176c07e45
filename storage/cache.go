package storage

import (
	"fmt"
	"sync/atomic"

	"github.com/coocood/freecache"
	humanize "github.com/dustin/go-humanize"

	"github.com/janelia-flyem/voxelio/dvid"
)

// MinCacheSize is the smallest cache freecache will allocate.
const MinCacheSize = 512 * dvid.Kilo

// CachedDB is a write-through cache in front of an ordered key-value store.
// Only point lookups are cached; range operations go straight to the store.
type CachedDB struct {
	OrderedKeyValueDB
	cache *freecache.Cache

	hits, misses uint64
}

// NewCachedDB wraps db with a cache of the given size in bytes.  A size of zero
// returns the store unwrapped.
func NewCachedDB(db OrderedKeyValueDB, size int) OrderedKeyValueDB {
	if size <= 0 {
		return db
	}
	if size < MinCacheSize {
		size = MinCacheSize
	}
	dvid.Infof("Caching store %s with %s of memory\n", db, humanize.IBytes(uint64(size)))
	return &CachedDB{
		OrderedKeyValueDB: db,
		cache:             freecache.NewCache(size),
	}
}

func (db *CachedDB) String() string {
	return fmt.Sprintf("cached %s", db.OrderedKeyValueDB)
}

// Get returns a cached value if available, else the stored value.  Missing keys are not cached.
func (db *CachedDB) Get(k Key) ([]byte, error) {
	if v, err := db.cache.Get(k); err == nil {
		atomic.AddUint64(&db.hits, 1)
		return v, nil
	}
	atomic.AddUint64(&db.misses, 1)
	v, err := db.OrderedKeyValueDB.Get(k)
	if err != nil || v == nil {
		return v, err
	}
	if err := db.cache.Set(k, v, 0); err != nil {
		// Values larger than 1/1024 of the cache are rejected by freecache.
		dvid.Debugf("not caching %d byte value for key %s: %v\n", len(v), k, err)
	}
	return v, nil
}

func (db *CachedDB) Put(k Key, v []byte) error {
	db.cache.Del(k)
	if err := db.OrderedKeyValueDB.Put(k, v); err != nil {
		return err
	}
	if err := db.cache.Set(k, v, 0); err != nil {
		dvid.Debugf("not caching %d byte value for key %s: %v\n", len(v), k, err)
	}
	return nil
}

func (db *CachedDB) Delete(k Key) error {
	db.cache.Del(k)
	return db.OrderedKeyValueDB.Delete(k)
}

// Close clears the cache and closes the underlying store.
func (db *CachedDB) Close() error {
	db.cache.Clear()
	return db.OrderedKeyValueDB.Close()
}

// Stats returns the number of cache hits and misses so far.
func (db *CachedDB) Stats() (hits, misses uint64) {
	return atomic.LoadUint64(&db.hits), atomic.LoadUint64(&db.misses)
}
