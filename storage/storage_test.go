package storage_test

import (
	"fmt"
	"testing"

	. "github.com/janelia-flyem/go/gocheck"

	"github.com/janelia-flyem/voxelio/dvid"
	"github.com/janelia-flyem/voxelio/storage"
	_ "github.com/janelia-flyem/voxelio/storage/badger"
	_ "github.com/janelia-flyem/voxelio/storage/memory"
)

// Hook up gocheck into the "go test" runner.
func Test(t *testing.T) { TestingT(t) }

type StoreSuite struct{}

var _ = Suite(&StoreSuite{})

func (s *StoreSuite) TestEnginesRegistered(c *C) {
	c.Assert(storage.GetEngine("memory"), NotNil)
	c.Assert(storage.GetEngine("badger"), NotNil)
	c.Assert(storage.GetEngine("bigtable"), IsNil)
	c.Assert(storage.EnginesAvailable(), HasLen, 2)

	_, _, err := storage.NewStore(dvid.StoreConfig{Engine: "nonexistent"})
	c.Assert(err, NotNil)
}

func checkKeyValueDB(c *C, db storage.OrderedKeyValueDB) {
	ns := []byte("vol")
	other := []byte("other")
	for i := 0; i < 10; i++ {
		k := storage.NewKey(ns, 2, []byte(fmt.Sprintf("block-%02d", i)))
		c.Assert(db.Put(k, []byte(fmt.Sprintf("value %d", i))), IsNil)
	}
	c.Assert(db.Put(storage.NewKey(ns, 1, []byte("meta")), []byte("metadata")), IsNil)
	c.Assert(db.Put(storage.NewKey(other, 2, []byte("block-00")), []byte("x")), IsNil)

	v, err := db.Get(storage.NewKey(ns, 2, []byte("block-03")))
	c.Assert(err, IsNil)
	c.Assert(string(v), Equals, "value 3")

	v, err = db.Get(storage.NewKey(ns, 2, []byte("block-99")))
	c.Assert(err, IsNil)
	c.Assert(v, IsNil)

	start, end := storage.ClassRange(ns, 2)
	keys, err := db.KeysInRange(start, end)
	c.Assert(err, IsNil)
	c.Assert(keys, HasLen, 10)
	c.Assert(storage.InRange(keys[0], start, end), Equals, true)

	var n int
	err = db.ProcessRange(start, end, func(kv *storage.KeyValue) error {
		c.Assert(string(kv.V), Equals, fmt.Sprintf("value %d", n))
		n++
		return nil
	})
	c.Assert(err, IsNil)
	c.Assert(n, Equals, 10)

	c.Assert(storage.DeleteRange(db, start, end), IsNil)
	keys, err = db.KeysInRange(start, end)
	c.Assert(err, IsNil)
	c.Assert(keys, HasLen, 0)

	v, err = db.Get(storage.NewKey(ns, 1, []byte("meta")))
	c.Assert(err, IsNil)
	c.Assert(string(v), Equals, "metadata")
	v, err = db.Get(storage.NewKey(other, 2, []byte("block-00")))
	c.Assert(err, IsNil)
	c.Assert(string(v), Equals, "x")
}

func (s *StoreSuite) TestMemoryStore(c *C) {
	db, teardown, err := storage.NewTestStore("memory")
	c.Assert(err, IsNil)
	defer teardown()
	checkKeyValueDB(c, db)
}

func (s *StoreSuite) TestBadgerStore(c *C) {
	db, teardown, err := storage.NewTestStore("badger")
	c.Assert(err, IsNil)
	defer teardown()
	checkKeyValueDB(c, db)
}

func (s *StoreSuite) TestCachedStore(c *C) {
	db, teardown, err := storage.NewTestStore("memory")
	c.Assert(err, IsNil)
	defer teardown()

	cached := storage.NewCachedDB(db, storage.MinCacheSize)
	checkKeyValueDB(c, cached)

	k := storage.NewKey([]byte("vol"), 3, []byte("cached"))
	c.Assert(cached.Put(k, []byte("abc")), IsNil)
	for i := 0; i < 3; i++ {
		v, err := cached.Get(k)
		c.Assert(err, IsNil)
		c.Assert(string(v), Equals, "abc")
	}
	hits, _ := cached.(*storage.CachedDB).Stats()
	c.Assert(hits >= 3, Equals, true)

	c.Assert(cached.Delete(k), IsNil)
	v, err := cached.Get(k)
	c.Assert(err, IsNil)
	c.Assert(v, IsNil)

	c.Assert(storage.NewCachedDB(db, 0), Equals, db)
}
