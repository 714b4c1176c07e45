package storage

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/janelia-flyem/voxelio/dvid"
)

// Key is the slice of bytes used to store a value in a storage engine.
// Keys are ordered lexicographically.
type Key []byte

func (k Key) String() string {
	return hex.EncodeToString(k)
}

// KeyClass partitions the keyspace of a volume.
type KeyClass byte

// NewKey returns a key composed of a namespace, a class byte, and a class-specific suffix.
func NewKey(namespace []byte, class KeyClass, suffix []byte) Key {
	k := make(Key, 0, len(namespace)+2+len(suffix))
	k = append(k, namespace...)
	k = append(k, 0, byte(class))
	return append(k, suffix...)
}

// ClassRange returns the keys bracketing every key of a class within a namespace.
// The end key is exclusive.
func ClassRange(namespace []byte, class KeyClass) (start, end Key) {
	start = NewKey(namespace, class, nil)
	end = NewKey(namespace, class+1, nil)
	return
}

// KeyValue stores a key-value pair.
type KeyValue struct {
	K Key
	V []byte
}

// Deserialize returns a key-value pair whose value has been deserialized.
func (kv KeyValue) Deserialize() (KeyValue, error) {
	value, _, err := dvid.DeserializeData(kv.V)
	return KeyValue{kv.K, value}, err
}

// KeyValueGetter provides point lookups.
type KeyValueGetter interface {
	// Get returns a value given a key.  A missing key returns a nil value and nil error.
	Get(k Key) ([]byte, error)
}

// KeyValueSetter provides point mutations.
type KeyValueSetter interface {
	// Put writes a value with given key.
	Put(k Key, v []byte) error

	// Delete removes an entry given key.  Deleting a missing key is not an error.
	Delete(k Key) error
}

// OrderedKeyValueDB is the storage API consumed by volumes.
type OrderedKeyValueDB interface {
	dvid.Store
	KeyValueGetter
	KeyValueSetter

	// KeysInRange returns all keys in [start, end) in ascending order.
	KeysInRange(start, end Key) ([]Key, error)

	// ProcessRange calls f for each key-value pair in [start, end) in ascending order,
	// stopping at the first error returned by f.
	ProcessRange(start, end Key, f func(*KeyValue) error) error
}

// DeleteRange removes all keys in [start, end).
func DeleteRange(db OrderedKeyValueDB, start, end Key) error {
	keys, err := db.KeysInRange(start, end)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := db.Delete(k); err != nil {
			return fmt.Errorf("deleting key %s: %w", k, err)
		}
	}
	return nil
}

// InRange returns true if start <= k < end.
func InRange(k, start, end Key) bool {
	return bytes.Compare(k, start) >= 0 && bytes.Compare(k, end) < 0
}
