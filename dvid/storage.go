package dvid

import "fmt"

// StoreCloser stores can be closed.
type StoreCloser interface {
	Close() error
}

// StoreIdentifiable stores can say whether they are identified by a given store configuration.
type StoreIdentifiable interface {
	// Equal returns true if this store matches the given store configuration.
	Equal(StoreConfig) bool
}

// Store allows persistence of volume data.  Each engine in the storage package
// returns a Store that additionally fulfills a key-value interface.
type Store interface {
	fmt.Stringer
	StoreCloser
	StoreIdentifiable
}

// StoreConfig is a store-specific configuration where each store implementation
// defines the types of parameters it accepts.
type StoreConfig struct {
	Config

	// Engine is a simple name describing the engine, e.g., "badger"
	Engine string
}

func (sc StoreConfig) String() string {
	path, _, _ := sc.GetString("path")
	if path == "" {
		return sc.Engine
	}
	return fmt.Sprintf("%s @ %s", sc.Engine, path)
}
