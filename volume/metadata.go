package volume

import (
	"encoding/binary"
	"fmt"

	"github.com/blang/semver"
	"github.com/tinylib/msgp/msgp"

	"github.com/janelia-flyem/voxelio/dvid"
	"github.com/janelia-flyem/voxelio/storage"
)

//go:generate msgp -tests=false -io=false

// FormatVersion is the version of the stored metadata and block layout.
var FormatVersion = semver.MustParse("1.0.0")

const (
	keyMetadata storage.KeyClass = iota + 1
	keyBlock
	keySliceRange
)

// metadata is everything persisted about a volume except voxels and slice ranges.
type metadata struct {
	UUID         string      `msg:"uuid"`
	Name         string      `msg:"name"`
	Version      string      `msg:"version"`
	DataType     uint8       `msg:"datatype"`
	Dims         []Dimension `msg:"dims"`
	ValidRange   [2]float64  `msg:"valid_range"`
	RealRange    [2]float64  `msg:"real_range"`
	SliceScaling bool        `msg:"slice_scaling"`
	ImageDims    int         `msg:"image_dims"`
	BlockSize    []int       `msg:"block_size"`
	Compression  uint8       `msg:"compression"`
	DataWritten  bool        `msg:"data_written"`
	Levels       int         `msg:"levels"`
}

func metadataKey(name string) storage.Key {
	return storage.NewKey([]byte(name), keyMetadata, nil)
}

func loadMetadata(db storage.OrderedKeyValueDB, name string) (*metadata, error) {
	data, err := db.Get(metadataKey(name))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("volume %q: %w", name, ErrNotFound)
	}
	value, _, err := dvid.DeserializeData(data)
	if err != nil {
		return nil, fmt.Errorf("volume %q metadata: %w", name, err)
	}
	m := new(metadata)
	if _, err := m.UnmarshalMsg(value); err != nil {
		return nil, fmt.Errorf("volume %q metadata: %w", name, err)
	}
	ver, err := semver.Parse(m.Version)
	if err != nil {
		return nil, fmt.Errorf("volume %q has bad format version %q: %v", name, m.Version, err)
	}
	if ver.Major != FormatVersion.Major {
		return nil, fmt.Errorf("volume %q has format %s, can only read %d.x", name, ver, FormatVersion.Major)
	}
	return m, nil
}

func (m *metadata) save(db storage.OrderedKeyValueDB) error {
	value, err := m.MarshalMsg(nil)
	if err != nil {
		return err
	}
	data, err := dvid.SerializeData(value, dvid.Uncompressed, dvid.CRC32)
	if err != nil {
		return err
	}
	return db.Put(metadataKey(m.Name), data)
}

// --- slice ranges -----

func sliceRangeKey(name string, coords []int) storage.Key {
	suffix := make([]byte, 4*len(coords))
	for i, c := range coords {
		binary.BigEndian.PutUint32(suffix[i*4:], uint32(c))
	}
	return storage.NewKey([]byte(name), keySliceRange, suffix)
}

func encodeRange(min, max float64) []byte {
	b := msgp.AppendArrayHeader(make([]byte, 0, 19), 2)
	b = msgp.AppendFloat64(b, min)
	return msgp.AppendFloat64(b, max)
}

func decodeRange(b []byte) (min, max float64, err error) {
	var sz uint32
	if sz, b, err = msgp.ReadArrayHeaderBytes(b); err != nil {
		return 0, 0, fmt.Errorf("slice range header: %w", err)
	}
	if sz != 2 {
		return 0, 0, fmt.Errorf("slice range has %d values, expected 2", sz)
	}
	if min, b, err = msgp.ReadFloat64Bytes(b); err != nil {
		return 0, 0, fmt.Errorf("slice range minimum: %w", err)
	}
	if max, _, err = msgp.ReadFloat64Bytes(b); err != nil {
		return 0, 0, fmt.Errorf("slice range maximum: %w", err)
	}
	return
}
