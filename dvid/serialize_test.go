package dvid

import (
	"bytes"

	. "github.com/janelia-flyem/go/gocheck"
)

func (suite *DataSuite) TestSerializeData(c *C) {
	data := bytes.Repeat([]byte("voxel block payload "), 200)

	for _, compression := range []Compression{Uncompressed, Snappy, Zstd} {
		for _, checksum := range []Checksum{NoChecksum, CRC32} {
			s, err := SerializeData(data, compression, checksum)
			c.Assert(err, IsNil)
			if compression != Uncompressed {
				c.Assert(len(s) < len(data), Equals, true)
			}

			out, gotCompress, err := DeserializeData(s)
			c.Assert(err, IsNil)
			c.Assert(gotCompress, Equals, compression)
			c.Assert(bytes.Equal(out, data), Equals, true)

			if checksum != NoChecksum {
				s[len(s)-1] ^= 0x04 // Flip a bit
				_, _, err = DeserializeData(s)
				c.Assert(err, NotNil)
			}
		}
	}
}

func (suite *DataSuite) TestSerializationFormat(c *C) {
	format := EncodeSerializationFormat(Zstd, CRC32)
	compress, checksum := DecodeSerializationFormat(format)
	c.Assert(compress, Equals, Zstd)
	c.Assert(checksum, Equals, CRC32)

	_, _, err := DeserializeData(nil)
	c.Assert(err, NotNil)

	comp, err := ParseCompression("Snappy")
	c.Assert(err, IsNil)
	c.Assert(comp, Equals, Snappy)
	_, err = ParseCompression("lz4")
	c.Assert(err, NotNil)
}
