package dvid

import (
	"testing"

	. "github.com/janelia-flyem/go/gocheck"
)

// Hook up gocheck into the "go test" runner.
func Test(t *testing.T) { TestingT(t) }

type DataSuite struct{}

var _ = Suite(&DataSuite{})

func (s *DataSuite) TestDataTypes(c *C) {
	c.Assert(T_uint8.Bytes(), Equals, 1)
	c.Assert(T_int16.Bytes(), Equals, 2)
	c.Assert(T_uint32.Bytes(), Equals, 4)
	c.Assert(T_float64.Bytes(), Equals, 8)
	c.Assert(DataType(42).Bytes(), Equals, 0)

	c.Assert(T_float32.IsFloat(), Equals, true)
	c.Assert(T_int32.IsFloat(), Equals, false)
	c.Assert(T_int8.IsSigned(), Equals, true)
	c.Assert(T_uint16.IsSigned(), Equals, false)

	min, max := T_int16.Range()
	c.Assert(min, Equals, -32768.0)
	c.Assert(max, Equals, 32767.0)

	c.Assert(T_uint16.WithSign(true), Equals, T_int16)
	c.Assert(T_int32.WithSign(false), Equals, T_uint32)
	c.Assert(T_float32.WithSign(false), Equals, T_float32)
}

func (s *DataSuite) TestDataTypeNames(c *C) {
	for t := DataType(0); t < NumDataTypes; t++ {
		parsed, err := ParseDataType(t.String())
		c.Assert(err, IsNil)
		c.Assert(parsed, Equals, t)
	}
	_, err := ParseDataType("uint64")
	c.Assert(err, NotNil)

	b, err := T_float32.MarshalJSON()
	c.Assert(err, IsNil)
	c.Assert(string(b), Equals, `"float32"`)

	var t DataType
	c.Assert(t.UnmarshalJSON([]byte(`"int8"`)), IsNil)
	c.Assert(t, Equals, T_int8)
	c.Assert(t.UnmarshalJSON([]byte(`"complex64"`)), NotNil)
}

func (s *DataSuite) TestConfig(c *C) {
	var config Config
	config.SetAll(map[string]interface{}{
		"Path":       "/tmp/foo",
		"readonly":   true,
		"blocksize":  int64(64),
		"max_buffer": "2 MiB",
		"badint":     "abc",
	})
	path, found, err := config.GetString("path")
	c.Assert(err, IsNil)
	c.Assert(found, Equals, true)
	c.Assert(path, Equals, "/tmp/foo")

	ro, found, err := config.GetBool("ReadOnly")
	c.Assert(err, IsNil)
	c.Assert(found, Equals, true)
	c.Assert(ro, Equals, true)

	bs, _, err := config.GetInt("blocksize")
	c.Assert(err, IsNil)
	c.Assert(bs, Equals, 64)

	nbytes, _, err := config.GetBytes("max_buffer")
	c.Assert(err, IsNil)
	c.Assert(nbytes, Equals, uint64(2*Mega))

	_, _, err = config.GetInt("badint")
	c.Assert(err, NotNil)

	_, found, err = config.GetString("missing")
	c.Assert(err, IsNil)
	c.Assert(found, Equals, false)
}

func (s *DataSuite) TestNumElements(c *C) {
	n, err := NumElements([]int{9, 8, 10})
	c.Assert(err, IsNil)
	c.Assert(n, Equals, 720)

	n, err = NumElements(nil)
	c.Assert(err, IsNil)
	c.Assert(n, Equals, 1)

	_, err = NumElements([]int{3, 0})
	c.Assert(err, NotNil)

	_, err = NumElements([]int{1 << 40, 1 << 40})
	c.Assert(err, Equals, ErrOverflow)
}

func (s *DataSuite) TestCommand(c *C) {
	cmd := Command{"get", "brain", "0,0,0", "5,5,5", "mode=real", "level=1"}
	c.Assert(cmd.Name(), Equals, "get")
	mode, found := cmd.Parameter(KeyMode)
	c.Assert(found, Equals, true)
	c.Assert(mode, Equals, "real")

	var name, start, count string
	overflow := cmd.CommandArgs(&name, &start, &count)
	c.Assert(name, Equals, "brain")
	c.Assert(start, Equals, "0,0,0")
	c.Assert(count, Equals, "5,5,5")
	c.Assert(overflow, HasLen, 0)

	pt, err := PointStr(start).Ints()
	c.Assert(err, IsNil)
	c.Assert(pt, DeepEquals, []int{0, 0, 0})

	_, err = PointStr("1,x").Ints()
	c.Assert(err, NotNil)
}

func (s *DataSuite) TestLogModes(c *C) {
	old := LogMode()
	defer SetLogMode(old)

	m, err := ParseLogMode("Warning")
	c.Assert(err, IsNil)
	c.Assert(m, Equals, WarningMode)
	SetLogMode(m)
	c.Assert(LogMode(), Equals, WarningMode)
	c.Assert(m.String(), Equals, "warning")

	_, err = ParseLogMode("loud")
	c.Assert(err, NotNil)
}
