package data_test

import (
	"testing"

	gc "gopkg.in/check.v1"

	"github.com/xplain-systems/xact/cfg/data"
)

func Test(t *testing.T) { gc.TestingT(t) }

type DataSuite struct{}

var _ = gc.Suite(new(DataSuite))

func (s *DataSuite) TearDownTest(c *gc.C) {
	data.Configure(nil)
}

func (s *DataSuite) TestAllocatorAtomic(c *gc.C) {
	ctor, err := data.Allocator("int64")
	c.Assert(err, gc.IsNil)

	a := ctor()
	b := ctor()
	*a.(*int64) = 5
	c.Assert(*b.(*int64), gc.Equals, int64(0))
}

func (s *DataSuite) TestAllocatorUnknownType(c *gc.C) {
	_, err := data.Allocator("no_such_type")
	c.Assert(err, gc.NotNil)
}

func (s *DataSuite) TestAllocatorAlias(c *gc.C) {
	data.Configure(map[string]interface{}{
		"counter_value": "int64",
	})
	ctor, err := data.Allocator("counter_value")
	c.Assert(err, gc.IsNil)
	v := ctor()
	_, ok := v.(*int64)
	c.Assert(ok, gc.Equals, true)
}

func (s *DataSuite) TestAllocatorCompound(c *gc.C) {
	data.Configure(map[string]interface{}{
		"counter_state": map[string]interface{}{
			"fields": map[string]interface{}{
				"count": "int64",
				"label": "string",
			},
		},
	})
	ctor, err := data.Allocator("counter_state")
	c.Assert(err, gc.IsNil)

	v := ctor().(map[string]data.Buffer)
	c.Assert(*v["count"].(*int64), gc.Equals, int64(0))
	c.Assert(*v["label"].(*string), gc.Equals, "")
}

func (s *DataSuite) TestAllocatorCyclicAliasRejected(c *gc.C) {
	data.Configure(map[string]interface{}{
		"a": "b",
		"b": "a",
	})
	_, err := data.Allocator("a")
	c.Assert(err, gc.NotNil)
}
