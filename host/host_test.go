package host_test

import (
	"os"
	"testing"

	gc "gopkg.in/check.v1"

	"github.com/xplain-systems/xact/cfg"
	"github.com/xplain-systems/xact/host"
)

func Test(t *testing.T) { gc.TestingT(t) }

type HostSuite struct{}

var _ = gc.Suite(new(HostSuite))

func sampleConfig(c *gc.C) *cfg.Config {
	raw := cfg.RawConfig{
		"system": cfg.RawConfig{"id_system": "hosttest"},
		"host": cfg.RawConfig{
			"localhost": cfg.RawConfig{
				"hostname":   "localhost",
				"port_range": "21000-21100",
				"log_level":  "error",
			},
		},
		"process": cfg.RawConfig{
			"p": cfg.RawConfig{"host": "localhost"},
		},
		"node": cfg.RawConfig{
			"a": cfg.RawConfig{
				"process":       "p",
				"state_type":    "int64",
				"functionality": cfg.RawConfig{"module": "counter"},
			},
			"b": cfg.RawConfig{
				"process":       "p",
				"functionality": cfg.RawConfig{"module": "threshold_halt"},
			},
		},
		"edge": []interface{}{
			cfg.RawConfig{
				"owner": "a",
				"data":  "counter_state",
				"src":   "a.outputs.output",
				"dst":   "b.inputs.input",
			},
		},
		"data": cfg.RawConfig{
			"counter_state": cfg.RawConfig{
				"fields": cfg.RawConfig{"count": "int64"},
			},
		},
	}

	prepared, err := cfg.Prepare([]cfg.RawConfig{raw}, nil, ".")
	c.Assert(err, gc.IsNil)
	denorm, err := cfg.Denormalize(prepared)
	c.Assert(err, gc.IsNil)
	return denorm
}

func (s *HostSuite) TestWriteLoadSnapshotRoundTrip(c *gc.C) {
	original := sampleConfig(c)

	path, err := host.WriteSnapshot(original)
	c.Assert(err, gc.IsNil)
	defer os.Remove(path)

	loaded, err := host.LoadSnapshot(path)
	c.Assert(err, gc.IsNil)

	c.Assert(loaded.System.IDSystem, gc.Equals, original.System.IDSystem)
	c.Assert(len(loaded.Edge), gc.Equals, len(original.Edge))
	c.Assert(loaded.Edge[0].IDEdge, gc.Equals, original.Edge[0].IDEdge)
	c.Assert(loaded.Edge[0].IPCType, gc.Equals, original.Edge[0].IPCType)
	c.Assert(loaded.IsDenormalized(), gc.Equals, true)
}

func (s *HostSuite) TestEncodeSnapshotInlineRoundTrip(c *gc.C) {
	original := sampleConfig(c)

	token, err := host.EncodeSnapshotInline(original)
	c.Assert(err, gc.IsNil)
	c.Assert(len(token) > len("inline:"), gc.Equals, true)

	loaded, err := host.LoadSnapshot(token)
	c.Assert(err, gc.IsNil)
	c.Assert(loaded.System.IDSystem, gc.Equals, original.System.IDSystem)
	c.Assert(loaded.Node["a"].Functionality.Module, gc.Equals, "counter")
}

func (s *HostSuite) TestLoadSnapshotMissingFile(c *gc.C) {
	_, err := host.LoadSnapshot("/nonexistent/path/to/snapshot.gob")
	c.Assert(err, gc.NotNil)
}
