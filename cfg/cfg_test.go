package cfg_test

import (
	"testing"

	gc "gopkg.in/check.v1"

	"github.com/xplain-systems/xact/cfg"
)

func Test(t *testing.T) { gc.TestingT(t) }

type CfgSuite struct{}

var _ = gc.Suite(new(CfgSuite))

func validGraph() cfg.RawConfig {
	return cfg.RawConfig{
		"system": cfg.RawConfig{"id_system": "cfgtest"},
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
}

func (s *CfgSuite) TestMergeDictsNestedOverride(c *gc.C) {
	first := cfg.RawConfig{
		"host": cfg.RawConfig{"a": cfg.RawConfig{"log_level": "info"}},
		"only_first": "x",
	}
	second := cfg.RawConfig{
		"host": cfg.RawConfig{"a": cfg.RawConfig{"log_level": "debug"}},
		"only_second": "y",
	}
	merged := cfg.MergeDicts(first, second)

	host := merged["host"].(cfg.RawConfig)["a"].(cfg.RawConfig)
	c.Assert(host["log_level"], gc.Equals, "debug")
	c.Assert(merged["only_first"], gc.Equals, "x")
	c.Assert(merged["only_second"], gc.Equals, "y")
}

func (s *CfgSuite) TestMergeAllLaterSourceWins(c *gc.C) {
	out := cfg.MergeAll(
		cfg.RawConfig{"a": "1", "b": "1"},
		cfg.RawConfig{"b": "2"},
		cfg.RawConfig{"b": "3", "c": "3"},
	)
	c.Assert(out["a"], gc.Equals, "1")
	c.Assert(out["b"], gc.Equals, "3")
	c.Assert(out["c"], gc.Equals, "3")
}

func (s *CfgSuite) TestApplyOverridesOrderMatters(c *gc.C) {
	raw := cfg.RawConfig{"host": cfg.RawConfig{"a": cfg.RawConfig{"log_level": "info"}}}
	out := cfg.ApplyOverrides(raw, []cfg.Override{
		{Addr: "host.a.log_level", Value: "debug"},
		{Addr: "host.a.log_level", Value: "warn"},
	}, ".")
	got := out["host"].(cfg.RawConfig)["a"].(cfg.RawConfig)["log_level"]
	c.Assert(got, gc.Equals, "warn")

	// original untouched - ApplyOverrides must not mutate its input.
	orig := raw["host"].(cfg.RawConfig)["a"].(cfg.RawConfig)["log_level"]
	c.Assert(orig, gc.Equals, "info")
}

func (s *CfgSuite) TestIDCfgDeterministicAndOrderIndependent(c *gc.C) {
	a := cfg.RawConfig{"x": "1", "y": "2"}
	b := cfg.RawConfig{"y": "2", "x": "1"}
	c.Assert(cfg.IDCfg(a, 16), gc.Equals, cfg.IDCfg(b, 16))

	diff := cfg.RawConfig{"x": "1", "y": "3"}
	c.Assert(cfg.IDCfg(a, 16), gc.Not(gc.Equals), cfg.IDCfg(diff, 16))
	c.Assert(len(cfg.IDCfg(a, 16)), gc.Equals, 16)
}

func (s *CfgSuite) TestPrepareValidGraph(c *gc.C) {
	got, err := cfg.Prepare([]cfg.RawConfig{validGraph()}, nil, ".")
	c.Assert(err, gc.IsNil)
	c.Assert(got.Node["a"], gc.NotNil)
	c.Assert(got.Node["b"], gc.NotNil)
	c.Assert(len(got.Edge), gc.Equals, 1)
	c.Assert(got.Runtime.IDCfg, gc.Not(gc.Equals), "")
}

func (s *CfgSuite) TestPrepareNoSources(c *gc.C) {
	_, err := cfg.Prepare(nil, nil, ".")
	c.Assert(err, gc.NotNil)
	_, ok := err.(*cfg.CfgError)
	c.Assert(ok, gc.Equals, true)
}

func (s *CfgSuite) TestPrepareDanglingEdgeReference(c *gc.C) {
	raw := validGraph()
	edges := raw["edge"].([]interface{})
	bad := edges[0].(cfg.RawConfig)
	bad["dst"] = "does_not_exist.inputs.input"

	_, err := cfg.Prepare([]cfg.RawConfig{raw}, nil, ".")
	c.Assert(err, gc.NotNil)
	_, ok := err.(*cfg.CfgError)
	c.Assert(ok, gc.Equals, true)
}

func (s *CfgSuite) TestPrepareCyclicFeedforwardRejected(c *gc.C) {
	raw := validGraph()
	raw["node"].(cfg.RawConfig)["c"] = cfg.RawConfig{
		"process":       "p",
		"functionality": cfg.RawConfig{"module": "counter"},
	}
	edges := raw["edge"].([]interface{})
	edges = append(edges,
		cfg.RawConfig{
			"owner": "b",
			"data":  "counter_state",
			"src":   "b.outputs.output",
			"dst":   "c.inputs.input",
		},
		cfg.RawConfig{
			"owner": "c",
			"data":  "counter_state",
			"src":   "c.outputs.output",
			"dst":   "a.inputs.input",
		},
	)
	raw["node"].(cfg.RawConfig)["b"].(cfg.RawConfig)["state_type"] = "int64"
	raw["node"].(cfg.RawConfig)["c"].(cfg.RawConfig)["state_type"] = "int64"
	raw["edge"] = edges

	_, err := cfg.Prepare([]cfg.RawConfig{raw}, nil, ".")
	c.Assert(err, gc.NotNil)
}

func (s *CfgSuite) TestDenormalizeDerivesIntraProcessEdge(c *gc.C) {
	prepared, err := cfg.Prepare([]cfg.RawConfig{validGraph()}, nil, ".")
	c.Assert(err, gc.IsNil)

	denorm, err := cfg.Denormalize(prepared)
	c.Assert(err, gc.IsNil)
	c.Assert(denorm.Edge[0].IPCType, gc.Equals, cfg.IntraProcess)
	c.Assert(denorm.Edge[0].SrcNodeID, gc.Equals, "a")
	c.Assert(denorm.Edge[0].DstNodeID, gc.Equals, "b")
	c.Assert(denorm.IsDenormalized(), gc.Equals, true)
}

func (s *CfgSuite) TestCloneIsIndependent(c *gc.C) {
	prepared, err := cfg.Prepare([]cfg.RawConfig{validGraph()}, nil, ".")
	c.Assert(err, gc.IsNil)
	denorm, err := cfg.Denormalize(prepared)
	c.Assert(err, gc.IsNil)

	clone := denorm.Clone()
	clone.Node["a"].ProcessID = "changed"
	c.Assert(denorm.Node["a"].ProcessID, gc.Equals, "p")
}
