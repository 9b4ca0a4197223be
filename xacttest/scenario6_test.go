package xacttest

import (
	gc "gopkg.in/check.v1"

	"github.com/xplain-systems/xact/cfg"
)

// TestRepeatedEdgeSource is scenario 6: two edges declare the same src.
// Expected: a *cfg.CfgError from validation, with a descriptive
// message, before any process is ever started.
func (s *ScenarioSuite) TestRepeatedEdgeSource(c *gc.C) {
	raw := cfg.RawConfig{
		"system": cfg.RawConfig{"id_system": "xacttest6"},
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
			"b1": cfg.RawConfig{
				"process":       "p",
				"functionality": cfg.RawConfig{"module": "threshold_halt"},
			},
			"b2": cfg.RawConfig{
				"process":       "p",
				"functionality": cfg.RawConfig{"module": "threshold_halt"},
			},
		},
		"edge": []interface{}{
			cfg.RawConfig{
				"owner": "a",
				"data":  "counter_state",
				"src":   "a.outputs.output",
				"dst":   "b1.inputs.input",
			},
			cfg.RawConfig{
				"owner": "a",
				"data":  "counter_state",
				"src":   "a.outputs.output",
				"dst":   "b2.inputs.input",
			},
		},
		"data": cfg.RawConfig{
			"counter_state": cfg.RawConfig{
				"fields": cfg.RawConfig{"count": "int64"},
			},
		},
	}

	_, err := cfg.Prepare([]cfg.RawConfig{raw}, nil, ".")
	c.Assert(err, gc.NotNil)

	cfgErr, ok := err.(*cfg.CfgError)
	c.Assert(ok, gc.Equals, true)
	c.Assert(cfgErr.Error(), gc.Not(gc.Equals), "")
}
