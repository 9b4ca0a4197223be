package xacttest

import (
	"context"
	"testing"

	gc "gopkg.in/check.v1"

	"github.com/xplain-systems/xact/cfg"
	"github.com/xplain-systems/xact/internal/xlog"
	"github.com/xplain-systems/xact/node"
	"github.com/xplain-systems/xact/orchestrator"
	"github.com/xplain-systems/xact/xsignal"
)

func Test(t *testing.T) { gc.TestingT(t) }

type ScenarioSuite struct{}

var _ = gc.Suite(new(ScenarioSuite))

func (s *ScenarioSuite) SetUpTest(c *gc.C) { xlog.Reset() }

// TestSingleProcessCounter is scenario 1: two nodes a, b in process p;
// a increments state.count each step and writes outputs.output.count;
// b halts with code 0 once inputs.input.count >= 10.
func (s *ScenarioSuite) TestSingleProcessCounter(c *gc.C) {
	var lastCount int64

	raw := counterGraph("xacttest1",
		cfg.RawConfig{"module": "counter"},
		cfg.RawConfig{"module": "spy_threshold_halt"},
	)
	graphCfg, err := prepareLocal(raw)
	c.Assert(err, gc.IsNil)

	registry := node.NewRegistry()
	node.RegisterBuiltins(registry)
	registry.Register("spy_threshold_halt", spyThresholdHaltFactory(&lastCount, 10))
	orch := orchestrator.New(registry)

	code, err := orch.Start(context.Background(), graphCfg)
	c.Assert(err, gc.IsNil)
	c.Assert(code, gc.Equals, 0)
	c.Assert(lastCount, gc.Equals, int64(10))
}

// spyThresholdHaltFactory is threshold_halt's behaviour plus recording
// the last observed count into out, so the test can assert scenario
// 1's "b's final observed input is {count: 10}" directly rather than
// just the process exit code.
func spyThresholdHaltFactory(out *int64, threshold int64) node.Factory {
	return func(args map[string]interface{}) (node.ResetFunc, node.StepFunc, error) {
		step := func(ctx context.Context, inputs, state, outputs node.Bindings) (xsignal.Signal, error) {
			m, _ := inputs["input"].(map[string]interface{})
			v, _ := m["count"].(*int64)
			if v == nil {
				return nil, nil
			}
			*out = *v
			if *v >= threshold {
				return &xsignal.Halt{Code: 0}, nil
			}
			return nil, nil
		}
		return node.NoopReset, step, nil
	}
}
