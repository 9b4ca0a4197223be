package xacttest

import (
	"context"

	gc "gopkg.in/check.v1"

	"github.com/xplain-systems/xact/cfg"
	"github.com/xplain-systems/xact/node"
	"github.com/xplain-systems/xact/orchestrator"
	"github.com/xplain-systems/xact/xsignal"
)

// TestCoroutineForm is scenario 3: same graph and behaviour as scenario
// 1, but both a and b are coroutines yielding (outputs, signal) instead
// of plain (reset, step) functions. Expected: identical observable
// outcome to scenario 1.
func (s *ScenarioSuite) TestCoroutineForm(c *gc.C) {
	var lastCount int64

	raw := counterGraph("xacttest3",
		cfg.RawConfig{"coro": "counter_coro"},
		cfg.RawConfig{"coro": "spy_threshold_halt_coro"},
	)
	graphCfg, err := prepareLocal(raw)
	c.Assert(err, gc.IsNil)

	registry := node.NewRegistry()
	node.RegisterBuiltins(registry)
	registry.RegisterCoro("spy_threshold_halt_coro", spyThresholdHaltCoroFactory(&lastCount, 10))
	orch := orchestrator.New(registry)

	code, err := orch.Start(context.Background(), graphCfg)
	c.Assert(err, gc.IsNil)
	c.Assert(code, gc.Equals, 0)
	c.Assert(lastCount, gc.Equals, int64(10))
}

// spyThresholdHaltCoroFactory is threshold_halt_coro's behaviour plus
// recording the last observed count into out.
func spyThresholdHaltCoroFactory(out *int64, threshold int64) node.CoroFactory {
	return func(args map[string]interface{}) (node.CoroBody, error) {
		body := func(ctx context.Context, rt node.RunInfo, config, state node.Bindings, yield node.Yield) {
			inputs := node.Bindings{}
			for {
				inputs = yield(inputs, nil)
				m, _ := inputs["input"].(map[string]interface{})
				var v int64
				switch cv := m["count"].(type) {
				case *int64:
					v = *cv
				case int64:
					v = cv
				default:
					continue
				}
				*out = v
				if v >= threshold {
					yield(node.Bindings{}, &xsignal.Halt{Code: 0})
					return
				}
			}
		}
		return body, nil
	}
}
