package xacttest

import (
	"context"

	gc "gopkg.in/check.v1"

	"github.com/xplain-systems/xact/node"
	"github.com/xplain-systems/xact/orchestrator"
	"github.com/xplain-systems/xact/xsignal"
)

// TestFeedbackLoop is scenario 4: a emits count on a feedforward edge
// to b; b emits do_halt = (count >= 10) back to a on a feedback edge;
// a halts once it reads do_halt == true. Expected: clean exit with
// code 0 after exactly 11 a-steps.
func (s *ScenarioSuite) TestFeedbackLoop(c *gc.C) {
	var steps int

	raw := feedbackGraph("xacttest4")
	graphCfg, err := prepareLocal(raw)
	c.Assert(err, gc.IsNil)
	graphCfg.Node["a"].Functionality.Module = "counting_feedback_counter"

	registry := node.NewRegistry()
	node.RegisterBuiltins(registry)
	registry.Register("counting_feedback_counter", countingFeedbackCounterFactory(&steps))
	orch := orchestrator.New(registry)

	code, err := orch.Start(context.Background(), graphCfg)
	c.Assert(err, gc.IsNil)
	c.Assert(code, gc.Equals, 0)
	c.Assert(steps, gc.Equals, 11)
}

// countingFeedbackCounterFactory is feedback_counter's behaviour plus a
// count of how many steps actually ran, to check scenario 4's "exactly
// 11 a-steps" claim directly rather than just the process exit code.
func countingFeedbackCounterFactory(steps *int) node.Factory {
	return func(args map[string]interface{}) (node.ResetFunc, node.StepFunc, error) {
		reset := func(ctx context.Context, rt node.RunInfo, config, state node.Bindings) (xsignal.Signal, error) {
			if p, ok := state["_"].(*int64); ok {
				*p = 0
			}
			return nil, nil
		}
		step := func(ctx context.Context, inputs, state, outputs node.Bindings) (xsignal.Signal, error) {
			*steps++

			m, _ := inputs["input"].(map[string]interface{})
			if halted, _ := m["do_halt"].(*bool); halted != nil && *halted {
				return &xsignal.Halt{Code: 0}, nil
			}

			p, ok := state["_"].(*int64)
			if !ok {
				return nil, nil
			}
			*p++
			out, _ := outputs["output"].(map[string]interface{})
			if out == nil {
				out = map[string]interface{}{}
				outputs["output"] = out
			}
			if cp, ok := out["count"].(*int64); ok {
				*cp = *p
			} else {
				out["count"] = *p
			}
			return nil, nil
		}
		return reset, step, nil
	}
}
