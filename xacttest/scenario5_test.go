package xacttest

import (
	gc "gopkg.in/check.v1"

	"context"

	"github.com/xplain-systems/xact/cfg"
	"github.com/xplain-systems/xact/node"
	"github.com/xplain-systems/xact/orchestrator"
)

// TestInvalidModuleReference is scenario 5: functionality.module names a
// module the running process's registry never registered. Expected:
// non-zero exit, a non-empty error.
func (s *ScenarioSuite) TestInvalidModuleReference(c *gc.C) {
	raw := counterGraph("xacttest5",
		cfg.RawConfig{"module": "counter"},
		cfg.RawConfig{"module": "does_not_exist"},
	)
	graphCfg, err := prepareLocal(raw)
	c.Assert(err, gc.IsNil)

	registry := node.NewRegistry()
	node.RegisterBuiltins(registry)
	orch := orchestrator.New(registry)

	code, err := orch.Start(context.Background(), graphCfg)
	c.Assert(err, gc.NotNil)
	c.Assert(err.Error(), gc.Not(gc.Equals), "")
	c.Assert(code, gc.Not(gc.Equals), 0)
}
