package node_test

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	gc "gopkg.in/check.v1"

	"github.com/xplain-systems/xact/node"
	"github.com/xplain-systems/xact/transport"
	"github.com/xplain-systems/xact/transport/mocks"
	"github.com/xplain-systems/xact/xsignal"
)

func Test(t *testing.T) { gc.TestingT(t) }

type NodeSuite struct{}

var _ = gc.Suite(new(NodeSuite))

// TestStepReadsWritesInOrder checks the step contract directly against
// mock endpoints: every input is blocking-read before the step function
// runs, and every output is non-blocking-written afterwards.
func (s *NodeSuite) TestStepReadsWritesInOrder(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	in := mocks.NewMockEndpoint(ctrl)
	out := mocks.NewMockEndpoint(ctrl)

	in.EXPECT().BlockingRead(gomock.Any()).Return(map[string]interface{}{"count": int64(7)}, nil)
	out.EXPECT().NonBlockingWrite(int64(1)).Return(nil)

	var sawInput int64
	step := func(ctx context.Context, inputs, state, outputs node.Bindings) (xsignal.Signal, error) {
		m := inputs["input"].(map[string]interface{})
		sawInput = m["count"].(int64)
		outputs["output"] = int64(1)
		return nil, nil
	}

	n, err := node.New(
		"n", node.RunInfo{}, node.Bindings{}, "",
		[]node.PortType{{Port: "input", DataType: "opaque_map"}},
		[]node.PortType{{Port: "output", DataType: "int64"}},
		map[string]transport.Endpoint{"input": in},
		map[string]transport.Endpoint{"output": out},
		node.NoopReset, step,
	)
	c.Assert(err, gc.IsNil)

	sig, err := n.Step(context.Background())
	c.Assert(err, gc.IsNil)
	c.Assert(sig, gc.IsNil)
	c.Assert(sawInput, gc.Equals, int64(7))
}

// TestStepWriteFailureBecomesNonRecoverable checks that a write failure
// surfaces as a NonRecoverableError signal rather than an error return,
// since partial output delivery must still let the scheduler observe
// and act on every other node's signal for the same tranche.
func (s *NodeSuite) TestStepWriteFailureBecomesNonRecoverable(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	out := mocks.NewMockEndpoint(ctrl)
	out.EXPECT().NonBlockingWrite(gomock.Any()).Return(transport.ErrQueueFull)

	step := func(ctx context.Context, inputs, state, outputs node.Bindings) (xsignal.Signal, error) {
		outputs["output"] = int64(1)
		return nil, nil
	}

	n, err := node.New(
		"n", node.RunInfo{}, node.Bindings{}, "",
		nil,
		[]node.PortType{{Port: "output", DataType: "int64"}},
		nil,
		map[string]transport.Endpoint{"output": out},
		node.NoopReset, step,
	)
	c.Assert(err, gc.IsNil)

	sig, err := n.Step(context.Background())
	c.Assert(err, gc.IsNil)
	_, ok := sig.(*xsignal.NonRecoverableError)
	c.Assert(ok, gc.Equals, true)
}
