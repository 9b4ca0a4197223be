package xacttest

import (
	"context"
	"sync"
	"time"

	gc "gopkg.in/check.v1"

	"github.com/xplain-systems/xact/cfg"
	"github.com/xplain-systems/xact/host"
	"github.com/xplain-systems/xact/node"
	"github.com/xplain-systems/xact/xsignal"
)

// TestDualProcessCounter is scenario 2: as scenario 1, but a runs in
// process p1 and b in process p2 - forcing the a->b edge to
// inter_process instead of intra_process, which transport backs with a
// Unix domain socket rather than the in-process alias cell scenario 1
// exercises. Expected: b observes monotonically increasing counts 1,
// 2, ..., 10.
//
// This drives host.RunProcess directly for p1 and p2 rather than going
// through orchestrator.Start, because Start's local-mode path
// (runLocally) collapses every node onto one synthetic process before
// running - which would force this edge back to intra_process and
// never touch the new socket-backed path this scenario is meant to
// exercise.
func (s *ScenarioSuite) TestDualProcessCounter(c *gc.C) {
	raw := dualProcessCounterGraph("xacttest2")
	prepared, err := cfg.Prepare([]cfg.RawConfig{raw}, nil, ".")
	c.Assert(err, gc.IsNil)

	denorm, err := cfg.Denormalize(prepared)
	c.Assert(err, gc.IsNil)
	denorm.Node["b"].Functionality.Module = "recording_threshold_halt"

	snapshotPath, err := host.WriteSnapshot(denorm)
	c.Assert(err, gc.IsNil)

	var mu sync.Mutex
	var seen []int64

	registryB := node.NewRegistry()
	node.RegisterBuiltins(registryB)
	registryB.Register("recording_threshold_halt", recordingThresholdHaltFactory(&mu, &seen, 10))

	registryA := node.NewRegistry()
	node.RegisterBuiltins(registryA)

	ctxA, cancelA := context.WithCancel(context.Background())
	defer cancelA()
	ctxB := context.Background()

	var wg sync.WaitGroup
	var codeB int
	var errB error

	wg.Add(2)
	go func() {
		defer wg.Done()
		// a never halts on its own in this one-directional graph (it has
		// no input edge to observe b's halt on), so its own exit code is
		// not meaningful here - it legitimately returns ctx.Err() once
		// cancelA fires below.
		_, _ = host.RunProcess(ctxA, "p1", snapshotPath, registryA)
	}()
	go func() {
		defer wg.Done()
		codeB, errB = host.RunProcess(ctxB, "p2", snapshotPath, registryB)
		cancelA()
	}()

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		cancelA()
		c.Fatal("scenario timed out waiting for both processes to finish")
	}

	c.Assert(errB, gc.IsNil)
	c.Assert(codeB, gc.Equals, 0)

	mu.Lock()
	defer mu.Unlock()
	c.Assert(len(seen) >= 10, gc.Equals, true)
	for i := 0; i < 10; i++ {
		c.Assert(seen[i], gc.Equals, int64(i+1))
	}
}

func recordingThresholdHaltFactory(mu *sync.Mutex, seen *[]int64, threshold int64) node.Factory {
	return func(args map[string]interface{}) (node.ResetFunc, node.StepFunc, error) {
		step := func(ctx context.Context, inputs, state, outputs node.Bindings) (xsignal.Signal, error) {
			m, _ := inputs["input"].(map[string]interface{})
			v, _ := m["count"].(*int64)
			if v == nil {
				return nil, nil
			}
			mu.Lock()
			*seen = append(*seen, *v)
			mu.Unlock()
			if *v >= threshold {
				return &xsignal.Halt{Code: 0}, nil
			}
			return nil, nil
		}
		return node.NoopReset, step, nil
	}
}
