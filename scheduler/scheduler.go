package scheduler

import (
	"context"

	"github.com/xplain-systems/xact/internal/xlog"
	"github.com/xplain-systems/xact/node"
	"github.com/xplain-systems/xact/xsignal"
)

// Scheduler runs a fixed list of nodes, in order, through the
// reset_all -> loop{step; handle signals} control flow, grounded on
// _run_main_loop_with_retry/_handle_signals and on
// bspgraph's dispatch-then-barrier shape (here a simple ordered loop,
// since a single process's tranche order is already fixed at
// construction time and needs no worker pool to parallelise).
type Scheduler struct {
	processID string
	nodes     []*node.Node
}

// New returns a Scheduler that runs nodes (already sorted into run
// order by BuildRunOrder) for processID.
func New(processID string, nodes []*node.Node) *Scheduler {
	return &Scheduler{processID: processID, nodes: nodes}
}

// Run executes reset_all, then repeatedly steps every node until a
// Halt or NonRecoverableError signal is honoured, returning the exit
// code carried by Halt (0 for a clean shutdown) or a non-nil error for
// NonRecoverableError.
func (s *Scheduler) Run(ctx context.Context) (int, error) {
	attempt := 0
	for {
		xlog.Logger().Info("reset and run", "process", s.processID, "attempt", attempt)

		resetSignals, err := s.resetAll(ctx)
		if err != nil {
			return 1, err
		}
		switch v := xsignal.Highest(resetSignals).(type) {
		case *xsignal.NonRecoverableError:
			return 1, v
		case *xsignal.Halt:
			return v.Code, nil
		case *xsignal.ResetAndRetry:
			attempt++
			continue
		}

		code, _, retry, err := s.runUntilSignal(ctx)
		if retry {
			attempt++
			continue
		}
		return code, err
	}
}

// runUntilSignal steps every node, in order, until a signal with
// priority NonRecoverableError or Halt is honoured.
func (s *Scheduler) runUntilSignal(ctx context.Context) (code int, done bool, retry bool, err error) {
	for {
		signals, stepErr := s.stepAll(ctx)
		if stepErr != nil {
			return 1, true, false, stepErr
		}
		switch v := xsignal.Highest(signals).(type) {
		case *xsignal.NonRecoverableError:
			return 1, true, false, v
		case *xsignal.Halt:
			return v.Code, true, false, nil
		case *xsignal.ResetAndRetry:
			return 0, false, true, nil
		default:
			continue
		}
	}
}

// resetAll resets every node in order and collects every signal raised,
// matching the original's reset(list_node) + _handle_signals pairing.
func (s *Scheduler) resetAll(ctx context.Context) ([]xsignal.Signal, error) {
	var signals []xsignal.Signal
	for _, n := range s.nodes {
		sig, err := n.Reset(ctx)
		if err != nil {
			return nil, err
		}
		if sig != nil {
			signals = append(signals, sig)
		}
	}
	return signals, nil
}

func (s *Scheduler) stepAll(ctx context.Context) ([]xsignal.Signal, error) {
	var signals []xsignal.Signal
	for _, n := range s.nodes {
		sig, err := n.Step(ctx)
		if err != nil {
			return nil, err
		}
		if sig != nil {
			signals = append(signals, sig)
		}
	}
	return signals, nil
}
