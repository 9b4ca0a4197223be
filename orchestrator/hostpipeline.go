package orchestrator

import (
	"context"
	"fmt"

	"github.com/xplain-systems/xact/pipeline"
)

// hostPayload carries one host's command result through the pipeline:
// hostID names the host, err holds any failure. Process never returns an error itself, since a single
// host's failure must not cancel every other host still in flight.
type hostPayload struct {
	hostID string
	err    error
}

func (p *hostPayload) Clone() pipeline.Payload {
	cp := *p
	return &cp
}

func (p *hostPayload) MarkAsProcessed() {}

// hostSource feeds one Payload per host id into the pipeline.
type hostSource struct {
	hostIDs []string
	idx     int
}

func (s *hostSource) Next(ctx context.Context) bool { return s.idx < len(s.hostIDs) }

func (s *hostSource) Payload() pipeline.Payload {
	p := &hostPayload{hostID: s.hostIDs[s.idx]}
	s.idx++
	return p
}

func (s *hostSource) Error() error { return nil }

// hostSink collects every per-host result emitted by the pipeline; it is
// only ever driven from the pipeline's single sink goroutine, so no
// locking is required.
type hostSink struct {
	ran  []string
	errs []error
}

func (s *hostSink) Consume(ctx context.Context, p pipeline.Payload) error {
	hp := p.(*hostPayload)
	if hp.err != nil {
		s.errs = append(s.errs, hp.err)
		return nil
	}
	s.ran = append(s.ran, hp.hostID)
	return nil
}

// maxFanOutWorkers bounds how many hosts runOnHost dials concurrently;
// ssh connection setup dominates the latency of each one, so running
// them one at a time would make Stop/Pause/Step time out linearly in
// host count for a run spread across many machines.
const maxFanOutWorkers = 8

// runHostsConcurrently fans run out across hostIDs through a
// pipeline.DynamicWorkerPool stage, returning every host that ran the
// command successfully and every per-host error - never stopping early
// on one host's failure.
func runHostsConcurrently(hostIDs []string, run func(hostID string) error) ([]string, []error) {
	sink := &hostSink{}

	proc := pipeline.ProcessorFunc(func(ctx context.Context, p pipeline.Payload) (pipeline.Payload, error) {
		hp := p.(*hostPayload)
		if err := run(hp.hostID); err != nil {
			hp.err = fmt.Errorf("host %q: %w", hp.hostID, err)
		}
		return hp, nil
	})

	workers := len(hostIDs)
	if workers > maxFanOutWorkers {
		workers = maxFanOutWorkers
	}
	if workers < 1 {
		workers = 1
	}

	pl := pipeline.New(pipeline.DynamicWorkerPool(proc, workers))
	// Process only returns an error if a stage's Processor does, which
	// proc above never does - any failure is carried in sink.errs
	// instead, so the returned error is ignored here.
	_ = pl.Process(context.Background(), &hostSource{hostIDs: hostIDs}, sink)

	return sink.ran, sink.errs
}
