package host

import (
	"context"
)

// StartHost is the body of `host start-host <snapshot>`: it loads the
// per-host snapshot produced by runOnHost and launches every process
// assigned to runtime.id_host, returning once they are all launched
// without waiting for them to exit - the original's start() hands the
// spawned subprocess.Popen objects straight back to the OS scheduler
// and returns immediately, rather than blocking the ssh invocation.
func StartHost(snapshot string) error {
	c, err := LoadSnapshot(snapshot)
	if err != nil {
		return err
	}
	return NewAgent(c.Runtime.IDHost).Start(c)
}

// StopHost is the body of `host stop-host <snapshot>`: run as its own
// re-exec'd process, with none of start-host's in-memory child handles,
// it kills every process whose command line is tagged with the
// system id, mirroring stop()'s kill_process_by_prefix(id_system).
func StopHost(snapshot string) error {
	c, err := LoadSnapshot(snapshot)
	if err != nil {
		return err
	}
	return KillByPrefix(c.System.IDSystem)
}

// PauseHost is the body of `host pause-host <snapshot>`.
func PauseHost(ctx context.Context, snapshot string) error {
	c, err := LoadSnapshot(snapshot)
	if err != nil {
		return err
	}
	return NewAgent(c.Runtime.IDHost).Pause(ctx)
}

// StepHost is the body of `host step-host <snapshot>`.
func StepHost(ctx context.Context, snapshot string) error {
	c, err := LoadSnapshot(snapshot)
	if err != nil {
		return err
	}
	return NewAgent(c.Runtime.IDHost).Step(ctx)
}
