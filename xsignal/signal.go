// Package xsignal defines the control signals that a node's reset/step
// functions may return to influence the process scheduler, including
// NonRecoverableError, the error kind that terminates a run. Config
// errors (CfgError) are defined in package cfg.
package xsignal

import "golang.org/x/xerrors"

// Signal is implemented by every control signal a node may emit from
// Reset or Step. The scheduler type-switches on Signal to decide what to
// do once a tranche finishes running.
type Signal interface {
	error
	controlSignal()
}

// Halt requests a clean shutdown of the owning process with the given
// exit code. A Halt(0) is considered a successful run.
type Halt struct {
	Code int
}

func (h *Halt) Error() string   { return "halt requested" }
func (h *Halt) controlSignal()  {}
func NewHalt(code int) *Halt    { return &Halt{Code: code} }

// ResetAndRetry asks the scheduler to re-enter its outer loop: reset
// every local node and resume stepping.
type ResetAndRetry struct {
	Reason string
}

func (r *ResetAndRetry) Error() string {
	if r.Reason == "" {
		return "reset and retry requested"
	}
	return "reset and retry requested: " + r.Reason
}
func (r *ResetAndRetry) controlSignal() {}

// NonRecoverableError marks a failure that cannot be recovered from
// in-process: a module import failure, a step-function panic, a full
// mandatory output queue, or a transport disconnect. The owning process
// must terminate with a non-zero exit code once this signal is honoured.
type NonRecoverableError struct {
	Cause error
}

func (n *NonRecoverableError) Error() string {
	return xerrors.Errorf("non-recoverable error: %w", n.Cause).Error()
}
func (n *NonRecoverableError) Unwrap() error { return n.Cause }
func (n *NonRecoverableError) controlSignal() {}

// NewNonRecoverableError wraps cause as a NonRecoverableError signal.
func NewNonRecoverableError(cause error) *NonRecoverableError {
	return &NonRecoverableError{Cause: cause}
}

// Priority returns the signal's position in the honour order, lowest
// value wins. Signals not recognised here sort last.
func Priority(s Signal) int {
	switch s.(type) {
	case *NonRecoverableError:
		return 0
	case *Halt:
		return 1
	case *ResetAndRetry:
		return 2
	default:
		return 3
	}
}

// Highest returns the highest-priority signal among signals, discarding
// the rest, or nil if signals is empty. This implements the priority
// rule from the scheduler's signal-handling step:
// NonRecoverableError > Halt > ResetAndRetry.
func Highest(signals []Signal) Signal {
	var best Signal
	bestPriority := 4
	for _, s := range signals {
		if s == nil {
			continue
		}
		if p := Priority(s); p < bestPriority {
			best = s
			bestPriority = p
		}
	}
	return best
}
