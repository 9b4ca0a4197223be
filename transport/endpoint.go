// Package transport implements the per-edge data channel: depending on
// how an edge's two endpoints are placed
// (same process, same host, different hosts) a different concrete
// Endpoint moves a single Item between them on every scheduler step.
package transport

import (
	"context"

	"github.com/xplain-systems/xact/cfg/data"
	"golang.org/x/xerrors"
)

// Item is the value moved across an edge in one step - whatever a node's
// output port allocated via cfg/data.Allocator.
type Item = data.Buffer

// ErrQueueFull is returned by NonBlockingWrite when an inter-process
// endpoint's bounded buffer has no free slot.
var ErrQueueFull = xerrors.New("endpoint queue is full")

// ErrClosed is returned once an endpoint has been closed.
var ErrClosed = xerrors.New("endpoint is closed")

// Endpoint is one side of an edge's data channel.
type Endpoint interface {
	// BlockingRead returns the next item, blocking until one is
	// available or ctx is done.
	BlockingRead(ctx context.Context) (Item, error)

	// NonBlockingWrite publishes item without blocking the caller;
	// it returns ErrQueueFull rather than block when the endpoint
	// cannot accept the write immediately.
	NonBlockingWrite(item Item) error

	// Close releases any resources (sockets, goroutines) held by the
	// endpoint. Subsequent reads/writes return ErrClosed.
	Close() error
}
