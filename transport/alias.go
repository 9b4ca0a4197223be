package transport

import (
	"context"

	"github.com/xplain-systems/xact/xbuf"
)

// aliasEndpoint backs an intra-process edge: producer and consumer share
// one RestrictedBuffer cell and no queueing happens at all, because
// the run order guarantees the producer's step always runs before the
// consumer's step within the same tranche.
type aliasEndpoint struct {
	cell   *xbuf.RestrictedBuffer
	closed bool
}

// NewAliasEndpoint wraps an already-allocated buffer cell for a single
// intra-process edge. Both the producer and consumer node share the
// same *aliasEndpoint instance.
func NewAliasEndpoint(cell *xbuf.RestrictedBuffer) Endpoint {
	return &aliasEndpoint{cell: cell}
}

func (a *aliasEndpoint) BlockingRead(ctx context.Context) (Item, error) {
	if a.closed {
		return nil, ErrClosed
	}
	return a.cell.Get(), nil
}

func (a *aliasEndpoint) NonBlockingWrite(item Item) error {
	if a.closed {
		return ErrClosed
	}
	return a.cell.Set(item)
}

func (a *aliasEndpoint) Close() error {
	a.closed = true
	return nil
}
