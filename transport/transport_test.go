package transport_test

import (
	"context"
	"testing"
	"time"

	gc "gopkg.in/check.v1"

	"github.com/xplain-systems/xact/transport"
	"github.com/xplain-systems/xact/xbuf"
)

func Test(t *testing.T) { gc.TestingT(t) }

type TransportSuite struct{}

var _ = gc.Suite(new(TransportSuite))

func (s *TransportSuite) TestAliasEndpointSharesCellIdentity(c *gc.C) {
	cell := xbuf.NewRestrictedBuffer(map[string]interface{}{})
	ep := transport.NewAliasEndpoint(cell)

	err := ep.NonBlockingWrite(map[string]interface{}{"count": int64(3)})
	c.Assert(err, gc.IsNil)

	got, err := ep.BlockingRead(context.Background())
	c.Assert(err, gc.IsNil)
	c.Assert(got.(map[string]interface{})["count"], gc.Equals, int64(3))

	// the read value is the same underlying map the cell holds, not a copy.
	direct := cell.Get().(map[string]interface{})
	c.Assert(direct["count"], gc.Equals, int64(3))
}

func (s *TransportSuite) TestAliasEndpointClosed(c *gc.C) {
	cell := xbuf.NewRestrictedBuffer(map[string]interface{}{})
	ep := transport.NewAliasEndpoint(cell)
	c.Assert(ep.Close(), gc.IsNil)

	_, err := ep.BlockingRead(context.Background())
	c.Assert(err, gc.Equals, transport.ErrClosed)

	err = ep.NonBlockingWrite(map[string]interface{}{})
	c.Assert(err, gc.Equals, transport.ErrClosed)
}

func (s *TransportSuite) TestLocalQueueEndpointFullReturnsErrQueueFull(c *gc.C) {
	ep := transport.NewLocalQueueEndpoint(1)

	c.Assert(ep.NonBlockingWrite(int64(1)), gc.IsNil)
	c.Assert(ep.NonBlockingWrite(int64(2)), gc.Equals, transport.ErrQueueFull)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got, err := ep.BlockingRead(ctx)
	c.Assert(err, gc.IsNil)
	c.Assert(got, gc.Equals, int64(1))
}

func (s *TransportSuite) TestLocalQueueEndpointBlockingReadRespectsContext(c *gc.C) {
	ep := transport.NewLocalQueueEndpoint(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := ep.BlockingRead(ctx)
	c.Assert(err, gc.Equals, context.DeadlineExceeded)
}

func (s *TransportSuite) TestLocalQueueEndpointCloseUnblocksRead(c *gc.C) {
	ep := transport.NewLocalQueueEndpoint(1)

	done := make(chan error, 1)
	go func() {
		_, err := ep.BlockingRead(context.Background())
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	c.Assert(ep.Close(), gc.IsNil)

	select {
	case err := <-done:
		c.Assert(err, gc.Equals, transport.ErrClosed)
	case <-time.After(time.Second):
		c.Fatal("BlockingRead did not unblock after Close")
	}
}
