package redisserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/kvmesh-go/internal/core/domain"
	"github.com/yndnr/kvmesh-go/pkg/resp"
)

// Close reasons, used as the metric label.
const (
	closeEOF           = "eof"
	closeProtocol      = "protocol_error"
	closeFrameTooLarge = "frame_too_large"
	closeIdle          = "idle_timeout"
	closeReadError     = "read_error"
	closeWriteError    = "write_error"
	closeShutdown      = "shutdown"
)

// chunk is one socket read handed from the reader goroutine to the actor.
type chunk struct {
	data []byte
	err  error
}

// conn is the actor serving one client socket.
type conn struct {
	id      string
	netConn net.Conn
	srv     *Server
	logger  *slog.Logger

	replies chan reply
	reads   chan chunk
	limiter *rate.Limiter

	// pending holds bytes of a frame that is not complete yet.
	pending []byte
	// out collects encoded replies until the next flush.
	out      []byte
	inflight int

	closeOnce sync.Once
	done      chan struct{}
}

func newConn(srv *Server, id string, nc net.Conn) *conn {
	c := &conn{
		id:      id,
		netConn: nc,
		srv:     srv,
		logger:  srv.logger.With("conn_id", id, "remote", nc.RemoteAddr().String()),
		replies: make(chan reply, srv.cfg.ReplyQueue),
		reads:   make(chan chunk),
		done:    make(chan struct{}),
	}
	if srv.cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(srv.cfg.RateLimit), srv.cfg.rateBurst())
	}
	return c
}

// Close closes the socket. It is safe to call from any goroutine.
func (c *conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.netConn.Close()
	})
	return err
}

// serve runs the actor until the peer leaves, a fatal error occurs or ctx
// ends. It returns the close reason.
func (c *conn) serve(ctx context.Context) string {
	defer c.Close()

	go c.readLoop()

	reads := c.reads
	var (
		reason   string
		errFrame error
	)

	for {
		// Decode and forward every complete frame we have room for.
		if reason == "" {
			reason, errFrame = c.forward(ctx)
		}
		if reason == "" && len(c.pending) > c.srv.cfg.MaxFrameBytes {
			c.srv.metrics.IncProtocolErrors()
			reason = closeFrameTooLarge
			errFrame = domain.ErrFrameTooLarge.WithDetails(
				"buffered frame exceeds " + strconv.Itoa(c.srv.cfg.MaxFrameBytes) + " bytes")
		}
		if reason != "" {
			reads = nil
			if c.inflight == 0 {
				break
			}
		}

		var readCh <-chan chunk
		if c.inflight < cap(c.replies) {
			readCh = reads
		}

		select {
		case ch := <-readCh:
			if ch.err != nil {
				reason = readCloseReason(ch.err)
				continue
			}
			c.pending = append(c.pending, ch.data...)

		case r := <-c.replies:
			c.collect(r)
			if err := c.flush(); err != nil {
				c.logger.Debug("write failed", "error", err)
				return closeWriteError
			}

		case <-ctx.Done():
			return closeShutdown
		}
	}

	if errFrame != nil {
		c.out = resp.AppendEncode(c.out, resp.Error(domain.ReplyText(errFrame)))
		if err := c.flush(); err != nil {
			c.logger.Debug("write failed", "error", err)
		} else {
			c.lingerClose(ctx)
		}
	}
	return reason
}

// lingerTimeout bounds how long lingerClose discards input.
const lingerTimeout = 250 * time.Millisecond

// lingerClose half-closes the socket and discards unread input for a short
// while, so the peer reads the error frame instead of a reset.
func (c *conn) lingerClose(ctx context.Context) {
	cw, ok := c.netConn.(interface{ CloseWrite() error })
	if !ok || cw.CloseWrite() != nil {
		return
	}

	timer := time.NewTimer(lingerTimeout)
	defer timer.Stop()
	for {
		select {
		case ch := <-c.reads:
			if ch.err != nil {
				return
			}
		case <-timer.C:
			return
		case <-ctx.Done():
			return
		}
	}
}

// forward decodes frames from pending and submits them while the in-flight
// limit allows. A non-empty reason means the connection must close once the
// in-flight replies are written.
func (c *conn) forward(ctx context.Context) (string, error) {
	pos := 0
	defer func() {
		c.pending = compact(c.pending, pos)
	}()

	for c.inflight < cap(c.replies) && pos < len(c.pending) {
		v, next, err := resp.Decode(c.pending, pos)
		if err != nil {
			if resp.IsIncomplete(err) {
				return "", nil
			}
			c.srv.metrics.IncProtocolErrors()
			c.logger.Debug("protocol error", "error", err)
			return closeProtocol, domain.ErrProtocol.WithDetails(err.Error())
		}
		pos = next

		if err := c.wait(ctx); err != nil {
			return closeShutdown, nil
		}
		if err := c.srv.loop.Submit(ctx, c.id, v, c.replies); err != nil {
			return closeShutdown, nil
		}
		c.inflight++
	}
	return "", nil
}

// wait blocks until the rate limiter grants a token.
func (c *conn) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if c.limiter.Tokens() < 1 {
		c.srv.metrics.IncRateLimitWaits()
	}
	return c.limiter.Wait(ctx)
}

// collect encodes r and every other reply that is already available, so a
// pipelined burst is written with one flush.
func (c *conn) collect(r reply) {
	for {
		c.inflight--
		if r.err != nil {
			c.out = resp.AppendEncode(c.out, resp.Error(domain.ReplyText(r.err)))
		} else {
			c.out = resp.AppendEncode(c.out, r.value)
		}

		select {
		case r = <-c.replies:
		default:
			return
		}
	}
}

func (c *conn) flush() error {
	if len(c.out) == 0 {
		return nil
	}
	if t := c.srv.cfg.WriteTimeout; t > 0 {
		if err := c.netConn.SetWriteDeadline(time.Now().Add(t)); err != nil {
			return err
		}
	}
	_, err := c.netConn.Write(c.out)
	c.out = c.out[:0]
	return err
}

// readLoop copies socket reads to the actor until the socket fails.
func (c *conn) readLoop() {
	buf := make([]byte, c.srv.cfg.ReadBufferBytes)
	for {
		if t := c.srv.cfg.IdleTimeout; t > 0 {
			_ = c.netConn.SetReadDeadline(time.Now().Add(t))
		}

		n, err := c.netConn.Read(buf)
		var ch chunk
		switch {
		case n > 0:
			ch.data = append([]byte(nil), buf[:n]...)
		case err == nil:
			continue
		default:
			ch.err = err
		}

		select {
		case c.reads <- ch:
		case <-c.done:
			return
		}
		if ch.err != nil {
			return
		}
	}
}

func readCloseReason(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, io.EOF):
		return closeEOF
	case errors.As(err, &netErr) && netErr.Timeout():
		return closeIdle
	case errors.Is(err, net.ErrClosed):
		return closeShutdown
	default:
		return closeReadError
	}
}

// compact drops the first n bytes of buf, reusing its storage.
func compact(buf []byte, n int) []byte {
	if n == 0 {
		return buf
	}
	if n >= len(buf) {
		return buf[:0]
	}
	return buf[:copy(buf, buf[n:])]
}
