package connection

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/yndnr/kvmesh-go/pkg/resp"
)

// DefaultTimeout bounds dialing and each request.
const DefaultTimeout = 5 * time.Second

const readChunk = 4096

// ServerError is an error reply sent by the server.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}

// Code returns the error code of a "ERR <code> <message>" reply, if any.
func (e *ServerError) Code() string {
	fields := strings.Fields(e.Message)
	if len(fields) >= 2 && fields[0] == "ERR" {
		return fields[1]
	}
	return ""
}

// Client is a RESP client over one TCP connection. It is not safe for
// concurrent use.
type Client struct {
	addr    string
	conn    net.Conn
	timeout time.Duration
	buf     []byte
	out     []byte
}

// Dial connects to addr. A zero timeout uses DefaultTimeout.
func Dial(ctx context.Context, addr string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}
	return &Client{addr: addr, conn: conn, timeout: timeout}, nil
}

// Addr returns the server address.
func (c *Client) Addr() string {
	return c.addr
}

// Do sends one command and waits for its reply. An error reply is returned
// as a *ServerError together with the decoded value.
func (c *Client) Do(ctx context.Context, args ...string) (resp.Value, error) {
	if len(args) == 0 {
		return resp.Value{}, errors.New("empty command")
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return resp.Value{}, err
	}

	c.out = resp.AppendEncode(c.out[:0], resp.Command(args...))
	if _, err := c.conn.Write(c.out); err != nil {
		return resp.Value{}, fmt.Errorf("send: %w", err)
	}

	v, err := c.readReply()
	if err != nil {
		return resp.Value{}, err
	}
	if v.Kind == resp.KindError {
		return v, &ServerError{Message: v.Str}
	}
	return v, nil
}

// readReply reads until one complete reply is buffered.
func (c *Client) readReply() (resp.Value, error) {
	for {
		if len(c.buf) > 0 {
			v, next, err := resp.DecodeReply(c.buf, 0)
			if err == nil {
				c.buf = c.buf[:copy(c.buf, c.buf[next:])]
				return v, nil
			}
			if !resp.IsIncomplete(err) {
				return resp.Value{}, fmt.Errorf("decode reply: %w", err)
			}
		}

		chunk := make([]byte, readChunk)
		n, err := c.conn.Read(chunk)
		c.buf = append(c.buf, chunk[:n]...)
		if err != nil && n == 0 {
			return resp.Value{}, fmt.Errorf("receive: %w", err)
		}
	}
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
