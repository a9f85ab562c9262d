package clamd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"os"
	"time"
)

// Dialer opens duplex byte streams to the daemon. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// session is one connection to the daemon, used for exactly one command
// exchange or one streaming scan and closed at the end of that operation.
type session struct {
	conn           net.Conn
	timeout        time.Duration
	readBufferSize int
}

// openSession dials the daemon. The caller must close the returned session
// on every exit path.
func (c *Client) openSession(ctx context.Context) (*session, error) {
	conn, err := c.dialer.DialContext(ctx, "tcp", c.addr())
	if err != nil {
		return nil, classifyNetError("failed to connect to clamd", err)
	}
	return &session{
		conn:           conn,
		timeout:        c.timeout,
		readBufferSize: c.readBufferSize,
	}, nil
}

// Close closes the underlying connection. It also unblocks any pending
// watch read.
func (s *session) Close() error {
	return s.conn.Close()
}

// write sends raw bytes to the daemon.
func (s *session) write(p []byte) error {
	if _, err := s.conn.Write(p); err != nil {
		return classifyNetError("failed to write to clamd", err)
	}
	return nil
}

// writeChunk sends one length-prefixed chunk frame.
func (s *session) writeChunk(p []byte) error {
	if err := writeChunk(s.conn, p); err != nil {
		return classifyNetError("failed to write chunk to clamd", err)
	}
	return nil
}

// readAll reads from the daemon until it closes its side, bounding each
// blocking read by the session timeout.
func (s *session) readAll() ([]byte, error) {
	var out bytes.Buffer
	buf := make([]byte, s.readBufferSize)
	for {
		if err := s.armTimeout(); err != nil {
			return nil, err
		}
		n, err := s.conn.Read(buf)
		out.Write(buf[:n])
		if errors.Is(err, io.EOF) {
			return out.Bytes(), nil
		}
		if err != nil {
			return nil, classifyNetError("failed to read from clamd", err)
		}
	}
}

// drain performs a best-effort read of whatever the daemon still has to say.
// Any error, including a timeout, ends the drain rather than failing it.
func (s *session) drain() []byte {
	var out bytes.Buffer
	buf := make([]byte, s.readBufferSize)
	for {
		if err := s.armTimeout(); err != nil {
			return out.Bytes()
		}
		n, err := s.conn.Read(buf)
		out.Write(buf[:n])
		if err != nil {
			return out.Bytes()
		}
	}
}

// respWatch carries the first bytes the daemon sends back on a session.
type respWatch struct {
	data []byte
	err  error
}

// watch starts a single background read of the daemon's first response
// bytes. INSTREAM uploads use it to notice an early verdict between chunk
// writes without blocking the upload: the daemon answers before the
// terminator when it aborts a scan. The read has no deadline; armTimeout
// bounds it once the upload is finished, and Close interrupts it.
func (s *session) watch() (<-chan respWatch, error) {
	if err := s.conn.SetReadDeadline(time.Time{}); err != nil {
		return nil, NewConnectionError("failed to clear read deadline", err)
	}
	ch := make(chan respWatch, 1)
	go func() {
		buf := make([]byte, s.readBufferSize)
		n, err := s.conn.Read(buf)
		ch <- respWatch{data: append([]byte(nil), buf[:n]...), err: err}
	}()
	return ch, nil
}

// armTimeout bounds the next read, including a pending watch read, by the
// session timeout.
func (s *session) armTimeout() error {
	if err := s.conn.SetReadDeadline(time.Now().Add(s.timeout)); err != nil {
		return NewConnectionError("failed to set read deadline", err)
	}
	return nil
}

// classifyNetError maps socket errors to SDK error types.
func classifyNetError(msg string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return NewTimeoutError(msg+": canceled", err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return NewTimeoutError(msg+": timed out", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewTimeoutError(msg+": timed out", err)
	}

	return NewConnectionError(msg, err)
}
