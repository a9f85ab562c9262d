package clamd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"time"
)

const (
	defaultPort           = 3310
	defaultTimeout        = 1000 * time.Millisecond
	defaultChunkSize      = 4096
	defaultReadBufferSize = 128
)

// Client talks the clamd socket protocol over TCP.
// It is safe for concurrent use from multiple goroutines: every operation
// opens its own connection and shares no mutable state.
type Client struct {
	host           string
	port           int
	timeout        time.Duration
	chunkSize      int
	readBufferSize int
	dialer         Dialer
}

// NewClient creates a client for a clamd daemon.
// host is the daemon host name or IP; the port defaults to 3310.
func NewClient(host string, opts ...ClientOption) (*Client, error) {
	if host == "" {
		return nil, NewValidationError("host must not be empty", nil)
	}

	c := &Client{
		host:           host,
		port:           defaultPort,
		timeout:        defaultTimeout,
		chunkSize:      defaultChunkSize,
		readBufferSize: defaultReadBufferSize,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.dialer == nil {
		c.dialer = &net.Dialer{Timeout: c.timeout}
	}

	return c, nil
}

// addr returns the daemon's host:port address.
func (c *Client) addr() string {
	return net.JoinHostPort(c.host, strconv.Itoa(c.port))
}

// Ping checks that the daemon is up and answering commands.
func (c *Client) Ping(ctx context.Context) (bool, error) {
	return c.SendCommandExpect(ctx, cmdPing, rspPong)
}

// SendCommand sends a single command to the daemon and returns everything it
// wrote back, reading until the daemon closes its side. The command bytes
// must already be in wire form; see EncodeCommand.
func (c *Client) SendCommand(ctx context.Context, command []byte) ([]byte, error) {
	sess, err := c.openSession(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	if err := sess.write(command); err != nil {
		return nil, err
	}
	return sess.readAll()
}

// SendCommandExpect sends a command and compares the response byte-for-byte
// against an expected reply.
func (c *Client) SendCommandExpect(ctx context.Context, command, expected []byte) (bool, error) {
	resp, err := c.SendCommand(ctx, command)
	if err != nil {
		return false, err
	}
	return bytes.Equal(resp, expected), nil
}

// Scan streams r to the daemon and classifies the verdict.
func (c *Client) Scan(ctx context.Context, r io.Reader) (*ScanResult, error) {
	raw, err := c.ScanRaw(ctx, r)
	if err != nil {
		return nil, err
	}
	return newScanResult(raw), nil
}

// ScanFile scans in-memory file data.
func (c *Client) ScanFile(ctx context.Context, data []byte) (*ScanResult, error) {
	return c.Scan(ctx, bytes.NewReader(data))
}

// ScanFilePath reads a file from disk and scans it.
func (c *Client) ScanFilePath(ctx context.Context, filePath string) (*ScanResult, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("failed to open file: %s", filePath), err)
	}
	defer f.Close()

	return c.Scan(ctx, f)
}

// ScanRaw streams r to the daemon under the INSTREAM command and returns the
// raw response bytes.
//
// The data goes over in length-prefixed chunks so memory stays bounded for
// arbitrarily large inputs. After every chunk the session is checked for an
// early reply: the daemon answers before the terminator when it aborts a
// scan, most commonly because the stream crossed its configured size limit.
// An early reply surfaces as a scan_aborted error carrying the daemon's
// decoded message. If the daemon responds between the final chunk and the
// terminator, the reply is simply picked up by the normal response read and
// classifies as usual.
func (c *Client) ScanRaw(ctx context.Context, r io.Reader) ([]byte, error) {
	sess, err := c.openSession(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	if err := sess.write(cmdInstream); err != nil {
		return nil, err
	}

	respCh, err := sess.watch()
	if err != nil {
		return nil, err
	}

	buf := make([]byte, c.chunkSize)
	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			if err := sess.writeChunk(buf[:n]); err != nil {
				return nil, preferAbort(sess, respCh, err)
			}
			select {
			case first := <-respCh:
				return nil, abortError(sess, first)
			default:
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, NewConnectionError("failed to read scan source", readErr)
		}
	}

	if err := sess.write(cmdTerminate); err != nil {
		return nil, preferAbort(sess, respCh, err)
	}

	if err := sess.armTimeout(); err != nil {
		return nil, err
	}
	first := <-respCh

	switch {
	case first.err == nil:
		// More may follow; read until the daemon closes its side.
		rest, err := sess.readAll()
		if err != nil {
			return nil, err
		}
		return append(first.data, rest...), nil
	case errors.Is(first.err, io.EOF):
		return first.data, nil
	case len(first.data) > 0:
		return first.data, nil
	default:
		return nil, classifyNetError("failed to read clamd response", first.err)
	}
}

// preferAbort resolves a failed write during an upload. A write usually
// fails because the daemon already rejected the stream and closed the
// connection, in which case the verdict it sent beats the write error. The
// pending watch read settles promptly either way once the connection is
// dead, so wait for it, bounded by the session timeout.
func preferAbort(sess *session, respCh <-chan respWatch, writeErr error) error {
	select {
	case first := <-respCh:
		return abortError(sess, first)
	case <-time.After(sess.timeout):
		return writeErr
	}
}

// abortError builds the scan_aborted error for a premature daemon reply,
// draining whatever else the daemon has to say into the error message.
func abortError(sess *session, first respWatch) error {
	if first.err != nil && len(first.data) == 0 && !errors.Is(first.err, io.EOF) {
		return classifyNetError("failed to read from clamd", first.err)
	}
	msg := first.data
	if first.err == nil {
		msg = append(msg, sess.drain()...)
	}
	return NewAbortedError("scan aborted prematurely by clamd", decodeResponse(msg))
}
