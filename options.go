package clamd

import "time"

// ClientOption configures the client.
type ClientOption func(*Client)

// WithPort sets the daemon TCP port (default 3310).
// Non-positive ports are ignored (no-op).
func WithPort(port int) ClientOption {
	return func(c *Client) {
		if port > 0 {
			c.port = port
		}
	}
}

// WithTimeout sets the timeout applied to every blocking read on the daemon
// connection (default 1s). There is no separate write timeout.
// Non-positive durations are ignored (no-op).
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithChunkSize sets the buffer size used when streaming scan data to the
// daemon (default 4096). A larger buffer can speed up large scans, but must
// not exceed the maximum chunk size the daemon is configured to accept.
func WithChunkSize(size int) ClientOption {
	return func(c *Client) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithReadBufferSize sets the buffer size used when reading daemon responses
// (default 128). Responses are only a few bytes long, so this rarely needs
// raising.
func WithReadBufferSize(size int) ClientOption {
	return func(c *Client) {
		if size > 0 {
			c.readBufferSize = size
		}
	}
}

// WithDialer sets the dialer used to open daemon connections. The default is
// a plain TCP net.Dialer; callers with custom transports can substitute
// their own.
func WithDialer(d Dialer) ClientOption {
	return func(c *Client) {
		if d != nil {
			c.dialer = d
		}
	}
}
