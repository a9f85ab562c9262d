// Package testutil provides test helpers for the clamd-sdk-go SDK.
package testutil

import (
	"bytes"
	"encoding/binary"
	"io"
	"net"
	"strings"
	"sync"
)

// Config controls the fake daemon's behavior.
type Config struct {
	// MaxStreamSize, when > 0, makes INSTREAM reject streams that grow past
	// this many bytes with the size-limit response as soon as the limit is
	// crossed, without waiting for the terminator. This mirrors how clamd
	// enforces StreamMaxLength.
	MaxStreamSize int
	// Signatures maps detection names to byte patterns reported as FOUND
	// when they appear anywhere in the streamed data.
	Signatures map[string][]byte
	// Response, when set, is written verbatim as the INSTREAM verdict
	// instead of the computed one.
	Response []byte
}

// Server is an in-process fake clamd daemon on a real TCP socket.
// It answers PING and INSTREAM and replies UNKNOWN COMMAND to anything else.
type Server struct {
	cfg Config
	ln  net.Listener
	wg  sync.WaitGroup

	mu     sync.Mutex
	frames []int
}

// NewServer starts a fake daemon on a random localhost port.
// It panics if the listener cannot be created.
func NewServer(cfg Config) *Server {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		panic("testutil: failed to listen: " + err.Error())
	}
	s := &Server{cfg: cfg, ln: ln}
	s.wg.Add(1)
	go s.serve()
	return s
}

// Host returns the address the daemon listens on.
func (s *Server) Host() string {
	host, _, _ := net.SplitHostPort(s.ln.Addr().String())
	return host
}

// Port returns the port the daemon listens on.
func (s *Server) Port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

// Close stops the daemon and waits for in-flight connections to finish.
func (s *Server) Close() {
	s.ln.Close()
	s.wg.Wait()
}

// LastFrames returns the data-frame lengths of the most recent INSTREAM
// upload, terminator excluded.
func (s *Server) LastFrames() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.frames...)
}

func (s *Server) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(conn)
		}()
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	cmd, err := readCommand(conn)
	if err != nil {
		return
	}

	switch cmd {
	case "PING":
		conn.Write([]byte("PONG\x00"))
	case "INSTREAM":
		s.handleInstream(conn)
	default:
		conn.Write([]byte("UNKNOWN COMMAND\x00"))
	}
}

// readCommand reads one null-terminated command and strips the "z" framing
// prefix.
func readCommand(conn net.Conn) (string, error) {
	var cmd []byte
	buf := make([]byte, 1)
	for {
		if _, err := io.ReadFull(conn, buf); err != nil {
			return "", err
		}
		if buf[0] == 0 {
			break
		}
		cmd = append(cmd, buf[0])
	}
	return strings.TrimPrefix(string(cmd), "z"), nil
}

func (s *Server) handleInstream(conn net.Conn) {
	var data bytes.Buffer
	var frames []int

	defer func() {
		s.mu.Lock()
		s.frames = frames
		s.mu.Unlock()
	}()

	for {
		var prefix [4]byte
		if _, err := io.ReadFull(conn, prefix[:]); err != nil {
			return
		}
		n := binary.BigEndian.Uint32(prefix[:])
		if n == 0 {
			break
		}
		if _, err := io.CopyN(&data, conn, int64(n)); err != nil {
			return
		}
		frames = append(frames, int(n))

		if s.cfg.MaxStreamSize > 0 && data.Len() > s.cfg.MaxStreamSize {
			conn.Write([]byte("INSTREAM size limit exceeded. ERROR\x00"))
			// Consume the rest of the upload through the terminator so the
			// close is graceful: closing with unread data queued turns into
			// a TCP RST that discards the rejection from the client's
			// receive buffer before it is read.
			drainFrames(conn)
			return
		}
	}

	conn.Write(s.verdict(data.Bytes()))
}

// drainFrames discards chunk frames until the zero-length terminator or a
// read error.
func drainFrames(conn net.Conn) {
	for {
		var prefix [4]byte
		if _, err := io.ReadFull(conn, prefix[:]); err != nil {
			return
		}
		n := binary.BigEndian.Uint32(prefix[:])
		if n == 0 {
			return
		}
		if _, err := io.CopyN(io.Discard, conn, int64(n)); err != nil {
			return
		}
	}
}

func (s *Server) verdict(data []byte) []byte {
	if s.cfg.Response != nil {
		return s.cfg.Response
	}
	for name, pattern := range s.cfg.Signatures {
		if bytes.Contains(data, pattern) {
			return []byte("stream: " + name + " FOUND\x00")
		}
	}
	return []byte("stream: OK\x00")
}

// EicarSignatures returns a signature set matching the standard EICAR test
// string.
func EicarSignatures() map[string][]byte {
	return map[string][]byte{
		"Eicar-Test-Signature": []byte(`X5O!P%@AP[4\PZX54(P^)7CC)7}$EICAR-STANDARD-ANTIVIRUS-TEST-FILE!$H+H*`),
	}
}
