package clamd

import (
	"encoding/binary"
	"io"
)

// Wire constants for the clamd socket protocol. Outgoing commands carry a
// leading "z" telling the daemon the session uses null-terminated framing;
// both outgoing commands and expected responses end with a single NUL byte.
var (
	cmdPing           = EncodeCommand("PING", true)
	rspPong           = EncodeCommand("PONG", false)
	cmdInstream       = EncodeCommand("INSTREAM", true)
	rspUnknownCommand = EncodeCommand("UNKNOWN COMMAND", false)
)

// cmdTerminate is the zero-length chunk frame that ends an INSTREAM upload.
// It is not a text terminator: it is a chunk frame whose 4-byte length prefix
// is zero and which carries no payload.
var cmdTerminate = []byte{0, 0, 0, 0}

// EICAR is the standard antivirus test signature. It is not malware, but
// every scanning engine reports it as a detection, which makes it useful for
// verifying that a daemon is actually scanning.
var EICAR = []byte(`X5O!P%@AP[4\PZX54(P^)7CC)7}$EICAR-STANDARD-ANTIVIRUS-TEST-FILE!$H+H*`)

// EncodeCommand builds the ASCII wire form of a clamd command. Pass outgoing
// true for commands sent to the daemon and false for expected responses.
//
//	EncodeCommand("PING", true)  // "zPING\x00"
//	EncodeCommand("PONG", false) // "PONG\x00"
func EncodeCommand(command string, outgoing bool) []byte {
	if outgoing {
		return []byte("z" + command + "\x00")
	}
	return []byte(command + "\x00")
}

// writeChunk writes one INSTREAM chunk frame: a 4-byte big-endian unsigned
// length prefix followed by exactly len(p) payload bytes.
func writeChunk(w io.Writer, p []byte) error {
	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(p)))
	if _, err := w.Write(prefix[:]); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	_, err := w.Write(p)
	return err
}
