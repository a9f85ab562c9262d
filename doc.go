// Package clamd provides a Go SDK for the ClamAV daemon (clamd) socket protocol.
//
// This package speaks the clamd wire protocol directly over TCP: commands are
// ASCII with null-terminated framing, and scan data is streamed to the daemon
// in length-prefixed chunks under the INSTREAM command. It has zero external
// runtime dependencies (stdlib only).
//
// Every operation opens its own connection to the daemon and closes it before
// returning. There is no pooling, retrying, or multiplexing.
//
// For an HTTP front end over this client, see the sub-package
// github.com/DevHatRo/clamd-sdk-go/gateway.
//
// # Quick Start
//
//	client, err := clamd.NewClient("localhost")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := client.ScanFilePath(ctx, "/path/to/file.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Status: %s, Infected: %v\n", result.Status, result.IsInfected())
package clamd
