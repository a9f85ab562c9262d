//go:build integration

package clamd

import (
	"bytes"
	"context"
	"os"
	"strconv"
	"testing"
	"time"
)

func integrationClient(t *testing.T) *Client {
	t.Helper()

	host := os.Getenv("CLAMD_HOST")
	if host == "" {
		host = "localhost"
	}
	opts := []ClientOption{WithTimeout(60 * time.Second)}
	if p := os.Getenv("CLAMD_PORT"); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			t.Fatalf("invalid CLAMD_PORT: %v", err)
		}
		opts = append(opts, WithPort(port))
	}

	client, err := NewClient(host, opts...)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

func TestIntegrationPing(t *testing.T) {
	client := integrationClient(t)

	ok, err := client.Ping(context.Background())
	if err != nil {
		t.Fatalf("Ping error: %v", err)
	}
	if !ok {
		t.Error("expected pong")
	}
}

func TestIntegrationScanClean(t *testing.T) {
	client := integrationClient(t)

	data := []byte("This is a clean test file with no malicious content.")
	result, err := client.ScanFile(context.Background(), data)
	if err != nil {
		t.Fatalf("ScanFile error: %v", err)
	}
	if !result.IsClean() {
		t.Errorf("expected clean, got status %q response %q", result.Status, result.Response)
	}
	t.Logf("Scan result: status=%s", result.Status)
}

func TestIntegrationScanEicar(t *testing.T) {
	client := integrationClient(t)

	result, err := client.ScanFile(context.Background(), EICAR)
	if err != nil {
		t.Fatalf("ScanFile error: %v", err)
	}
	if !result.IsInfected() {
		t.Errorf("expected infected, got status %q", result.Status)
	}
	if result.Found == "" {
		t.Error("expected a detection name")
	}
	t.Logf("Scan result: status=%s, found=%s", result.Status, result.Found)
}

func TestIntegrationScanOversized(t *testing.T) {
	client := integrationClient(t)

	// Push well past clamd's default 100MB StreamMaxLength. The daemon may
	// reject mid-upload (aborted error) or with the final response.
	data := bytes.Repeat([]byte("oversized "), 11*1024*1024)
	result, err := client.ScanFile(context.Background(), data)
	if err != nil {
		if !IsAbortedError(err) {
			t.Fatalf("expected aborted error, got: %v", err)
		}
		t.Logf("daemon aborted mid-upload: %v", err)
		return
	}
	if result.Status != StatusErrorTooBig {
		t.Errorf("expected %q, got %q (response %q)", StatusErrorTooBig, result.Status, result.Response)
	}
}
