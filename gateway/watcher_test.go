package gateway

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	clamd "github.com/DevHatRo/clamd-sdk-go"
)

// waitForResults polls until the watcher has n results or the deadline hits.
func waitForResults(t *testing.T, w *Watcher, n int) []WatchResult {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		results := w.Results()
		if len(results) >= n {
			return results
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("watcher never produced %d results, have %d", n, len(w.Results()))
	return nil
}

func TestWatcherScansNewFiles(t *testing.T) {
	dir := t.TempDir()
	scanner := &fakeScanner{
		result: &clamd.ScanResult{Response: "stream: OK", Status: clamd.StatusOK},
	}

	w := NewWatcher(dir, 10, scanner)
	if err := w.Start(); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "incoming.bin")
	if err := os.WriteFile(path, []byte("dropped file"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	results := waitForResults(t, w, 1)
	if results[0].Path != path {
		t.Errorf("Path = %q, want %q", results[0].Path, path)
	}
	if results[0].Status != "OK" {
		t.Errorf("Status = %q, want OK", results[0].Status)
	}
	if results[0].ID == "" {
		t.Error("expected a result ID")
	}
	if string(scanner.gotData) != "dropped file" {
		t.Errorf("scanned data = %q", scanner.gotData)
	}
}

func TestWatcherRecordsScanErrors(t *testing.T) {
	dir := t.TempDir()
	scanner := &fakeScanner{
		scanErr: clamd.NewConnectionError("failed to connect to clamd", nil),
	}

	w := NewWatcher(dir, 10, scanner)
	if err := w.Start(); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "f.bin"), []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	results := waitForResults(t, w, 1)
	if results[0].Error == "" {
		t.Error("expected an error to be recorded")
	}
}

func TestWatcherCapsResults(t *testing.T) {
	w := NewWatcher(t.TempDir(), 2, &fakeScanner{})
	w.record(WatchResult{ID: "1"})
	w.record(WatchResult{ID: "2"})
	w.record(WatchResult{ID: "3"})

	results := w.Results()
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].ID != "3" || results[1].ID != "2" {
		t.Errorf("results = %v, want newest first capped at 2", results)
	}
}

func TestWatcherMissingDir(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "missing"), 10, &fakeScanner{})
	if err := w.Start(); err == nil {
		w.Stop()
		t.Fatal("expected error for missing directory")
	}
}
