package gateway

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

// settleInterval is how long a file must be quiet before it is scanned, so
// a file still being copied into the inbox is scanned once, complete.
const settleInterval = 500 * time.Millisecond

// WatchResult records the outcome of scanning a file from the inbox.
type WatchResult struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Status    string    `json:"status,omitempty"`
	Message   string    `json:"message,omitempty"`
	Error     string    `json:"error,omitempty"`
	ScannedAt time.Time `json:"scanned_at"`
}

// Watcher scans files created under an inbox directory and retains the most
// recent results in memory, newest first.
type Watcher struct {
	dir     string
	scanner Scanner
	max     int

	mu      sync.RWMutex
	results []WatchResult

	timersMu sync.Mutex
	timers   map[string]*time.Timer

	fsW    *fsnotify.Watcher
	cancel chan struct{}
}

// NewWatcher creates a watcher over dir keeping up to max results.
func NewWatcher(dir string, max int, scanner Scanner) *Watcher {
	return &Watcher{
		dir:     dir,
		scanner: scanner,
		max:     max,
		timers:  make(map[string]*time.Timer),
		cancel:  make(chan struct{}),
	}
}

// Start begins watching. Stop must be called to release the watcher.
func (w *Watcher) Start() error {
	fsW, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsW.Add(w.dir); err != nil {
		fsW.Close()
		return err
	}
	w.fsW = fsW
	go w.loop()
	return nil
}

// Stop ends watching and cancels pending scans.
func (w *Watcher) Stop() {
	close(w.cancel)
	if w.fsW != nil {
		w.fsW.Close()
	}
	w.timersMu.Lock()
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
	w.timersMu.Unlock()
}

// Results returns the retained scan results, newest first.
func (w *Watcher) Results() []WatchResult {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]WatchResult(nil), w.results...)
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.cancel:
			return
		case event, ok := <-w.fsW.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				w.schedule(event.Name)
			}
		case err, ok := <-w.fsW.Errors:
			if !ok {
				return
			}
			log.Printf("[Gateway] watch error: %v", err)
		}
	}
}

// schedule debounces per path: each event resets the settle timer.
func (w *Watcher) schedule(path string) {
	w.timersMu.Lock()
	defer w.timersMu.Unlock()

	if timer, ok := w.timers[path]; ok {
		timer.Reset(settleInterval)
		return
	}
	w.timers[path] = time.AfterFunc(settleInterval, func() {
		w.timersMu.Lock()
		delete(w.timers, path)
		w.timersMu.Unlock()
		w.scanFile(path)
	})
}

func (w *Watcher) scanFile(path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	res := WatchResult{
		ID:        uuid.NewString(),
		Path:      path,
		ScannedAt: time.Now().UTC(),
	}

	f, err := os.Open(path)
	if err != nil {
		res.Error = err.Error()
		w.record(res)
		return
	}
	defer f.Close()

	result, err := w.scanner.Scan(context.Background(), f)
	if err != nil {
		res.Error = err.Error()
	} else {
		res.Status = string(result.Status)
		res.Message = scanMessage(result)
		if result.IsInfected() {
			log.Printf("[Gateway] detection in %s: %s", filepath.Base(path), result.Found)
		}
	}
	w.record(res)
}

func (w *Watcher) record(res WatchResult) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.results = append([]WatchResult{res}, w.results...)
	if len(w.results) > w.max {
		w.results = w.results[:w.max]
	}
}
