package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	clamd "github.com/DevHatRo/clamd-sdk-go"
)

// Scanner is the slice of the clamd client the gateway needs.
// *clamd.Client satisfies it.
type Scanner interface {
	Ping(ctx context.Context) (bool, error)
	Scan(ctx context.Context, r io.Reader) (*clamd.ScanResult, error)
	SendCommand(ctx context.Context, command []byte) ([]byte, error)
}

// Server exposes the scan API over HTTP, backed by a clamd client.
type Server struct {
	cfg     *Config
	scanner Scanner
	watcher *Watcher
	engine  *gin.Engine
}

// NewServer creates the gateway server. Call Setup before Run.
func NewServer(cfg *Config, scanner Scanner) *Server {
	return &Server{cfg: cfg, scanner: scanner}
}

// SetWatcher attaches an inbox watcher whose results are served under
// /api/watch/results.
func (s *Server) SetWatcher(w *Watcher) {
	s.watcher = w
}

// Setup registers all routes.
func (s *Server) Setup() {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	api := r.Group("/api")
	{
		api.GET("/health-check", s.HealthCheck)
		api.GET("/version", s.Version)
		api.POST("/scan", s.Scan)
		api.POST("/stream-scan", s.StreamScan)
		api.GET("/watch/results", s.WatchResults)
	}

	s.engine = r
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run starts the HTTP server on addr.
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

// HealthCheck pings the daemon.
func (s *Server) HealthCheck(c *gin.Context) {
	ok, err := s.scanner.Ping(c.Request.Context())
	if err != nil || !ok {
		c.JSON(http.StatusBadGateway, gin.H{"message": "Clamd service unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// Version reports the daemon version string.
func (s *Server) Version(c *gin.Context) {
	raw, err := s.scanner.SendCommand(c.Request.Context(), clamd.EncodeCommand("VERSION", true))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"message": "Clamd service unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"version": strings.TrimRight(string(raw), "\x00\r\n "),
	})
}

// Scan handles a multipart file upload.
func (s *Server) Scan(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Provide a single file"})
		return
	}
	defer file.Close()

	s.scan(c, file, header.Filename)
}

// StreamScan handles a raw octet-stream body.
func (s *Server) StreamScan(c *gin.Context) {
	if c.Request.ContentLength <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Content-Length is required"})
		return
	}
	s.scan(c, c.Request.Body, "stream")
}

// WatchResults lists recent inbox watcher results.
func (s *Server) WatchResults(c *gin.Context) {
	if s.watcher == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "watch directory not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": s.watcher.Results()})
}

func (s *Server) scan(c *gin.Context, r io.Reader, filename string) {
	scanID := uuid.NewString()
	start := time.Now()

	result, err := s.scanner.Scan(c.Request.Context(), r)
	if err != nil {
		scanError(c, scanID, err)
		return
	}

	if result.Status == clamd.StatusErrorTooBig {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"status":  "ERROR",
			"message": result.Response,
			"scan_id": scanID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   string(result.Status),
		"message":  scanMessage(result),
		"time":     time.Since(start).Seconds(),
		"filename": filename,
		"scan_id":  scanID,
	})
}

// scanMessage picks the message field for a scan response: the detection
// name when infected, the raw daemon text when unrecognized, empty when
// clean.
func scanMessage(result *clamd.ScanResult) string {
	switch result.Status {
	case clamd.StatusFound:
		return result.Found
	case clamd.StatusUnknown:
		return result.Response
	default:
		return ""
	}
}

// scanError maps SDK errors to HTTP responses. An aborted scan is the
// daemon rejecting the stream, most commonly for size, so it maps to 413
// the same way a final size-limit verdict does.
func scanError(c *gin.Context, scanID string, err error) {
	switch {
	case clamd.IsAbortedError(err):
		message := err.Error()
		var e *clamd.Error
		if errors.As(err, &e) && e.Response != "" {
			message = e.Response
		}
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"status":  "ERROR",
			"message": message,
			"scan_id": scanID,
		})
	case clamd.IsTimeoutError(err):
		c.JSON(http.StatusGatewayTimeout, gin.H{
			"status":  "ERROR",
			"message": err.Error(),
			"scan_id": scanID,
		})
	default:
		c.JSON(http.StatusBadGateway, gin.H{
			"status":  "ERROR",
			"message": err.Error(),
			"scan_id": scanID,
		})
	}
}
