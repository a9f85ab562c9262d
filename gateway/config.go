package gateway

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the scan gateway.
type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string
	// ClamdHost and ClamdPort locate the daemon.
	ClamdHost string
	ClamdPort int
	// ScanTimeout bounds each blocking read on the daemon connection.
	ScanTimeout time.Duration
	// ChunkSize is the upload chunk size for streaming scans.
	ChunkSize int
	// WatchDir, when set, is an inbox directory whose new files are scanned
	// automatically.
	WatchDir string
	// WatchResults caps how many recent watcher results are retained.
	WatchResults int
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		ListenAddr:   getEnv("GATEWAY_ADDR", ":6000"),
		ClamdHost:    getEnv("CLAMD_HOST", "localhost"),
		ClamdPort:    getEnvAsInt("CLAMD_PORT", 3310),
		ScanTimeout:  time.Duration(getEnvAsInt("SCAN_TIMEOUT_MS", 30000)) * time.Millisecond,
		ChunkSize:    getEnvAsInt("SCAN_CHUNK_SIZE", 4096),
		WatchDir:     getEnv("WATCH_DIR", ""),
		WatchResults: getEnvAsInt("WATCH_RESULTS", 100),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
