// Package gateway exposes a clamd daemon over HTTP.
//
// This sub-package depends on github.com/gin-gonic/gin, fsnotify, and uuid.
// If you only need the socket client, import the root package
// github.com/DevHatRo/clamd-sdk-go instead.
//
// The gateway serves scan endpoints backed by the clamd client:
//
//	GET  /api/health-check   ping the daemon
//	GET  /api/version        daemon version string
//	POST /api/scan           multipart file upload
//	POST /api/stream-scan    raw octet-stream body
//	GET  /api/watch/results  recent inbox watcher results
//
// Optionally it watches an inbox directory and scans every file dropped
// into it.
package gateway
