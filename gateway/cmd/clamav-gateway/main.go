package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	clamd "github.com/DevHatRo/clamd-sdk-go"
	"github.com/DevHatRo/clamd-sdk-go/gateway"
)

func main() {
	log.Println("[Gateway] Starting ClamAV scan gateway...")

	cfg := gateway.LoadConfig()

	client, err := clamd.NewClient(cfg.ClamdHost,
		clamd.WithPort(cfg.ClamdPort),
		clamd.WithTimeout(cfg.ScanTimeout),
		clamd.WithChunkSize(cfg.ChunkSize),
	)
	if err != nil {
		log.Fatalf("[Gateway] Failed to create clamd client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	ok, err := client.Ping(ctx)
	cancel()
	switch {
	case err != nil:
		log.Printf("[Gateway] clamd not answering at %s:%d: %v", cfg.ClamdHost, cfg.ClamdPort, err)
	case !ok:
		log.Printf("[Gateway] clamd at %s:%d gave an unexpected ping reply", cfg.ClamdHost, cfg.ClamdPort)
	default:
		log.Println("[Gateway] Connected to clamd")
	}

	srv := gateway.NewServer(cfg, client)
	srv.Setup()

	if cfg.WatchDir != "" {
		watcher := gateway.NewWatcher(cfg.WatchDir, cfg.WatchResults, client)
		if err := watcher.Start(); err != nil {
			log.Fatalf("[Gateway] Failed to watch %s: %v", cfg.WatchDir, err)
		}
		defer watcher.Stop()
		srv.SetWatcher(watcher)
		log.Printf("[Gateway] Watching inbox %s", cfg.WatchDir)
	}

	go func() {
		if err := srv.Run(cfg.ListenAddr); err != nil {
			log.Fatalf("[Gateway] Failed to start server: %v", err)
		}
	}()
	log.Printf("[Gateway] Server ready on %s", cfg.ListenAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("[Gateway] Shutting down...")
}
