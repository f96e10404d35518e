// Command server runs the interest profiler service: the synchronous
// build API, profile fetch with cache read-through, and the snapshot
// consumer when kafka brokers are configured.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/solistra/profiler/internal/app"
	"github.com/solistra/profiler/internal/config"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize profiler service: %v", err)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: application.Router(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	log.Printf("Profiler service listening on :%s (snapshot consumer: %t)",
		cfg.Server.Port, len(cfg.Kafka.Brokers) > 0)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutdown signal received, draining...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Stop accepting requests before tearing down the consumer and stores.
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("HTTP server forced to stop: %v", err)
	}
	if err := application.Shutdown(ctx); err != nil {
		log.Printf("Error during service shutdown: %v", err)
	}

	log.Println("Profiler service stopped")
}
