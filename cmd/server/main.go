// Command main is the entry point for the Snapgram API server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"snapgram/internal/config"
	"snapgram/internal/middleware"
	"snapgram/internal/observability"
	"snapgram/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.SetupLogger(cfg.Env, os.Stdout)

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   1,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	srv, err := server.NewServer(initCtx, cfg)
	cancelInit()
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exitCode := 0
	if err := srv.Run(ctx, shutdownTimeout); err != nil {
		log.Printf("Server error: %v", err)
		exitCode = 1
	}

	tracingCtx, cancelTracing := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelTracing()
	if err := shutdownTracing(tracingCtx); err != nil {
		log.Printf("Tracing shutdown error: %v", err)
	}

	log.Println("Server stopped")
	if exitCode != 0 {
		stop()
		cancelTracing()
		os.Exit(exitCode)
	}
}
