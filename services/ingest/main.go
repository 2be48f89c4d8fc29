package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/facts/config"
	"github.com/example/facts/internal/metrics"
)

// @title FACTS Ingestion API
// @version 1.0
// @description Ingestion and detection API for the FACTS livestock monitoring system.

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:5000
// @BasePath /
func main() {
	logger := log.New(os.Stdout, "[ingest-service] ", log.LstdFlags)

	// Initialize Prometheus metrics
	metrics.InitMetrics(serviceName)
	logger.Println("Prometheus metrics initialized")

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	service, err := NewIngestService(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.Fatalf("Failed to initialize ingest service: %v", err)
	}

	logger.Printf("Data directory: %s (max entries: %d)", cfg.DataDir, cfg.MaxEntries)
	logger.Printf("MongoDB mirroring: %v", service.mirror.Enabled())
	logger.Printf("Model directory: %s (default model: %s)", cfg.ModelDir, cfg.DefaultModel)
	for category, status := range service.registry.Status() {
		if status.Available {
			logger.Printf("Found model: %s at %s", category, status.Path)
		} else {
			logger.Printf("Model for %s not found at %s", category, status.Path)
		}
	}

	server := &http.Server{
		Addr:    cfg.Host + ":" + cfg.Port,
		Handler: service.Routes(),
	}

	go func() {
		logger.Printf("Starting server on %s", server.Addr)
		logger.Println("Available endpoints:")
		logger.Println("  GET  /                    - Liveness")
		logger.Println("  GET  /health              - Health check")
		logger.Println("  GET  /metrics             - Prometheus metrics")
		logger.Println("  GET  /swagger/            - Swagger UI documentation")
		logger.Println("  POST /sensor-data         - Submit telemetry record")
		logger.Println("  GET  /sensor-data         - Read recent telemetry records")
		logger.Println("  POST /cv-activity         - Submit activity record")
		logger.Println("  GET  /cv-activity         - Read recent activity records")
		logger.Println("  POST /detect              - Run object detection")
		logger.Println("  GET  /status              - Service and backend status")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Println("Shutting down ingest service...")
	metrics.SetServiceHealth(serviceName, false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("HTTP server shutdown error: %v", err)
	}
	service.Close(shutdownCtx)
}
