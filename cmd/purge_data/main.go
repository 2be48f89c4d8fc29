package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/example/facts/config"
	"github.com/example/facts/internal/influx"
	"github.com/example/facts/internal/jsonstore"
	"github.com/example/facts/internal/mirror"
	"github.com/example/facts/internal/record"
)

// purge_data is the external purge tool: outside the capped-retention
// eviction, it is the only way stored records are removed.
func main() {
	logger := log.New(os.Stdout, "[purge-data] ", log.LstdFlags)
	cfg := config.Load()

	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  purge_data all       - Purge all stored records (files, mirror, analytics)")
		fmt.Println("  purge_data sensor    - Purge telemetry records")
		fmt.Println("  purge_data activity  - Purge activity records")
		os.Exit(1)
	}

	var kinds []record.Kind
	switch os.Args[1] {
	case "all":
		kinds = []record.Kind{record.KindSensor, record.KindActivity}
	case "sensor":
		kinds = []record.Kind{record.KindSensor}
	case "activity":
		kinds = []record.Kind{record.KindActivity}
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		fmt.Println("Available commands: all, sensor, activity")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store := jsonstore.New(cfg.DataDir, cfg.MaxEntries, logger)
	mongo := mirror.New(ctx, cfg, logger)
	defer mongo.Close(ctx)

	for _, kind := range kinds {
		fmt.Printf("Purging %s records...\n", kind)
		if err := store.Purge(kind); err != nil {
			log.Fatalf("Failed to purge %s store file: %v", kind, err)
		}
		if mongo.Enabled() {
			if err := mongo.Purge(ctx, kind); err != nil {
				log.Fatalf("Failed to purge %s mirror collection: %v", kind, err)
			}
		}
		fmt.Printf("Purged %s records\n", kind)
	}

	if os.Args[1] == "all" && cfg.InfluxEnabled {
		exporter := influx.NewExporter(true, cfg.InfluxDBURL, cfg.InfluxDBToken, cfg.InfluxDBOrg, cfg.InfluxDBBucket, logger)
		defer exporter.Close()
		fmt.Println("Purging analytics bucket...")
		if err := exporter.DeleteAll(ctx); err != nil {
			log.Fatalf("Failed to purge analytics bucket: %v", err)
		}
		fmt.Println("Purged analytics bucket")
	}

	fmt.Println("Done")
}
