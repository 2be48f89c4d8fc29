package testutils

import (
	"io"
	"log"
	"os"
)

// TestLogger creates a logger for testing that can be silenced
func TestLogger(prefix string, silent bool) *log.Logger {
	if silent {
		return log.New(io.Discard, prefix, log.LstdFlags)
	}
	return log.New(os.Stdout, prefix, log.LstdFlags)
}

// SampleSensorRecord returns a telemetry record as a farm node would send it
func SampleSensorRecord() map[string]interface{} {
	return map[string]interface{}{
		"category":      "sapi",
		"temperature":   28.4,
		"humidity":      71.0,
		"air_quality":   42.0,
		"feed_distance": 12.5,
		"timestamp":     "2025-08-30T07:15:00Z",
	}
}

// SampleActivityRecord returns a vision activity record
func SampleActivityRecord() map[string]interface{} {
	return map[string]interface{}{
		"category":   "ayam",
		"activity":   "feeding",
		"confidence": 0.87,
		"timestamp":  "2025-08-30T07:16:00Z",
	}
}
