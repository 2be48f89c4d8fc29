package influx

import (
	"context"
	"log"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"

	"github.com/example/facts/internal/record"
)

// Exporter pushes numeric telemetry readings to InfluxDB for downstream
// charting and analytics. The export sits outside the dual-write contract:
// it is best-effort, never reported in ingest responses, and never aborts a
// request.
type Exporter struct {
	client  influxdb2.Client
	org     string
	bucket  string
	logger  *log.Logger
	enabled bool
}

// NewExporter creates the exporter. When disabled, all operations are no-ops.
func NewExporter(enabled bool, url, token, org, bucket string, logger *log.Logger) *Exporter {
	e := &Exporter{org: org, bucket: bucket, logger: logger}
	if !enabled {
		return e
	}
	e.client = influxdb2.NewClient(url, token)
	e.enabled = true
	logger.Printf("Analytics export enabled to InfluxDB at %s (bucket=%s)", url, bucket)
	return e
}

// Enabled reports whether analytics export is configured.
func (e *Exporter) Enabled() bool {
	return e.enabled
}

// ExportTelemetry writes one point per numeric field of rec, tagged with the
// record's category. The point timestamp is the record timestamp when
// parseable, otherwise receipt time.
func (e *Exporter) ExportTelemetry(ctx context.Context, rec record.Record) {
	if !e.enabled {
		return
	}
	fields := rec.NumericFields()
	if len(fields) == 0 {
		return
	}

	ts := time.Now()
	if s := rec.Timestamp(); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			ts = t
		}
	}

	writeAPI := e.client.WriteAPIBlocking(e.org, e.bucket)
	for name, value := range fields {
		p := influxdb2.NewPoint(
			name,
			map[string]string{
				"category": rec.Category(),
			},
			map[string]interface{}{
				"value": value,
			},
			ts,
		)
		if err := writeAPI.WritePoint(ctx, p); err != nil {
			e.logger.Printf("Failed to export %s to InfluxDB: %v", name, err)
			return
		}
	}
}

// Status reports exporter reachability: "disabled", "connected", or an error
// description.
func (e *Exporter) Status(ctx context.Context) string {
	if !e.enabled {
		return "disabled"
	}
	if ok, err := e.client.Ping(ctx); err != nil || !ok {
		if err != nil {
			return "error: " + err.Error()
		}
		return "error: ping failed"
	}
	return "connected"
}

// DeleteAll removes every point in the bucket. Used by the purge CLI.
func (e *Exporter) DeleteAll(ctx context.Context) error {
	if !e.enabled {
		return nil
	}
	start := time.Unix(0, 0)
	stop := time.Now().Add(time.Hour)
	return e.client.DeleteAPI().DeleteWithName(ctx, e.org, e.bucket, start, stop, "")
}

// Close flushes and releases the underlying client.
func (e *Exporter) Close() {
	if e.client != nil {
		e.client.Close()
	}
}
