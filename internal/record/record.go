package record

import (
	"encoding/json"
	"errors"
	"time"
)

// Kind identifies one of the persisted record logs.
type Kind string

const (
	// KindSensor is the environmental telemetry log.
	KindSensor Kind = "sensor_data"
	// KindActivity is the vision activity log.
	KindActivity Kind = "cv_activity"
)

// ErrNotMapping is returned when an inbound body is not a JSON object.
var ErrNotMapping = errors.New("record: body is not a JSON object")

// Record is a single telemetry or activity record. The field set is open:
// beyond the timestamp and category core, nodes are free to send whatever
// readings they have.
type Record map[string]interface{}

// Parse decodes a request body into a Record. Anything that is not a JSON
// object is rejected.
func Parse(body []byte) (Record, error) {
	if len(body) == 0 {
		return nil, ErrNotMapping
	}
	var rec Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, ErrNotMapping
	}
	if rec == nil {
		return nil, ErrNotMapping
	}
	return rec, nil
}

// StampTimestamp adds a timestamp field when the record does not already
// carry one. The stamped value is RFC3339; explicit client timestamps are
// kept untouched.
func (r Record) StampTimestamp(now time.Time) {
	if _, ok := r["timestamp"]; !ok {
		r["timestamp"] = now.Format(time.RFC3339)
	}
}

// Timestamp returns the record's timestamp field as a string, or "" when
// absent or non-string.
func (r Record) Timestamp() string {
	if s, ok := r["timestamp"].(string); ok {
		return s
	}
	return ""
}

// Category returns the record's category tag, or "" when absent.
func (r Record) Category() string {
	if s, ok := r["category"].(string); ok {
		return s
	}
	return ""
}

// NumericFields returns the numeric readings of the record, excluding the
// core schema fields. Used by the analytics exporter.
func (r Record) NumericFields() map[string]float64 {
	fields := map[string]float64{}
	for key, value := range r {
		if key == "timestamp" || key == "category" {
			continue
		}
		switch v := value.(type) {
		case float64:
			fields[key] = v
		case int:
			fields[key] = float64(v)
		case int64:
			fields[key] = float64(v)
		}
	}
	return fields
}

// Clone returns a shallow copy of the record. Store adapters mutate their
// copy (e.g. timestamp coercion) without touching the shared original.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Marshal marshals a Record to JSON.
func Marshal(r Record) ([]byte, error) {
	return json.Marshal(r)
}
