package latest

import (
	"context"
	"testing"

	"github.com/example/facts/internal/record"
	"github.com/example/facts/internal/testutils"
)

func TestDisabledCache(t *testing.T) {
	cache := New(false, "", testutils.TestLogger("[latest-test] ", true))

	if cache.Enabled() {
		t.Error("Expected cache to be disabled")
	}

	// All operations are no-ops on a disabled cache.
	cache.Set(context.Background(), record.KindSensor, record.Record{"temperature": 28.4})
	if got := cache.Get(context.Background(), record.KindSensor, ""); got != nil {
		t.Errorf("Expected nil from disabled cache, got %v", got)
	}
	if got := cache.Status(context.Background()); got != "disabled" {
		t.Errorf("Expected status 'disabled', got %q", got)
	}
	if err := cache.Close(); err != nil {
		t.Errorf("Close on disabled cache should be a no-op, got %v", err)
	}
}

func TestKeyLayout(t *testing.T) {
	tests := []struct {
		kind     record.Kind
		category string
		expected string
	}{
		{record.KindSensor, "all", "facts:latest:sensor_data:all"},
		{record.KindActivity, "sapi", "facts:latest:cv_activity:sapi"},
	}

	for _, tt := range tests {
		if got := key(tt.kind, tt.category); got != tt.expected {
			t.Errorf("Expected key %q, got %q", tt.expected, got)
		}
	}
}
