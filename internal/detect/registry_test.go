package detect

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/facts/internal/testutils"
	"github.com/example/facts/internal/vision"
)

// stubDetector is a no-op forward pass for registry tests.
type stubDetector struct{}

func (stubDetector) Detect(ctx context.Context, frame *vision.Frame) ([]RawDetection, error) {
	return nil, nil
}

func writeDescriptor(t *testing.T, dir, category string, labels []string) {
	t.Helper()
	data, err := json.Marshal(Descriptor{Name: category, Labels: labels, Weights: category + ".pt"})
	if err != nil {
		t.Fatalf("Failed to marshal descriptor: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, category+".json"), data, 0o644); err != nil {
		t.Fatalf("Failed to write descriptor: %v", err)
	}
}

// newTestRegistry returns a registry whose detector factory counts loads
// and can be slowed down to widen concurrency windows.
func newTestRegistry(t *testing.T, dir, defaultCategory string, loadDelay time.Duration) (*Registry, *int32) {
	t.Helper()
	r := NewRegistry(dir, defaultCategory, "http://localhost:8500", "test", testutils.TestLogger("[detect-test] ", true))
	var loads int32
	r.newDetector = func(desc Descriptor) Detector {
		if loadDelay > 0 {
			time.Sleep(loadDelay)
		}
		atomic.AddInt32(&loads, 1)
		return stubDetector{}
	}
	return r, &loads
}

func TestResolveCachesHandle(t *testing.T) {
	dir := testutils.TempDir(t, "models")
	writeDescriptor(t, dir, "sapi", []string{"sapi"})
	registry, loads := newTestRegistry(t, dir, "", 0)

	first, err := registry.Resolve(context.Background(), "sapi")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	second, err := registry.Resolve(context.Background(), "sapi")
	if err != nil {
		t.Fatalf("Second resolve failed: %v", err)
	}

	if first != second {
		t.Error("Expected cached handle on second resolve")
	}
	if got := atomic.LoadInt32(loads); got != 1 {
		t.Errorf("Expected exactly one load, got %d", got)
	}
	if first.Descriptor.Labels[0] != "sapi" {
		t.Errorf("Expected sapi label table, got %v", first.Descriptor.Labels)
	}
}

func TestSingleFlightLoad(t *testing.T) {
	dir := testutils.TempDir(t, "models")
	writeDescriptor(t, dir, "sapi", []string{"sapi"})
	registry, loads := newTestRegistry(t, dir, "", 20*time.Millisecond)

	const callers = 16
	handles := make([]*Handle, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handle, err := registry.Resolve(context.Background(), "sapi")
			if err != nil {
				t.Errorf("Resolve %d failed: %v", i, err)
				return
			}
			handles[i] = handle
		}(i)
	}
	wg.Wait()

	if got := atomic.LoadInt32(loads); got != 1 {
		t.Errorf("Expected exactly one load under concurrent resolve, got %d", got)
	}
	for i := 1; i < callers; i++ {
		if handles[i] != handles[0] {
			t.Fatalf("Caller %d received a different handle", i)
		}
	}
}

func TestFallbackToDefault(t *testing.T) {
	dir := testutils.TempDir(t, "models")
	writeDescriptor(t, dir, "yolov5s", []string{"cow", "chicken", "goat"})
	registry, loads := newTestRegistry(t, dir, "yolov5s", 0)

	handle, err := registry.Resolve(context.Background(), "kambing")
	if err != nil {
		t.Fatalf("Expected fallback resolve to succeed, got %v", err)
	}
	if handle.Category != "kambing" {
		t.Errorf("Expected handle keyed by requested category, got %q", handle.Category)
	}
	if handle.Descriptor.Name != "yolov5s" {
		t.Errorf("Expected default descriptor, got %q", handle.Descriptor.Name)
	}

	// Repeated resolves must not re-attempt the failed load.
	again, err := registry.Resolve(context.Background(), "kambing")
	if err != nil {
		t.Fatalf("Second fallback resolve failed: %v", err)
	}
	if again != handle {
		t.Error("Expected the same fallback handle on every call")
	}
	if got := atomic.LoadInt32(loads); got != 1 {
		t.Errorf("Expected exactly one load (the default), got %d", got)
	}

	// The default category shares the fallback's detector instance.
	def, err := registry.Resolve(context.Background(), "yolov5s")
	if err != nil {
		t.Fatalf("Default resolve failed: %v", err)
	}
	if def.Detector != handle.Detector {
		t.Error("Expected fallback handle to share the default detector")
	}
}

func TestResolveCorruptDescriptorFallsBack(t *testing.T) {
	dir := testutils.TempDir(t, "models")
	writeDescriptor(t, dir, "yolov5s", []string{"cow"})
	if err := os.WriteFile(filepath.Join(dir, "sapi.json"), []byte("{broken"), 0o644); err != nil {
		t.Fatalf("Failed to write corrupt descriptor: %v", err)
	}
	registry, _ := newTestRegistry(t, dir, "yolov5s", 0)

	handle, err := registry.Resolve(context.Background(), "sapi")
	if err != nil {
		t.Fatalf("Expected corrupt descriptor to degrade to fallback, got %v", err)
	}
	if handle.Descriptor.Name != "yolov5s" {
		t.Errorf("Expected default descriptor, got %q", handle.Descriptor.Name)
	}
}

func TestResolveNoFallback(t *testing.T) {
	tests := []struct {
		name            string
		defaultCategory string
		category        string
	}{
		{"No default configured", "", "sapi"},
		{"Default is the failed category", "sapi", "sapi"},
		{"Default also missing", "yolov5s", "sapi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := testutils.TempDir(t, "models")
			registry, _ := newTestRegistry(t, dir, tt.defaultCategory, 0)

			_, err := registry.Resolve(context.Background(), tt.category)
			if !errors.Is(err, ErrModelUnavailable) {
				t.Errorf("Expected ErrModelUnavailable, got %v", err)
			}
		})
	}
}

func TestLoadArtifactErrors(t *testing.T) {
	dir := testutils.TempDir(t, "models")
	if err := os.WriteFile(filepath.Join(dir, "empty.json"), []byte(`{"name":"empty","labels":[]}`), 0o644); err != nil {
		t.Fatalf("Failed to write descriptor: %v", err)
	}
	registry, _ := newTestRegistry(t, dir, "", 0)

	if _, err := registry.loadArtifact("missing"); !errors.Is(err, ErrArtifactNotFound) {
		t.Errorf("Expected ErrArtifactNotFound for missing file, got %v", err)
	}
	if _, err := registry.loadArtifact("empty"); !errors.Is(err, ErrLoadError) {
		t.Errorf("Expected ErrLoadError for empty label table, got %v", err)
	}
}

func TestStatus(t *testing.T) {
	dir := testutils.TempDir(t, "models")
	writeDescriptor(t, dir, "sapi", []string{"sapi"})
	writeDescriptor(t, dir, "ayam", []string{"ayam"})
	registry, _ := newTestRegistry(t, dir, "yolov5s", 0)

	if _, err := registry.Resolve(context.Background(), "sapi"); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	status := registry.Status()

	sapi, ok := status["sapi"]
	if !ok {
		t.Fatal("Expected sapi in status")
	}
	if !sapi.Available || !sapi.Loaded {
		t.Errorf("Expected sapi available and loaded, got %+v", sapi)
	}

	ayam, ok := status["ayam"]
	if !ok {
		t.Fatal("Expected ayam in status")
	}
	if !ayam.Available || ayam.Loaded {
		t.Errorf("Expected ayam available but not loaded, got %+v", ayam)
	}

	def, ok := status["yolov5s"]
	if !ok {
		t.Fatal("Expected configured default in status")
	}
	if def.Available || def.Loaded {
		t.Errorf("Expected missing default to be unavailable, got %+v", def)
	}
}
