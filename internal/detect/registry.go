package detect

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/example/facts/internal/metrics"
)

// Registry resolves a category name to a loaded model handle. Models load
// on demand only; the first request for each category pays the load cost,
// and concurrent first requests are collapsed into a single load.
//
// When a category's artifact is missing or unreadable the registry falls
// back to the default category's model and caches the result under the
// requested key, so the failed load is not re-attempted and the fallback
// decision is logged once.
type Registry struct {
	modelDir        string
	defaultCategory string
	runtimeURL      string
	service         string
	logger          *log.Logger

	// newDetector builds the forward pass for a loaded descriptor.
	// Overridable in tests.
	newDetector func(Descriptor) Detector

	mu     sync.RWMutex
	models map[string]*Handle
	group  singleflight.Group
}

// NewRegistry creates a registry reading descriptors from modelDir.
// defaultCategory may be empty, in which case failed loads propagate as
// ErrModelUnavailable instead of falling back.
func NewRegistry(modelDir, defaultCategory, runtimeURL, service string, logger *log.Logger) *Registry {
	r := &Registry{
		modelDir:        modelDir,
		defaultCategory: defaultCategory,
		runtimeURL:      runtimeURL,
		service:         service,
		logger:          logger,
		models:          map[string]*Handle{},
	}
	r.newDetector = func(desc Descriptor) Detector {
		url := desc.RuntimeURL
		if url == "" {
			url = r.runtimeURL
		}
		return NewRuntimeDetector(url, desc)
	}
	return r
}

// Resolve returns the model handle for a category, loading it on first use.
func (r *Registry) Resolve(ctx context.Context, category string) (*Handle, error) {
	r.mu.RLock()
	handle, ok := r.models[category]
	r.mu.RUnlock()
	if ok {
		return handle, nil
	}

	v, err, _ := r.group.Do(category, func() (interface{}, error) {
		// A concurrent flight may have cached the handle between the
		// read above and entering the group.
		r.mu.RLock()
		handle, ok := r.models[category]
		r.mu.RUnlock()
		if ok {
			return handle, nil
		}

		handle, err := r.load(category)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.models[category] = handle
		r.mu.Unlock()
		return handle, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Handle), nil
}

// load loads the category's descriptor, degrading to the default category
// on failure.
func (r *Registry) load(category string) (*Handle, error) {
	handle, err := r.loadArtifact(category)
	if err == nil {
		metrics.RecordModelLoad(r.service, category, "success")
		r.logger.Printf("Model for %s loaded successfully", category)
		return handle, nil
	}

	metrics.RecordModelLoad(r.service, category, "error")
	r.logger.Printf("Failed to load model for %s: %v", category, err)

	if r.defaultCategory == "" || r.defaultCategory == category {
		return nil, fmt.Errorf("%w: %s", ErrModelUnavailable, category)
	}

	r.logger.Printf("Falling back to default model %s for category %s", r.defaultCategory, category)

	// Reuse an already-loaded default so all fallbacks share one instance.
	r.mu.RLock()
	fallback, ok := r.models[r.defaultCategory]
	r.mu.RUnlock()
	if !ok {
		fallback, err = r.loadArtifact(r.defaultCategory)
		if err != nil {
			metrics.RecordModelLoad(r.service, r.defaultCategory, "error")
			r.logger.Printf("Failed to load default model %s: %v", r.defaultCategory, err)
			return nil, fmt.Errorf("%w: %s", ErrModelUnavailable, category)
		}
		metrics.RecordModelLoad(r.service, r.defaultCategory, "success")
		r.mu.Lock()
		r.models[r.defaultCategory] = fallback
		r.mu.Unlock()
	}

	return &Handle{
		Category:   category,
		Descriptor: fallback.Descriptor,
		Detector:   fallback.Detector,
	}, nil
}

// loadArtifact reads and validates a category's descriptor file.
func (r *Registry) loadArtifact(category string) (*Handle, error) {
	path := r.ArtifactPath(category)
	r.logger.Printf("Loading model for %s from %s", category, path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrLoadError, err)
	}

	var desc Descriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadError, err)
	}
	if len(desc.Labels) == 0 {
		return nil, fmt.Errorf("%w: %s has no label table", ErrLoadError, path)
	}
	if desc.Name == "" {
		desc.Name = category
	}

	return &Handle{
		Category:   category,
		Descriptor: desc,
		Detector:   r.newDetector(desc),
	}, nil
}

// ArtifactPath returns the descriptor path for a category.
func (r *Registry) ArtifactPath(category string) string {
	return filepath.Join(r.modelDir, category+".json")
}

// ModelStatus describes one known category for the status endpoint.
type ModelStatus struct {
	Path      string `json:"path"`
	Available bool   `json:"available"`
	Loaded    bool   `json:"loaded"`
}

// Status reports every known category: descriptor files present in the
// model directory, the configured default, and everything already loaded.
func (r *Registry) Status() map[string]ModelStatus {
	known := map[string]struct{}{}
	if entries, err := os.ReadDir(r.modelDir); err == nil {
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !strings.HasSuffix(name, ".json") {
				continue
			}
			known[strings.TrimSuffix(name, ".json")] = struct{}{}
		}
	}
	if r.defaultCategory != "" {
		known[r.defaultCategory] = struct{}{}
	}

	r.mu.RLock()
	for category := range r.models {
		known[category] = struct{}{}
	}
	loaded := make(map[string]bool, len(r.models))
	for category := range r.models {
		loaded[category] = true
	}
	r.mu.RUnlock()

	status := make(map[string]ModelStatus, len(known))
	for category := range known {
		path := r.ArtifactPath(category)
		_, err := os.Stat(path)
		status[category] = ModelStatus{
			Path:      path,
			Available: err == nil,
			Loaded:    loaded[category],
		}
	}
	return status
}
