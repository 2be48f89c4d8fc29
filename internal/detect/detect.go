package detect

import (
	"context"
	"errors"

	"github.com/example/facts/internal/vision"
)

var (
	// ErrModelUnavailable is returned when no usable model exists for a
	// category and no fallback is configured.
	ErrModelUnavailable = errors.New("detect: no usable model for category")
	// ErrArtifactNotFound is returned when a category has no descriptor file.
	ErrArtifactNotFound = errors.New("detect: model artifact not found")
	// ErrLoadError is returned when a descriptor file exists but cannot be
	// loaded.
	ErrLoadError = errors.New("detect: model artifact unreadable")
)

// RawDetection is one detection as emitted by a model: absolute pixel
// corners, confidence, and a class index into the model's label table.
type RawDetection struct {
	X1         float64 `json:"x1"`
	Y1         float64 `json:"y1"`
	X2         float64 `json:"x2"`
	Y2         float64 `json:"y2"`
	Confidence float64 `json:"confidence"`
	ClassID    int     `json:"class_id"`
}

// Detector is the opaque forward pass: image in, raw detections out. Any
// confidence thresholding is the model's own default; this layer applies
// none.
type Detector interface {
	Detect(ctx context.Context, frame *vision.Frame) ([]RawDetection, error)
}

// Descriptor is the model artifact: a JSON file per category naming the
// weights, the label table, and the inference runtime serving the model.
type Descriptor struct {
	Name          string   `json:"name"`
	Labels        []string `json:"labels"`
	Weights       string   `json:"weights"`
	RuntimeURL    string   `json:"runtime_url,omitempty"`
	ConfThreshold float64  `json:"conf_threshold,omitempty"`
}

// Label resolves a class index to a human-readable label. Indexes outside
// the table keep a synthetic class_<id> name rather than failing the
// detection.
func (d Descriptor) Label(classID int) string {
	if classID >= 0 && classID < len(d.Labels) {
		return d.Labels[classID]
	}
	return syntheticLabel(classID)
}

// Handle is a loaded, category-keyed model instance. Owned by the Registry;
// never mutated after load.
type Handle struct {
	Category   string
	Descriptor Descriptor
	Detector   Detector
}
