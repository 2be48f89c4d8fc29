package detect

import (
	"context"
	"time"

	"github.com/example/facts/internal/vision"
)

// Detection is one normalized detection: bounding box as fractions of the
// source image dimensions (x, y, w, h from the top-left), confidence, and
// the resolved class label.
type Detection struct {
	BBox       [4]float64 `json:"bbox"`
	Confidence float64    `json:"confidence"`
	Class      string     `json:"class"`
}

// Result is the outcome of one inference run. Elapsed is wall-clock
// inference duration, reported alongside the detections for observability.
type Result struct {
	Detections []Detection
	Elapsed    time.Duration
}

// Run executes the model's forward pass on the frame and normalizes the raw
// detections. Detections keep the model's native order; no re-sorting and
// no thresholding beyond the model's own default. Zero detections is a
// valid, empty result.
//
// The frame's dimensions are trusted to be non-zero: the image codec
// rejects empty rasters before they get here.
func Run(ctx context.Context, frame *vision.Frame, handle *Handle) (*Result, error) {
	start := time.Now()
	raw, err := handle.Detector.Detect(ctx, frame)
	elapsed := time.Since(start)
	if err != nil {
		return nil, err
	}

	width := float64(frame.Width)
	height := float64(frame.Height)
	detections := make([]Detection, 0, len(raw))
	for _, pred := range raw {
		detections = append(detections, Detection{
			BBox: [4]float64{
				pred.X1 / width,
				pred.Y1 / height,
				(pred.X2 - pred.X1) / width,
				(pred.Y2 - pred.Y1) / height,
			},
			Confidence: pred.Confidence,
			Class:      handle.Descriptor.Label(pred.ClassID),
		})
	}

	return &Result{Detections: detections, Elapsed: elapsed}, nil
}
