package detect

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/example/facts/internal/vision"
)

// RuntimeDetector runs the forward pass on an external inference runtime
// over HTTP. The runtime owns the model internals; this client just ships
// the captured image and reads back raw absolute-pixel detections.
type RuntimeDetector struct {
	url    string
	desc   Descriptor
	client *http.Client
}

type predictRequest struct {
	Image         string  `json:"image"`
	Model         string  `json:"model"`
	ConfThreshold float64 `json:"conf_threshold,omitempty"`
}

type predictResponse struct {
	Detections []RawDetection `json:"detections"`
	Error      string         `json:"error,omitempty"`
}

// NewRuntimeDetector creates a detector backed by the runtime at url.
func NewRuntimeDetector(url string, desc Descriptor) *RuntimeDetector {
	return &RuntimeDetector{
		url:    strings.TrimRight(url, "/"),
		desc:   desc,
		client: http.DefaultClient,
	}
}

// Detect posts the frame to the runtime's predict endpoint. No deadline is
// imposed here; callers bound latency through the request context.
func (d *RuntimeDetector) Detect(ctx context.Context, frame *vision.Frame) ([]RawDetection, error) {
	model := d.desc.Weights
	if model == "" {
		model = d.desc.Name
	}
	payload, err := json.Marshal(predictRequest{
		Image:         base64.StdEncoding.EncodeToString(frame.Raw),
		Model:         model,
		ConfThreshold: d.desc.ConfThreshold,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url+"/predict", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference runtime unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read runtime response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference runtime returned %d: %s", resp.StatusCode, truncate(body, 200))
	}

	var out predictResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode runtime response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("inference runtime error: %s", out.Error)
	}
	return out.Detections, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

func syntheticLabel(classID int) string {
	return fmt.Sprintf("class_%d", classID)
}
