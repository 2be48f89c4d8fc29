package detect

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/example/facts/internal/vision"
)

func TestRuntimeDetectorDetect(t *testing.T) {
	frame := &vision.Frame{Raw: []byte("fake-image-bytes"), Width: 640, Height: 480}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/predict" {
			t.Errorf("Expected /predict path, got %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected application/json content type, got %q", ct)
		}

		var req predictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode predict request: %v", err)
		}
		if req.Model != "sapi.pt" {
			t.Errorf("Expected model sapi.pt, got %q", req.Model)
		}
		if req.ConfThreshold != 0.4 {
			t.Errorf("Expected conf_threshold 0.4, got %v", req.ConfThreshold)
		}
		decoded, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil || string(decoded) != "fake-image-bytes" {
			t.Errorf("Expected base64 frame bytes, got %q (err %v)", req.Image, err)
		}

		json.NewEncoder(w).Encode(predictResponse{Detections: []RawDetection{
			{X1: 10, Y1: 20, X2: 110, Y2: 220, Confidence: 0.88, ClassID: 0},
		}})
	}))
	defer server.Close()

	detector := NewRuntimeDetector(server.URL, Descriptor{
		Name:          "sapi",
		Labels:        []string{"sapi"},
		Weights:       "sapi.pt",
		ConfThreshold: 0.4,
	})

	detections, err := detector.Detect(context.Background(), frame)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(detections) != 1 {
		t.Fatalf("Expected 1 detection, got %d", len(detections))
	}
	if detections[0].X2 != 110 || detections[0].Confidence != 0.88 {
		t.Errorf("Unexpected detection: %+v", detections[0])
	}
}

func TestRuntimeDetectorFallsBackToModelName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req predictRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "ayam" {
			t.Errorf("Expected model name when weights are empty, got %q", req.Model)
		}
		json.NewEncoder(w).Encode(predictResponse{})
	}))
	defer server.Close()

	detector := NewRuntimeDetector(server.URL, Descriptor{Name: "ayam", Labels: []string{"ayam"}})
	if _, err := detector.Detect(context.Background(), &vision.Frame{Raw: []byte("x")}); err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
}

func TestRuntimeDetectorErrors(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		contains string
	}{
		{
			"Non-200 status",
			func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model blew up", http.StatusInternalServerError)
			},
			"returned 500",
		},
		{
			"Error field in body",
			func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(predictResponse{Error: "weights not found"})
			},
			"weights not found",
		},
		{
			"Undecodable body",
			func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
			"decode runtime response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			detector := NewRuntimeDetector(server.URL, Descriptor{Name: "sapi", Labels: []string{"sapi"}})
			_, err := detector.Detect(context.Background(), &vision.Frame{Raw: []byte("x")})
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("Expected error containing %q, got %v", tt.contains, err)
			}
		})
	}
}

func TestRuntimeDetectorUnreachable(t *testing.T) {
	detector := NewRuntimeDetector("http://127.0.0.1:1", Descriptor{Name: "sapi", Labels: []string{"sapi"}})
	_, err := detector.Detect(context.Background(), &vision.Frame{Raw: []byte("x")})
	if err == nil {
		t.Fatal("Expected error for unreachable runtime")
	}
	if !strings.Contains(err.Error(), "unreachable") {
		t.Errorf("Expected unreachable error, got %v", err)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate([]byte("short"), 200); got != "short" {
		t.Errorf("Expected short body unchanged, got %q", got)
	}
	long := strings.Repeat("x", 300)
	got := truncate([]byte(long), 200)
	if len(got) != 203 || !strings.HasSuffix(got, "...") {
		t.Errorf("Expected 200-byte prefix with ellipsis, got %d bytes", len(got))
	}
}
