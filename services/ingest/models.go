package main

import "github.com/example/facts/internal/detect"

// IngestResponse reports the per-backend outcome of one record submission
type IngestResponse struct {
	Status     string `json:"status" example:"sensor data saved"`
	JSONSaved  bool   `json:"json_saved" example:"true"`
	MongoSaved bool   `json:"mongo_saved" example:"false"`
}

// RecordsResponse is the response for the record read endpoints
type RecordsResponse struct {
	Count int                      `json:"count" example:"42"`
	Data  []map[string]interface{} `json:"data"`
}

// DetectRequest is the request body for the detect endpoint
type DetectRequest struct {
	Image string `json:"image" example:"/9j/4AAQSkZJRg..."`
	Model string `json:"model" example:"sapi"`
}

// DetectResponse is the response for the detect endpoint
type DetectResponse struct {
	Success     bool               `json:"success" example:"true"`
	Timestamp   float64            `json:"timestamp" example:"1756710000.123"`
	Detections  []detect.Detection `json:"detections"`
	InferenceMS float64            `json:"inference_ms" example:"142.7"`
}

// BackendStatus describes one optional backend in the status response
type BackendStatus struct {
	Enabled bool   `json:"enabled" example:"false"`
	Status  string `json:"status" example:"disabled"`
}

// MirrorStatus describes the mirror store in the status response
type MirrorStatus struct {
	Enabled  bool   `json:"enabled" example:"false"`
	Status   string `json:"status" example:"disabled"`
	Database string `json:"database,omitempty" example:"facts_data"`
}

// JSONStoreStatus describes the capped append store in the status response
type JSONStoreStatus struct {
	Enabled    bool           `json:"enabled" example:"true"`
	Path       string         `json:"path" example:"data"`
	MaxEntries int            `json:"max_entries" example:"100"`
	Entries    map[string]int `json:"entries"`
}

// StorageStatus groups the storage backends in the status response
type StorageStatus struct {
	JSON      JSONStoreStatus `json:"json"`
	Mirror    MirrorStatus    `json:"mirror"`
	Cache     BackendStatus   `json:"cache"`
	Analytics BackendStatus   `json:"analytics"`
}

// StatusResponse is the response for the status endpoint
type StatusResponse struct {
	Status    string                        `json:"status" example:"running"`
	Timestamp string                        `json:"timestamp" example:"2025-09-01T10:30:00Z"`
	Storage   StorageStatus                 `json:"storage"`
	Models    map[string]detect.ModelStatus `json:"models"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error" example:"Invalid data format"`
}
