package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/example/facts/config"
	"github.com/example/facts/internal/detect"
	"github.com/example/facts/internal/influx"
	"github.com/example/facts/internal/jsonstore"
	"github.com/example/facts/internal/latest"
	"github.com/example/facts/internal/metrics"
	"github.com/example/facts/internal/mirror"
	"github.com/example/facts/internal/record"
	"github.com/example/facts/internal/security"
	"github.com/example/facts/internal/vision"
	_ "github.com/example/facts/services/ingest/docs"
)

const serviceName = "ingest-service"

// IngestService owns the shared resources of the ingestion API: the capped
// JSON store, the MongoDB mirror, the latest-reading cache, the analytics
// exporter, and the model registry. Handlers are methods on it; there is no
// global mutable state.
type IngestService struct {
	cfg      config.Config
	logger   *log.Logger
	store    *jsonstore.Store
	mirror   *mirror.Mongo
	cache    *latest.Cache
	exporter *influx.Exporter
	registry *detect.Registry
}

// NewIngestService wires the service from configuration. Only the JSON
// store is mandatory; the mirror, cache, and exporter degrade to disabled.
func NewIngestService(ctx context.Context, cfg config.Config, logger *log.Logger) (*IngestService, error) {
	store := jsonstore.New(cfg.DataDir, cfg.MaxEntries, logger)
	if err := store.Init(record.KindSensor, record.KindActivity); err != nil {
		return nil, err
	}

	return &IngestService{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		mirror:   mirror.New(ctx, cfg, logger),
		cache:    latest.New(cfg.RedisEnabled, cfg.RedisAddr, logger),
		exporter: influx.NewExporter(cfg.InfluxEnabled, cfg.InfluxDBURL, cfg.InfluxDBToken, cfg.InfluxDBOrg, cfg.InfluxDBBucket, logger),
		registry: detect.NewRegistry(cfg.ModelDir, cfg.DefaultModel, cfg.DetectRuntimeURL, serviceName, logger),
	}, nil
}

// Close releases the store clients.
func (s *IngestService) Close(ctx context.Context) {
	s.mirror.Close(ctx)
	if err := s.cache.Close(); err != nil {
		s.logger.Printf("Failed to close cache client: %v", err)
	}
	s.exporter.Close()
}

// Routes builds the HTTP handler with CORS, panic recovery, and metrics
// middleware applied.
func (s *IngestService) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", metrics.HTTPMiddleware(serviceName, s.handleIndex))
	mux.HandleFunc("/health", metrics.HTTPMiddleware(serviceName, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ingest service healthy"))
	}))
	mux.Handle("/metrics", metrics.MetricsHandler())
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	mux.HandleFunc("/sensor-data", metrics.HTTPMiddleware(serviceName, s.handleSensorData))
	mux.HandleFunc("/sensor-data/latest", metrics.HTTPMiddleware(serviceName, s.latestHandler(record.KindSensor)))
	mux.HandleFunc("/cv-activity", metrics.HTTPMiddleware(serviceName, s.handleCVActivity))
	mux.HandleFunc("/cv-activity/latest", metrics.HTTPMiddleware(serviceName, s.latestHandler(record.KindActivity)))
	mux.HandleFunc("/detect", metrics.HTTPMiddleware(serviceName, s.handleDetect))
	mux.HandleFunc("/status", metrics.HTTPMiddleware(serviceName, s.handleStatus))

	return corsMiddleware(s.recoverMiddleware(security.APIKeyMiddleware(s.cfg.APIKey, mux)))
}

// handleIndex is the plain liveness endpoint.
func (s *IngestService) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Endpoint not found"})
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("FACTS ingestion API is running (with detection)"))
}

// @Summary Submit or read environmental telemetry
// @Description POST appends a telemetry record to both storage backends; GET returns recent records
// @Tags telemetry
// @Accept json
// @Produce json
// @Param record body map[string]interface{} false "Telemetry fields (optional timestamp)"
// @Param category query string false "Filter by livestock category (GET)"
// @Param limit query int false "Maximum records to return (GET)"
// @Success 200 {object} IngestResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /sensor-data [post]
func (s *IngestService) handleSensorData(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.ingestRecord(w, r, record.KindSensor, "sensor data saved")
	case http.MethodGet:
		s.readRecords(w, r, record.KindSensor)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
	}
}

// @Summary Submit or read vision activity events
// @Description POST appends an activity record to both storage backends; GET returns recent records
// @Tags activity
// @Accept json
// @Produce json
// @Param record body map[string]interface{} false "Activity fields (category, activity, confidence, optional timestamp)"
// @Param category query string false "Filter by livestock category (GET)"
// @Param limit query int false "Maximum records to return (GET)"
// @Success 200 {object} IngestResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /cv-activity [post]
func (s *IngestService) handleCVActivity(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.ingestRecord(w, r, record.KindActivity, "cv activity saved")
	case http.MethodGet:
		s.readRecords(w, r, record.KindActivity)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
	}
}

// ingestRecord is the shared record endpoint core: validate the body is a
// mapping, stamp a timestamp when absent, then drive both storage backends
// in parallel. The backends fail independently and the response reports
// both outcomes; there is no rollback across them.
func (s *IngestService) ingestRecord(w http.ResponseWriter, r *http.Request, kind record.Kind, statusMsg string) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.logger.Printf("Failed to read %s request body: %v", kind, err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid data format"})
		return
	}

	rec, err := record.Parse(body)
	if err != nil {
		s.logger.Printf("Invalid %s data received", kind)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid data format"})
		return
	}
	rec.StampTimestamp(time.Now())

	s.logger.Printf("Data received for %s: %d fields", kind, len(rec))
	metrics.RecordIngestedRecord(serviceName, string(kind))

	var jsonSaved, mongoSaved bool
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		start := time.Now()
		jsonSaved = s.store.Append(kind, rec)
		metrics.RecordStoreOperation(serviceName, "json", string(kind), outcome(jsonSaved), time.Since(start))
	}()
	go func() {
		defer wg.Done()
		if !s.mirror.Enabled() {
			return
		}
		start := time.Now()
		mongoSaved = s.mirror.Save(r.Context(), kind, rec)
		metrics.RecordStoreOperation(serviceName, "mongo", string(kind), outcome(mongoSaved), time.Since(start))
	}()
	wg.Wait()

	// Best-effort extras, outside the dual-write contract.
	s.cache.Set(r.Context(), kind, rec)
	if kind == record.KindSensor {
		s.exporter.ExportTelemetry(r.Context(), rec)
	}

	writeJSON(w, http.StatusOK, IngestResponse{
		Status:     statusMsg,
		JSONSaved:  jsonSaved,
		MongoSaved: mongoSaved,
	})
}

// readRecords serves the stored array back, oldest first, with optional
// category and limit filters.
func (s *IngestService) readRecords(w http.ResponseWriter, r *http.Request, kind record.Kind) {
	category := r.URL.Query().Get("category")
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid limit"})
			return
		}
		limit = n
	}

	records, err := s.store.Recent(kind, category, limit)
	if err != nil {
		s.logger.Printf("Failed to read %s records: %v", kind, err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to read records"})
		return
	}

	data := make([]map[string]interface{}, len(records))
	for i, rec := range records {
		data[i] = rec
	}
	writeJSON(w, http.StatusOK, RecordsResponse{Count: len(data), Data: data})
}

// latestHandler serves the most recent record for a kind from the Redis
// cache, falling back to the file store when the cache is cold or disabled.
func (s *IngestService) latestHandler(kind record.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
			return
		}
		category := r.URL.Query().Get("category")

		if rec := s.cache.Get(r.Context(), kind, category); rec != nil {
			writeJSON(w, http.StatusOK, rec)
			return
		}

		records, err := s.store.Recent(kind, category, 1)
		if err != nil || len(records) == 0 {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "No records"})
			return
		}
		writeJSON(w, http.StatusOK, records[len(records)-1])
	}
}

// @Summary Run object detection on a captured image
// @Description Decodes a base64 image, resolves the category's model, and returns normalized detections
// @Tags detection
// @Accept json
// @Produce json
// @Param request body DetectRequest true "Base64 image and model category"
// @Success 200 {object} DetectResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /detect [post]
func (s *IngestService) handleDetect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
		return
	}

	var req DetectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Image == "" || req.Model == "" {
		s.logger.Printf("Missing required fields in detect request")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Missing required fields"})
		return
	}

	s.logger.Printf("Received detection request for model: %s, image size: %d chars", req.Model, len(req.Image))

	frame, err := vision.DecodeBase64(req.Image)
	if err != nil {
		s.logger.Printf("Failed to decode image: %v", err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid image data"})
		return
	}
	s.logger.Printf("Successfully decoded image, size: %dx%d (%s)", frame.Width, frame.Height, frame.Format)

	handle, err := s.registry.Resolve(r.Context(), req.Model)
	if err != nil {
		if errors.Is(err, detect.ErrModelUnavailable) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Model " + req.Model + " not available"})
			return
		}
		s.logger.Printf("Failed to resolve model %s: %v", req.Model, err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Server error"})
		return
	}

	result, err := detect.Run(r.Context(), frame, handle)
	if err != nil {
		s.logger.Printf("Error during detection with model %s: %v", req.Model, err)
		metrics.RecordDetection(serviceName, req.Model, "error", 0, 0)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Detection failed"})
		return
	}

	s.logger.Printf("Detected %d objects with model %s in %s", len(result.Detections), req.Model, result.Elapsed)
	metrics.RecordDetection(serviceName, req.Model, "success", len(result.Detections), result.Elapsed)

	writeJSON(w, http.StatusOK, DetectResponse{
		Success:     true,
		Timestamp:   float64(time.Now().UnixNano()) / 1e9,
		Detections:  result.Detections,
		InferenceMS: float64(result.Elapsed.Microseconds()) / 1000.0,
	})
}

// @Summary Service and backend status
// @Description Reports store reachability and model availability
// @Tags status
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /status [get]
func (s *IngestService) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp := StatusResponse{
		Status:    "running",
		Timestamp: time.Now().Format(time.RFC3339),
		Storage: StorageStatus{
			JSON: JSONStoreStatus{
				Enabled:    true,
				Path:       s.store.Dir(),
				MaxEntries: s.store.MaxEntries(),
				Entries: map[string]int{
					string(record.KindSensor):   s.store.Count(record.KindSensor),
					string(record.KindActivity): s.store.Count(record.KindActivity),
				},
			},
			Mirror: MirrorStatus{
				Enabled:  s.mirror.Enabled(),
				Status:   s.mirror.Status(ctx),
				Database: s.mirror.Database(),
			},
			Cache: BackendStatus{
				Enabled: s.cache.Enabled(),
				Status:  s.cache.Status(ctx),
			},
			Analytics: BackendStatus{
				Enabled: s.exporter.Enabled(),
				Status:  s.exporter.Status(ctx),
			},
		},
		Models: s.registry.Status(),
	}
	writeJSON(w, http.StatusOK, resp)
}

// recoverMiddleware turns a handler panic into a generic JSON 500 with the
// stack logged, so a per-request failure never crashes the process.
func (s *IngestService) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Printf("Unexpected error in %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
				writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware allows cross-origin access from the dashboards.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}
