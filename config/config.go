package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server configuration
	Host   string
	Port   string
	APIKey string

	// Capped JSON store configuration
	DataDir    string
	MaxEntries int

	// Detection model configuration
	ModelDir         string
	DefaultModel     string
	DetectRuntimeURL string

	// MongoDB mirror configuration
	MongoEnabled          bool
	MongoURI              string
	MongoDB               string
	MongoSensorCollection string
	MongoCVCollection     string

	// Redis latest-reading cache configuration
	RedisEnabled bool
	RedisAddr    string

	// InfluxDB analytics export configuration
	InfluxEnabled  bool
	InfluxDBURL    string
	InfluxDBToken  string
	InfluxDBOrg    string
	InfluxDBBucket string
}

// Load loads configuration from the environment, reading a .env file first
// when one is present.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		// Server defaults; an empty API key leaves write endpoints open
		Host:   getEnv("HOST", "localhost"),
		Port:   getEnv("PORT", "5000"),
		APIKey: getEnv("API_KEY", ""),

		// JSON store defaults
		DataDir:    getEnv("DATA_DIR", "data"),
		MaxEntries: getEnvInt("MAX_ENTRIES", 100),

		// Detection defaults
		ModelDir:         getEnv("MODEL_DIR", "models"),
		DefaultModel:     getEnv("DEFAULT_MODEL", "yolov5s"),
		DetectRuntimeURL: getEnv("DETECT_RUNTIME_URL", "http://localhost:8500"),

		// MongoDB mirror defaults
		MongoEnabled:          getEnvBool("MONGO_ENABLED", false),
		MongoURI:              getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:               getEnv("MONGO_DB", "facts_data"),
		MongoSensorCollection: getEnv("MONGO_SENSOR_COLLECTION", "sensor_data"),
		MongoCVCollection:     getEnv("MONGO_CV_COLLECTION", "cv_activity"),

		// Redis cache defaults
		RedisEnabled: getEnvBool("REDIS_ENABLED", false),
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),

		// InfluxDB export defaults
		InfluxEnabled:  getEnvBool("INFLUX_ENABLED", false),
		InfluxDBURL:    getEnv("INFLUXDB_URL", "http://influxdb:8086"),
		InfluxDBToken:  getEnv("INFLUXDB_TOKEN", "supersecrettoken"),
		InfluxDBOrg:    getEnv("INFLUXDB_ORG", "factsorg"),
		InfluxDBBucket: getEnv("INFLUXDB_BUCKET", "facts_bucket"),
	}

	return cfg
}

// getEnv gets an environment variable with a fallback default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as integer with a fallback default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as boolean with a fallback default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
