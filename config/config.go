package config

import (
	"os"
	"strconv"
)

type (
	Config struct {
		Storage Storage

		// JWTSecret enables token checks on the API when set.
		JWTSecret string
		// AutosaveSchedule is a cron schedule for saving edited sessions. Empty disables autosave.
		AutosaveSchedule string
		HistoryLimit     int
		RecentDesignsKey string
	}

	// Storage selects and configures the key-value backend.
	Storage struct {
		Type string

		LocalPath      string
		DataSourceName string

		S3Bucket   string
		S3Endpoint string
		S3Prefix   string

		MongoURI        string
		MongoDatabase   string
		MongoCollection string
	}
)

// Load reads the configuration from environment variables.
func Load() *Config {
	return &Config{
		Storage: Storage{
			Type:            getEnv("STORAGE_TYPE", "memory"),
			LocalPath:       getEnv("LOCAL_STORAGE_PATH", "./data"),
			DataSourceName:  getEnv("DATA_SOURCE_NAME", ""),
			S3Bucket:        getEnv("S3_BUCKET_NAME", ""),
			S3Endpoint:      getEnv("S3_ENDPOINT", ""),
			S3Prefix:        getEnv("S3_PREFIX", ""),
			MongoURI:        getEnv("MONGO_URI", ""),
			MongoDatabase:   getEnv("MONGO_DATABASE", "canva"),
			MongoCollection: getEnv("MONGO_COLLECTION", "design_kv"),
		},
		JWTSecret:        getEnv("JWT_SECRET", ""),
		AutosaveSchedule: getEnv("AUTOSAVE_SCHEDULE", "@every 30s"),
		HistoryLimit:     getEnvAsInt("HISTORY_LIMIT", 50),
		RecentDesignsKey: getEnv("RECENT_DESIGNS_KEY", "recentDesigns"),
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}
