package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr           string
	MongoURI           string
	MongoDatabase      string
	MongoCollection    string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	LogLevel           string
	LogFormat          string
	MediaRoot          string
	FFMPEGPath         string
	FFProbePath        string
	EncodeTimeout      time.Duration // outer bound for one ffmpeg invocation
	ProbeTimeout       time.Duration
	ThumbnailAt        string // seek timestamp for thumbnail extraction
	WorkerCount        int
	PendingTTL         time.Duration // lifetime of the per-video queued marker
	CORSAllowedOrigins []string
}

func LoadConfig() Config {
	return Config{
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		MongoURI:           getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:      getEnv("MONGO_DB", "vodstream"),
		MongoCollection:    getEnv("MONGO_COLLECTION", "videos"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            int(getEnvInt64("REDIS_DB", 0)),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
		MediaRoot:          getEnv("MEDIA_ROOT", "media"),
		FFMPEGPath:         getEnv("FFMPEG_PATH", "ffmpeg"),
		FFProbePath:        getEnv("FFPROBE_PATH", "ffprobe"),
		EncodeTimeout:      time.Duration(getEnvInt64("ENCODE_TIMEOUT_MINUTES", 60)) * time.Minute,
		ProbeTimeout:       time.Duration(getEnvInt64("PROBE_TIMEOUT_SECONDS", 30)) * time.Second,
		ThumbnailAt:        getEnv("THUMBNAIL_TIMESTAMP", "00:00:05"),
		WorkerCount:        int(getEnvInt64("WORKER_CONCURRENCY", 2)),
		PendingTTL:         time.Duration(getEnvInt64("PENDING_TTL_MINUTES", 90)) * time.Minute,
		CORSAllowedOrigins: parseCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	if parsed < 0 {
		return fallback
	}
	return parsed
}

func parseCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}
	return out
}
