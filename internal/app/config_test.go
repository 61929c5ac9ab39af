package app

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.MongoDatabase != "vodstream" || cfg.MongoCollection != "videos" {
		t.Errorf("mongo defaults = %q/%q", cfg.MongoDatabase, cfg.MongoCollection)
	}
	if cfg.EncodeTimeout != time.Hour {
		t.Errorf("EncodeTimeout = %v", cfg.EncodeTimeout)
	}
	if cfg.ProbeTimeout != 30*time.Second {
		t.Errorf("ProbeTimeout = %v", cfg.ProbeTimeout)
	}
	if cfg.WorkerCount != 2 {
		t.Errorf("WorkerCount = %d", cfg.WorkerCount)
	}
	if cfg.PendingTTL != 90*time.Minute {
		t.Errorf("PendingTTL = %v", cfg.PendingTTL)
	}
	if cfg.ThumbnailAt != "00:00:05" {
		t.Errorf("ThumbnailAt = %q", cfg.ThumbnailAt)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("ENCODE_TIMEOUT_MINUTES", "15")
	t.Setenv("WORKER_CONCURRENCY", "8")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.example, http://b.example")

	cfg := LoadConfig()
	if cfg.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.EncodeTimeout != 15*time.Minute {
		t.Errorf("EncodeTimeout = %v", cfg.EncodeTimeout)
	}
	if cfg.WorkerCount != 8 {
		t.Errorf("WorkerCount = %d", cfg.WorkerCount)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "http://b.example" {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadConfigInvalidNumbers(t *testing.T) {
	t.Setenv("ENCODE_TIMEOUT_MINUTES", "banana")
	t.Setenv("REDIS_DB", "-3")

	cfg := LoadConfig()
	if cfg.EncodeTimeout != time.Hour {
		t.Errorf("EncodeTimeout = %v, want default on parse failure", cfg.EncodeTimeout)
	}
	if cfg.RedisDB != 0 {
		t.Errorf("RedisDB = %d, want default on negative", cfg.RedisDB)
	}
}
