package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	DatabaseURL  string // LENDBOARD_DATABASE_URL (required)
	HTTPAddr     string // LENDBOARD_HTTP_ADDR (default ":8080")
	BackendURL   string // LENDBOARD_BACKEND_URL (required)
	BackendToken string // LENDBOARD_BACKEND_TOKEN (optional)
	NATSURL      string // LENDBOARD_NATS_URL (optional, empty = no events)
	AuthToken    string // LENDBOARD_AUTH_TOKEN (optional, empty = auth disabled)

	// Feed settings
	FeedURL           string // LENDBOARD_FEED_URL (optional, empty = empty feeds)
	FeedStatusAlias   string // LENDBOARD_FEED_STATUS_ALIAS (default "project-status")
	FeedScheduleAlias string // LENDBOARD_FEED_SCHEDULE_ALIAS (default "construction-schedule")

	// Refresh settings
	RefreshInterval time.Duration // LENDBOARD_REFRESH_INTERVAL (default 10m; 0 = manual only)

	// Snapshot export settings
	ExportInterval   time.Duration // LENDBOARD_EXPORT_INTERVAL (default 15m; 0 = disabled)
	ExportS3Bucket   string        // LENDBOARD_EXPORT_S3_BUCKET (enables S3 when set)
	ExportS3Endpoint string        // LENDBOARD_EXPORT_S3_ENDPOINT (custom endpoint for MinIO)
	ExportS3Region   string        // LENDBOARD_EXPORT_S3_REGION (default "us-east-1")
	ExportS3Key      string        // LENDBOARD_EXPORT_S3_KEY (default "lendboard/rows.jsonl")
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:       os.Getenv("LENDBOARD_DATABASE_URL"),
		HTTPAddr:          envOrDefault("LENDBOARD_HTTP_ADDR", ":8080"),
		BackendURL:        os.Getenv("LENDBOARD_BACKEND_URL"),
		BackendToken:      os.Getenv("LENDBOARD_BACKEND_TOKEN"),
		NATSURL:           os.Getenv("LENDBOARD_NATS_URL"),
		AuthToken:         os.Getenv("LENDBOARD_AUTH_TOKEN"),
		FeedURL:           os.Getenv("LENDBOARD_FEED_URL"),
		FeedStatusAlias:   envOrDefault("LENDBOARD_FEED_STATUS_ALIAS", "project-status"),
		FeedScheduleAlias: envOrDefault("LENDBOARD_FEED_SCHEDULE_ALIAS", "construction-schedule"),
		ExportS3Bucket:    os.Getenv("LENDBOARD_EXPORT_S3_BUCKET"),
		ExportS3Endpoint:  os.Getenv("LENDBOARD_EXPORT_S3_ENDPOINT"),
		ExportS3Region:    envOrDefault("LENDBOARD_EXPORT_S3_REGION", "us-east-1"),
		ExportS3Key:       envOrDefault("LENDBOARD_EXPORT_S3_KEY", "lendboard/rows.jsonl"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("LENDBOARD_DATABASE_URL is required")
	}
	if c.BackendURL == "" {
		return nil, fmt.Errorf("LENDBOARD_BACKEND_URL is required")
	}

	var err error
	if c.RefreshInterval, err = durationEnv("LENDBOARD_REFRESH_INTERVAL", "10m"); err != nil {
		return nil, err
	}
	if c.ExportInterval, err = durationEnv("LENDBOARD_EXPORT_INTERVAL", "15m"); err != nil {
		return nil, err
	}

	return c, nil
}

func durationEnv(key, fallback string) (time.Duration, error) {
	v := envOrDefault(key, fallback)
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
