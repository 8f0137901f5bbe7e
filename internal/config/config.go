package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	AdminJWTSecret         string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	RegistrationURL        string
	CORSAllowOrigins       []string
	ContentCacheTTL        time.Duration
	TaxonomyCacheTTL       time.Duration
	ActivityCacheTTL       time.Duration
	StatsCacheTTL          time.Duration
	UploadMaxMB            int
	ActivityRetentionDays  int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// AdminEnabled reports whether the admin surface can be served. A missing
// admin secret degrades the admin routes only; the public site keeps working.
func (c Config) AdminEnabled() bool {
	return c.AdminJWTSecret != ""
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("INSTITUTE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Institute API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cloudinary.folder", "institute/media")
	v.SetDefault("cache.content_ttl", "5m")
	v.SetDefault("cache.taxonomy_ttl", "30m")
	v.SetDefault("cache.activity_ttl", "45s")
	v.SetDefault("cache.stats_ttl", "60s")
	v.SetDefault("upload.max_mb", 10)
	v.SetDefault("activity.retention_days", 90)

	contentTTL, err := parseTTL(v.GetString("cache.content_ttl"), 5*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid content cache ttl: %w", err)
	}
	taxonomyTTL, err := parseTTL(v.GetString("cache.taxonomy_ttl"), 30*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid taxonomy cache ttl: %w", err)
	}
	activityTTL, err := parseTTL(v.GetString("cache.activity_ttl"), 45*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid activity cache ttl: %w", err)
	}
	statsTTL, err := parseTTL(v.GetString("cache.stats_ttl"), time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid stats cache ttl: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		AdminJWTSecret:         v.GetString("admin.jwt_secret"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		RegistrationURL:        v.GetString("registration.url"),
		CORSAllowOrigins:       splitOrigins(v.GetString("cors.allow_origins")),
		ContentCacheTTL:        contentTTL,
		TaxonomyCacheTTL:       taxonomyTTL,
		ActivityCacheTTL:       activityTTL,
		StatsCacheTTL:          statsTTL,
		UploadMaxMB:            v.GetInt("upload.max_mb"),
		ActivityRetentionDays:  v.GetInt("activity.retention_days"),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided")
	}

	if cfg.UploadMaxMB <= 0 {
		cfg.UploadMaxMB = 10
	}

	if cfg.ActivityRetentionDays <= 0 {
		cfg.ActivityRetentionDays = 90
	}

	return cfg, nil
}

func splitOrigins(value string) []string {
	var origins []string
	for _, origin := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func parseTTL(value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}
