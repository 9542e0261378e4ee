package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the portal API.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	BoardName              string
	BoardEstablished       int
	DatabaseDriver         string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	EventChannel           string
	JWTSecret              string
	JWTTTL                 time.Duration
	AdminEmail             string
	AdminPassword          string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	ArchiveBackend         string
	MinIOEndpoint          string
	MinIOAccessKey         string
	MinIOSecretKey         string
	MinIOBucket            string
	MinIORegion            string
	MinIOUseSSL            bool
	DashboardCacheTTL      time.Duration
	MeritCacheTTL          time.Duration
	MeritListSize          int
	UploadMaxSizeMB        int
	SubmissionRateLimit    int
	SubmissionRateWindow   time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Archive backends for raw CSV uploads.
const (
	ArchiveCloudinary = "cloudinary"
	ArchiveMinIO      = "minio"
)

// ArchiveProvider names the configured archive backend, or "" when uploads
// are not archived. An unset backend picks Cloudinary when its credentials exist.
func (c Config) ArchiveProvider() string {
	cloudinaryReady := c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
	switch c.ArchiveBackend {
	case ArchiveMinIO:
		if c.MinIOEndpoint != "" && c.MinIOBucket != "" {
			return ArchiveMinIO
		}
	case ArchiveCloudinary, "":
		if cloudinaryReady {
			return ArchiveCloudinary
		}
	}
	return ""
}

// ArchiveEnabled reports whether uploaded CSV files are archived at all.
func (c Config) ArchiveEnabled() bool {
	return c.ArchiveProvider() != ""
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("DSBE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "DSBE Portal API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("board.name", "Delhi State Board Education")
	v.SetDefault("board.established", 1978)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("events.channel", "dsbe:admin")
	v.SetDefault("jwt.ttl", "24h")
	v.SetDefault("cloudinary.folder", "dsbe/imports")
	v.SetDefault("minio.bucket", "dsbe-imports")
	v.SetDefault("minio.region", "us-east-1")
	v.SetDefault("dashboard.cache_ttl", "1m")
	v.SetDefault("merit.cache_ttl", "10m")
	v.SetDefault("merit.size", 5)
	v.SetDefault("upload.max_size_mb", 5)
	v.SetDefault("submission.rate_limit", 10)
	v.SetDefault("submission.rate_window", "1m")

	durations := map[string]time.Duration{}
	for _, key := range []string{"jwt.ttl", "dashboard.cache_ttl", "merit.cache_ttl", "submission.rate_window"} {
		parsed, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", key, err)
		}
		durations[key] = parsed
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		BoardName:              v.GetString("board.name"),
		BoardEstablished:       v.GetInt("board.established"),
		DatabaseDriver:         strings.ToLower(v.GetString("database.driver")),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		EventChannel:           v.GetString("events.channel"),
		JWTSecret:              v.GetString("jwt.secret"),
		JWTTTL:                 durations["jwt.ttl"],
		AdminEmail:             strings.ToLower(strings.TrimSpace(v.GetString("admin.email"))),
		AdminPassword:          v.GetString("admin.password"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		ArchiveBackend:         strings.ToLower(strings.TrimSpace(v.GetString("archive.backend"))),
		MinIOEndpoint:          v.GetString("minio.endpoint"),
		MinIOAccessKey:         v.GetString("minio.access_key"),
		MinIOSecretKey:         v.GetString("minio.secret_key"),
		MinIOBucket:            v.GetString("minio.bucket"),
		MinIORegion:            v.GetString("minio.region"),
		MinIOUseSSL:            v.GetBool("minio.use_ssl"),
		DashboardCacheTTL:      durations["dashboard.cache_ttl"],
		MeritCacheTTL:          durations["merit.cache_ttl"],
		MeritListSize:          v.GetInt("merit.size"),
		UploadMaxSizeMB:        v.GetInt("upload.max_size_mb"),
		SubmissionRateLimit:    v.GetInt("submission.rate_limit"),
		SubmissionRateWindow:   durations["submission.rate_window"],
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return Config{}, fmt.Errorf("admin credentials must be provided")
	}

	switch cfg.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return Config{}, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	switch cfg.ArchiveBackend {
	case "", ArchiveCloudinary, ArchiveMinIO, "none":
	default:
		return Config{}, fmt.Errorf("unsupported archive backend %q", cfg.ArchiveBackend)
	}

	if cfg.MeritListSize <= 0 {
		cfg.MeritListSize = 5
	}

	if cfg.UploadMaxSizeMB <= 0 {
		cfg.UploadMaxSizeMB = 5
	}

	return cfg, nil
}
