package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/medsai/report-engine/internal/logging"
)

const (
	defaultDataDir      = "/var/lib/medsai-report"
	defaultHost         = "0.0.0.0"
	defaultPort         = 8000
	defaultMetricsPort  = 9091
	defaultMaxBodyBytes = 2 << 20 // 2MB
	archiveFileName     = "reports.db"
)

// Config holds the service settings. Everything is read from the
// environment, optionally seeded from .env files.
type Config struct {
	DataDir string

	Host        string
	Port        int
	MetricsPort int // 0 disables the metrics listener

	LogLevel  string
	LogFormat string

	MaxBodyBytes int64

	ArchiveEnabled bool
	ArchivePath    string

	// Optional TOML file replacing the built-in workup panels.
	WorkupCatalogPath string

	// Re-read every rendered PDF with a structural validator before it is
	// returned.
	ValidateOutput bool

	AllowedOrigins []string
}

// Load builds a Config from the environment. A .env file in the data
// directory is applied first, then one in the working directory; neither
// overrides variables that are already set.
func Load() (*Config, error) {
	dataDir := envOr("MEDSAI_DATA_DIR", defaultDataDir)

	envFile := filepath.Join(dataDir, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			log.Warn().Err(err).Str("file", envFile).Msg("Failed to load .env file")
		} else {
			log.Info().Str("file", envFile).Msg("Loaded .env file for deployment overrides")
		}
	}

	if err := godotenv.Load(); err == nil {
		log.Info().Msg("Loaded configuration from .env in current directory")
	}

	// The data directory may itself come from a .env file.
	dataDir = envOr("MEDSAI_DATA_DIR", dataDir)

	cfg := &Config{
		DataDir:           dataDir,
		Host:              envOr("MEDSAI_HOST", defaultHost),
		Port:              envInt("MEDSAI_PORT", defaultPort),
		MetricsPort:       envInt("MEDSAI_METRICS_PORT", defaultMetricsPort),
		LogLevel:          envOr("MEDSAI_LOG_LEVEL", "info"),
		LogFormat:         envOr("MEDSAI_LOG_FORMAT", "auto"),
		MaxBodyBytes:      envInt64("MEDSAI_MAX_BODY_BYTES", defaultMaxBodyBytes),
		ArchiveEnabled:    envBool("MEDSAI_ARCHIVE_ENABLED", true),
		ArchivePath:       envOr("MEDSAI_ARCHIVE_PATH", filepath.Join(dataDir, archiveFileName)),
		WorkupCatalogPath: strings.TrimSpace(os.Getenv("MEDSAI_WORKUP_CATALOG")),
		ValidateOutput:    envBool("MEDSAI_VALIDATE_OUTPUT", false),
		AllowedOrigins:    envList("MEDSAI_ALLOWED_ORIGINS"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings for values the service cannot run with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", c.MetricsPort)
	}
	if c.MetricsPort != 0 && c.MetricsPort == c.Port {
		return fmt.Errorf("metrics port %d collides with the API port", c.MetricsPort)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive, got %d", c.MaxBodyBytes)
	}
	if c.ArchiveEnabled && strings.TrimSpace(c.ArchivePath) == "" {
		return fmt.Errorf("archive enabled but no archive path configured")
	}
	if !logging.ValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log level: %q", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "auto", "json", "console":
	default:
		return fmt.Errorf("invalid log format: %q", c.LogFormat)
	}
	return nil
}

// ListenAddr is the API server address.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// MetricsAddr is the metrics listener address, or "" when disabled.
func (c *Config) MetricsAddr() string {
	if c.MetricsPort == 0 {
		return ""
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(c.MetricsPort))
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Warn().Str("key", key).Str("value", v).Msg("Ignoring non-integer environment value")
			return fallback
		}
		return n
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			log.Warn().Str("key", key).Str("value", v).Msg("Ignoring non-integer environment value")
			return fallback
		}
		return n
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Warn().Str("key", key).Str("value", v).Msg("Ignoring non-boolean environment value")
			return fallback
		}
		return b
	}
	return fallback
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
