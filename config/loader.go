package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "TRIPWIZARD"

var defaultPaths = []string{"./configs", "../../configs", "."}

// Load reads config.yaml from the first search path that has one, then
// applies TRIPWIZARD_* environment overrides. A missing file is not an error.
func Load(paths ...string) (*Config, error) {
	if len(paths) == 0 {
		paths = defaultPaths
	}
	loadEnvFile(paths)

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile(paths []string) {
	candidates := []string{".env"}
	for _, p := range paths {
		candidates = append(candidates, filepath.Join(p, ".env"))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err == nil {
			slog.Debug("Loaded env file", "path", path)
			return
		}
	}
}

// setDefaults registers every key so that environment overrides reach
// Unmarshal even when the yaml file omits the key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "tripwizard")
	v.SetDefault("app.environment", "development")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 7*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.read_header_timeout", 2*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.rate_limit", 1.0)
	v.SetDefault("server.rate_burst", 5)
	v.SetDefault("server.auth_secret", "")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.timeout", 45*time.Second)

	v.SetDefault("places.api_key", "")
	v.SetDefault("places.base_url", "https://maps.googleapis.com/maps/api/place")
	v.SetDefault("places.language", "en")
	v.SetDefault("places.timeout", 10*time.Second)

	v.SetDefault("youtube.api_key", "")
	v.SetDefault("youtube.base_url", "https://www.googleapis.com/youtube/v3")
	v.SetDefault("youtube.query_prefix", "travel")
	v.SetDefault("youtube.max_results", 2)
	v.SetDefault("youtube.timeout", 5*time.Second)

	v.SetDefault("session.backend", "memory")
	v.SetDefault("session.ttl", 24*time.Hour)

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("trips.backend", "memory")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.database", "tripwizard")
	v.SetDefault("postgres.user", "tripwizard")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.max_connections", 10)
	v.SetDefault("postgres.max_idle", 5)
	v.SetDefault("postgres.sslmode", "disable")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("wizard.program_fallback", true)
	v.SetDefault("wizard.default_departure_address", "")
	v.SetDefault("wizard.preview_style", "classic")

	v.SetDefault("pricing.b2b_ratio", 0.7)
	v.SetDefault("pricing.public_ratio", 1.15)
	v.SetDefault("pricing.max_photos", 6)

	v.SetDefault("agency.name", "Travel Agency")
	v.SetDefault("agency.primary_color", "#3B82F6")
	v.SetDefault("agency.logo_url", "")
	v.SetDefault("agency.contact_email", "")
	v.SetDefault("agency.contact_phone", "")
}

// applyDefaults fills values that were explicitly blanked in the file.
func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.LLM.Timeout <= 0 {
		cfg.LLM.Timeout = 45 * time.Second
	}
	if cfg.Places.Timeout <= 0 {
		cfg.Places.Timeout = 10 * time.Second
	}
	if cfg.YouTube.Timeout <= 0 {
		cfg.YouTube.Timeout = 5 * time.Second
	}
	if cfg.YouTube.MaxResults <= 0 {
		cfg.YouTube.MaxResults = 2
	}
	if cfg.Session.TTL <= 0 {
		cfg.Session.TTL = 24 * time.Hour
	}
	if cfg.Pricing.MaxPhotos <= 0 {
		cfg.Pricing.MaxPhotos = 6
	}
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	cfg.Session.Backend = strings.ToLower(cfg.Session.Backend)
	cfg.Trips.Backend = strings.ToLower(cfg.Trips.Backend)
}

func validateConfig(cfg *Config) error {
	if !slices.Contains([]string{"memory", "redis"}, cfg.Session.Backend) {
		return fmt.Errorf("session.backend must be memory or redis, got %q", cfg.Session.Backend)
	}
	if cfg.Session.Backend == "redis" && cfg.Redis.Address == "" {
		return errors.New("redis.address is required for the redis session backend")
	}
	if !slices.Contains([]string{"memory", "postgres"}, cfg.Trips.Backend) {
		return fmt.Errorf("trips.backend must be memory or postgres, got %q", cfg.Trips.Backend)
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, cfg.Logging.Level) {
		return fmt.Errorf("logging.level %q is not supported", cfg.Logging.Level)
	}
	if !slices.Contains([]string{"classic", "modern", "luxury"}, cfg.Wizard.PreviewStyle) {
		return fmt.Errorf("wizard.preview_style %q is not supported", cfg.Wizard.PreviewStyle)
	}
	if cfg.Pricing.B2BRatio <= 0 || cfg.Pricing.PublicRatio <= 0 {
		return errors.New("pricing ratios must be positive")
	}
	if cfg.Server.RateLimit < 0 || cfg.Server.RateBurst < 0 {
		return errors.New("server rate limit must not be negative")
	}
	return nil
}
