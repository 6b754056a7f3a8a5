package config

import (
	"fmt"
	"time"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Places   PlacesConfig   `mapstructure:"places"`
	YouTube  YouTubeConfig  `mapstructure:"youtube"`
	Session  SessionConfig  `mapstructure:"session"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Trips    TripsConfig    `mapstructure:"trips"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Wizard   WizardConfig   `mapstructure:"wizard"`
	Pricing  PricingConfig  `mapstructure:"pricing"`
	Agency   AgencyConfig   `mapstructure:"agency"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Addr              string        `mapstructure:"addr"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	CORSOrigins       []string      `mapstructure:"cors_origins"`
	RateLimit         float64       `mapstructure:"rate_limit"` // requests per second per client on remote-call routes
	RateBurst         int           `mapstructure:"rate_burst"`
	// AuthSecret enables HS256 bearer tokens on the API when set.
	AuthSecret      string        `mapstructure:"auth_secret"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LLMConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type PlacesConfig struct {
	APIKey   string        `mapstructure:"api_key"`
	BaseURL  string        `mapstructure:"base_url"`
	Language string        `mapstructure:"language"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type YouTubeConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	QueryPrefix string        `mapstructure:"query_prefix"`
	MaxResults  int           `mapstructure:"max_results"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type SessionConfig struct {
	Backend string        `mapstructure:"backend"` // memory or redis
	TTL     time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type TripsConfig struct {
	Backend string `mapstructure:"backend"` // memory or postgres
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type WizardConfig struct {
	// ProgramFallback serves the fixed template timeline when the model fails.
	ProgramFallback         bool   `mapstructure:"program_fallback"`
	DefaultDepartureAddress string `mapstructure:"default_departure_address"`
	PreviewStyle            string `mapstructure:"preview_style"`
}

type PricingConfig struct {
	B2BRatio    float64 `mapstructure:"b2b_ratio"`
	PublicRatio float64 `mapstructure:"public_ratio"`
	MaxPhotos   int     `mapstructure:"max_photos"`
}

type AgencyConfig struct {
	Name         string `mapstructure:"name"`
	PrimaryColor string `mapstructure:"primary_color"`
	LogoURL      string `mapstructure:"logo_url"`
	ContactEmail string `mapstructure:"contact_email"`
	ContactPhone string `mapstructure:"contact_phone"`
}
