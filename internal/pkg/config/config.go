package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Nominatim NominatimConfig `mapstructure:"nominatim"`
	Explorer  ExplorerConfig  `mapstructure:"explorer"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	AllowOrigins string `mapstructure:"allow_origins"`
	RateLimit    int    `mapstructure:"rate_limit"` // requests per minute per IP, 0 = off
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type NominatimConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	BaseURL   string `mapstructure:"base_url"`
	UserAgent string `mapstructure:"user_agent"`
	Timeout   int    `mapstructure:"timeout"`
}

// ExplorerConfig seeds new sessions. RadiusMiles is the canonical radius.
type ExplorerConfig struct {
	OriginLat   float64 `mapstructure:"origin_lat"`
	OriginLon   float64 `mapstructure:"origin_lon"`
	OriginLabel string  `mapstructure:"origin_label"`
	RadiusMiles float64 `mapstructure:"radius_miles"`
	Unit        string  `mapstructure:"unit"`
	SessionTTL  int     `mapstructure:"session_ttl"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.allow_origins", "http://localhost:3000, http://localhost:5173")
	v.SetDefault("server.rate_limit", 120)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("database.enabled", true)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "neverbeen")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "neverbeen")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("nominatim.enabled", true)
	v.SetDefault("nominatim.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("nominatim.user_agent", "neverbeen/1.0")
	v.SetDefault("nominatim.timeout", 5)
	v.SetDefault("explorer.origin_lat", 55.774167)
	v.SetDefault("explorer.origin_lon", -3.918333)
	v.SetDefault("explorer.origin_label", "")
	v.SetDefault("explorer.radius_miles", 100)
	v.SetDefault("explorer.unit", "mi")
	v.SetDefault("explorer.session_ttl", 86400)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: NEVERBEEN_VALKEY_ADDR → valkey.addr
	v.SetEnvPrefix("NEVERBEEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, "server.rate_limit must not be negative")
	}
	if c.Database.Enabled {
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required")
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required")
		}
	}
	if c.Nominatim.Enabled {
		if c.Nominatim.BaseURL == "" {
			errs = append(errs, "nominatim.base_url is required")
		}
		if c.Nominatim.UserAgent == "" {
			errs = append(errs, "nominatim.user_agent is required (Nominatim usage policy)")
		}
		if c.Nominatim.Timeout <= 0 {
			errs = append(errs, "nominatim.timeout must be positive")
		}
	}
	if c.Explorer.OriginLat < -90 || c.Explorer.OriginLat > 90 {
		errs = append(errs, fmt.Sprintf("explorer.origin_lat must be -90..90, got %v", c.Explorer.OriginLat))
	}
	if c.Explorer.OriginLon < -180 || c.Explorer.OriginLon > 180 {
		errs = append(errs, fmt.Sprintf("explorer.origin_lon must be -180..180, got %v", c.Explorer.OriginLon))
	}
	if c.Explorer.RadiusMiles < 1 || c.Explorer.RadiusMiles > 400 {
		errs = append(errs, fmt.Sprintf("explorer.radius_miles must be 1-400, got %v", c.Explorer.RadiusMiles))
	}
	switch strings.ToLower(c.Explorer.Unit) {
	case "mi", "km":
	default:
		errs = append(errs, fmt.Sprintf("explorer.unit must be mi or km, got %q", c.Explorer.Unit))
	}
	if c.Explorer.SessionTTL <= 0 {
		errs = append(errs, "explorer.session_ttl must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
