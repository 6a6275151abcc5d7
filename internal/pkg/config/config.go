package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/samirrijal/wellpath/internal/pkg/wellpath"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Geometry  GeometryConfig  `mapstructure:"geometry"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
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

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

// GeometryConfig tunes descriptor composition and diameter sanitizing.
type GeometryConfig struct {
	VisualScale     float64 `mapstructure:"visual_scale"`
	DefaultDiameter float64 `mapstructure:"default_diameter"`
	DefaultColor    string  `mapstructure:"default_color"`
	ScaleThreshold  float64 `mapstructure:"scale_threshold"`
	ScaleDivisor    float64 `mapstructure:"scale_divisor"`
	MaxWorkers      int     `mapstructure:"max_workers"`
}

type CacheConfig struct {
	DescriptorTTL int `mapstructure:"descriptor_ttl"` // seconds
	NearbyTTL     int `mapstructure:"nearby_ttl"`     // seconds
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "wellpath")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "wellpath")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "survey-imports")
	v.SetDefault("geometry.visual_scale", 50.0)
	v.SetDefault("geometry.default_diameter", 8.5)
	v.SetDefault("geometry.default_color", "#808080")
	v.SetDefault("geometry.scale_threshold", 100.0)
	v.SetDefault("geometry.scale_divisor", 1000.0)
	v.SetDefault("geometry.max_workers", 4)
	v.SetDefault("cache.descriptor_ttl", 600)
	v.SetDefault("cache.nearby_ttl", 300)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: WELLPATH_DATABASE_HOST → database.host
	v.SetEnvPrefix("WELLPATH")
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
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Temporal.TaskQueue == "" {
		errs = append(errs, "temporal.task_queue is required")
	}
	if c.Geometry.VisualScale <= 0 {
		errs = append(errs, "geometry.visual_scale must be positive")
	}
	if c.Geometry.DefaultDiameter <= 0 {
		errs = append(errs, "geometry.default_diameter must be positive")
	}
	if c.Geometry.ScaleDivisor <= 0 {
		errs = append(errs, "geometry.scale_divisor must be positive")
	}
	if c.Geometry.MaxWorkers < 0 {
		errs = append(errs, "geometry.max_workers must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Sanitizer builds the mechanical-row sanitizer described by the config.
func (g GeometryConfig) Sanitizer() wellpath.Sanitizer {
	s := wellpath.DefaultSanitizer()
	if g.ScaleThreshold > 0 && g.ScaleDivisor > 0 {
		s.Correct = wellpath.DivideAbove(g.ScaleThreshold, g.ScaleDivisor)
	}
	if g.DefaultDiameter > 0 {
		s.Fallback = g.DefaultDiameter
	}
	if g.DefaultColor != "" {
		s.Color = g.DefaultColor
	}
	return s
}

// Compositor builds the descriptor compositor described by the config.
func (g GeometryConfig) Compositor() wellpath.Compositor {
	c := wellpath.DefaultCompositor()
	if g.VisualScale > 0 {
		c.VisualScale = g.VisualScale
	}
	if g.DefaultDiameter > 0 {
		c.OpenHoleDiameter = g.DefaultDiameter
	}
	if g.MaxWorkers > 0 {
		c.MaxGoroutines = g.MaxWorkers
	}
	return c
}
