// Package config handles rgraph client configuration.
//
// Configuration comes from three layers, lowest priority first: built-in
// defaults, an optional YAML file and RGRAPH_* environment variables. The
// result is checked with Validate() before a client is created.
//
// Example Usage:
//
//	cfg, err := config.LoadFile("./rgraph.yaml")
//	if err != nil {
//		log.Fatalf("config: %v", err)
//	}
//	if err := cfg.Validate(); err != nil {
//		log.Fatalf("Invalid config: %v", err)
//	}
//
//	fmt.Printf("RedisGraph server: %s\n", cfg.Redis.Addr)
//
// Environment Variables:
//   - RGRAPH_ADDR="localhost:6379"
//   - RGRAPH_PASSWORD=""
//   - RGRAPH_DB=0
//   - RGRAPH_MAX_IDLE=8, RGRAPH_MAX_ACTIVE=0 (unlimited)
//   - RGRAPH_IDLE_TIMEOUT=5m
//   - RGRAPH_DIAL_TIMEOUT=5s, RGRAPH_READ_TIMEOUT=0, RGRAPH_WRITE_TIMEOUT=0
//   - RGRAPH_QUERY_TIMEOUT=0 (no client-side deadline)
//   - RGRAPH_SERVER_TIMEOUT=0 (no server-side timeout argument)
//   - RGRAPH_LOG_LEVEL="info", RGRAPH_LOG_PRETTY=false
//   - RGRAPH_METRICS_ENABLED=false
//   - RGRAPH_POOL_ENABLED=true, RGRAPH_POOL_MAX_SIZE=1000
//
// Durations accept Go syntax ("1500ms", "5s") or a bare number of seconds.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all rgraph client configuration.
//
// Configuration is organized into logical sections:
//   - Redis: Connection and pool settings
//   - Query: Client- and server-side query deadlines
//   - Logging: Log level and format
//   - Metrics: Prometheus instrumentation
//   - Pool: Command text buffer pooling
type Config struct {
	Redis   RedisConfig   `yaml:"redis"`
	Query   QueryConfig   `yaml:"query"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Pool    PoolConfig    `yaml:"pool"`
}

// RedisConfig holds connection settings for the RedisGraph server.
type RedisConfig struct {
	// Addr is the host:port of the server.
	Addr string `yaml:"addr"`

	// Password for AUTH. Empty disables AUTH.
	Password string `yaml:"password"`

	// Database selected after connecting.
	Database int `yaml:"database"`

	// MaxIdle is the maximum number of idle pooled connections.
	MaxIdle int `yaml:"max_idle"`

	// MaxActive caps open connections. Zero means no limit.
	MaxActive int `yaml:"max_active"`

	// Wait makes Get block when MaxActive is reached instead of failing.
	Wait bool `yaml:"wait"`

	// IdleTimeout closes connections idle for longer than this.
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// QueryConfig holds query deadline settings.
type QueryConfig struct {
	// DefaultTimeout bounds a query when the caller's context has no
	// deadline. Zero disables it.
	DefaultTimeout time.Duration `yaml:"default_timeout"`

	// ServerTimeout is sent as the "timeout" argument of every query that
	// does not set its own. Zero sends none.
	ServerTimeout time.Duration `yaml:"server_timeout"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error, disabled.
	Level string `yaml:"level"`

	// Pretty switches from JSON lines to human-readable console output.
	Pretty bool `yaml:"pretty"`

	// Caller adds the file:line of each log call.
	Caller bool `yaml:"caller"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// PoolConfig controls pooling of command text buffers.
type PoolConfig struct {
	Enabled bool `yaml:"enabled"`
	MaxSize int  `yaml:"max_size"`
}

// DefaultConfig returns the configuration used when nothing is set.
//
// Example:
//
//	cfg := config.DefaultConfig()
//	cfg.Redis.Addr = "graph.internal:6379"
func DefaultConfig() *Config {
	return &Config{
		Redis: RedisConfig{
			Addr:        "localhost:6379",
			MaxIdle:     8,
			IdleTimeout: 5 * time.Minute,
			DialTimeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Pool: PoolConfig{
			Enabled: true,
			MaxSize: 1000,
		},
	}
}

// LoadFromEnv returns the defaults overridden by RGRAPH_* environment variables.
//
// ELI12:
//
// Think of LoadFromEnv like reading a recipe from sticky notes on your fridge:
//
//   - Each sticky note is an environment variable (e.g., "RGRAPH_ADDR=db:6379")
//   - If there's no sticky note, use the default ("no address? use localhost:6379")
//   - The function reads ALL the sticky notes and builds a complete recipe
//
// Unparsable values are ignored and the previous value is kept.
func LoadFromEnv() *Config {
	cfg := DefaultConfig()
	cfg.applyEnv()
	return cfg
}

// LoadFile reads a YAML file on top of the defaults and then applies the
// environment. Keys missing from the file keep their default value.
//
// Example file:
//
//	redis:
//	  addr: graph.internal:6379
//	  max_active: 32
//	query:
//	  default_timeout: 10s
//	logging:
//	  level: debug
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.applyEnv()
	return cfg, nil
}

// Load reads path when it is non-empty and falls back to LoadFromEnv.
func Load(path string) (*Config, error) {
	if path == "" {
		return LoadFromEnv(), nil
	}
	return LoadFile(path)
}

func (c *Config) applyEnv() {
	c.Redis.Addr = getEnv("RGRAPH_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("RGRAPH_PASSWORD", c.Redis.Password)
	c.Redis.Database = getEnvInt("RGRAPH_DB", c.Redis.Database)
	c.Redis.MaxIdle = getEnvInt("RGRAPH_MAX_IDLE", c.Redis.MaxIdle)
	c.Redis.MaxActive = getEnvInt("RGRAPH_MAX_ACTIVE", c.Redis.MaxActive)
	c.Redis.Wait = getEnvBool("RGRAPH_POOL_WAIT", c.Redis.Wait)
	c.Redis.IdleTimeout = getEnvDuration("RGRAPH_IDLE_TIMEOUT", c.Redis.IdleTimeout)
	c.Redis.DialTimeout = getEnvDuration("RGRAPH_DIAL_TIMEOUT", c.Redis.DialTimeout)
	c.Redis.ReadTimeout = getEnvDuration("RGRAPH_READ_TIMEOUT", c.Redis.ReadTimeout)
	c.Redis.WriteTimeout = getEnvDuration("RGRAPH_WRITE_TIMEOUT", c.Redis.WriteTimeout)

	c.Query.DefaultTimeout = getEnvDuration("RGRAPH_QUERY_TIMEOUT", c.Query.DefaultTimeout)
	c.Query.ServerTimeout = getEnvDuration("RGRAPH_SERVER_TIMEOUT", c.Query.ServerTimeout)

	c.Logging.Level = getEnv("RGRAPH_LOG_LEVEL", c.Logging.Level)
	c.Logging.Pretty = getEnvBool("RGRAPH_LOG_PRETTY", c.Logging.Pretty)
	c.Logging.Caller = getEnvBool("RGRAPH_LOG_CALLER", c.Logging.Caller)

	c.Metrics.Enabled = getEnvBool("RGRAPH_METRICS_ENABLED", c.Metrics.Enabled)

	c.Pool.Enabled = getEnvBool("RGRAPH_POOL_ENABLED", c.Pool.Enabled)
	c.Pool.MaxSize = getEnvInt("RGRAPH_POOL_MAX_SIZE", c.Pool.MaxSize)
}

var validLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true,
	"error": true, "fatal": true, "panic": true, "disabled": true,
}

// Validate checks the configuration for logical errors and invalid values.
//
// This method checks:
//   - The server address is set and has a port
//   - Pool limits and timeouts are not negative
//   - MaxIdle does not exceed a non-zero MaxActive
//   - The log level is known
func (c *Config) Validate() error {
	if c.Redis.Addr == "" {
		return fmt.Errorf("%w: redis address is empty", ErrInvalidConfig)
	}
	if !strings.Contains(c.Redis.Addr, ":") {
		return fmt.Errorf("%w: redis address %q has no port", ErrInvalidConfig, c.Redis.Addr)
	}
	if c.Redis.Database < 0 {
		return fmt.Errorf("%w: database %d", ErrInvalidConfig, c.Redis.Database)
	}
	if c.Redis.MaxIdle < 0 || c.Redis.MaxActive < 0 {
		return fmt.Errorf("%w: pool limits must not be negative", ErrInvalidConfig)
	}
	if c.Redis.MaxActive > 0 && c.Redis.MaxIdle > c.Redis.MaxActive {
		return fmt.Errorf("%w: max_idle %d exceeds max_active %d", ErrInvalidConfig, c.Redis.MaxIdle, c.Redis.MaxActive)
	}
	for name, d := range map[string]time.Duration{
		"idle_timeout":    c.Redis.IdleTimeout,
		"dial_timeout":    c.Redis.DialTimeout,
		"read_timeout":    c.Redis.ReadTimeout,
		"write_timeout":   c.Redis.WriteTimeout,
		"default_timeout": c.Query.DefaultTimeout,
		"server_timeout":  c.Query.ServerTimeout,
	} {
		if d < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, name)
		}
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Logging.Level)
	}
	return nil
}

// String returns a safe string representation of the Config.
//
// The password is never included, making this safe for logging.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Addr: %s, DB: %d, Auth: %v, MaxIdle: %d, MaxActive: %d, QueryTimeout: %s, LogLevel: %s}",
		c.Redis.Addr, c.Redis.Database, c.Redis.Password != "",
		c.Redis.MaxIdle, c.Redis.MaxActive,
		c.Query.DefaultTimeout, c.Logging.Level,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		val = strings.ToLower(val)
		return val == "true" || val == "1" || val == "yes" || val == "on"
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		// Try parsing as seconds
		if secs, err := strconv.Atoi(val); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultVal
}
