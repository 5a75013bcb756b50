// Package logging provides structured logging for rgraph.
//
// Loggers are plain zerolog.Logger values. The client takes one through
// client.WithLogger and tags it with a component field; without one it logs
// nothing.
//
// Example Usage:
//
//	log := logging.New(logging.Config{Level: "debug", Pretty: true})
//	c, err := client.New(cfg, client.WithLogger(log))
//
// Unlike a service, a client library never touches zerolog's global level, so
// embedding programs keep control of their own logging.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/orneryd/rgraph/pkg/config"
)

// Config holds logger configuration
type Config struct {
	Level      string // trace, debug, info, warn, error, disabled
	Pretty     bool   // pretty-print for development
	Output     io.Writer
	WithCaller bool
}

// FromConfig maps the logging section of the client configuration.
func FromConfig(cfg config.LoggingConfig) Config {
	return Config{
		Level:      cfg.Level,
		Pretty:     cfg.Pretty,
		WithCaller: cfg.Caller,
	}
}

// New creates a structured logger.
//
// Unknown levels fall back to info. Output defaults to stderr so command
// output on stdout stays clean.
func New(cfg Config) zerolog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	// Pretty printing for development
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	zlog := zerolog.New(output).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("service", "rgraph").
		Logger()

	// Add caller information if requested
	if cfg.WithCaller {
		zlog = zlog.With().Caller().Logger()
	}
	return zlog
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "disabled", "off", "none":
		return zerolog.Disabled
	case "":
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// Nop returns a logger that discards everything.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// Component returns a child logger tagged with a component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}
