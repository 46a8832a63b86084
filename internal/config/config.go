// Package config resolves command configuration from flags, the environment
// and an optional .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/goliatone/go-dynform/pkg/logging"
)

const (
	EnvCatalog        = "DYNFORM_CATALOG"
	EnvCatalogTimeout = "DYNFORM_CATALOG_TIMEOUT"
	EnvLogLevel       = "DYNFORM_LOG_LEVEL"
	EnvLogFormat      = "DYNFORM_LOG_FORMAT"
	EnvOutputFormat   = "DYNFORM_OUTPUT"
	EnvRecord         = "DYNFORM_RECORD"
	EnvPort           = "PORT"

	DefaultAddr           = ":8080"
	DefaultCatalogTimeout = 10 * time.Second
)

// Config is shared by the server and the interactive CLI.
type Config struct {
	Addr           string
	Catalog        string
	CatalogTimeout time.Duration
	LogLevel       string
	LogFormat      string
	OutputFormat   string
	// Record is a JSON file holding an existing record to edit.
	Record string
}

// Logging returns the logger configuration for service.
func (c Config) Logging(service string, out io.Writer) logging.Config {
	return logging.Config{
		Level:   c.LogLevel,
		Format:  c.LogFormat,
		Output:  out,
		Service: service,
	}
}

// LoadDotEnv reads .env files into the process environment. Missing files are
// ignored; variables already set win.
func LoadDotEnv(paths ...string) error {
	err := godotenv.Load(paths...)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Load parses args for the named command. Environment values become flag
// defaults so an explicit flag always wins.
func Load(name string, args []string) (*Config, error) {
	cfg := &Config{
		Addr:           addrFromEnv(os.Getenv(EnvPort)),
		Catalog:        strings.TrimSpace(os.Getenv(EnvCatalog)),
		CatalogTimeout: DefaultCatalogTimeout,
		LogLevel:       firstNonEmpty(os.Getenv(EnvLogLevel), logging.LevelInfo),
		LogFormat:      firstNonEmpty(os.Getenv(EnvLogFormat), logging.FormatJSON),
		OutputFormat:   firstNonEmpty(os.Getenv(EnvOutputFormat), "form"),
		Record:         strings.TrimSpace(os.Getenv(EnvRecord)),
	}
	if raw := strings.TrimSpace(os.Getenv(EnvCatalogTimeout)); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", EnvCatalogTimeout, err)
		}
		cfg.CatalogTimeout = timeout
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fs.StringVar(&cfg.Catalog, "catalog", cfg.Catalog, "master field catalog path or URL (embedded catalog when empty)")
	fs.DurationVar(&cfg.CatalogTimeout, "catalog-timeout", cfg.CatalogTimeout, "remote catalog fetch timeout")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (json, text)")
	fs.StringVar(&cfg.OutputFormat, "output", cfg.OutputFormat, "submission output format (json, form, pretty)")
	fs.StringVar(&cfg.Record, "record", cfg.Record, "JSON file with an existing record to edit")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.CatalogTimeout < 0 {
		return nil, errors.New("config: catalog timeout must not be negative")
	}
	cfg.Catalog = strings.TrimSpace(cfg.Catalog)
	cfg.Record = strings.TrimSpace(cfg.Record)
	return cfg, nil
}

func addrFromEnv(port string) string {
	port = strings.TrimSpace(port)
	switch {
	case port == "":
		return DefaultAddr
	case strings.Contains(port, ":"):
		return port
	default:
		return ":" + port
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
