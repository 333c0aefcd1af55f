package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	"github.com/mohsenKh75/next-patterns/internal/catalogapi"
	"github.com/mohsenKh75/next-patterns/isrcomponents"
)

const defaultListenAddr = ":8080"

// Config is the contents of the TOML configuration file. Every setting is optional.
type Config struct {
	Listen   string `toml:"listen"`
	LogLevel string `toml:"log_level"`

	Catalog      CatalogConfig      `toml:"catalog"`
	Cache        CacheConfig        `toml:"cache"`
	Revalidation RevalidationConfig `toml:"revalidation"`
	Export       ExportConfig       `toml:"export"`
	Telemetry    TelemetryConfig    `toml:"telemetry"`
}

// CatalogConfig selects where products come from. If Files is set, products are read from those
// files instead of the REST API.
type CatalogConfig struct {
	BaseURI        string        `toml:"base_uri"`
	ConnectTimeout time.Duration `toml:"connect_timeout"`
	CACertFile     string        `toml:"ca_cert_file"`
	UserAgent      string        `toml:"user_agent"`
	Files          []string      `toml:"files"`
	Watch          bool          `toml:"watch"`
	WatchDebounce  time.Duration `toml:"watch_debounce"`
}

// CacheConfig configures the revalidation cache.
type CacheConfig struct {
	// Capacity bounds the number of entries kept in memory. Zero means unbounded.
	Capacity int `toml:"capacity"`

	// SQLitePath enables the persistent cache tier in the given database file.
	SQLitePath string `toml:"sqlite_path"`
}

// RevalidationConfig configures on-demand revalidation.
type RevalidationConfig struct {
	StreamURI             string        `toml:"stream_uri"`
	InitialReconnectDelay time.Duration `toml:"initial_reconnect_delay"`
}

// ExportConfig configures the static export.
type ExportConfig struct {
	// PregenerateLimit is the number of product pages to export. If it is not set, the default
	// applies; zero exports no product pages, and a negative value exports all of them.
	PregenerateLimit *int `toml:"pregenerate_limit"`
	Strict           bool `toml:"strict"`
}

// TelemetryConfig enables instrumentation. Tracing adds fetch events to a span per request, and
// Spans also records a span per fetch; finished spans are logged at debug level. Metrics records
// fetch counts and durations, and Prometheus records request counts and durations. Either of the
// last two serves the metrics at /metrics.
type TelemetryConfig struct {
	Tracing    bool `toml:"tracing"`
	Spans      bool `toml:"spans"`
	Metrics    bool `toml:"metrics"`
	Prometheus bool `toml:"prometheus"`
}

func defaultConfig() Config {
	return Config{
		Listen:   defaultListenAddr,
		LogLevel: "info",
		Catalog: CatalogConfig{
			BaseURI:        catalogapi.DefaultBaseURI,
			ConnectTimeout: isrcomponents.DefaultConnectTimeout,
		},
	}
}

// loadConfig reads the configuration file at path over the defaults. An empty path means defaults only.
func loadConfig(path string) (Config, error) {
	config := defaultConfig()
	if path == "" {
		return config, nil
	}
	md, err := toml.DecodeFile(path, &config)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("unknown settings in config file %s: %s", path, strings.Join(keys, ", "))
	}
	if _, err := logLevelFromName(config.LogLevel); err != nil {
		return Config{}, err
	}
	return config, nil
}

func logLevelFromName(name string) (ldlog.LogLevel, error) {
	switch strings.ToLower(name) {
	case "debug":
		return ldlog.Debug, nil
	case "", "info":
		return ldlog.Info, nil
	case "warn":
		return ldlog.Warn, nil
	case "error":
		return ldlog.Error, nil
	case "none":
		return ldlog.None, nil
	}
	return ldlog.None, fmt.Errorf("unknown log level %q", name)
}
