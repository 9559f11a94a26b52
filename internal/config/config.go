// Package config provides centralized configuration management for the
// conversion API and the upload front end. It loads configuration from
// environment variables with sensible defaults and validates all settings on
// startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables; each binary only
// reads the sections it needs.
type Config struct {
	App      AppConfig
	API      APIConfig
	UI       UIConfig
	Server   ServerConfig
	Upload   UploadConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// AppConfig holds application identity settings.
type AppConfig struct {
	// Name is shown in page titles and startup logs
	Name string `env:"APP_NAME" default:"CSV 2 JSON Converter"`

	// Debug enables verbose logging regardless of LOG_LEVEL (default: false)
	Debug bool `env:"DEBUG" default:"false"`
}

// APIConfig holds settings for the conversion API server.
type APIConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"API_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 5000)
	Port int `env:"API_PORT" default:"5000"`

	// MaxConcurrent is the maximum number of conversions run in parallel (default: 8)
	MaxConcurrent int `env:"API_MAX_CONCURRENT" default:"8"`

	// MaxWaitTime is how long a request waits for a conversion slot (default: 10s)
	MaxWaitTime time.Duration `env:"API_MAX_WAIT_TIME" default:"10s"`

	// MetricsEnabled exposes Prometheus metrics on /metrics (default: true)
	MetricsEnabled bool `env:"METRICS_ENABLED" default:"true"`
}

// UIConfig holds settings for the upload front end.
type UIConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"UI_HOST" envAlt:"HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"UI_PORT" envAlt:"PORT" default:"8080"`

	// APIURL is the base URL of the conversion API (default: http://localhost:5000)
	APIURL string `env:"API_URL" default:"http://localhost:5000"`

	// APITimeout bounds each call to the conversion API (default: 30s)
	APITimeout time.Duration `env:"API_TIMEOUT" default:"30s"`
}

// ServerConfig holds HTTP server settings shared by both binaries.
type ServerConfig struct {
	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// UploadConfig holds CSV upload limits.
type UploadConfig struct {
	// MaxFileSize is the maximum accepted content size in bytes (default: 16MiB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" envAlt:"MAX_CONTENT_LENGTH" default:"16777216"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// CSRFEnabled requires a matching CSRF token on form posts (default: true)
	CSRFEnabled bool `env:"SECURITY_CSRF_ENABLED" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text, json or pretty (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the API listen address in host:port format.
func (c *APIConfig) Addr() string {
	return hostPort(c.Host, c.Port)
}

// Addr returns the front end listen address in host:port format.
func (c *UIConfig) Addr() string {
	return hostPort(c.Host, c.Port)
}

func hostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
