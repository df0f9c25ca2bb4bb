// Package config provides centralized configuration management for the
// synchronizer. It loads configuration from environment variables with
// sensible defaults and validates all settings on startup to fail fast on
// misconfiguration.
package config

import "time"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CRM      CRMConfig
	Sync     SyncConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response. Sync
	// runs are served synchronously, so this must cover a full run
	// (default: 0 for no limit)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (required)
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 2)
	MinConns int `env:"DB_MIN_CONNS" default:"2"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// CRMConfig holds the external CRM connection settings.
type CRMConfig struct {
	// AuthURL is the token endpoint of the CRM (required)
	AuthURL string `env:"CRM_AUTH_URL" required:"true"`

	// ClientID identifies this integration to the CRM (required)
	ClientID string `env:"CRM_CLIENT_ID" required:"true"`

	// ClientSecret authenticates this integration (required)
	ClientSecret string `env:"CRM_CLIENT_SECRET" required:"true"`

	// RequestTimeout bounds each individual CRM call (default: 30s)
	RequestTimeout time.Duration `env:"CRM_REQUEST_TIMEOUT" default:"30s"`

	// TokenSkew is subtracted from a token's validity window before it is
	// considered expired (default: 60s)
	TokenSkew time.Duration `env:"CRM_TOKEN_SKEW" default:"60s"`
}

// SyncConfig tunes the delivery pipeline.
type SyncConfig struct {
	// PageSize is the number of product rows fetched per page (default: 500)
	PageSize int `env:"SYNC_PAGE_SIZE" default:"500"`

	// Concurrency is the number of delivery units in flight at once (default: 4)
	Concurrency int `env:"SYNC_CONCURRENCY" default:"4"`

	// BatchSize is the number of documents per bulk delivery unit (default: 20)
	BatchSize int `env:"SYNC_BATCH_SIZE" default:"20"`

	// MaxAttempts is the retry budget per delivery unit (default: 3)
	MaxAttempts int `env:"SYNC_MAX_ATTEMPTS" default:"3"`

	// RetryBaseDelay is the back-off base; the wait before attempt n+1 is
	// RetryBaseDelay × n (default: 2s)
	RetryBaseDelay time.Duration `env:"SYNC_RETRY_BASE_DELAY" default:"2s"`

	// Interval enables the background scheduler when positive; 0 disables
	// it and syncs run only on API trigger (default: 0s)
	Interval time.Duration `env:"SYNC_INTERVAL" default:"0s"`

	// TolerateTotalFailure reports an all-units-failed run as a summary
	// instead of an error (default: false)
	TolerateTotalFailure bool `env:"SYNC_TOLERATE_TOTAL_FAILURE" default:"false"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// itoa converts an int to its decimal string form.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
