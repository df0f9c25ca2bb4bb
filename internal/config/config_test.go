package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

// setRequired sets the env vars without which Load fails.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("CRM_AUTH_URL", "https://auth.example.com/oauth/token")
	t.Setenv("CRM_CLIENT_ID", "integration")
	t.Setenv("CRM_CLIENT_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Sync.PageSize != 500 {
		t.Errorf("Sync.PageSize = %d, want %d", cfg.Sync.PageSize, 500)
	}
	if cfg.Sync.Concurrency != 4 {
		t.Errorf("Sync.Concurrency = %d, want %d", cfg.Sync.Concurrency, 4)
	}
	if cfg.Sync.BatchSize != 20 {
		t.Errorf("Sync.BatchSize = %d, want %d", cfg.Sync.BatchSize, 20)
	}
	if cfg.Sync.MaxAttempts != 3 {
		t.Errorf("Sync.MaxAttempts = %d, want %d", cfg.Sync.MaxAttempts, 3)
	}
	if cfg.Sync.RetryBaseDelay != 2*time.Second {
		t.Errorf("Sync.RetryBaseDelay = %v, want %v", cfg.Sync.RetryBaseDelay, 2*time.Second)
	}
	if cfg.CRM.RequestTimeout != 30*time.Second {
		t.Errorf("CRM.RequestTimeout = %v, want %v", cfg.CRM.RequestTimeout, 30*time.Second)
	}
	if cfg.Sync.Interval != 0 {
		t.Errorf("Sync.Interval = %v, want 0", cfg.Sync.Interval)
	}
	if cfg.Sync.TolerateTotalFailure {
		t.Error("Sync.TolerateTotalFailure = true, want false")
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SYNC_CONCURRENCY", "8")
	t.Setenv("SYNC_TOLERATE_TOTAL_FAILURE", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Sync.Concurrency != 8 {
		t.Errorf("Sync.Concurrency = %d, want %d", cfg.Sync.Concurrency, 8)
	}
	if !cfg.Sync.TolerateTotalFailure {
		t.Error("Sync.TolerateTotalFailure = false, want true")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	setRequired(t)
	os.Unsetenv("DATABASE_URL")
	t.Setenv("DB_URL", "postgres://localhost/alttest")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.URL != "postgres://localhost/alttest" {
		t.Errorf("Database.URL = %q, want %q", cfg.Database.URL, "postgres://localhost/alttest")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequired(t)
	os.Unsetenv("DATABASE_URL")
	os.Unsetenv("DB_URL")

	if _, err := Load(); err == nil {
		t.Fatal("Load() expected error for missing DATABASE_URL")
	}
}

func TestLoad_Duration(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_READ_TIMEOUT", "45s")
	t.Setenv("SYNC_RETRY_BASE_DELAY", "1m30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.ReadTimeout != 45*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, 45*time.Second)
	}
	if cfg.Sync.RetryBaseDelay != 90*time.Second {
		t.Errorf("Sync.RetryBaseDelay = %v, want %v", cfg.Sync.RetryBaseDelay, 90*time.Second)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "SERVER_PORT", "70000"},
		{"non-numeric page size", "SYNC_PAGE_SIZE", "lots"},
		{"zero concurrency", "SYNC_CONCURRENCY", "0"},
		{"negative attempts", "SYNC_MAX_ATTEMPTS", "-1"},
		{"bad duration", "CRM_REQUEST_TIMEOUT", "soon"},
		{"bad log level", "LOG_LEVEL", "verbose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Fatalf("Load() with %s=%s expected error", tt.key, tt.value)
			}
		})
	}
}

func TestConfig_StringMasksSecrets(t *testing.T) {
	setRequired(t)
	t.Setenv("CRM_CLIENT_SECRET", "hunter2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	s := cfg.String()
	if strings.Contains(s, "hunter2") {
		t.Error("Config.String() leaked the client secret")
	}
	if strings.Contains(s, "postgres://") {
		t.Error("Config.String() leaked the database URL")
	}
}

func TestServerConfig_Addr(t *testing.T) {
	cfg := ServerConfig{Host: "127.0.0.1", Port: 9000}
	if got := cfg.Addr(); got != "127.0.0.1:9000" {
		t.Errorf("Addr() = %q, want %q", got, "127.0.0.1:9000")
	}

	cfg.Host = ""
	if got := cfg.Addr(); got != ":9000" {
		t.Errorf("Addr() = %q, want %q", got, ":9000")
	}
}
