package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 0.0.0.0
  port: 8080
  client_origin: http://localhost:3000
database:
  host: localhost
  port: 5432
  user: tradetide
  password: secret
  dbname: tradetide
  sslmode: disable
jwt:
  secret: super-secret
  expiry_days: 14
rate_limit:
  requests_per_minute: 120
log:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.JWT.ExpiryDays != 14 {
		t.Errorf("expiry days = %d, want 14", cfg.JWT.ExpiryDays)
	}
	if cfg.RateLimit.RequestsPerMinute != 120 {
		t.Errorf("rate limit = %d, want 120", cfg.RateLimit.RequestsPerMinute)
	}
	// Burst defaults to the per-minute rate when unset.
	if cfg.RateLimit.Burst != 120 {
		t.Errorf("burst = %d, want defaulted 120", cfg.RateLimit.Burst)
	}

	want := "host=localhost port=5432 user=tradetide password=secret dbname=tradetide sslmode=disable"
	if got := cfg.Database.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
jwt:
  secret: s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("default port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.JWT.ExpiryDays != 7 {
		t.Errorf("default expiry days = %d, want 7", cfg.JWT.ExpiryDays)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 5000
database:
  url: postgres://file-value
jwt:
  secret: file-secret
`)

	t.Setenv("TRADETIDE_DATABASE_URL", "postgres://env-value")
	t.Setenv("TRADETIDE_JWT_SECRET", "env-secret")
	t.Setenv("TRADETIDE_PORT", "9999")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.URL != "postgres://env-value" {
		t.Errorf("database URL = %q, want env override", cfg.Database.URL)
	}
	if cfg.Database.DSN() != "postgres://env-value" {
		t.Errorf("DSN() = %q, want the URL verbatim", cfg.Database.DSN())
	}
	if cfg.JWT.Secret != "env-secret" {
		t.Errorf("jwt secret = %q, want env override", cfg.JWT.Secret)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("port = %d, want env override 9999", cfg.Server.Port)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() on a missing file succeeded")
	}
}
