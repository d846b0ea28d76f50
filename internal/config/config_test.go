package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("WASHDESK_AUTH_JWT_SECRET", "secret")

	cfg, err := Load(writeEnvFile(t, ""))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.DBPath != "washdesk.db" {
		t.Errorf("db path = %q, want %q", cfg.DBPath, "washdesk.db")
	}
	if cfg.Auth.Username != "admin" {
		t.Errorf("username = %q, want %q", cfg.Auth.Username, "admin")
	}
	if cfg.Auth.TokenTTL != 12*time.Hour {
		t.Errorf("token ttl = %v, want 12h", cfg.Auth.TokenTTL)
	}
	if cfg.Archive.Enabled() {
		t.Error("archive should be disabled without S3 settings")
	}
}

func TestLoadFromFileAndEnv(t *testing.T) {
	t.Setenv("WASHDESK_AUTH_JWT_SECRET", "secret")
	t.Setenv("WASHDESK_PORT", "9090")
	t.Setenv("WASHDESK_TRUSTED_PROXIES", "10.0.0.0/8,127.0.0.1")

	path := writeEnvFile(t, "WASHDESK_S3_BUCKET=reports\nWASHDESK_S3_ACCESS_KEY=ak\nWASHDESK_S3_SECRET_KEY=sk\nWASHDESK_ALLOWED_ORIGINS=a.example.com,b.example.com\n")
	t.Cleanup(func() {
		os.Unsetenv("WASHDESK_S3_BUCKET")
		os.Unsetenv("WASHDESK_S3_ACCESS_KEY")
		os.Unsetenv("WASHDESK_S3_SECRET_KEY")
		os.Unsetenv("WASHDESK_ALLOWED_ORIGINS")
	})

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("port = %q, want %q", cfg.Port, "9090")
	}
	if !cfg.Archive.Enabled() {
		t.Error("expected archive enabled from env file")
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "b.example.com" {
		t.Errorf("allowed origins = %v", cfg.AllowedOrigins)
	}
	if len(cfg.TrustedProxies) != 2 || cfg.TrustedProxies[0] != "10.0.0.0/8" {
		t.Errorf("trusted proxies = %v", cfg.TrustedProxies)
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("WASHDESK_AUTH_JWT_SECRET", "")

	_, err := Load(writeEnvFile(t, ""))
	if !errors.Is(err, ErrMissingJWTSecret) {
		t.Errorf("err = %v, want ErrMissingJWTSecret", err)
	}
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	return path
}
