package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/trackops/trackd/internal/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	_ = os.Unsetenv("TRACKD_ADDR")
	_ = os.Unsetenv("TRACKD_JWT_SECRET")
	_ = os.Unsetenv("TRACKD_DATABASE_PATH")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error for empty path: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected Addr: got %q want %q", cfg.Addr, ":8080")
	}
	if cfg.DatabasePath != "trackd.db" {
		t.Fatalf("unexpected DatabasePath: got %q want %q", cfg.DatabasePath, "trackd.db")
	}
	if cfg.APITimeout != 15*time.Second {
		t.Fatalf("unexpected APITimeout: got %v", cfg.APITimeout)
	}
	if cfg.TokenDuration != 8*time.Hour {
		t.Fatalf("unexpected TokenDuration: got %v", cfg.TokenDuration)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Fatalf("unexpected MaxUploadBytes: got %d", cfg.MaxUploadBytes)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	f, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(f.Name())
	f.Close()

	content := []byte("addr: \":9090\"\njwt_secret: \"filekey\"\ntimeout: \"30s\"\ndatabase_path: \"test.db\"\ntoken_duration: \"2h\"\nupload_dir: \"/tmp/up\"\n")
	if err := os.WriteFile(f.Name(), content, 0o600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := config.LoadConfig(f.Name())
	if err != nil {
		t.Fatalf("LoadConfig returned error for file: %v", err)
	}

	if cfg.Addr != ":9090" {
		t.Fatalf("unexpected Addr: got %q", cfg.Addr)
	}
	if cfg.JWTSecret != "filekey" {
		t.Fatalf("unexpected JWTSecret: got %q", cfg.JWTSecret)
	}
	if cfg.APITimeout != 30*time.Second {
		t.Fatalf("unexpected APITimeout: got %v", cfg.APITimeout)
	}
	if cfg.TokenDuration != 2*time.Hour {
		t.Fatalf("unexpected TokenDuration: got %v", cfg.TokenDuration)
	}
	if cfg.UploadDir != "/tmp/up" {
		t.Fatalf("unexpected UploadDir: got %q", cfg.UploadDir)
	}
}

func TestLoadConfig_BadPath(t *testing.T) {
	if _, err := config.LoadConfig("/path/that/does/not/exist.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent path, got nil")
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	f, err := os.CreateTemp("", "bad-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(f.Name())
	f.Close()

	if err := os.WriteFile(f.Name(), []byte("::: not yaml :::"), 0o600); err != nil {
		t.Fatalf("failed to write bad yaml: %v", err)
	}

	if _, err := config.LoadConfig(f.Name()); err == nil {
		t.Fatalf("expected YAML decode error, got nil")
	}
}

func TestValidate_InsecureJWT_FailsWhenNotDevelopment(t *testing.T) {
	os.Setenv("TRACKD_ENV", "production")
	defer os.Unsetenv("TRACKD_ENV")

	cfg := &config.Config{
		Addr:          ":8080",
		JWTSecret:     "supersecretkey",
		APITimeout:    5 * time.Second,
		DatabasePath:  "trackd.db",
		TokenDuration: time.Hour,
	}

	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected Validate to fail for insecure JWT in non-development env")
	}
}

func TestValidate_InsecureJWT_AllowsDevelopment(t *testing.T) {
	os.Setenv("TRACKD_ENV", "development")
	defer os.Unsetenv("TRACKD_ENV")

	cfg := &config.Config{
		Addr:          ":8080",
		JWTSecret:     "supersecretkey",
		APITimeout:    5 * time.Second,
		DatabasePath:  "trackd.db",
		TokenDuration: time.Hour,
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected Validate to succeed in development env, got: %v", err)
	}
}

func TestValidate_PopulatesWorkerDefaults(t *testing.T) {
	cfg := &config.Config{
		Addr:         ":8080",
		JWTSecret:    "strongsecret",
		DatabasePath: "trackd.db",
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed unexpectedly: %v", err)
	}
	if cfg.Workers.Count <= 0 {
		t.Fatalf("expected worker count default, got %d", cfg.Workers.Count)
	}
	if cfg.Workers.PollInterval <= 0 {
		t.Fatalf("expected poll interval default, got %v", cfg.Workers.PollInterval)
	}
}
