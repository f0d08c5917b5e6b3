package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr           string        `yaml:"addr"`
	JWTSecret      string        `yaml:"jwt_secret"`
	APITimeout     time.Duration `yaml:"timeout"`
	DatabasePath   string        `yaml:"database_path"`
	TokenDuration  time.Duration `yaml:"token_duration"`
	UploadDir      string        `yaml:"upload_dir"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	Workers        WorkerConfig  `yaml:"workers"`
}

type WorkerConfig struct {
	Count        int           `yaml:"count"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

const defaultJWTSecret = "supersecretkey"

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:           getEnv("TRACKD_ADDR", ":8080"),
		JWTSecret:      getEnv("TRACKD_JWT_SECRET", defaultJWTSecret),
		APITimeout:     15 * time.Second,
		DatabasePath:   getEnv("TRACKD_DATABASE_PATH", "trackd.db"),
		TokenDuration:  8 * time.Hour,
		UploadDir:      getEnv("TRACKD_UPLOAD_DIR", "uploads"),
		MaxUploadBytes: 10 << 20,
		Workers: WorkerConfig{
			Count:        2,
			PollInterval: 500 * time.Millisecond,
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate applies defaults for zero-valued fields and rejects settings
// that must not reach production, like the development JWT secret.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path is required")
	}
	if c.JWTSecret == defaultJWTSecret && os.Getenv("TRACKD_ENV") != "development" {
		return fmt.Errorf("jwt_secret must be changed outside development")
	}
	if c.APITimeout <= 0 {
		c.APITimeout = 15 * time.Second
	}
	if c.TokenDuration <= 0 {
		c.TokenDuration = 8 * time.Hour
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 10 << 20
	}
	if c.Workers.Count <= 0 {
		c.Workers.Count = 2
	}
	if c.Workers.PollInterval <= 0 {
		c.Workers.PollInterval = 500 * time.Millisecond
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
