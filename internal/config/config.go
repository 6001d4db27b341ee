package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Document root
	DocsDir   string
	Extension string

	// Caching
	ListingTTL        time.Duration
	DocumentCacheSize int

	// Logging: "json" or "text"
	LogFormat string
	LogLevel  string
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "3000"),

		DocsDir:   envOr("DOCS_DIR", "./docs"),
		Extension: envOr("DOCS_EXTENSION", ".md"),

		ListingTTL:        envDuration("LISTING_TTL", 60*time.Second),
		DocumentCacheSize: envInt("DOCUMENT_CACHE_SIZE", 256),

		LogFormat: envOr("LOG_FORMAT", "json"),
		LogLevel:  envOr("LOG_LEVEL", "info"),
	}

	if cfg.ListingTTL <= 0 {
		cfg.ListingTTL = 60 * time.Second
	}
	if cfg.DocumentCacheSize <= 0 {
		cfg.DocumentCacheSize = 256
	}

	return cfg
}

// ResolveDocsDir makes DocsDir absolute relative to the working directory.
func (c *Config) ResolveDocsDir() error {
	if filepath.IsAbs(c.DocsDir) {
		return nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolve docs dir: %w", err)
	}
	c.DocsDir = filepath.Join(wd, c.DocsDir)
	return nil
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	info, err := os.Stat(c.DocsDir)
	if err != nil {
		return fmt.Errorf("directory not found: %s", c.DocsDir)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", c.DocsDir)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
