// Package config loads the static process configuration: the backend
// endpoint, the sandbox settings and the category and assignee directory.
// It is read once at start and never reloaded.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alexanderramin/sprintdesk/internal/backend/odoo"
	"github.com/alexanderramin/sprintdesk/internal/db"
	"github.com/alexanderramin/sprintdesk/internal/domain"
	"github.com/joho/godotenv"
)

// BackendKind selects the Backend implementation.
type BackendKind string

const (
	BackendOdoo    BackendKind = "odoo"
	BackendSandbox BackendKind = "sqlite"
)

type Config struct {
	Backend   BackendKind
	Odoo      odoo.Config
	Sandbox   SandboxConfig
	Directory Directory

	// Login and Password prefill the credential form when set.
	Login    string
	Password string

	LogUseCases bool
	LogCalls    bool
	TagTopN     int
}

// SandboxConfig configures the local SQLite backend.
type SandboxConfig struct {
	Path     string
	Login    string
	Name     string
	Password string
}

// Load reads .env (when present), then SPRINTDESK_* variables, then the
// directory file, and validates the result.
func Load() (*Config, error) {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg := Default()
	applyEnv(cfg)

	path := os.Getenv("SPRINTDESK_DIRECTORY")
	if path == "" {
		if _, err := os.Stat(DefaultDirectoryFile); err == nil {
			path = DefaultDirectoryFile
		}
	}
	if path != "" {
		dir, err := LoadDirectory(path)
		if err != nil {
			return nil, err
		}
		cfg.Directory = dir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Backend: BackendOdoo,
		Odoo:    odoo.DefaultConfig(),
		Sandbox: SandboxConfig{
			Path:     db.MemoryPath,
			Login:    "admin",
			Name:     "Sandbox Admin",
			Password: "admin",
		},
		Directory: DefaultDirectory(),
		TagTopN:   5,
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SPRINTDESK_BACKEND"); v != "" {
		cfg.Backend = BackendKind(strings.ToLower(v))
	}
	cfg.Odoo.URL = strings.TrimRight(getEnv("SPRINTDESK_URL", cfg.Odoo.URL), "/")
	cfg.Odoo.Database = getEnv("SPRINTDESK_DB", cfg.Odoo.Database)
	cfg.Odoo.TimeoutMs = getEnvAsInt("SPRINTDESK_TIMEOUT_MS", cfg.Odoo.TimeoutMs)
	cfg.Odoo.MaxRetries = getEnvAsInt("SPRINTDESK_MAX_RETRIES", cfg.Odoo.MaxRetries)
	if v := os.Getenv("SPRINTDESK_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.Odoo.RatePerSec = f
		}
	}

	cfg.Sandbox.Path = getEnv("SPRINTDESK_SANDBOX_DB", cfg.Sandbox.Path)
	cfg.Sandbox.Login = getEnv("SPRINTDESK_SANDBOX_LOGIN", cfg.Sandbox.Login)
	cfg.Sandbox.Password = getEnv("SPRINTDESK_SANDBOX_PASSWORD", cfg.Sandbox.Password)

	cfg.Login = getEnv("SPRINTDESK_LOGIN", cfg.Login)
	cfg.Password = getEnv("SPRINTDESK_PASSWORD", cfg.Password)

	cfg.LogUseCases = getEnvAsBool("SPRINTDESK_LOG", cfg.LogUseCases)
	cfg.LogCalls = getEnvAsBool("SPRINTDESK_LOG_CALLS", cfg.LogCalls)
	cfg.TagTopN = getEnvAsInt("SPRINTDESK_TAG_TOP_N", cfg.TagTopN)
}

// Validate checks the settings the selected backend needs.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendOdoo:
		if c.Odoo.URL == "" {
			return fmt.Errorf("SPRINTDESK_URL is required for the odoo backend")
		}
		if c.Odoo.Database == "" {
			return fmt.Errorf("SPRINTDESK_DB is required for the odoo backend")
		}
		if c.Odoo.TimeoutMs <= 0 {
			return fmt.Errorf("SPRINTDESK_TIMEOUT_MS must be positive")
		}
		if c.Odoo.MaxRetries < 0 {
			return fmt.Errorf("SPRINTDESK_MAX_RETRIES must not be negative")
		}
	case BackendSandbox:
		if c.Sandbox.Login == "" || c.Sandbox.Password == "" {
			return fmt.Errorf("sandbox login and password are required")
		}
	default:
		return fmt.Errorf("unknown backend %q (want %q or %q)", c.Backend, BackendOdoo, BackendSandbox)
	}
	if c.TagTopN <= 0 {
		return fmt.Errorf("SPRINTDESK_TAG_TOP_N must be positive")
	}
	return c.Directory.Validate()
}

// StageNames returns the categories as backend stage names.
func (c *Config) StageNames() []string {
	names := make([]string, len(c.Directory.Categories))
	for i, cat := range c.Directory.Categories {
		names[i] = string(cat)
	}
	return names
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// Directory is the fixed category and assignee directory.
type Directory struct {
	ProjectManager string            `yaml:"project_manager"`
	Categories     []domain.Category `yaml:"categories"`
	Assignees      []domain.Assignee `yaml:"assignees"`
}
