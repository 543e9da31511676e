// Package config provides unified configuration for the actiongate server.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. .env file (does not override variables already set in the environment)
//  4. Environment variable overrides (ACTIONGATE_ prefix, plus IVR_API_KEY)
//  5. File reference resolution (_file suffix fields)
//  6. Validation
package config

import "time"

// Config holds all configuration for the actiongate server.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Gate          GateConfig          `yaml:"gate"`
	Session       SessionConfig       `yaml:"session"`
	Observability ObservabilityConfig `yaml:"observability"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`             // default: 8080
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // default: 30s
	WriteTimeout    time.Duration `yaml:"write_timeout"`    // default: 60s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default: 15s
}

// Machine secret sources.
const (
	KeySourceStatic = "static"
	KeySourceEnv    = "env"
)

// GateConfig holds the authorization gate settings.
type GateConfig struct {
	// APIKey is the machine-caller shared secret. Empty disables machine access.
	APIKey     string `yaml:"api_key"`
	APIKeyFile string `yaml:"api_key_file"` // _file variant for api_key

	// APIKeySource selects how the secret is read: "static" resolves it once
	// at startup, "env" re-reads APIKeyEnv on every check.
	APIKeySource string `yaml:"api_key_source"` // default: "static"
	APIKeyEnv    string `yaml:"api_key_env"`    // default: "IVR_API_KEY"

	Header      string   `yaml:"header"`       // default: "X-API-Key"
	LoginURL    string   `yaml:"login_url"`    // default: "/login"
	UpstreamURL string   `yaml:"upstream_url"` // optional reverse-proxy target
	Bypass      []string `yaml:"bypass"`       // upstream paths served without the gate; default: none
}

// SessionConfig holds session lookup settings.
type SessionConfig struct {
	Store          string           `yaml:"store"`       // "memory" or "postgres", default: "memory"
	CookieName     string           `yaml:"cookie_name"` // default: "session"
	SigningKey     string           `yaml:"signing_key"` // optional; enables signed cookies
	SigningKeyFile string           `yaml:"signing_key_file"`
	Issuer         string           `yaml:"issuer"` // optional iss claim for signed cookies
	Fixtures       []SessionFixture `yaml:"fixtures"`
	Postgres       PostgresConfig   `yaml:"postgres"`
}

// SessionFixture seeds one session into the memory store.
type SessionFixture struct {
	ID        string        `yaml:"id"`
	Staff     *StaffFixture `yaml:"staff"`
	ExpiresAt time.Time     `yaml:"expires_at"`
}

// StaffFixture is the staff credential of a seeded session.
type StaffFixture struct {
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"`  // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"` // default: 10
	Table          string `yaml:"table"`     // default: "sessions"
	MigrateOnStart bool   `yaml:"migrate_on_start"`
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// TracingConfig toggles OpenTelemetry spans around gate evaluations.
type TracingConfig struct {
	Enabled bool `yaml:"enabled"` // default: false
}

// LoggingConfig holds slog and debug category settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // default: "INFO"
	Format string `yaml:"format"` // "text" or "json", default: "text"
	Debug  string `yaml:"debug"`  // comma-separated debug categories
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Gate: GateConfig{
			APIKeySource: KeySourceStatic,
			APIKeyEnv:    "IVR_API_KEY",
			Header:       "X-API-Key",
			LoginURL:     "/login",
		},
		Session: SessionConfig{
			Store:      "memory",
			CookieName: "session",
			Postgres: PostgresConfig{
				MaxConns: 10,
				Table:    "sessions",
			},
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
		},
	}
}
