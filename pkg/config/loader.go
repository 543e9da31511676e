package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rhuss/actiongate/pkg/debug"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, ACTIONGATE_CONFIG env, ./config.yaml, /etc/actiongate/config.yaml)
//  3. .env file (ACTIONGATE_ENV_FILE or ./.env)
//  4. Environment variable overrides
//  5. File reference resolution (_file suffix)
//  6. Validation
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
		debug.Log("config", "loaded config file", "path", filePath)
	}

	if err := loadDotEnv(); err != nil {
		return nil, fmt.Errorf("loading env file: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. ACTIONGATE_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/actiongate/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if envPath := os.Getenv("ACTIONGATE_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		"config.yaml",
		"/etc/actiongate/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// loadDotEnv loads KEY=VALUE pairs into the process environment. Variables
// that are already set win. An explicit ACTIONGATE_ENV_FILE must exist; the
// implicit ./.env is optional.
func loadDotEnv() error {
	if path := os.Getenv("ACTIONGATE_ENV_FILE"); path != "" {
		return godotenv.Load(path)
	}
	if _, err := os.Stat(".env"); err == nil {
		return godotenv.Load(".env")
	}
	return nil
}

// applyEnvOverrides maps environment variables to config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ACTIONGATE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("ACTIONGATE_API_KEY_SOURCE"); v != "" {
		cfg.Gate.APIKeySource = v
	}
	if v := os.Getenv("ACTIONGATE_LOGIN_URL"); v != "" {
		cfg.Gate.LoginURL = v
	}
	if v := os.Getenv("ACTIONGATE_UPSTREAM_URL"); v != "" {
		cfg.Gate.UpstreamURL = v
	}
	if v := os.Getenv("ACTIONGATE_BYPASS"); v != "" {
		cfg.Gate.Bypass = splitList(v)
	}
	if v := os.Getenv("ACTIONGATE_SESSION_STORE"); v != "" {
		cfg.Session.Store = v
	}
	if v := os.Getenv("ACTIONGATE_SESSION_COOKIE"); v != "" {
		cfg.Session.CookieName = v
	}
	if v := os.Getenv("ACTIONGATE_SESSION_SIGNING_KEY"); v != "" {
		cfg.Session.SigningKey = v
	}
	if v := os.Getenv("ACTIONGATE_SESSION_DSN"); v != "" {
		cfg.Session.Postgres.DSN = v
	}
	if v := os.Getenv("ACTIONGATE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// The machine secret is read from its well-known variable. In "env"
	// mode the variable is consulted on every check instead, so the value
	// is not captured here.
	if cfg.Gate.APIKeySource != KeySourceEnv {
		if v := os.Getenv(cfg.Gate.APIKeyEnv); v != "" {
			cfg.Gate.APIKey = v
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// resolveFileReferences reads _file fields and populates the corresponding value fields.
// For each field ending in _file, if the value field is empty and the file field is set,
// the file is read, whitespace is trimmed, and the value field is populated.
func resolveFileReferences(cfg *Config) error {
	// gate.api_key_file -> gate.api_key
	if cfg.Gate.APIKeyFile != "" && cfg.Gate.APIKey == "" {
		val, err := readSecretFile(cfg.Gate.APIKeyFile)
		if err != nil {
			return fmt.Errorf("gate.api_key_file: %w", err)
		}
		cfg.Gate.APIKey = val
	}

	// session.signing_key_file -> session.signing_key
	if cfg.Session.SigningKeyFile != "" && cfg.Session.SigningKey == "" {
		val, err := readSecretFile(cfg.Session.SigningKeyFile)
		if err != nil {
			return fmt.Errorf("session.signing_key_file: %w", err)
		}
		cfg.Session.SigningKey = val
	}

	// session.postgres.dsn_file -> session.postgres.dsn
	if cfg.Session.Postgres.DSNFile != "" && cfg.Session.Postgres.DSN == "" {
		val, err := readSecretFile(cfg.Session.Postgres.DSNFile)
		if err != nil {
			return fmt.Errorf("session.postgres.dsn_file: %w", err)
		}
		cfg.Session.Postgres.DSN = val
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
