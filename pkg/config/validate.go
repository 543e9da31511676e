package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// minSigningKeyLen is the smallest HMAC key accepted for signed cookies.
const minSigningKeyLen = 32

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
//
// An empty machine secret is valid: it disables machine access.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}

	switch c.Gate.APIKeySource {
	case KeySourceStatic:
	case KeySourceEnv:
		if c.Gate.APIKeyEnv == "" {
			errs = append(errs, fmt.Errorf("gate.api_key_env is required when gate.api_key_source is \"env\""))
		}
	default:
		errs = append(errs, fmt.Errorf("gate.api_key_source must be \"static\" or \"env\", got %q", c.Gate.APIKeySource))
	}

	if c.Gate.Header == "" {
		errs = append(errs, fmt.Errorf("gate.header is required"))
	}

	if c.Gate.LoginURL == "" {
		errs = append(errs, fmt.Errorf("gate.login_url is required"))
	} else if _, err := url.Parse(c.Gate.LoginURL); err != nil {
		errs = append(errs, fmt.Errorf("gate.login_url: %w", err))
	}

	if c.Gate.UpstreamURL != "" {
		u, err := url.Parse(c.Gate.UpstreamURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("gate.upstream_url must be an absolute URL, got %q", c.Gate.UpstreamURL))
		}
	}

	reserved := map[string]bool{"/healthz": true, "/readyz": true, c.Observability.Metrics.Path: true}
	for i, p := range c.Gate.Bypass {
		switch {
		case !strings.HasPrefix(p, "/"):
			errs = append(errs, fmt.Errorf("gate.bypass[%d] must be an absolute path, got %q", i, p))
		case reserved[p]:
			errs = append(errs, fmt.Errorf("gate.bypass[%d] %q is served by actiongate itself and cannot be bypassed", i, p))
		}
	}

	switch c.Session.Store {
	case "memory":
	case "postgres":
		if c.Session.Postgres.DSN == "" && c.Session.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("session.postgres.dsn or session.postgres.dsn_file is required when session.store is \"postgres\""))
		}
	default:
		errs = append(errs, fmt.Errorf("session.store must be \"memory\" or \"postgres\", got %q", c.Session.Store))
	}

	if c.Session.SigningKey != "" && len(c.Session.SigningKey) < minSigningKeyLen {
		errs = append(errs, fmt.Errorf("session.signing_key must be at least %d bytes", minSigningKeyLen))
	}

	seen := make(map[string]bool, len(c.Session.Fixtures))
	for i, f := range c.Session.Fixtures {
		if f.ID == "" {
			errs = append(errs, fmt.Errorf("session.fixtures[%d].id is required", i))
			continue
		}
		if seen[f.ID] {
			errs = append(errs, fmt.Errorf("session.fixtures[%d].id %q is duplicated", i, f.ID))
		}
		seen[f.ID] = true
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}
