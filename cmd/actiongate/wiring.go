package main

import (
	"context"
	"fmt"

	"github.com/rhuss/actiongate/pkg/auth/apikey"
	"github.com/rhuss/actiongate/pkg/config"
	"github.com/rhuss/actiongate/pkg/session"
	"github.com/rhuss/actiongate/pkg/session/cookie"
	"github.com/rhuss/actiongate/pkg/session/memory"
	"github.com/rhuss/actiongate/pkg/session/postgres"
)

// newLookup builds the configured session backend. The returned func
// releases it.
func newLookup(ctx context.Context, cfg config.SessionConfig) (session.Lookup, func(), error) {
	switch cfg.Store {
	case "postgres":
		l, err := postgres.New(ctx, postgres.Config{
			DSN:            cfg.Postgres.DSN,
			MaxConns:       cfg.Postgres.MaxConns,
			Table:          cfg.Postgres.Table,
			MigrateOnStart: cfg.Postgres.MigrateOnStart,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connecting session store: %w", err)
		}
		return l, l.Close, nil
	default:
		return memory.New(memoryFixtures(cfg.Fixtures)...), func() {}, nil
	}
}

func memoryFixtures(fixtures []config.SessionFixture) []memory.Fixture {
	out := make([]memory.Fixture, 0, len(fixtures))
	for _, f := range fixtures {
		mf := memory.Fixture{ID: f.ID, ExpiresAt: f.ExpiresAt}
		if f.Staff != nil {
			mf.Staff = &session.Staff{ID: f.Staff.ID, Name: f.Staff.Name}
		}
		out = append(out, mf)
	}
	return out
}

func newResolver(cfg config.SessionConfig, lookup session.Lookup) *cookie.Resolver {
	opts := []cookie.Option{cookie.WithCookieName(cfg.CookieName)}
	if cfg.SigningKey != "" {
		opts = append(opts, cookie.WithSigningKey([]byte(cfg.SigningKey)))
	}
	if cfg.Issuer != "" {
		opts = append(opts, cookie.WithIssuer(cfg.Issuer))
	}
	return cookie.New(lookup, opts...)
}

func newKeySource(cfg config.GateConfig) apikey.KeySource {
	if cfg.APIKeySource == config.KeySourceEnv {
		return apikey.Env(cfg.APIKeyEnv)
	}
	return apikey.Static(cfg.APIKey)
}
