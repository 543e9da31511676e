package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rhuss/actiongate/pkg/config"
	"github.com/rhuss/actiongate/pkg/debug"
	transporthttp "github.com/rhuss/actiongate/pkg/transport/http"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gate server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (overrides config)")

	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	debug.Init(cfg.Logging.Debug, cfg.Logging.Level, cfg.Logging.Format)

	lookup, closeLookup, err := newLookup(ctx, cfg.Session)
	if err != nil {
		return err
	}
	defer closeLookup()

	handler, err := newRouter(cfg, lookup)
	if err != nil {
		return err
	}

	slog.Info("gate configured",
		"session_store", cfg.Session.Store,
		"signed_cookies", cfg.Session.SigningKey != "",
		"key_source", cfg.Gate.APIKeySource,
		"machine_access", machineAccess(cfg.Gate),
		"upstream", upstreamLabel(cfg.Gate),
	)

	srv := transporthttp.NewServer(handler,
		transporthttp.WithAddr(fmt.Sprintf(":%d", cfg.Server.Port)),
		transporthttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
		transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transporthttp.WithServerLogger(slog.Default()),
	)
	return srv.ListenAndServe()
}

// machineAccess reports whether machine callers can currently pass. In env
// mode the answer may change while the process runs.
func machineAccess(cfg config.GateConfig) string {
	if cfg.APIKeySource == config.KeySourceEnv {
		return "env:" + cfg.APIKeyEnv
	}
	if cfg.APIKey == "" {
		return "disabled"
	}
	return "enabled"
}

func upstreamLabel(cfg config.GateConfig) string {
	if cfg.UpstreamURL == "" {
		return "echo"
	}
	return cfg.UpstreamURL
}
