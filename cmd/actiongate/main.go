// Command actiongate runs the authorization gate in front of an action
// backend.
//
// Usage:
//
//	actiongate serve [--config path] [--port n]
//	actiongate version [--short]
//
// Configuration is read from a YAML file, a .env file and ACTIONGATE_*
// environment variables; the machine secret comes from IVR_API_KEY.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "actiongate",
		Short: "Authorization gate for web actions",
		Long: `actiongate admits callers that hold a staff session or present the
shared machine key in the X-API-Key header, and sends everyone else
to the login flow.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)
	return rootCmd
}
