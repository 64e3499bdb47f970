// Package commands implements the canopyauth CLI.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/canopyhq/canopy/internal/logger"
	"github.com/canopyhq/canopy/pkg/auth"
	"github.com/canopyhq/canopy/pkg/config"
	"github.com/canopyhq/canopy/pkg/metrics"

	// Built-in providers register themselves on import.
	_ "github.com/canopyhq/canopy/pkg/auth/authjwt"
	_ "github.com/canopyhq/canopy/pkg/auth/none"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	cfgFile  string
	authType string
)

// rootCmd represents the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "canopyauth",
	Short: "Inspect and exercise canopy authentication credentials",
	Long: `canopyauth creates, verifies, and inspects canopy authentication
credentials using the provider configured for this host. It speaks the
same wire format as the canopy daemons, so records written by one can
be decoded by the other.

Use "canopyauth [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/canopy/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&authType, "type", "", "override the configured auth provider type")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads config, initializes logging and metrics, and returns an
// auth context ready for dispatch. The provider itself loads lazily on
// the first operation.
func setup() (*auth.Context, *config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return nil, nil, err
	}

	if cfg.Metrics.Enabled {
		metrics.Init()
	}

	ctx := auth.NewContext(cfg.Auth.Type, auth.Options{
		AuthInfo: cfg.Auth.Info,
		Settings: cfg.Auth.Settings,
	})
	if authType != "" {
		if err := ctx.Init(authType); err != nil {
			return nil, nil, err
		}
	}
	return ctx, cfg, nil
}
