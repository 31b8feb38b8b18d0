package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/apresai/podcast-studio/internal/config"
	"github.com/apresai/podcast-studio/internal/observability"
	"github.com/apresai/podcast-studio/internal/pipeline"
)

// Version is overridden at build time with -ldflags.
var Version = pipeline.Version

var flagConfig string

var rootCmd = &cobra.Command{
	Use:           "podcast-studio",
	Short:         "Turn source content into a two-host podcast",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "podcast-studio %s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Config file (default: podcast-studio.yaml in ., ./configs or /etc/podcast-studio)")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// loadConfig reads the config and installs the JSON logger as the default.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, err
	}
	logger := observability.InitLogger(os.Stderr, cfg.Logging.Level)
	slog.SetDefault(logger)
	return cfg, logger, nil
}
