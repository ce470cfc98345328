package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/runtime-analysis/pkg/config"
	"github.com/runtime-analysis/pkg/telemetry"
	"github.com/runtime-analysis/pkg/utils"
)

var (
	// Global flags
	cfgFile string
	verbose bool

	logger utils.Logger
	cfg    *config.Config

	telemetryShutdown telemetry.ShutdownFunc
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "runtime-analysis",
	Short: "Heap retainer profiling for runtime snapshots",
	Long: `runtime-analysis is a CLI tool for profiling heap snapshots.

It clusters live objects by their retainers, builds per-kind and
per-constructor histograms, and archives the resulting samples for
later comparison.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}

		logLevel := utils.ParseLogLevel(cfg.Log.Level)
		if verbose {
			logLevel = utils.LevelDebug
		}
		logger = utils.NewDefaultLogger(logLevel, os.Stdout)
		utils.SetGlobalLogger(logger)

		telemetryShutdown, err = telemetry.Init(cmd.Context())
		if err != nil {
			logger.Warn("Failed to initialize telemetry: %v", err)
			telemetryShutdown = nil
		}

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if telemetryShutdown != nil {
			if err := telemetryShutdown(cmd.Context()); err != nil {
				logger.Warn("Failed to shut down telemetry: %v", err)
			}
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	binName := BinName()
	rootCmd.Example = `  # Profile a heap snapshot
  ` + binName + ` sample ./heap.json

  # Profile several snapshots concurrently, printing retainer lines
  ` + binName + ` sample --retainers ./heap-*.json.gz

  # List archived samples
  ` + binName + ` list --limit 20

  # Show one archived sample
  ` + binName + ` show 7`
}

// GetLogger returns the configured logger
func GetLogger() utils.Logger {
	return logger
}

// BinName returns the base name of the current executable
func BinName() string {
	return filepath.Base(os.Args[0])
}
