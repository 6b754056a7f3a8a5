package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tbxark/tripwizard/config"
	"github.com/tbxark/tripwizard/logger"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "tripwizard",
	Short: "Guided trip listing wizard",
	Long: `tripwizard turns a free-text trip request into a step-by-step listing
form, enriches it with hotel data and pricing, and publishes the trip.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", "", "directory holding config.yaml and .env")
	rootCmd.AddCommand(serveCmd, runCmd, stepsCmd)
}

// loadConfig reads the configuration and routes slog to the configured
// level so library tracing follows the same switch as the zap logger.
func loadConfig() (*config.Config, error) {
	var paths []string
	if configDir != "" {
		paths = append(paths, configDir)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		return nil, err
	}
	logger.SetupSlog(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	return cfg, nil
}
