package commands

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/float2qb-dev/float2qb/internal/buildinfo"
	"github.com/float2qb-dev/float2qb/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "float2qb",
		Short:   "Import Float card exports into QuickBooks",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newConvertCommand())
	rootCmd.AddCommand(newPrecheckCommand())
	rootCmd.AddCommand(newWatchCommand())

	return rootCmd
}

// loadConfig reads the config file, falling back to defaults when the
// workspace has none.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = config.FileName
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Default(), nil
	}
	return config.Load(path)
}

// newLogger builds the run logger from config.
func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	log := logrus.New()
	if cfg.JSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}
