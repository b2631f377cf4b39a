package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/float2qb-dev/float2qb/internal/config"
)

func newInitCommand() *cobra.Command {
	var gatewayURL string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a float2qb workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(absDir, gatewayURL)
		},
	}

	cmd.Flags().StringVar(&gatewayURL, "gateway", "", "qbXML gateway URL")

	return cmd
}

func runInit(dir, gatewayURL string) error {
	dirs := []string{
		"import",
		filepath.Join("import", "processed"),
		"logs",
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default()
	if gatewayURL != "" {
		cfg.Gateway.URL = gatewayURL
	}
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	fmt.Printf("Initialized float2qb workspace at %s\n", dir)
	return nil
}
