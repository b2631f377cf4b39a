package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/float2qb-dev/float2qb/internal/importer"
	"github.com/float2qb-dev/float2qb/internal/ledger/iif"
	"github.com/float2qb-dev/float2qb/internal/runner"
)

func newConvertCommand() *cobra.Command {
	var cfgPath string
	var output string

	cmd := &cobra.Command{
		Use:   "convert <export-file>",
		Short: "Convert a Float export to a QuickBooks IIF file",
		Long: "Converts a Float export to an IIF batch file for manual import,\n" +
			"without talking to a running QuickBooks instance.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(args[0], output, cfgPath)
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "path to float2qb.yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output IIF path (default: input with .iif extension)")

	return cmd
}

func runConvert(input, output, cfgPath string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	log := newLogger(cfg.Logging)

	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".iif"
	}

	w, err := iif.Create(output)
	if err != nil {
		return err
	}
	defer w.Close()

	// No pre-check offline: there is no application to ask.
	run := runner.New(importer.DefaultRegistry(), w, cfg.Accounts, false, log)
	summary, err := run.RunFile(input)
	if summary != nil && len(summary.Results) > 0 {
		runner.WriteReport(os.Stdout, summary)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Conversion complete, %d transactions in %s\n", summary.Created(), output)
	return nil
}
