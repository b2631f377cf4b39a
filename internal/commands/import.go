package commands

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/float2qb-dev/float2qb/internal/auditlog"
	"github.com/float2qb-dev/float2qb/internal/config"
	"github.com/float2qb-dev/float2qb/internal/importer"
	"github.com/float2qb-dev/float2qb/internal/ledger/qbxml"
	"github.com/float2qb-dev/float2qb/internal/notify"
	"github.com/float2qb-dev/float2qb/internal/runner"
)

func newImportCommand() *cobra.Command {
	var cfgPath string
	var workDir string
	var noPrecheck bool

	cmd := &cobra.Command{
		Use:   "import [export-file]",
		Short: "Post a Float export to QuickBooks",
		Long: "Posts a Float export file to QuickBooks through the qbXML gateway.\n" +
			"Without an argument, imports every file waiting in import/, or\n" +
			"prompts for a path when that directory is empty.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := ""
			if len(args) > 0 {
				file = args[0]
			}
			return runImport(workDir, cfgPath, file, !noPrecheck)
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "path to float2qb.yaml")
	cmd.Flags().StringVar(&workDir, "workdir", ".", "workspace directory")
	cmd.Flags().BoolVar(&noPrecheck, "no-precheck", false, "skip the account/payee pre-check")

	return cmd
}

func runImport(workDir, cfgPath, file string, precheck bool) error {
	cfg, err := loadConfig(configPath(workDir, cfgPath))
	if err != nil {
		return err
	}
	log := newLogger(cfg.Logging)

	client, err := qbxml.Dial(cfg.Gateway, log)
	if err != nil {
		return err
	}
	defer client.Close()

	run := runner.New(importer.DefaultRegistry(), client, cfg.Accounts, precheck, log)

	if file != "" {
		return importOne(run, cfg, workDir, file, log)
	}

	files, err := importer.Scan(workDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		file, err = promptForPath()
		if err != nil {
			return err
		}
		return importOne(run, cfg, workDir, file, log)
	}

	for _, f := range files {
		if err := importOne(run, cfg, workDir, f.Path, log); err != nil {
			return err
		}
		if err := importer.MarkProcessed(workDir, f.Name); err != nil {
			return err
		}
	}
	return nil
}

// importOne runs a single file and reports, logs, and mails its summary.
// The returned error is fatal (pre-check, lost connection); row failures
// are reported in the summary and still exit zero.
func importOne(run *runner.Runner, cfg *config.Config, workDir, path string, log *logrus.Logger) error {
	summary, err := run.RunFile(path)
	if summary != nil && len(summary.Results) > 0 {
		runner.WriteReport(os.Stdout, summary)

		if logErr := auditlog.Append(workDir, auditlog.FromSummary(summary)); logErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to write import log: %v\n", logErr)
		}
		if mailErr := notify.NewSender(cfg.Notify, log).SendSummary(summary); mailErr != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", mailErr)
		}
	}
	return err
}

// promptForPath asks for an export path on stdin when no file is given and
// the import directory is empty.
func promptForPath() (string, error) {
	fmt.Print("Enter the path of the Float export file: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading path: %w", err)
	}
	path := strings.TrimSpace(line)
	if path == "" {
		return "", fmt.Errorf("no export file given")
	}
	return path, nil
}

func configPath(workDir, cfgPath string) string {
	if cfgPath != "" {
		return cfgPath
	}
	return filepath.Join(workDir, config.FileName)
}
