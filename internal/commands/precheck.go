package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/float2qb-dev/float2qb/internal/classify"
	"github.com/float2qb-dev/float2qb/internal/directory"
	"github.com/float2qb-dev/float2qb/internal/importer"
	"github.com/float2qb-dev/float2qb/internal/ledger/qbxml"
	"github.com/float2qb-dev/float2qb/internal/model"
)

func newPrecheckCommand() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "precheck <export-file>",
		Short: "Verify an export's accounts and payees exist in QuickBooks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrecheck(args[0], cfgPath)
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "path to float2qb.yaml")

	return cmd
}

func runPrecheck(path, cfgPath string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	log := newLogger(cfg.Logging)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening export: %w", err)
	}
	defer f.Close()

	registry := importer.DefaultRegistry()
	rows, err := registry.ForFile(path).Parse(f)
	if err != nil {
		return err
	}

	classifier := classify.New(cfg.Accounts)
	var txns []model.Classified
	for _, row := range rows {
		if row.Err != nil {
			fmt.Fprintf(os.Stderr, "row %d: %v\n", row.Num, row.Err)
			continue
		}
		txn, err := classifier.Classify(row.Record)
		if err != nil {
			fmt.Fprintf(os.Stderr, "row %d: %v\n", row.Num, err)
			continue
		}
		txns = append(txns, txn)
	}

	client, err := qbxml.Dial(cfg.Gateway, log)
	if err != nil {
		return err
	}
	defer client.Close()

	dir, err := directory.Load(client)
	if err != nil {
		return err
	}

	missingAccounts, missingVendors := dir.Check(txns)
	if len(missingAccounts) == 0 && len(missingVendors) == 0 {
		fmt.Printf("%s: all accounts and payees resolve (%d rows)\n", path, len(txns))
		return nil
	}

	if len(missingAccounts) > 0 {
		fmt.Fprintf(os.Stderr, "unknown accounts: %s\n", strings.Join(missingAccounts, ", "))
	}
	if len(missingVendors) > 0 {
		fmt.Fprintf(os.Stderr, "unknown payees: %s\n", strings.Join(missingVendors, ", "))
	}
	return fmt.Errorf("pre-check failed for %s", path)
}
