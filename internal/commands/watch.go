package commands

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/float2qb-dev/float2qb/internal/auditlog"
	"github.com/float2qb-dev/float2qb/internal/config"
	"github.com/float2qb-dev/float2qb/internal/importer"
	"github.com/float2qb-dev/float2qb/internal/ledger/qbxml"
	"github.com/float2qb-dev/float2qb/internal/notify"
	"github.com/float2qb-dev/float2qb/internal/runner"
)

func newWatchCommand() *cobra.Command {
	var cfgPath string
	var workDir string
	var schedule string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Sweep the import directory on a schedule",
		Long: "Runs an import of every file waiting in import/ on a cron\n" +
			"schedule, moving processed files aside. Runs until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(workDir, cfgPath, schedule)
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "path to float2qb.yaml")
	cmd.Flags().StringVar(&workDir, "workdir", ".", "workspace directory")
	cmd.Flags().StringVar(&schedule, "schedule", "", "cron schedule (default from config)")

	return cmd
}

func runWatch(workDir, cfgPath, schedule string) error {
	cfg, err := loadConfig(configPath(workDir, cfgPath))
	if err != nil {
		return err
	}
	log := newLogger(cfg.Logging)

	if schedule == "" {
		schedule = cfg.Import.Schedule
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { sweep(workDir, cfg, log) }); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	log.WithFields(logrus.Fields{"schedule": schedule, "workdir": workDir}).Info("watching import directory")
	sweep(workDir, cfg, log)
	c.Run()
	return nil
}

// sweep imports everything waiting in import/. Failures are logged, never
// fatal: the watcher keeps running and retries on the next tick, which is
// safe because imports are idempotent.
func sweep(workDir string, cfg *config.Config, log *logrus.Logger) {
	files, err := importer.Scan(workDir)
	if err != nil {
		log.WithError(err).Error("scanning import directory")
		return
	}
	if len(files) == 0 {
		return
	}

	client, err := qbxml.Dial(cfg.Gateway, log)
	if err != nil {
		log.WithError(err).Error("connecting to gateway")
		return
	}
	defer client.Close()

	run := runner.New(importer.DefaultRegistry(), client, cfg.Accounts, cfg.Import.Precheck, log)
	sender := notify.NewSender(cfg.Notify, log)

	for _, f := range files {
		summary, err := run.RunFile(f.Path)
		if summary != nil && len(summary.Results) > 0 {
			if logErr := auditlog.Append(workDir, auditlog.FromSummary(summary)); logErr != nil {
				log.WithError(logErr).Warn("writing import log")
			}
			if mailErr := sender.SendSummary(summary); mailErr != nil {
				log.WithError(mailErr).Warn("sending summary email")
			}
		}
		if err != nil {
			log.WithError(err).WithField("file", f.Name).Error("import failed")
			continue
		}
		if err := importer.MarkProcessed(workDir, f.Name); err != nil {
			log.WithError(err).WithField("file", f.Name).Error("marking processed")
		}
	}
}
