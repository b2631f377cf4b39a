// Package notify emails the run summary to the bookkeeping inbox when
// configured. Import runs are often scheduled and unattended; the email is
// how anyone finds out a batch failed.
package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/float2qb-dev/float2qb/internal/config"
	"github.com/float2qb-dev/float2qb/internal/model"
	"github.com/float2qb-dev/float2qb/internal/runner"
)

// Sender sends run summaries over SMTP.
type Sender struct {
	cfg config.NotifyConfig
	log *logrus.Logger
}

// NewSender creates a Sender.
func NewSender(cfg config.NotifyConfig, log *logrus.Logger) *Sender {
	return &Sender{cfg: cfg, log: log}
}

// SendSummary emails the summary of one run. A disabled or unconfigured
// sender is a no-op.
func (s *Sender) SendSummary(summary *model.Summary) error {
	if !s.cfg.Enabled || len(s.cfg.To) == 0 {
		return nil
	}

	e := email.NewEmail()
	e.From = s.cfg.From
	e.To = s.cfg.To
	e.Subject = Subject(summary)
	e.Text = []byte(Body(summary))

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	}

	if err := e.Send(addr, auth); err != nil {
		return fmt.Errorf("sending summary email: %w", err)
	}
	s.log.WithField("to", s.cfg.To).Info("summary email sent")
	return nil
}

// Subject builds the email subject for a run.
func Subject(summary *model.Summary) string {
	if summary.Failed() > 0 {
		return fmt.Sprintf("Float import: %d of %d rows failed (%s)",
			summary.Failed(), len(summary.Results), summary.File)
	}
	return fmt.Sprintf("Float import complete: %d created (%s)",
		summary.Created(), summary.File)
}

// Body builds the plain-text email body for a run.
func Body(summary *model.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Import run %s finished at %s.\n\n",
		summary.RunID, summary.Finished.Format("2006-01-02 15:04:05"))
	runner.WriteReport(&b, summary)
	return b.String()
}
