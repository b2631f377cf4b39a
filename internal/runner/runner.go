// Package runner drives an import: parse, classify, duplicate-check,
// submit, one row at a time. Each row is an independent unit of work; a
// failed row is reported and the run moves on. Only losing the connection
// to the accounting application aborts a run.
package runner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/float2qb-dev/float2qb/internal/classify"
	"github.com/float2qb-dev/float2qb/internal/config"
	"github.com/float2qb-dev/float2qb/internal/dedupe"
	"github.com/float2qb-dev/float2qb/internal/directory"
	"github.com/float2qb-dev/float2qb/internal/importer"
	"github.com/float2qb-dev/float2qb/internal/ledger"
	"github.com/float2qb-dev/float2qb/internal/model"
)

// Runner wires the import pipeline over a ledger.
type Runner struct {
	registry   *importer.Registry
	ledger     ledger.Ledger
	classifier *classify.Classifier
	guard      *dedupe.Guard
	precheck   bool
	log        *logrus.Logger
}

// New creates a Runner.
func New(registry *importer.Registry, l ledger.Ledger, accounts config.AccountsConfig, precheck bool, log *logrus.Logger) *Runner {
	return &Runner{
		registry:   registry,
		ledger:     l,
		classifier: classify.New(accounts),
		guard:      dedupe.New(l),
		precheck:   precheck,
		log:        log,
	}
}

// RunFile imports a single export file. A missing or unreadable file is
// fatal; row-level problems are reported in the summary.
func (r *Runner) RunFile(path string) (*model.Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening export: %w", err)
	}
	defer f.Close()

	parser := r.registry.ForFile(path)
	if parser == nil {
		return nil, fmt.Errorf("no parser for %s", path)
	}

	rows, err := parser.Parse(f)
	if err != nil {
		return nil, err
	}
	return r.Run(filepath.Base(path), rows)
}

// Run imports already-parsed rows. The returned summary covers every row,
// including ones that failed; err is non-nil only for fatal conditions
// (failed pre-check, lost connection), in which case the summary holds
// whatever was processed before the abort.
func (r *Runner) Run(file string, rows []importer.Row) (*model.Summary, error) {
	summary := &model.Summary{
		RunID:   uuid.NewString(),
		File:    file,
		Started: time.Now(),
	}
	defer func() { summary.Finished = time.Now() }()

	type item struct {
		row importer.Row
		txn model.Classified
	}
	var items []item

	for _, row := range rows {
		if row.Err != nil {
			r.failRow(summary, row.Num, "", "", row.Err)
			continue
		}
		txn, err := r.classifier.Classify(row.Record)
		if err != nil {
			r.failRow(summary, row.Num, row.Record.Reference, "", err)
			continue
		}
		items = append(items, item{row: row, txn: txn})
	}

	if r.precheck && len(items) > 0 {
		txns := make([]model.Classified, len(items))
		for i, it := range items {
			txns[i] = it.txn
		}
		if err := r.runPrecheck(txns); err != nil {
			return summary, err
		}
	}

	for _, it := range items {
		result, err := r.submit(it.row.Num, it.txn)
		if err != nil {
			// Connection gone: abort, everything after this row is unprocessed.
			return summary, err
		}
		summary.Add(result)
	}

	return summary, nil
}

// runPrecheck verifies every referenced account and payee exists before
// anything is posted. An unknown fixed account would fail every row, so it
// is surfaced once, up front, and nothing is written.
func (r *Runner) runPrecheck(txns []model.Classified) error {
	dir, err := directory.Load(r.ledger)
	if err != nil {
		return err
	}
	missingAccounts, missingVendors := dir.Check(txns)
	if len(missingAccounts) == 0 && len(missingVendors) == 0 {
		return nil
	}

	var parts []string
	if len(missingAccounts) > 0 {
		parts = append(parts, "unknown accounts: "+strings.Join(missingAccounts, ", "))
	}
	if len(missingVendors) > 0 {
		parts = append(parts, "unknown payees: "+strings.Join(missingVendors, ", "))
	}
	return fmt.Errorf("pre-check failed, nothing posted: %s", strings.Join(parts, "; "))
}

func (r *Runner) submit(rowNum int, txn model.Classified) (model.ImportResult, error) {
	result := model.ImportResult{
		Row:       rowNum,
		Reference: txn.Reference,
		Kind:      txn.Kind,
	}

	entry, found, err := r.guard.Check(txn)
	if err != nil {
		if errors.Is(err, ledger.ErrConnection) {
			return result, err
		}
		result.Outcome = model.OutcomeFailed
		result.Reason = err.Error()
		r.logRow(result).Warn("duplicate check failed")
		return result, nil
	}
	if found {
		result.Outcome = model.OutcomeSkippedDuplicate
		result.TxnID = entry.TxnID
		r.logRow(result).Info("skipped duplicate")
		return result, nil
	}

	txnID, err := r.create(txn)
	if err != nil {
		if errors.Is(err, ledger.ErrConnection) {
			return result, err
		}
		result.Outcome = model.OutcomeFailed
		result.Reason = err.Error()
		r.logRow(result).Warn("submit failed")
		return result, nil
	}

	result.Outcome = model.OutcomeCreated
	result.TxnID = txnID
	r.logRow(result).Info("created")
	return result, nil
}

func (r *Runner) create(txn model.Classified) (string, error) {
	rec := txn.Record
	switch txn.Kind {
	case model.KindCheque:
		return r.ledger.CreateCheque(ledger.ChequeParams{
			BankAccount: txn.Account,
			Payee:       txn.Payee,
			Date:        rec.Date,
			Memo:        rec.Description,
			Reference:   txn.Reference,
			Lines:       txn.Lines,
		})
	case model.KindDeposit:
		return r.ledger.CreateDeposit(ledger.DepositParams{
			BankAccount: txn.Account,
			Date:        rec.Date,
			Memo:        rec.Description,
			Reference:   txn.Reference,
			Lines:       txn.Lines,
		})
	case model.KindBill:
		return r.ledger.CreateBill(ledger.BillParams{
			Vendor:          txn.Payee,
			PayablesAccount: txn.Account,
			Date:            rec.Date,
			Memo:            rec.Description,
			Reference:       txn.Reference,
			Lines:           txn.Lines,
		})
	default:
		return "", &ledger.Error{Op: "submit", Message: fmt.Sprintf("unhandled kind %q", txn.Kind)}
	}
}

func (r *Runner) failRow(summary *model.Summary, rowNum int, ref string, txnID string, err error) {
	result := model.ImportResult{
		Row:       rowNum,
		Reference: ref,
		Outcome:   model.OutcomeFailed,
		TxnID:     txnID,
		Reason:    err.Error(),
	}
	summary.Add(result)
	r.logRow(result).Warn("row skipped")
}

func (r *Runner) logRow(result model.ImportResult) *logrus.Entry {
	return r.log.WithFields(logrus.Fields{
		"row":       result.Row,
		"reference": result.Reference,
		"kind":      result.Kind,
		"outcome":   result.Outcome,
		"reason":    result.Reason,
	})
}
