// Package auditlog keeps a local append-only record of what each import run
// did to the ledger. The ledger is the system of record; this log exists so
// a bookkeeper can answer "what did the tool post, and when" without it.
package auditlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/float2qb-dev/float2qb/internal/model"
)

// Entry is one row in the import log.
type Entry struct {
	Timestamp time.Time
	RunID     string
	File      string
	Row       int
	Reference string
	Kind      model.Kind
	Outcome   model.Outcome
	TxnID     string
	Reason    string
}

// Header is the CSV header for import-log.csv.
const Header = "timestamp,run_id,file,row,reference,kind,outcome,txn_id,reason"

const (
	numFields    = 9
	logDir       = "logs"
	logFile      = "logs/import-log.csv"
	colTimestamp = 0
	colRunID     = 1
	colFile      = 2
	colRow       = 3
	colReference = 4
	colKind      = 5
	colOutcome   = 6
	colTxnID     = 7
	colReason    = 8
)

// FromSummary converts a run summary into log entries.
func FromSummary(s *model.Summary) []Entry {
	entries := make([]Entry, 0, len(s.Results))
	for _, r := range s.Results {
		entries = append(entries, Entry{
			Timestamp: s.Finished,
			RunID:     s.RunID,
			File:      s.File,
			Row:       r.Row,
			Reference: r.Reference,
			Kind:      r.Kind,
			Outcome:   r.Outcome,
			TxnID:     r.TxnID,
			Reason:    r.Reason,
		})
	}
	return entries
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colRunID] = e.RunID
	row[colFile] = e.File
	row[colRow] = strconv.Itoa(e.Row)
	row[colReference] = e.Reference
	row[colKind] = string(e.Kind)
	row[colOutcome] = string(e.Outcome)
	row[colTxnID] = e.TxnID
	row[colReason] = e.Reason
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	row, err := strconv.Atoi(record[colRow])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing row %q: %w", record[colRow], err)
	}

	return Entry{
		Timestamp: ts,
		RunID:     record[colRunID],
		File:      record[colFile],
		Row:       row,
		Reference: record[colReference],
		Kind:      model.Kind(record[colKind]),
		Outcome:   model.Outcome(record[colOutcome]),
		TxnID:     record[colTxnID],
		Reason:    record[colReason],
	}, nil
}

// Append writes entries to <workRoot>/logs/import-log.csv, creating the
// file and header if needed.
func Append(workRoot string, entries []Entry) error {
	dir := filepath.Join(workRoot, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(workRoot, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	return cw.Error()
}

// Read returns all entries from <workRoot>/logs/import-log.csv.
// Returns nil if the file does not exist.
func Read(workRoot string) ([]Entry, error) {
	path := filepath.Join(workRoot, logFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading import log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
