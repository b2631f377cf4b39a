package model

import "time"

// Outcome is the terminal state of a single imported row.
type Outcome string

const (
	OutcomeCreated          Outcome = "created"
	OutcomeSkippedDuplicate Outcome = "skipped-duplicate"
	OutcomeFailed           Outcome = "failed"
)

// ImportResult is the per-row outcome of an import run.
type ImportResult struct {
	Row       int // 1-based data row number in the source file
	Reference string
	Kind      Kind
	Outcome   Outcome
	TxnID     string // ledger-assigned transaction ID when created
	Reason    string // failure reason when Outcome is failed
}

// Summary aggregates the results of one import run.
type Summary struct {
	RunID    string
	File     string
	Started  time.Time
	Finished time.Time
	Results  []ImportResult
}

// Add appends a result.
func (s *Summary) Add(r ImportResult) {
	s.Results = append(s.Results, r)
}

// Created returns the number of rows that created a ledger transaction.
func (s *Summary) Created() int { return s.count(OutcomeCreated) }

// Skipped returns the number of rows skipped as duplicates.
func (s *Summary) Skipped() int { return s.count(OutcomeSkippedDuplicate) }

// Failed returns the number of rows that failed.
func (s *Summary) Failed() int { return s.count(OutcomeFailed) }

func (s *Summary) count(o Outcome) int {
	n := 0
	for _, r := range s.Results {
		if r.Outcome == o {
			n++
		}
	}
	return n
}
