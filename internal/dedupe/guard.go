// Package dedupe makes re-imports idempotent: each transaction is checked
// against the ledger before it is written, so a CSV can be re-run after a
// partial failure without creating the same entry twice.
package dedupe

import (
	"github.com/float2qb-dev/float2qb/internal/ledger"
	"github.com/float2qb-dev/float2qb/internal/model"
)

// Guard consults the ledger before every write.
type Guard struct {
	ledger ledger.Ledger
}

// New creates a Guard over a ledger.
func New(l ledger.Ledger) *Guard {
	return &Guard{ledger: l}
}

// Check reports whether txn already exists in the ledger. Cheques and
// bills are matched by the reference posted as their RefNumber, synthetic
// ones included. Deposits carry no RefNumber in the ledger, so they fall
// back to the exact (kind, date, amount) match, which can under- or
// over-match and is a precision limitation, not a guarantee.
func (g *Guard) Check(txn model.Classified) (ledger.Entry, bool, error) {
	if txn.Kind != model.KindDeposit && txn.Reference != "" {
		return g.ledger.Find(ledger.Query{Reference: txn.Reference})
	}
	return g.ledger.Find(ledger.Query{
		Kind:         txn.Kind,
		Date:         txn.Record.Date,
		Amount:       txn.Amount,
		Counterparty: txn.Counterparty(),
	})
}
