// Package ledger defines the capability set this tool needs from the
// external accounting application: create a cheque, a deposit, or a bill,
// and look up existing transactions for duplicate detection. The ledger is
// the system of record; existing entries are never mutated.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/float2qb-dev/float2qb/internal/model"
)

// ErrConnection marks failures to reach the accounting application at all.
// These are fatal to a run, unlike per-transaction errors.
var ErrConnection = errors.New("cannot reach accounting application")

// Error is a failed automation call for a single transaction. The row is
// reported as failed; the run continues.
type Error struct {
	Op      string // "cheque add", "bill add", ...
	Code    int    // status code reported by the application, 0 if none
	Message string
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Entry is an existing ledger transaction as seen by duplicate lookups.
type Entry struct {
	TxnID        string
	Kind         model.Kind
	Reference    string
	Date         time.Time
	Amount       decimal.Decimal
	Counterparty string
}

// Query selects existing transactions. Reference wins when set; otherwise
// kind, date, amount and counterparty are matched exactly, with an empty
// Kind matching any.
type Query struct {
	Reference    string
	Kind         model.Kind
	Date         time.Time
	Amount       decimal.Decimal
	Counterparty string
}

// ChequeParams describes a payment out of the bank account.
type ChequeParams struct {
	BankAccount string
	Payee       string
	Date        time.Time
	Memo        string
	Reference   string
	Lines       []model.Line
}

// DepositParams describes money received into the bank account.
type DepositParams struct {
	BankAccount string
	Date        time.Time
	Memo        string
	Reference   string
	Lines       []model.Line
}

// BillParams describes an unpaid obligation recorded against a vendor.
type BillParams struct {
	Vendor          string
	PayablesAccount string
	Date            time.Time
	Memo            string
	Reference       string
	Lines           []model.Line
}

// Ledger is the automation interface to the accounting application. Each
// create call returns the ledger-assigned transaction ID.
type Ledger interface {
	CreateCheque(p ChequeParams) (string, error)
	CreateDeposit(p DepositParams) (string, error)
	CreateBill(p BillParams) (string, error)

	// Find reports whether a transaction matching q already exists.
	Find(q Query) (Entry, bool, error)

	// Accounts and Vendors list active names for the pre-check.
	Accounts() ([]string, error)
	Vendors() ([]string, error)

	// Close releases the session with the application.
	Close() error
}
