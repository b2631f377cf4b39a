package model

import "github.com/shopspring/decimal"

// Kind is the target transaction type in the accounting ledger.
type Kind string

const (
	KindCheque  Kind = "cheque"
	KindDeposit Kind = "deposit"
	KindBill    Kind = "bill"
)

// Line is a single expense or deposit line within a ledger transaction.
type Line struct {
	Account string
	Amount  decimal.Decimal
	Memo    string
}

// Classified wraps a FloatRecord with its resolved target transaction.
// Exactly one Kind per record. For bills, Payee is the spender and Account
// is the payables account; for cheques and deposits, Account is the bank
// account.
type Classified struct {
	Record    FloatRecord
	Kind      Kind
	Account   string // bank account for cheque/deposit, payables account for bill
	Payee     string // cheque payee or bill vendor; empty for deposits
	Reference string // export reference, or synthetic when the export had none
	Amount    decimal.Decimal
	Lines     []Line
}

// Counterparty returns the name used for heuristic duplicate matching:
// the cheque payee or bill vendor. Deposits have none; the ledger records
// where the money went, not who it came from.
func (c Classified) Counterparty() string {
	return c.Payee
}
